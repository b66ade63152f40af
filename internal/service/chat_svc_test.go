package service

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/AnggaPuspa/RestApiBatika/internal/api/dto"
	"github.com/AnggaPuspa/RestApiBatika/internal/model"
	"github.com/AnggaPuspa/RestApiBatika/internal/repository"
)

func newChatTestEnv(t *testing.T) (*ChatService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("连接数据库失败: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{}, &orderTestSeller{}, &orderTestProduct{},
		&model.Conversation{}, &model.Message{},
	); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	svc := NewChatService(
		repository.NewChatRepository(db),
		repository.NewUserRepository(db),
	)
	return svc, db
}

func seedChatPair(t *testing.T, db *gorm.DB) (buyer, seller *model.User) {
	t.Helper()
	buyer = seedReviewUser(t, db, "buyer@example.com")
	seller = seedReviewUser(t, db, "seller@example.com")
	db.Model(&model.User{}).Where("id = ?", seller.ID).Update("is_seller", true)
	seller.IsSeller = true
	return buyer, seller
}

func TestChatService_CreateConversation(t *testing.T) {
	svc, db := newChatTestEnv(t)
	ctx := context.Background()
	buyer, seller := seedChatPair(t, db)

	// 不能与自己会话
	if _, err := svc.CreateConversation(ctx, buyer.ID, &dto.CreateConversationRequest{SellerUserID: buyer.ID}); !errors.Is(err, ErrValidation) {
		t.Errorf("自聊应返回校验错误，实际 %v", err)
	}

	// 对方必须是卖家
	plain := seedReviewUser(t, db, "plain@example.com")
	if _, err := svc.CreateConversation(ctx, buyer.ID, &dto.CreateConversationRequest{SellerUserID: plain.ID}); !errors.Is(err, ErrValidation) {
		t.Errorf("非卖家应返回校验错误，实际 %v", err)
	}

	vo, err := svc.CreateConversation(ctx, buyer.ID, &dto.CreateConversationRequest{
		SellerUserID: seller.ID,
		Message:      "Apakah masih ada stok?",
	})
	if err != nil {
		t.Fatalf("发起会话失败: %v", err)
	}
	if vo.LastMessageAt == nil {
		// 首条消息应刷新会话时间
		var reloaded model.Conversation
		db.First(&reloaded, vo.ID)
		if reloaded.LastMessageAt == nil {
			t.Error("发送首条消息后应刷新 last_message_at")
		}
	}

	// 相同组合应复用会话
	again, err := svc.CreateConversation(ctx, buyer.ID, &dto.CreateConversationRequest{SellerUserID: seller.ID})
	if err != nil {
		t.Fatalf("重复发起会话失败: %v", err)
	}
	if again.ID != vo.ID {
		t.Errorf("相同买卖家组合应复用会话 %d，实际 %d", vo.ID, again.ID)
	}
}

func TestChatService_Messaging(t *testing.T) {
	svc, db := newChatTestEnv(t)
	ctx := context.Background()
	buyer, seller := seedChatPair(t, db)
	outsider := seedReviewUser(t, db, "outsider@example.com")

	conv, err := svc.CreateConversation(ctx, buyer.ID, &dto.CreateConversationRequest{
		SellerUserID: seller.ID,
		Message:      "Halo",
	})
	if err != nil {
		t.Fatalf("发起会话失败: %v", err)
	}

	// 非参与者不可发言
	if _, err := svc.SendMessage(ctx, outsider.ID, conv.ID, &dto.SendMessageRequest{Content: "intrusi"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("非参与者发言应返回禁止访问，实际 %v", err)
	}

	reply, err := svc.SendMessage(ctx, seller.ID, conv.ID, &dto.SendMessageRequest{Content: "Masih ada"})
	if err != nil {
		t.Fatalf("回复失败: %v", err)
	}

	msgs, err := svc.ListMessages(ctx, buyer.ID, conv.ID, &dto.ListMessagesRequest{})
	if err != nil {
		t.Fatalf("查询消息失败: %v", err)
	}
	if msgs.Total != 2 {
		t.Errorf("消息数应为 2，实际 %d", msgs.Total)
	}

	// 买家有一条来自卖家的未读
	unread, err := svc.UnreadCount(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("查询未读数失败: %v", err)
	}
	if unread != 1 {
		t.Errorf("买家未读数应为 1，实际 %d", unread)
	}

	// 发送方不能标记自己的消息
	if err := svc.MarkMessageRead(ctx, seller.ID, reply.ID); !errors.Is(err, ErrValidation) {
		t.Errorf("发送方标记已读应返回校验错误，实际 %v", err)
	}
	if err := svc.MarkMessageRead(ctx, buyer.ID, reply.ID); err != nil {
		t.Fatalf("标记已读失败: %v", err)
	}

	unread, _ = svc.UnreadCount(ctx, buyer.ID)
	if unread != 0 {
		t.Errorf("标记后未读数应为 0，实际 %d", unread)
	}
}

func TestChatService_AccessControl(t *testing.T) {
	svc, db := newChatTestEnv(t)
	ctx := context.Background()
	buyer, seller := seedChatPair(t, db)
	outsider := seedReviewUser(t, db, "outsider@example.com")

	conv, err := svc.CreateConversation(ctx, buyer.ID, &dto.CreateConversationRequest{SellerUserID: seller.ID})
	if err != nil {
		t.Fatalf("发起会话失败: %v", err)
	}

	if _, err := svc.GetConversation(ctx, outsider.ID, conv.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("非参与者查看会话应返回禁止访问，实际 %v", err)
	}
	if _, err := svc.ListMessages(ctx, outsider.ID, conv.ID, &dto.ListMessagesRequest{}); !errors.Is(err, ErrForbidden) {
		t.Errorf("非参与者查看消息应返回禁止访问，实际 %v", err)
	}

	list, err := svc.ListConversations(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("查询会话列表失败: %v", err)
	}
	if list.Total != 1 {
		t.Errorf("买家会话数应为 1，实际 %d", list.Total)
	}
}

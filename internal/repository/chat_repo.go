package repository

import (
	"context"
	"time"

	"github.com/AnggaPuspa/RestApiBatika/internal/model"

	"gorm.io/gorm"
)

// ==================== ChatRepository 会话仓库 ====================

// ChatRepository 会话与消息仓库接口
type ChatRepository interface {
	// 会话
	CreateConversation(ctx context.Context, conv *model.Conversation) error
	GetConversationByID(ctx context.Context, id int64) (*model.Conversation, error)
	FindConversation(ctx context.Context, buyerID, sellerID int64, productID *int64) (*model.Conversation, error)
	ListConversations(ctx context.Context, userID int64) ([]model.Conversation, error)
	TouchConversation(ctx context.Context, id int64, at time.Time) error

	// 消息
	CreateMessage(ctx context.Context, msg *model.Message) error
	GetMessageByID(ctx context.Context, id int64) (*model.Message, error)
	ListMessages(ctx context.Context, conversationID int64, page, pageSize int) ([]model.Message, int64, error)
	MarkMessageRead(ctx context.Context, id int64) error
	UnreadCountForConversation(ctx context.Context, conversationID, userID int64) (int64, error)
	UnreadCountForUser(ctx context.Context, userID int64) (int64, error)
}

// ==================== 实现 ====================

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository 创建会话仓库
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) CreateConversation(ctx context.Context, conv *model.Conversation) error {
	return r.db.WithContext(ctx).Create(conv).Error
}

func (r *chatRepository) GetConversationByID(ctx context.Context, id int64) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.WithContext(ctx).
		Preload("Buyer").
		Preload("Seller").
		Preload("Product").
		First(&conv, id).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *chatRepository) FindConversation(ctx context.Context, buyerID, sellerID int64, productID *int64) (*model.Conversation, error) {
	db := r.db.WithContext(ctx).
		Where("buyer_id = ? AND seller_id = ?", buyerID, sellerID)
	if productID != nil {
		db = db.Where("product_id = ?", *productID)
	} else {
		db = db.Where("product_id IS NULL")
	}

	var conv model.Conversation
	err := db.First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *chatRepository) ListConversations(ctx context.Context, userID int64) ([]model.Conversation, error) {
	var convs []model.Conversation
	err := r.db.WithContext(ctx).
		Preload("Buyer").
		Preload("Seller").
		Preload("Product").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			// 仅取最近一条作为预览
			return db.Order("created_at DESC").Limit(1)
		}).
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("last_message_at DESC NULLS LAST").
		Find(&convs).Error
	return convs, err
}

func (r *chatRepository) TouchConversation(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Conversation{}).
		Where("id = ?", id).
		Update("last_message_at", at).Error
}

func (r *chatRepository) CreateMessage(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *chatRepository) GetMessageByID(ctx context.Context, id int64) (*model.Message, error) {
	var msg model.Message
	err := r.db.WithContext(ctx).First(&msg, id).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *chatRepository) ListMessages(ctx context.Context, conversationID int64, page, pageSize int) ([]model.Message, int64, error) {
	var messages []model.Message
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("conversation_id = ?", conversationID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	err := db.
		Preload("Sender").
		Order("created_at ASC").
		Limit(pageSize).
		Offset(offset).
		Find(&messages).Error

	return messages, total, err
}

func (r *chatRepository) MarkMessageRead(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.Message{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}

func (r *chatRepository) UnreadCountForConversation(ctx context.Context, conversationID, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("conversation_id = ?", conversationID).
		Where("is_read = ?", false).
		Where("sender_id <> ?", userID).
		Count(&count).Error
	return count, err
}

func (r *chatRepository) UnreadCountForUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Message{}).
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("conversations.buyer_id = ? OR conversations.seller_id = ?", userID, userID).
		Where("messages.is_read = ?", false).
		Where("messages.sender_id <> ?", userID).
		Count(&count).Error
	return count, err
}

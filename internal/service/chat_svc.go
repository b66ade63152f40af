package service

import (
	"context"
	"errors"
	"time"

	"github.com/AnggaPuspa/RestApiBatika/internal/api/dto"
	"github.com/AnggaPuspa/RestApiBatika/internal/model"
	"github.com/AnggaPuspa/RestApiBatika/internal/repository"

	"gorm.io/gorm"
)

// ==================== ChatService ====================

// ChatService 买卖双方会话服务
type ChatService struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
}

// NewChatService 创建会话服务
func NewChatService(chatRepo repository.ChatRepository, userRepo repository.UserRepository) *ChatService {
	return &ChatService{
		chatRepo: chatRepo,
		userRepo: userRepo,
	}
}

// ==================== 发起会话 ====================

// CreateConversation 发起会话。同一买家、卖家与商品组合复用已有会话
func (s *ChatService) CreateConversation(ctx context.Context, buyerID int64, req *dto.CreateConversationRequest) (*dto.ConversationVO, error) {
	if buyerID == req.SellerUserID {
		return nil, validationf("不能与自己发起会话")
	}
	seller, err := s.userRepo.GetByID(ctx, req.SellerUserID)
	if err != nil {
		return nil, notFoundf("用户 %d 不存在", req.SellerUserID)
	}
	if !seller.IsSeller {
		return nil, validationf("对方不是卖家")
	}

	conv, err := s.chatRepo.FindConversation(ctx, buyerID, req.SellerUserID, req.ProductID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if conv == nil {
		conv = &model.Conversation{
			BuyerID:   buyerID,
			SellerID:  req.SellerUserID,
			ProductID: req.ProductID,
		}
		if err := s.chatRepo.CreateConversation(ctx, conv); err != nil {
			return nil, err
		}
	}

	if req.Message != "" {
		if _, err := s.sendMessage(ctx, conv, buyerID, req.Message); err != nil {
			return nil, err
		}
	}

	return s.toConversationVO(ctx, conv, buyerID), nil
}

// ==================== 会话查询 ====================

// GetConversation 获取会话详情，仅参与者可见
func (s *ChatService) GetConversation(ctx context.Context, userID, convID int64) (*dto.ConversationVO, error) {
	conv, err := s.chatRepo.GetConversationByID(ctx, convID)
	if err != nil {
		return nil, notFoundf("会话 %d 不存在", convID)
	}
	if !conv.IsParticipant(userID) {
		return nil, forbiddenf("无权访问该会话")
	}
	return s.toConversationVO(ctx, conv, userID), nil
}

// ListConversations 获取用户的会话列表，按最近消息排序
func (s *ChatService) ListConversations(ctx context.Context, userID int64) (*dto.ListConversationsResponse, error) {
	convs, err := s.chatRepo.ListConversations(ctx, userID)
	if err != nil {
		return nil, err
	}

	list := make([]dto.ConversationVO, 0, len(convs))
	for i := range convs {
		list = append(list, *s.toConversationVO(ctx, &convs[i], userID))
	}
	return &dto.ListConversationsResponse{Total: int64(len(list)), List: list}, nil
}

// ==================== 消息 ====================

// SendMessage 在会话内发送消息，仅参与者可发送
func (s *ChatService) SendMessage(ctx context.Context, userID, convID int64, req *dto.SendMessageRequest) (*dto.MessageVO, error) {
	conv, err := s.chatRepo.GetConversationByID(ctx, convID)
	if err != nil {
		return nil, notFoundf("会话 %d 不存在", convID)
	}
	if !conv.IsParticipant(userID) {
		return nil, forbiddenf("无权在该会话内发言")
	}
	return s.sendMessage(ctx, conv, userID, req.Content)
}

func (s *ChatService) sendMessage(ctx context.Context, conv *model.Conversation, senderID int64, content string) (*dto.MessageVO, error) {
	msg := &model.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Content:        content,
	}
	if err := s.chatRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.chatRepo.TouchConversation(ctx, conv.ID, time.Now()); err != nil {
		return nil, err
	}
	return toMessageVO(msg), nil
}

// ListMessages 获取会话消息，按时间正序分页
func (s *ChatService) ListMessages(ctx context.Context, userID, convID int64, req *dto.ListMessagesRequest) (*dto.ListMessagesResponse, error) {
	conv, err := s.chatRepo.GetConversationByID(ctx, convID)
	if err != nil {
		return nil, notFoundf("会话 %d 不存在", convID)
	}
	if !conv.IsParticipant(userID) {
		return nil, forbiddenf("无权访问该会话")
	}

	messages, total, err := s.chatRepo.ListMessages(ctx, convID, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	list := make([]dto.MessageVO, 0, len(messages))
	for i := range messages {
		list = append(list, *toMessageVO(&messages[i]))
	}
	return &dto.ListMessagesResponse{Total: total, List: list}, nil
}

// MarkMessageRead 标记消息已读，仅接收方可操作
func (s *ChatService) MarkMessageRead(ctx context.Context, userID, messageID int64) error {
	msg, err := s.chatRepo.GetMessageByID(ctx, messageID)
	if err != nil {
		return notFoundf("消息 %d 不存在", messageID)
	}
	conv, err := s.chatRepo.GetConversationByID(ctx, msg.ConversationID)
	if err != nil {
		return err
	}
	if !conv.IsParticipant(userID) {
		return forbiddenf("无权访问该会话")
	}
	if msg.SenderID == userID {
		return validationf("不能将自己发送的消息标记为已读")
	}
	return s.chatRepo.MarkMessageRead(ctx, messageID)
}

// UnreadCount 获取用户全部会话的未读消息数
func (s *ChatService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.chatRepo.UnreadCountForUser(ctx, userID)
}

// ==================== 辅助 ====================

func (s *ChatService) toConversationVO(ctx context.Context, conv *model.Conversation, userID int64) *dto.ConversationVO {
	vo := &dto.ConversationVO{
		ID:            conv.ID,
		BuyerID:       conv.BuyerID,
		SellerID:      conv.SellerID,
		ProductID:     conv.ProductID,
		LastMessageAt: conv.LastMessageAt,
		CreatedAt:     conv.CreatedAt,
	}
	if len(conv.Messages) > 0 {
		vo.LastMessage = toMessageVO(&conv.Messages[len(conv.Messages)-1])
	}
	if unread, err := s.chatRepo.UnreadCountForConversation(ctx, conv.ID, userID); err == nil {
		vo.UnreadCount = unread
	}
	return vo
}

// toMessageVO 转换为视图对象
func toMessageVO(m *model.Message) *dto.MessageVO {
	return &dto.MessageVO{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		IsRead:         m.IsRead,
		CreatedAt:      m.CreatedAt,
	}
}

package dto

import "time"

// ==================== 发起会话 ====================

// CreateConversationRequest 发起会话请求
type CreateConversationRequest struct {
	SellerUserID int64  `json:"seller_user_id" binding:"required"`
	ProductID    *int64 `json:"product_id"`
	Message      string `json:"message"` // 首条消息，可为空
}

// ==================== 会话列表 ====================

// ListConversationsRequest 会话列表请求
type ListConversationsRequest struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=20"`
}

// ListConversationsResponse 会话列表响应
type ListConversationsResponse struct {
	Total int64            `json:"total"`
	List  []ConversationVO `json:"list"`
}

// ConversationVO 会话视图对象
type ConversationVO struct {
	ID            int64      `json:"id"`
	BuyerID       int64      `json:"buyer_id"`
	SellerID      int64      `json:"seller_id"`
	ProductID     *int64     `json:"product_id,omitempty"`
	LastMessage   *MessageVO `json:"last_message,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	UnreadCount   int64      `json:"unread_count"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ==================== 发送消息 ====================

// SendMessageRequest 发送消息请求
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// ==================== 消息列表 ====================

// ListMessagesRequest 消息列表请求
type ListMessagesRequest struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=50"`
}

// ListMessagesResponse 消息列表响应
type ListMessagesResponse struct {
	Total int64       `json:"total"`
	List  []MessageVO `json:"list"`
}

// MessageVO 消息视图对象
type MessageVO struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

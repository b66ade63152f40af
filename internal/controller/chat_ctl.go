package controller

import (
	"strconv"

	"github.com/AnggaPuspa/RestApiBatika/internal/api/dto"
	"github.com/AnggaPuspa/RestApiBatika/internal/middleware"
	"github.com/AnggaPuspa/RestApiBatika/internal/service"
	"github.com/AnggaPuspa/RestApiBatika/pkg/response"

	"github.com/gin-gonic/gin"
)

// ChatController 会话控制器
type ChatController struct {
	svc *service.ChatService
}

// NewChatController 创建会话控制器
func NewChatController(svc *service.ChatService) *ChatController {
	return &ChatController{svc: svc}
}

// CreateConversation 发起会话
// POST /api/chat/conversations
func (h *ChatController) CreateConversation(c *gin.Context) {
	var req dto.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.svc.CreateConversation(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, "Conversation ready", result)
}

// ListConversations 会话列表
// GET /api/chat/conversations
func (h *ChatController) ListConversations(c *gin.Context) {
	result, err := h.svc.ListConversations(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "", result)
}

// GetConversation 会话详情
// GET /api/chat/conversations/:id
func (h *ChatController) GetConversation(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid conversation id")
		return
	}

	result, err := h.svc.GetConversation(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "", result)
}

// SendMessage 发送消息
// POST /api/chat/conversations/:id/messages
func (h *ChatController) SendMessage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid conversation id")
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.svc.SendMessage(c.Request.Context(), middleware.GetUserID(c), id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, "Message sent", result)
}

// ListMessages 消息列表
// GET /api/chat/conversations/:id/messages
func (h *ChatController) ListMessages(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid conversation id")
		return
	}

	var req dto.ListMessagesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.svc.ListMessages(c.Request.Context(), middleware.GetUserID(c), id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "", result)
}

// MarkMessageRead 标记消息已读
// POST /api/chat/messages/:id/read
func (h *ChatController) MarkMessageRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid message id")
		return
	}

	if err := h.svc.MarkMessageRead(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "Message marked as read", nil)
}

// UnreadCount 未读消息数
// GET /api/chat/unread-count
func (h *ChatController) UnreadCount(c *gin.Context) {
	count, err := h.svc.UnreadCount(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "", gin.H{"unread_count": count})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/makerlink/makerlink-backend/internal/common"
	"github.com/makerlink/makerlink-backend/internal/domain"
	"github.com/makerlink/makerlink-backend/internal/middleware"
	"github.com/makerlink/makerlink-backend/internal/service"
)

// MessageHandler handles direct-message HTTP requests
type MessageHandler struct {
	service service.MessageService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(service service.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

// SendMessage handles POST /messages
func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required", common.ErrUnauthenticated)
		return
	}

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.service.SendMessage(userID, &req)
	if err != nil {
		common.ErrorResponse(c, common.HTTPStatus(err), err.Error(), err)
		return
	}

	common.SuccessResponse(c, result, nil)
}

// GetConversation handles GET /messages/with/:partnerID
// Fetching a conversation marks its incoming messages as read.
func (h *MessageHandler) GetConversation(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required", common.ErrUnauthenticated)
		return
	}

	partnerID := c.Param("partnerID")
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 30)

	result, meta, err := h.service.GetConversation(userID, partnerID, page, limit)
	if err != nil {
		common.ErrorResponse(c, common.HTTPStatus(err), err.Error(), err)
		return
	}

	common.SuccessResponse(c, result, meta)
}

// ListConversations handles GET /messages/conversations
func (h *MessageHandler) ListConversations(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required", common.ErrUnauthenticated)
		return
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)

	summaries, meta, err := h.service.ListConversations(userID, page, limit)
	if err != nil {
		common.ErrorResponse(c, common.HTTPStatus(err), err.Error(), err)
		return
	}

	common.SuccessResponse(c, summaries, meta)
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/makerlink/makerlink-backend/internal/common"
	"github.com/makerlink/makerlink-backend/internal/middleware"
	"github.com/makerlink/makerlink-backend/internal/service"
)

// NotificationHandler handles notification HTTP requests
type NotificationHandler struct {
	service service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(service service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// GetList handles GET /notifications
func (h *NotificationHandler) GetList(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required", common.ErrUnauthenticated)
		return
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)

	result, err := h.service.GetList(userID, page, limit)
	if err != nil {
		common.ErrorResponse(c, common.HTTPStatus(err), err.Error(), err)
		return
	}

	common.SuccessResponse(c, result, nil)
}

// GetUnreadCount handles GET /notifications/unread-count
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required", common.ErrUnauthenticated)
		return
	}

	result, err := h.service.GetUnreadCount(userID)
	if err != nil {
		common.ErrorResponse(c, common.HTTPStatus(err), err.Error(), err)
		return
	}

	common.SuccessResponse(c, result, nil)
}

// MarkAsRead handles PUT /notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required", common.ErrUnauthenticated)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid notification id", err)
		return
	}

	if err := h.service.MarkAsRead(userID, id); err != nil {
		common.ErrorResponse(c, common.HTTPStatus(err), err.Error(), err)
		return
	}

	common.SuccessResponse(c, gin.H{"marked": true}, nil)
}

// MarkAllAsRead handles PUT /notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required", common.ErrUnauthenticated)
		return
	}

	if err := h.service.MarkAllAsRead(userID); err != nil {
		common.ErrorResponse(c, common.HTTPStatus(err), err.Error(), err)
		return
	}

	common.SuccessResponse(c, gin.H{"marked": true}, nil)
}

// queryInt parses an integer query parameter with a default
func queryInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

package repository

import (
	"errors"
	"fmt"

	"github.com/makerlink/makerlink-backend/internal/common"
	"github.com/makerlink/makerlink-backend/internal/domain"
	"github.com/makerlink/makerlink-backend/pkg/logger"
	"gorm.io/gorm"
)

// isStoreFailure distinguishes a store-level failure (connection lost,
// query error) from a domain outcome like a missing row. Only store
// failures trigger the fallback path.
func isStoreFailure(err error) bool {
	return err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
}

// storesFailed classifies a double failure: neither the primary nor the
// fallback store could serve the call.
func storesFailed(op string, primaryErr, fallbackErr error) error {
	return fmt.Errorf("%s: primary (%v), fallback (%v): %w", op, primaryErr, fallbackErr, common.ErrStoreUnavailable)
}

// FailoverMessageRepository tries the primary conversation store on
// every call and drops to the degraded fallback only when the primary
// fails. The selection is per call, never sticky: a recovered primary
// is used again on the next operation.
type FailoverMessageRepository struct {
	primary  MessageRepository
	fallback MessageRepository
}

// NewFailoverMessageRepository wraps primary with fallback
func NewFailoverMessageRepository(primary, fallback MessageRepository) *FailoverMessageRepository {
	return &FailoverMessageRepository{primary: primary, fallback: fallback}
}

// Append writes to the primary store, then the fallback on failure.
// If both fail the error surfaces: a lost message must never look sent.
func (r *FailoverMessageRepository) Append(msg *domain.Message) error {
	err := r.primary.Append(msg)
	if !isStoreFailure(err) {
		return err
	}
	logger.Warn("primary message store unavailable, using fallback: %v", err)
	if ferr := r.fallback.Append(msg); ferr != nil {
		return storesFailed("append message", err, ferr)
	}
	return nil
}

func (r *FailoverMessageRepository) ListBetween(a, b string, page, limit int) ([]*domain.Message, int64, error) {
	messages, total, err := r.primary.ListBetween(a, b, page, limit)
	if !isStoreFailure(err) {
		return messages, total, err
	}
	logger.Warn("primary message store unavailable, using fallback: %v", err)
	messages, total, ferr := r.fallback.ListBetween(a, b, page, limit)
	if ferr != nil {
		return nil, 0, storesFailed("list messages", err, ferr)
	}
	return messages, total, nil
}

func (r *FailoverMessageRepository) MarkRead(receiverID, senderID string) (int64, error) {
	count, err := r.primary.MarkRead(receiverID, senderID)
	if !isStoreFailure(err) {
		return count, err
	}
	logger.Warn("primary message store unavailable, using fallback: %v", err)
	count, ferr := r.fallback.MarkRead(receiverID, senderID)
	if ferr != nil {
		return 0, storesFailed("mark messages read", err, ferr)
	}
	return count, nil
}

func (r *FailoverMessageRepository) ListConversations(viewerID string, page, limit int) ([]*domain.ConversationSummary, int64, error) {
	summaries, total, err := r.primary.ListConversations(viewerID, page, limit)
	if !isStoreFailure(err) {
		return summaries, total, err
	}
	logger.Warn("primary message store unavailable, using fallback: %v", err)
	summaries, total, ferr := r.fallback.ListConversations(viewerID, page, limit)
	if ferr != nil {
		return nil, 0, storesFailed("list conversations", err, ferr)
	}
	return summaries, total, nil
}

// FailoverNotificationRepository is the per-call primary→fallback
// wrapper for the notification store.
type FailoverNotificationRepository struct {
	primary  NotificationRepository
	fallback NotificationRepository
}

// NewFailoverNotificationRepository wraps primary with fallback
func NewFailoverNotificationRepository(primary, fallback NotificationRepository) *FailoverNotificationRepository {
	return &FailoverNotificationRepository{primary: primary, fallback: fallback}
}

func (r *FailoverNotificationRepository) Create(n *domain.Notification) error {
	err := r.primary.Create(n)
	if !isStoreFailure(err) {
		return err
	}
	logger.Warn("primary notification store unavailable, using fallback: %v", err)
	if ferr := r.fallback.Create(n); ferr != nil {
		return storesFailed("create notification", err, ferr)
	}
	return nil
}

func (r *FailoverNotificationRepository) GetList(recipientID string, offset, limit int) ([]domain.Notification, int64, error) {
	notifications, total, err := r.primary.GetList(recipientID, offset, limit)
	if !isStoreFailure(err) {
		return notifications, total, err
	}
	logger.Warn("primary notification store unavailable, using fallback: %v", err)
	notifications, total, ferr := r.fallback.GetList(recipientID, offset, limit)
	if ferr != nil {
		return nil, 0, storesFailed("list notifications", err, ferr)
	}
	return notifications, total, nil
}

func (r *FailoverNotificationRepository) GetUnreadCount(recipientID string) (int64, error) {
	count, err := r.primary.GetUnreadCount(recipientID)
	if !isStoreFailure(err) {
		return count, err
	}
	logger.Warn("primary notification store unavailable, using fallback: %v", err)
	count, ferr := r.fallback.GetUnreadCount(recipientID)
	if ferr != nil {
		return 0, storesFailed("count unread notifications", err, ferr)
	}
	return count, nil
}

func (r *FailoverNotificationRepository) FindByID(id int64) (*domain.Notification, error) {
	n, err := r.primary.FindByID(id)
	if !isStoreFailure(err) {
		return n, err
	}
	logger.Warn("primary notification store unavailable, using fallback: %v", err)
	n, ferr := r.fallback.FindByID(id)
	if ferr != nil {
		return nil, storesFailed("find notification", err, ferr)
	}
	return n, nil
}

func (r *FailoverNotificationRepository) MarkAsRead(id int64) error {
	err := r.primary.MarkAsRead(id)
	if !isStoreFailure(err) {
		return err
	}
	logger.Warn("primary notification store unavailable, using fallback: %v", err)
	if ferr := r.fallback.MarkAsRead(id); ferr != nil {
		return storesFailed("mark notification read", err, ferr)
	}
	return nil
}

func (r *FailoverNotificationRepository) MarkAllAsRead(recipientID string) error {
	err := r.primary.MarkAllAsRead(recipientID)
	if !isStoreFailure(err) {
		return err
	}
	logger.Warn("primary notification store unavailable, using fallback: %v", err)
	if ferr := r.fallback.MarkAllAsRead(recipientID); ferr != nil {
		return storesFailed("mark all notifications read", err, ferr)
	}
	return nil
}

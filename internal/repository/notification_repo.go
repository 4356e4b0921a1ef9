package repository

import (
	"errors"
	"time"

	"github.com/makerlink/makerlink-backend/internal/domain"
	"gorm.io/gorm"
)

// NotificationRepository is the notification store contract, shared by
// the primary GORM store and the file-backed fallback.
type NotificationRepository interface {
	Create(n *domain.Notification) error
	GetList(recipientID string, offset, limit int) ([]domain.Notification, int64, error)
	GetUnreadCount(recipientID string) (int64, error)
	FindByID(id int64) (*domain.Notification, error)
	MarkAsRead(id int64) error
	MarkAllAsRead(recipientID string) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository backed by GORM
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create inserts a new notification
func (r *notificationRepository) Create(n *domain.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	return r.db.Create(n).Error
}

// GetList returns paginated notifications for a recipient, newest first
func (r *notificationRepository) GetList(recipientID string, offset, limit int) ([]domain.Notification, int64, error) {
	var notifications []domain.Notification
	var total int64

	if err := r.db.Model(&domain.Notification{}).
		Where("recipient_id = ?", recipientID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

// GetUnreadCount returns the number of unread notifications for a recipient
func (r *notificationRepository) GetUnreadCount(recipientID string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

// FindByID returns a notification by ID, nil when not found
func (r *notificationRepository) FindByID(id int64) (*domain.Notification, error) {
	var notification domain.Notification
	err := r.db.Where("id = ?", id).First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &notification, nil
}

// MarkAsRead marks a notification as read
func (r *notificationRepository) MarkAsRead(id int64) error {
	return r.db.Model(&domain.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}

// MarkAllAsRead marks all notifications as read for a recipient
func (r *notificationRepository) MarkAllAsRead(recipientID string) error {
	return r.db.Model(&domain.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true).Error
}

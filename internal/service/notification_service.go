package service

import (
	"fmt"
	"math"
	"time"

	"github.com/makerlink/makerlink-backend/internal/common"
	"github.com/makerlink/makerlink-backend/internal/domain"
	"github.com/makerlink/makerlink-backend/internal/repository"
	"github.com/makerlink/makerlink-backend/internal/ws"
	"github.com/makerlink/makerlink-backend/pkg/logger"
)

// Pusher delivers a real-time event to a connected user. Best-effort:
// a user without an open channel simply misses the push.
type Pusher interface {
	SendToUser(userID string, event *ws.Event)
}

// NotificationService generates notifications for social actions and
// serves the durable pull path clients reconcile against.
type NotificationService interface {
	// Emit persists a notification for the event and attempts real-time
	// delivery. Self-notifications (actor == recipient) are suppressed
	// and return nil. Push failure never surfaces: the durable record
	// is the source of truth.
	Emit(recipientID string, event domain.NotificationEvent) (*domain.Notification, error)
	GetList(recipientID string, page, limit int) (*domain.NotificationListResponse, error)
	GetUnreadCount(recipientID string) (*domain.NotificationSummaryResponse, error)
	MarkAsRead(recipientID string, id int64) error
	MarkAllAsRead(recipientID string) error
}

type notificationService struct {
	repo   repository.NotificationRepository
	pusher Pusher
}

// NewNotificationService creates a new NotificationService. pusher may
// be nil, which disables real-time delivery entirely.
func NewNotificationService(repo repository.NotificationRepository, pusher Pusher) NotificationService {
	return &notificationService{repo: repo, pusher: pusher}
}

func (s *notificationService) Emit(recipientID string, event domain.NotificationEvent) (*domain.Notification, error) {
	if event.ActorRef() == recipientID {
		// Liking your own content notifies nobody
		return nil, nil
	}

	n := event.Row(recipientID)
	if err := s.repo.Create(n); err != nil {
		return nil, err
	}
	notificationsEmitted.WithLabelValues(string(n.Type)).Inc()

	if s.pusher != nil {
		s.pusher.SendToUser(recipientID, &ws.Event{
			Type:    ws.EventNotification,
			Payload: toItem(n),
		})
	}

	return n, nil
}

func (s *notificationService) GetList(recipientID string, page, limit int) (*domain.NotificationListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	offset := (page - 1) * limit
	notifications, total, err := s.repo.GetList(recipientID, offset, limit)
	if err != nil {
		return nil, err
	}

	unreadCount, err := s.repo.GetUnreadCount(recipientID)
	if err != nil {
		return nil, err
	}

	items := make([]domain.NotificationItem, len(notifications))
	for i := range notifications {
		items[i] = *toItem(&notifications[i])
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	return &domain.NotificationListResponse{
		Items:       items,
		Total:       total,
		UnreadCount: unreadCount,
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages,
	}, nil
}

func (s *notificationService) GetUnreadCount(recipientID string) (*domain.NotificationSummaryResponse, error) {
	count, err := s.repo.GetUnreadCount(recipientID)
	if err != nil {
		return nil, err
	}
	return &domain.NotificationSummaryResponse{TotalUnread: count}, nil
}

func (s *notificationService) MarkAsRead(recipientID string, id int64) error {
	n, err := s.repo.FindByID(id)
	if err != nil {
		return err
	}
	if n == nil {
		return fmt.Errorf("notification %d: %w", id, common.ErrNotFound)
	}
	if n.RecipientID != recipientID {
		return fmt.Errorf("notification %d: %w", id, common.ErrUnauthorized)
	}
	return s.repo.MarkAsRead(id)
}

func (s *notificationService) MarkAllAsRead(recipientID string) error {
	return s.repo.MarkAllAsRead(recipientID)
}

func toItem(n *domain.Notification) *domain.NotificationItem {
	return &domain.NotificationItem{
		ID:           n.ID,
		Type:         string(n.Type),
		ActorID:      n.ActorID,
		ActorName:    n.ActorName,
		Link:         n.Link,
		ContentTitle: n.ContentTitle,
		IsRead:       n.IsRead,
		CreatedAt:    n.CreatedAt.Format(time.RFC3339),
	}
}

// deliveryFailure classifies a failed notification emission. The
// caller's durable write already succeeded, so the failure never
// surfaces as a failed request.
func deliveryFailure(context string, err error) error {
	return fmt.Errorf("%s notification dropped: %v: %w", context, err, common.ErrDeliveryFailed)
}

// warnEmitFailure logs a failed notification emission. Used by callers
// whose primary write already succeeded and must not be reported as
// failed because of a secondary notification problem.
func warnEmitFailure(context string, err error) {
	logger.Warn("%v", deliveryFailure(context, err))
}

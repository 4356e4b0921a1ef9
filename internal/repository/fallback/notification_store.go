package fallback

import (
	"path/filepath"
	"sort"
	"time"

	"github.com/makerlink/makerlink-backend/internal/domain"
)

// notificationFile is the on-disk shape of the fallback notification store
type notificationFile struct {
	NextID        int64                 `json:"next_id"`
	Notifications []domain.Notification `json:"notifications"`
}

// NotificationStore is the degraded, file-backed notification store.
// Implements repository.NotificationRepository.
type NotificationStore struct {
	path string
	w    *writer
}

// NewNotificationStore creates a notification store under dir
func NewNotificationStore(dir string) (*NotificationStore, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	return &NotificationStore{
		path: filepath.Join(dir, "notifications.json"),
		w:    newWriter(),
	}, nil
}

// Close stops the store's writer goroutine
func (s *NotificationStore) Close() {
	s.w.Close()
}

func (s *NotificationStore) load() (*notificationFile, error) {
	f := &notificationFile{NextID: 1}
	if err := readJSON(s.path, f); err != nil {
		return nil, err
	}
	if f.NextID < 1 {
		f.NextID = 1
	}
	return f, nil
}

// Create inserts a new notification, assigning the next sequential ID
func (s *NotificationStore) Create(n *domain.Notification) error {
	return s.w.do(func() error {
		f, err := s.load()
		if err != nil {
			return err
		}
		n.ID = f.NextID
		f.NextID++
		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now()
		}
		f.Notifications = append(f.Notifications, *n)
		return writeJSON(s.path, f)
	})
}

// GetList returns paginated notifications for a recipient, newest first
func (s *NotificationStore) GetList(recipientID string, offset, limit int) ([]domain.Notification, int64, error) {
	var out []domain.Notification
	var total int64
	err := s.w.do(func() error {
		f, err := s.load()
		if err != nil {
			return err
		}
		var matched []domain.Notification
		for _, n := range f.Notifications {
			if n.RecipientID == recipientID {
				matched = append(matched, n)
			}
		}
		sort.Slice(matched, func(i, j int) bool {
			if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
				return matched[i].ID > matched[j].ID
			}
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		})
		total = int64(len(matched))
		if offset >= len(matched) {
			return nil
		}
		end := offset + limit
		if end > len(matched) {
			end = len(matched)
		}
		out = matched[offset:end]
		return nil
	})
	return out, total, err
}

// GetUnreadCount returns the number of unread notifications for a recipient
func (s *NotificationStore) GetUnreadCount(recipientID string) (int64, error) {
	var count int64
	err := s.w.do(func() error {
		f, err := s.load()
		if err != nil {
			return err
		}
		for _, n := range f.Notifications {
			if n.RecipientID == recipientID && !n.IsRead {
				count++
			}
		}
		return nil
	})
	return count, err
}

// FindByID returns a notification by ID, nil when not found
func (s *NotificationStore) FindByID(id int64) (*domain.Notification, error) {
	var out *domain.Notification
	err := s.w.do(func() error {
		f, err := s.load()
		if err != nil {
			return err
		}
		for i := range f.Notifications {
			if f.Notifications[i].ID == id {
				n := f.Notifications[i]
				out = &n
				return nil
			}
		}
		return nil
	})
	return out, err
}

// MarkAsRead marks a notification as read
func (s *NotificationStore) MarkAsRead(id int64) error {
	return s.w.do(func() error {
		f, err := s.load()
		if err != nil {
			return err
		}
		changed := false
		for i := range f.Notifications {
			if f.Notifications[i].ID == id && !f.Notifications[i].IsRead {
				f.Notifications[i].IsRead = true
				changed = true
			}
		}
		if !changed {
			return nil
		}
		return writeJSON(s.path, f)
	})
}

// MarkAllAsRead marks all notifications as read for a recipient
func (s *NotificationStore) MarkAllAsRead(recipientID string) error {
	return s.w.do(func() error {
		f, err := s.load()
		if err != nil {
			return err
		}
		changed := false
		for i := range f.Notifications {
			if f.Notifications[i].RecipientID == recipientID && !f.Notifications[i].IsRead {
				f.Notifications[i].IsRead = true
				changed = true
			}
		}
		if !changed {
			return nil
		}
		return writeJSON(s.path, f)
	})
}

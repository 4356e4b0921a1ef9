package fallback

import (
	"testing"
	"time"

	"github.com/makerlink/makerlink-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotificationStore(t *testing.T) *NotificationStore {
	t.Helper()
	store, err := NewNotificationStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func TestNotificationStore_ListNewestFirst(t *testing.T) {
	s := newTestNotificationStore(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, kind := range []domain.NotificationType{domain.NotificationFollow, domain.NotificationLike, domain.NotificationMessage} {
		n := &domain.Notification{
			RecipientID: "bob",
			ActorID:     "alice",
			Type:        kind,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.Create(n))
	}

	notifications, total, err := s.GetList("bob", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, domain.NotificationMessage, notifications[0].Type)
	assert.Equal(t, domain.NotificationFollow, notifications[2].Type)
}

func TestNotificationStore_ListFiltersRecipient(t *testing.T) {
	s := newTestNotificationStore(t)

	require.NoError(t, s.Create(&domain.Notification{RecipientID: "bob", Type: domain.NotificationLike}))
	require.NoError(t, s.Create(&domain.Notification{RecipientID: "carol", Type: domain.NotificationLike}))

	notifications, total, err := s.GetList("bob", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "bob", notifications[0].RecipientID)
}

func TestNotificationStore_UnreadCountAndMarkAll(t *testing.T) {
	s := newTestNotificationStore(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Create(&domain.Notification{RecipientID: "bob", Type: domain.NotificationComment}))
	}

	count, err := s.GetUnreadCount("bob")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	require.NoError(t, s.MarkAllAsRead("bob"))

	count, err = s.GetUnreadCount("bob")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// Marking again is a no-op, not an error
	require.NoError(t, s.MarkAllAsRead("bob"))
}

func TestNotificationStore_MarkAsReadByID(t *testing.T) {
	s := newTestNotificationStore(t)

	n := &domain.Notification{RecipientID: "bob", Type: domain.NotificationFollow}
	require.NoError(t, s.Create(n))

	require.NoError(t, s.MarkAsRead(n.ID))

	found, err := s.FindByID(n.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.IsRead)
}

func TestNotificationStore_FindByIDMissing(t *testing.T) {
	s := newTestNotificationStore(t)

	found, err := s.FindByID(404)
	require.NoError(t, err)
	assert.Nil(t, found)
}

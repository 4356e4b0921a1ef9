package service

import (
	"testing"
	"time"

	"github.com/makerlink/makerlink-backend/internal/common"
	"github.com/makerlink/makerlink-backend/internal/domain"
	"github.com/makerlink/makerlink-backend/internal/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockNotificationRepository is a mock implementation of NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(n *domain.Notification) error {
	args := m.Called(n)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetList(recipientID string, offset, limit int) ([]domain.Notification, int64, error) {
	args := m.Called(recipientID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepository) GetUnreadCount(recipientID string) (int64, error) {
	args := m.Called(recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) FindByID(id int64) (*domain.Notification, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkAsRead(id int64) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllAsRead(recipientID string) error {
	args := m.Called(recipientID)
	return args.Error(0)
}

// MockPusher is a mock implementation of Pusher
type MockPusher struct {
	mock.Mock
}

func (m *MockPusher) SendToUser(userID string, event *ws.Event) {
	m.Called(userID, event)
}

func TestEmit_SuppressesSelfNotification(t *testing.T) {
	repo := new(MockNotificationRepository)
	pusher := new(MockPusher)
	svc := NewNotificationService(repo, pusher)

	n, err := svc.Emit("alice", domain.LikeEvent{ActorID: "alice", ContentTitle: "My Project"})

	assert.NoError(t, err)
	assert.Nil(t, n)
	repo.AssertNotCalled(t, "Create", mock.Anything)
	pusher.AssertNotCalled(t, "SendToUser", mock.Anything, mock.Anything)
}

func TestEmit_PersistsThenPushes(t *testing.T) {
	repo := new(MockNotificationRepository)
	pusher := new(MockPusher)
	svc := NewNotificationService(repo, pusher)

	repo.On("Create", mock.AnythingOfType("*domain.Notification")).Return(nil)
	pusher.On("SendToUser", "bob", mock.AnythingOfType("*ws.Event")).Return()

	n, err := svc.Emit("bob", domain.LikeEvent{
		ActorID:      "alice",
		ActorName:    "Alice",
		ContentTitle: "Weather Station",
		Link:         "/projects/42",
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.NotificationLike, n.Type)
	assert.Equal(t, "bob", n.RecipientID)
	assert.Equal(t, "alice", n.ActorID)
	assert.Equal(t, "Weather Station", n.ContentTitle)
	assert.False(t, n.IsRead)

	pusher.AssertCalled(t, "SendToUser", "bob", mock.MatchedBy(func(e *ws.Event) bool {
		return e.Type == ws.EventNotification
	}))
}

func TestEmit_NoPusherStillPersists(t *testing.T) {
	repo := new(MockNotificationRepository)
	svc := NewNotificationService(repo, nil)

	repo.On("Create", mock.AnythingOfType("*domain.Notification")).Return(nil)

	// Push is a latency optimization; with no channel the durable
	// record is still created and reachable by pull.
	n, err := svc.Emit("bob", domain.FollowEvent{ActorID: "alice", ActorName: "Alice"})

	assert.NoError(t, err)
	assert.NotNil(t, n)
	repo.AssertCalled(t, "Create", mock.Anything)
}

func TestEmit_CreateFailureSurfaces(t *testing.T) {
	repo := new(MockNotificationRepository)
	pusher := new(MockPusher)
	svc := NewNotificationService(repo, pusher)

	repo.On("Create", mock.Anything).Return(assert.AnError)

	_, err := svc.Emit("bob", domain.CommentEvent{ActorID: "alice"})

	assert.Error(t, err)
	pusher.AssertNotCalled(t, "SendToUser", mock.Anything, mock.Anything)
}

func TestGetList_MapsItems(t *testing.T) {
	repo := new(MockNotificationRepository)
	svc := NewNotificationService(repo, nil)

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.On("GetList", "bob", 0, 20).Return([]domain.Notification{
		{ID: 2, RecipientID: "bob", ActorID: "alice", Type: domain.NotificationMessage, CreatedAt: created},
		{ID: 1, RecipientID: "bob", ActorID: "carol", Type: domain.NotificationFollow, CreatedAt: created.Add(-time.Hour)},
	}, int64(2), nil)
	repo.On("GetUnreadCount", "bob").Return(int64(2), nil)

	resp, err := svc.GetList("bob", 1, 20)

	assert.NoError(t, err)
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, "message", resp.Items[0].Type)
	assert.Equal(t, int64(2), resp.UnreadCount)
	assert.Equal(t, 1, resp.TotalPages)
}

func TestDeliveryFailureClassified(t *testing.T) {
	err := deliveryFailure("message", assert.AnError)

	assert.ErrorIs(t, err, common.ErrDeliveryFailed)
	assert.Contains(t, err.Error(), "message notification dropped")
}

func TestMarkAsRead_OwnershipEnforced(t *testing.T) {
	repo := new(MockNotificationRepository)
	svc := NewNotificationService(repo, nil)

	repo.On("FindByID", int64(7)).Return(&domain.Notification{ID: 7, RecipientID: "carol"}, nil)

	err := svc.MarkAsRead("bob", 7)

	assert.ErrorIs(t, err, common.ErrUnauthorized)
	repo.AssertNotCalled(t, "MarkAsRead", mock.Anything)
}

func TestMarkAsRead_NotFound(t *testing.T) {
	repo := new(MockNotificationRepository)
	svc := NewNotificationService(repo, nil)

	repo.On("FindByID", int64(99)).Return(nil, nil)

	err := svc.MarkAsRead("bob", 99)

	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMarkAsRead_Success(t *testing.T) {
	repo := new(MockNotificationRepository)
	svc := NewNotificationService(repo, nil)

	repo.On("FindByID", int64(7)).Return(&domain.Notification{ID: 7, RecipientID: "bob"}, nil)
	repo.On("MarkAsRead", int64(7)).Return(nil)

	err := svc.MarkAsRead("bob", 7)

	assert.NoError(t, err)
	repo.AssertCalled(t, "MarkAsRead", int64(7))
}

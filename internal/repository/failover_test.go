package repository

import (
	"net/http"
	"testing"

	"github.com/makerlink/makerlink-backend/internal/common"
	"github.com/makerlink/makerlink-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type stubMessageRepo struct {
	mock.Mock
}

func (m *stubMessageRepo) Append(msg *domain.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *stubMessageRepo) ListBetween(a, b string, page, limit int) ([]*domain.Message, int64, error) {
	args := m.Called(a, b, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.Message), args.Get(1).(int64), args.Error(2)
}

func (m *stubMessageRepo) MarkRead(receiverID, senderID string) (int64, error) {
	args := m.Called(receiverID, senderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *stubMessageRepo) ListConversations(viewerID string, page, limit int) ([]*domain.ConversationSummary, int64, error) {
	args := m.Called(viewerID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.ConversationSummary), args.Get(1).(int64), args.Error(2)
}

func TestFailover_PrimaryHealthySkipsFallback(t *testing.T) {
	primary := new(stubMessageRepo)
	fallback := new(stubMessageRepo)
	repo := NewFailoverMessageRepository(primary, fallback)

	primary.On("Append", mock.Anything).Return(nil)

	err := repo.Append(&domain.Message{SenderID: "a", ReceiverID: "b", Content: "hi"})

	assert.NoError(t, err)
	fallback.AssertNotCalled(t, "Append", mock.Anything)
}

func TestFailover_PrimaryFailureUsesFallback(t *testing.T) {
	primary := new(stubMessageRepo)
	fallback := new(stubMessageRepo)
	repo := NewFailoverMessageRepository(primary, fallback)

	primary.On("Append", mock.Anything).Return(assert.AnError)
	fallback.On("Append", mock.Anything).Return(nil)

	err := repo.Append(&domain.Message{SenderID: "a", ReceiverID: "b", Content: "hi"})

	assert.NoError(t, err)
	fallback.AssertCalled(t, "Append", mock.Anything)
}

func TestFailover_BothFailingSurfacesError(t *testing.T) {
	primary := new(stubMessageRepo)
	fallback := new(stubMessageRepo)
	repo := NewFailoverMessageRepository(primary, fallback)

	primary.On("Append", mock.Anything).Return(assert.AnError)
	fallback.On("Append", mock.Anything).Return(assert.AnError)

	// A lost message must never be reported as sent
	err := repo.Append(&domain.Message{SenderID: "a", ReceiverID: "b", Content: "hi"})

	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, common.HTTPStatus(err))
}

func TestFailover_SelectionIsPerCall(t *testing.T) {
	primary := new(stubMessageRepo)
	fallback := new(stubMessageRepo)
	repo := NewFailoverMessageRepository(primary, fallback)

	// First call fails over, second call finds the primary recovered
	primary.On("MarkRead", "b", "a").Return(int64(0), assert.AnError).Once()
	fallback.On("MarkRead", "b", "a").Return(int64(1), nil).Once()
	primary.On("MarkRead", "b", "a").Return(int64(2), nil).Once()

	count, err := repo.MarkRead("b", "a")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = repo.MarkRead("b", "a")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)
	fallback.AssertNumberOfCalls(t, "MarkRead", 1)
}

func TestFailover_NotFoundIsNotAStoreFailure(t *testing.T) {
	primary := new(stubMessageRepo)
	fallback := new(stubMessageRepo)
	repo := NewFailoverMessageRepository(primary, fallback)

	primary.On("ListBetween", "a", "b", 1, 10).Return(nil, int64(0), gorm.ErrRecordNotFound)

	_, _, err := repo.ListBetween("a", "b", 1, 10)

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	fallback.AssertNotCalled(t, "ListBetween", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

package fallback

import (
	"path/filepath"
	"sort"
	"time"

	"github.com/makerlink/makerlink-backend/internal/domain"
)

// messageFile is the on-disk shape of the fallback conversation store
type messageFile struct {
	NextID   int64            `json:"next_id"`
	Messages []domain.Message `json:"messages"`
}

// MessageStore is the degraded, file-backed conversation store.
// Implements repository.MessageRepository.
type MessageStore struct {
	path string
	w    *writer
}

// NewMessageStore creates a message store under dir
func NewMessageStore(dir string) (*MessageStore, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	return &MessageStore{
		path: filepath.Join(dir, "messages.json"),
		w:    newWriter(),
	}, nil
}

// Close stops the store's writer goroutine
func (s *MessageStore) Close() {
	s.w.Close()
}

func (s *MessageStore) load() (*messageFile, error) {
	f := &messageFile{NextID: 1}
	if err := readJSON(s.path, f); err != nil {
		return nil, err
	}
	if f.NextID < 1 {
		f.NextID = 1
	}
	return f, nil
}

// Append persists one message, assigning the next sequential ID
func (s *MessageStore) Append(msg *domain.Message) error {
	return s.w.do(func() error {
		f, err := s.load()
		if err != nil {
			return err
		}
		msg.ID = f.NextID
		f.NextID++
		msg.PairKey = domain.PairKey(msg.SenderID, msg.ReceiverID)
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = time.Now()
		}
		f.Messages = append(f.Messages, *msg)
		return writeJSON(s.path, f)
	})
}

// ListBetween returns the page of messages between a and b, oldest first
func (s *MessageStore) ListBetween(a, b string, page, limit int) ([]*domain.Message, int64, error) {
	var out []*domain.Message
	var total int64
	err := s.w.do(func() error {
		f, err := s.load()
		if err != nil {
			return err
		}
		pairKey := domain.PairKey(a, b)
		var matched []domain.Message
		for _, m := range f.Messages {
			if m.PairKey == pairKey {
				matched = append(matched, m)
			}
		}
		sortByCreation(matched)
		total = int64(len(matched))
		out = pageOf(matched, page, limit)
		return nil
	})
	return out, total, err
}

// MarkRead transitions unread messages from senderID to receiverID
func (s *MessageStore) MarkRead(receiverID, senderID string) (int64, error) {
	var count int64
	err := s.w.do(func() error {
		f, err := s.load()
		if err != nil {
			return err
		}
		for i := range f.Messages {
			m := &f.Messages[i]
			if m.ReceiverID == receiverID && m.SenderID == senderID && !m.IsRead {
				m.IsRead = true
				count++
			}
		}
		if count == 0 {
			return nil
		}
		return writeJSON(s.path, f)
	})
	return count, err
}

// ListConversations derives the viewer's conversation summaries
func (s *MessageStore) ListConversations(viewerID string, page, limit int) ([]*domain.ConversationSummary, int64, error) {
	var out []*domain.ConversationSummary
	var total int64
	err := s.w.do(func() error {
		f, err := s.load()
		if err != nil {
			return err
		}

		latest := make(map[string]domain.Message)
		unread := make(map[string]int64)
		for _, m := range f.Messages {
			if m.SenderID != viewerID && m.ReceiverID != viewerID {
				continue
			}
			partner := m.SenderID
			if partner == viewerID {
				partner = m.ReceiverID
			}
			if prev, ok := latest[partner]; !ok || m.ID > prev.ID {
				latest[partner] = m
			}
			if m.ReceiverID == viewerID && !m.IsRead {
				unread[m.SenderID]++
			}
		}

		summaries := make([]*domain.ConversationSummary, 0, len(latest))
		for partner, m := range latest {
			summaries = append(summaries, &domain.ConversationSummary{
				PartnerID:     partner,
				LastMessage:   m.Content,
				LastMessageAt: m.CreatedAt,
				UnreadCount:   unread[partner],
			})
		}
		sort.Slice(summaries, func(i, j int) bool {
			if summaries[i].LastMessageAt.Equal(summaries[j].LastMessageAt) {
				return summaries[i].PartnerID < summaries[j].PartnerID
			}
			return summaries[i].LastMessageAt.After(summaries[j].LastMessageAt)
		})

		total = int64(len(summaries))
		out = pageOfSummaries(summaries, page, limit)
		return nil
	})
	return out, total, err
}

// sortByCreation orders messages by created_at with ID as tiebreak,
// the same total order the primary store uses.
func sortByCreation(messages []domain.Message) {
	sort.Slice(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].ID < messages[j].ID
		}
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
}

func pageOf(messages []domain.Message, page, limit int) []*domain.Message {
	start := (page - 1) * limit
	if start >= len(messages) {
		return nil
	}
	end := start + limit
	if end > len(messages) {
		end = len(messages)
	}
	out := make([]*domain.Message, 0, end-start)
	for i := start; i < end; i++ {
		m := messages[i]
		out = append(out, &m)
	}
	return out
}

func pageOfSummaries(summaries []*domain.ConversationSummary, page, limit int) []*domain.ConversationSummary {
	start := (page - 1) * limit
	if start >= len(summaries) {
		return nil
	}
	end := start + limit
	if end > len(summaries) {
		end = len(summaries)
	}
	return summaries[start:end]
}

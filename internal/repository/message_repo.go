package repository

import (
	"time"

	"github.com/makerlink/makerlink-backend/internal/domain"
	"gorm.io/gorm"
)

// MessageRepository is the conversation store contract. Implemented by
// the primary GORM store and by the degraded file-backed fallback.
type MessageRepository interface {
	// Append persists one message. The caller has already validated
	// content and authorization; a failure here must surface, never be
	// swallowed as success.
	Append(msg *domain.Message) error
	// ListBetween returns the page of messages exchanged between a and b,
	// oldest first. Ordering key is created_at with id as tiebreak so the
	// total order stays stable across pagination boundaries.
	ListBetween(a, b string, page, limit int) ([]*domain.Message, int64, error)
	// MarkRead bulk-transitions every unread message sent by senderID to
	// receiverID and returns how many rows changed. Idempotent.
	MarkRead(receiverID, senderID string) (int64, error)
	// ListConversations derives the viewer's conversation summaries,
	// most recent last-message first. Computed per call, never cached.
	ListConversations(viewerID string, page, limit int) ([]*domain.ConversationSummary, int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository backed by GORM
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Append(msg *domain.Message) error {
	msg.PairKey = domain.PairKey(msg.SenderID, msg.ReceiverID)
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	return r.db.Create(msg).Error
}

func (r *messageRepository) ListBetween(a, b string, page, limit int) ([]*domain.Message, int64, error) {
	pairKey := domain.PairKey(a, b)

	var total int64
	if err := r.db.Model(&domain.Message{}).
		Where("pair_key = ?", pairKey).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []*domain.Message
	offset := (page - 1) * limit
	err := r.db.Where("pair_key = ?", pairKey).
		Order("created_at ASC, id ASC").
		Offset(offset).Limit(limit).
		Find(&messages).Error
	return messages, total, err
}

func (r *messageRepository) MarkRead(receiverID, senderID string) (int64, error) {
	result := r.db.Model(&domain.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND is_read = ?", receiverID, senderID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (r *messageRepository) ListConversations(viewerID string, page, limit int) ([]*domain.ConversationSummary, int64, error) {
	var total int64
	if err := r.db.Model(&domain.Message{}).
		Where("sender_id = ? OR receiver_id = ?", viewerID, viewerID).
		Distinct("pair_key").
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Latest message per partner pair: MAX(id) is the insertion-order
	// tiebreak, so it is also the most recent message of the pair.
	var latest []*domain.Message
	offset := (page - 1) * limit
	err := r.db.Raw(`
		SELECT m.* FROM messages m
		JOIN (
			SELECT MAX(id) AS max_id FROM messages
			WHERE sender_id = ? OR receiver_id = ?
			GROUP BY pair_key
		) t ON m.id = t.max_id
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT ? OFFSET ?`, viewerID, viewerID, limit, offset).
		Scan(&latest).Error
	if err != nil {
		return nil, 0, err
	}

	unread, err := r.unreadBySender(viewerID)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]*domain.ConversationSummary, len(latest))
	for i, m := range latest {
		partnerID := m.SenderID
		if partnerID == viewerID {
			partnerID = m.ReceiverID
		}
		summaries[i] = &domain.ConversationSummary{
			PartnerID:     partnerID,
			LastMessage:   m.Content,
			LastMessageAt: m.CreatedAt,
			UnreadCount:   unread[partnerID],
		}
	}
	return summaries, total, nil
}

// unreadBySender counts unread messages addressed to the viewer,
// grouped by who sent them.
func (r *messageRepository) unreadBySender(viewerID string) (map[string]int64, error) {
	type row struct {
		SenderID string
		Count    int64
	}
	var rows []row
	err := r.db.Model(&domain.Message{}).
		Select("sender_id, COUNT(*) AS count").
		Where("receiver_id = ? AND is_read = ?", viewerID, false).
		Group("sender_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.SenderID] = r.Count
	}
	return counts, nil
}

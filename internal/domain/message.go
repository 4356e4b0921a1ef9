package domain

import "time"

// Message represents one direct message between two members.
// Immutable after creation except for the read flag.
type Message struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SenderID   string    `gorm:"column:sender_id;size:50;index" json:"sender_id"`
	ReceiverID string    `gorm:"column:receiver_id;size:50;index" json:"receiver_id"`
	PairKey    string    `gorm:"column:pair_key;size:101;index" json:"-"`
	Content    string    `gorm:"column:content;type:text" json:"content"`
	RefKind    string    `gorm:"column:ref_kind;size:30" json:"ref_kind,omitempty"`
	RefID      string    `gorm:"column:ref_id;size:50" json:"ref_id,omitempty"`
	RefTitle   string    `gorm:"column:ref_title;size:255" json:"ref_title,omitempty"`
	IsRead     bool      `gorm:"column:is_read;default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

// PairKey returns the canonical key for the unordered pair {a, b}.
// Both directions of a conversation share one key, which is the
// partner-pair index used by conversation queries.
func PairKey(a, b string) string {
	if a < b {
		return a + ":" + b
	}
	return b + ":" + a
}

// ContentRef is an opaque reference to shared external content
// (a project, post or comment). Carried with a message, never
// interpreted by this core.
type ContentRef struct {
	Kind  string `json:"kind" binding:"required"`
	ID    string `json:"id" binding:"required"`
	Title string `json:"title,omitempty"`
}

// SendMessageRequest represents a send message request
type SendMessageRequest struct {
	ToUserID string      `json:"to_user_id" binding:"required"`
	Content  string      `json:"content" binding:"required"`
	Ref      *ContentRef `json:"ref,omitempty"`
}

// MessageResponse represents a message in API responses
type MessageResponse struct {
	ID         int64       `json:"id"`
	FromUserID string      `json:"from_user_id"`
	ToUserID   string      `json:"to_user_id"`
	Content    string      `json:"content"`
	Ref        *ContentRef `json:"ref,omitempty"`
	IsRead     bool        `json:"is_read"`
	CreatedAt  string      `json:"created_at"`
}

// ToResponse converts Message to MessageResponse
func (m *Message) ToResponse() *MessageResponse {
	resp := &MessageResponse{
		ID:         m.ID,
		FromUserID: m.SenderID,
		ToUserID:   m.ReceiverID,
		Content:    m.Content,
		IsRead:     m.IsRead,
		CreatedAt:  m.CreatedAt.Format(time.RFC3339),
	}
	if m.RefKind != "" {
		resp.Ref = &ContentRef{Kind: m.RefKind, ID: m.RefID, Title: m.RefTitle}
	}
	return resp
}

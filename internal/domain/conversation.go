package domain

import "time"

// ConversationSummary is the per-viewer view of one conversation:
// the partner, the most recent message in either direction, and how
// many messages from that partner the viewer has not read yet.
// Always computed from the message set, never stored.
type ConversationSummary struct {
	PartnerID     string    `json:"partner_id"`
	PartnerName   string    `json:"partner_name,omitempty"`
	LastMessage   string    `json:"last_message"`
	LastMessageAt time.Time `json:"last_message_at"`
	UnreadCount   int64     `json:"unread_count"`
}

// ConversationResponse is the payload for fetching one conversation
type ConversationResponse struct {
	Messages []*MessageResponse `json:"messages"`
	Partner  *MemberResponse    `json:"partner"`
}

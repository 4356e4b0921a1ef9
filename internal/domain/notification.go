package domain

import "time"

// NotificationType identifies what kind of action produced a notification
type NotificationType string

const (
	NotificationFollow  NotificationType = "follow"
	NotificationPost    NotificationType = "post"
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationMessage NotificationType = "message"
)

// Notification represents a stored user notification
type Notification struct {
	ID           int64            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RecipientID  string           `gorm:"column:recipient_id;size:50;index" json:"recipient_id"`
	ActorID      string           `gorm:"column:actor_id;size:50" json:"actor_id"`
	ActorName    string           `gorm:"column:actor_name;size:100" json:"actor_name,omitempty"`
	Type         NotificationType `gorm:"column:type;size:20" json:"type"`
	Link         string           `gorm:"column:link;size:255" json:"link,omitempty"`
	ContentTitle string           `gorm:"column:content_title;size:255" json:"content_title,omitempty"`
	IsRead       bool             `gorm:"column:is_read;default:false" json:"is_read"`
	CreatedAt    time.Time        `gorm:"column:created_at" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// NotificationEvent is the sealed set of actions that produce a
// notification. Each variant carries only the fields relevant to its
// type; Row projects the variant onto the stored record.
type NotificationEvent interface {
	Kind() NotificationType
	ActorRef() string
	Row(recipientID string) *Notification
}

// FollowEvent someone followed the recipient
type FollowEvent struct {
	ActorID   string
	ActorName string
}

func (e FollowEvent) Kind() NotificationType { return NotificationFollow }
func (e FollowEvent) ActorRef() string       { return e.ActorID }

func (e FollowEvent) Row(recipientID string) *Notification {
	return &Notification{
		RecipientID: recipientID,
		ActorID:     e.ActorID,
		ActorName:   e.ActorName,
		Type:        NotificationFollow,
		Link:        "/profile/" + e.ActorID,
	}
}

// PostEvent someone the recipient follows published new content
type PostEvent struct {
	ActorID   string
	ActorName string
	PostID    string
	Title     string
}

func (e PostEvent) Kind() NotificationType { return NotificationPost }
func (e PostEvent) ActorRef() string       { return e.ActorID }

func (e PostEvent) Row(recipientID string) *Notification {
	return &Notification{
		RecipientID:  recipientID,
		ActorID:      e.ActorID,
		ActorName:    e.ActorName,
		Type:         NotificationPost,
		Link:         "/posts/" + e.PostID,
		ContentTitle: e.Title,
	}
}

// LikeEvent someone liked the recipient's content
type LikeEvent struct {
	ActorID      string
	ActorName    string
	ContentTitle string
	Link         string
}

func (e LikeEvent) Kind() NotificationType { return NotificationLike }
func (e LikeEvent) ActorRef() string       { return e.ActorID }

func (e LikeEvent) Row(recipientID string) *Notification {
	return &Notification{
		RecipientID:  recipientID,
		ActorID:      e.ActorID,
		ActorName:    e.ActorName,
		Type:         NotificationLike,
		Link:         e.Link,
		ContentTitle: e.ContentTitle,
	}
}

// CommentEvent someone commented on the recipient's content
type CommentEvent struct {
	ActorID      string
	ActorName    string
	ContentTitle string
	Link         string
}

func (e CommentEvent) Kind() NotificationType { return NotificationComment }
func (e CommentEvent) ActorRef() string       { return e.ActorID }

func (e CommentEvent) Row(recipientID string) *Notification {
	return &Notification{
		RecipientID:  recipientID,
		ActorID:      e.ActorID,
		ActorName:    e.ActorName,
		Type:         NotificationComment,
		Link:         e.Link,
		ContentTitle: e.ContentTitle,
	}
}

// MessageEvent someone sent the recipient a direct message
type MessageEvent struct {
	ActorID   string
	ActorName string
}

func (e MessageEvent) Kind() NotificationType { return NotificationMessage }
func (e MessageEvent) ActorRef() string       { return e.ActorID }

func (e MessageEvent) Row(recipientID string) *Notification {
	return &Notification{
		RecipientID: recipientID,
		ActorID:     e.ActorID,
		ActorName:   e.ActorName,
		Type:        NotificationMessage,
		Link:        "/messages/with/" + e.ActorID,
	}
}

// NotificationSummaryResponse represents unread count response
type NotificationSummaryResponse struct {
	TotalUnread int64 `json:"total_unread"`
}

// NotificationItem represents a single notification in list responses
type NotificationItem struct {
	ID           int64  `json:"id"`
	Type         string `json:"type"`
	ActorID      string `json:"actor_id,omitempty"`
	ActorName    string `json:"actor_name,omitempty"`
	Link         string `json:"link,omitempty"`
	ContentTitle string `json:"content_title,omitempty"`
	IsRead       bool   `json:"is_read"`
	CreatedAt    string `json:"created_at"`
}

// NotificationListResponse represents notification list response
type NotificationListResponse struct {
	Items       []NotificationItem `json:"items"`
	Total       int64              `json:"total"`
	UnreadCount int64              `json:"unread_count"`
	Page        int                `json:"page"`
	Limit       int                `json:"limit"`
	TotalPages  int                `json:"total_pages"`
}

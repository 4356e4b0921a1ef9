package domain

import "time"

// Member represents a user identity. Owned by the identity subsystem;
// this core only reads it to resolve recipients and display names.
type Member struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"column:user_id;size:50;uniqueIndex" json:"user_id"`
	Nickname  string    `gorm:"column:nickname;size:100" json:"nickname"`
	AvatarURL string    `gorm:"column:avatar_url;size:255" json:"avatar_url,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Member) TableName() string {
	return "members"
}

// MemberResponse represents a member in API responses
type MemberResponse struct {
	UserID    string `json:"user_id"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// ToResponse converts Member to MemberResponse
func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		UserID:    m.UserID,
		Nickname:  m.Nickname,
		AvatarURL: m.AvatarURL,
	}
}

package domain

import "time"

// Follow is a directed follower → following edge. Owned by the social
// graph subsystem; this core only reads it for the mutual-follow
// messaging gate.
type Follow struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	FollowerID  string    `gorm:"column:follower_id;size:50;index:idx_follow_edge,unique" json:"follower_id"`
	FollowingID string    `gorm:"column:following_id;size:50;index:idx_follow_edge,unique" json:"following_id"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Follow) TableName() string {
	return "follows"
}

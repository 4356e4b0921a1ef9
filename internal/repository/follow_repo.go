package repository

import (
	"github.com/makerlink/makerlink-backend/internal/domain"
	"gorm.io/gorm"
)

// FollowRepository read-only access to the follow graph. The follows
// table is owned by the social graph subsystem; this core only checks
// edges for the messaging gate.
type FollowRepository interface {
	// Exists reports whether follower follows following.
	Exists(followerID, followingID string) (bool, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new FollowRepository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Exists checks a single directed follow edge
func (r *followRepository) Exists(followerID, followingID string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

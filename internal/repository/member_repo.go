package repository

import (
	"github.com/makerlink/makerlink-backend/internal/domain"
	"gorm.io/gorm"
)

// MemberRepository read-only member lookup. The member table is owned
// by the identity subsystem.
type MemberRepository interface {
	FindByUserID(userID string) (*domain.Member, error)
}

type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// FindByUserID finds a member by user ID
func (r *memberRepository) FindByUserID(userID string) (*domain.Member, error) {
	var member domain.Member
	err := r.db.Where("user_id = ?", userID).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

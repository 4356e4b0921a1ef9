package migration

import (
	"github.com/makerlink/makerlink-backend/internal/domain"
	"gorm.io/gorm"
)

// Run auto-migrates the tables owned by the messaging core. The
// members and follows tables belong to the identity and social-graph
// subsystems and are only read here, so they are not migrated.
func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Message{},
		&domain.Notification{},
	)
}

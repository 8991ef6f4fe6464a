package data

import (
	"fmt"

	"github.com/stake-plus/ideabox/src/ideas"
	"gorm.io/gorm"
)

var allModels = []interface{}{
	&ideas.Idea{},
	&ideas.Actor{},
	&ideas.Vote{},
	&ideas.ServerConfig{},
	&Setting{},
}

// Migrate creates or updates every table, including the unique (idea_id, user_id)
// index on votes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

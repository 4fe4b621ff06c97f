package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/trio-connect/internal/db"
)

// BlockRepository stores directed (blocker, blocked) suppression edges.
type BlockRepository struct {
	db *gorm.DB
}

// NewBlockRepository creates a new repository bound to the given DB connection.
func NewBlockRepository(database *gorm.DB) *BlockRepository {
	return &BlockRepository{db: database}
}

// Create inserts the edge if absent. Returns false when it already existed.
func (r *BlockRepository) Create(ctx context.Context, blockerID, blockedID int64) (bool, error) {
	block := db.Block{BlockerID: blockerID, BlockedID: blockedID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "blocker_id"}, {Name: "blocked_id"}},
			DoNothing: true,
		}).
		Create(&block)
	return res.RowsAffected > 0, res.Error
}

// Exists checks whether blockerID blocked blockedID.
func (r *BlockRepository) Exists(ctx context.Context, blockerID, blockedID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Block{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&count).Error
	return count > 0, err
}

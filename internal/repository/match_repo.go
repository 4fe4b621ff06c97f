package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/trio-connect/internal/db"
)

// MatchRepository stores canonical (lo, hi) pairings and their unlock flags.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// Canonical orders a pair so the smaller id comes first.
func Canonical(a, b int64) (int64, int64) {
	if a < b {
		return a, b
	}
	return b, a
}

// CreateIfAbsent inserts the match for the canonical pair unless it exists.
//
// Behavior:
//   - Insert-if-absent on the unique (user1_id, user2_id) index, so racing
//     reciprocal accepts end with exactly one row.
//   - Always returns the stored row; created reports whether this call inserted it.
//   - An existing row keeps its original purpose.
func (r *MatchRepository) CreateIfAbsent(ctx context.Context, a, b int64, purpose string) (*db.Match, bool, error) {
	lo, hi := Canonical(a, b)
	m := db.Match{User1ID: lo, User2ID: hi, Purpose: purpose}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user1_id"}, {Name: "user2_id"}},
			DoNothing: true,
		}).
		Create(&m)
	if res.Error != nil {
		return nil, false, res.Error
	}

	stored, err := r.FindPair(ctx, lo, hi)
	if err != nil {
		return nil, false, err
	}
	return stored, res.RowsAffected > 0, nil
}

// FindPair looks up the match for two users in either order.
func (r *MatchRepository) FindPair(ctx context.Context, a, b int64) (*db.Match, error) {
	lo, hi := Canonical(a, b)
	var m db.Match
	if err := r.db.WithContext(ctx).Where("user1_id = ? AND user2_id = ?", lo, hi).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// Get loads a match by id.
func (r *MatchRepository) Get(ctx context.Context, id uint64) (*db.Match, error) {
	var m db.Match
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// SetUnlocked sets userID's unlock flag if it is still false.
// Returns false when the flag was already set (or userID is not a participant).
func (r *MatchRepository) SetUnlocked(ctx context.Context, m *db.Match, userID int64) (bool, error) {
	if _, ok := m.Other(userID); !ok {
		return false, nil
	}
	column := m.UnlockColumn(userID)
	res := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("id = ? AND "+column+" = ?", m.ID, false).
		Update(column, true)
	return res.RowsAffected > 0, res.Error
}

// ListForUser returns all matches userID takes part in, newest first.
func (r *MatchRepository) ListForUser(ctx context.Context, userID int64) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&matches).Error
	return matches, err
}

// Count returns the total number of matches.
func (r *MatchRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Match{}).Count(&count).Error
	return count, err
}

package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/trio-connect/internal/db"
)

// PaymentRepository keeps one receipt per provider charge.
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new repository bound to the given DB connection.
func NewPaymentRepository(database *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: database}
}

// Record stores the receipt unless the charge id was already seen.
// Returns false for a replayed charge.
func (r *PaymentRepository) Record(ctx context.Context, p *db.UnlockPayment) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "charge_id"}},
			DoNothing: true,
		}).
		Create(p)
	return res.RowsAffected > 0, res.Error
}

// ListForMatch returns receipts for a match, oldest first.
func (r *PaymentRepository) ListForMatch(ctx context.Context, matchID uint64) ([]db.UnlockPayment, error) {
	var payments []db.UnlockPayment
	err := r.db.WithContext(ctx).Where("match_id = ?", matchID).Order("id ASC").Find(&payments).Error
	return payments, err
}

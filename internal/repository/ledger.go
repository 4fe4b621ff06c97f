package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/trio-connect/internal/db"
)

// Ledger groups the entity repositories over one connection or one transaction.
//
// Every multi-row invariant (match creation, unlock, referral credit, cascading
// delete) is written through a Ledger handed out by Atomic, so the transaction
// boundary is visible at the call site.
type Ledger struct {
	db *gorm.DB

	Users    *UserRepository
	Blocks   *BlockRepository
	Requests *RequestRepository
	Matches  *MatchRepository
	Reports  *ReportRepository
	Payments *PaymentRepository
}

// NewLedger binds all repositories to the given DB handle.
func NewLedger(database *gorm.DB) *Ledger {
	return &Ledger{
		db:       database,
		Users:    NewUserRepository(database),
		Blocks:   NewBlockRepository(database),
		Requests: NewRequestRepository(database),
		Matches:  NewMatchRepository(database),
		Reports:  NewReportRepository(database),
		Payments: NewPaymentRepository(database),
	}
}

// Atomic runs fn inside a single transaction. Returning an error from fn rolls
// back everything written through tx.
func (l *Ledger) Atomic(ctx context.Context, fn func(tx *Ledger) error) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewLedger(tx))
	})
}

// DeleteUserCascade removes a user and every block, request, match, report and
// unlock payment that references them. Call it on a Ledger from Atomic.
func (l *Ledger) DeleteUserCascade(ctx context.Context, userID int64) (bool, error) {
	q := l.db.WithContext(ctx)

	if err := q.Where("blocker_id = ? OR blocked_id = ?", userID, userID).Delete(&db.Block{}).Error; err != nil {
		return false, err
	}
	if err := q.Where("requester_id = ? OR target_id = ?", userID, userID).Delete(&db.Request{}).Error; err != nil {
		return false, err
	}
	if err := q.Where("match_id IN (?)",
		q.Model(&db.Match{}).Select("id").Where("user1_id = ? OR user2_id = ?", userID, userID),
	).Delete(&db.UnlockPayment{}).Error; err != nil {
		return false, err
	}
	if err := q.Where("user1_id = ? OR user2_id = ?", userID, userID).Delete(&db.Match{}).Error; err != nil {
		return false, err
	}
	if err := q.Where("reporter_id = ? OR reported_id = ?", userID, userID).Delete(&db.Report{}).Error; err != nil {
		return false, err
	}

	res := q.Delete(&db.User{}, userID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

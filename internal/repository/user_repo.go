package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/trio-connect/internal/db"
)

// UserRepository provides data access for profiles and their credit counters.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// Get loads a user by id. Returns gorm.ErrRecordNotFound when absent.
func (r *UserRepository) Get(ctx context.Context, id int64) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetForUpdate loads a user and locks the row until the surrounding transaction ends.
// sqlite ignores the locking clause; its single writer gives the same guarantee.
func (r *UserRepository) GetForUpdate(ctx context.Context, id int64) (*db.User, error) {
	var u db.User
	q := r.db.WithContext(ctx)
	if q.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByHandle looks a user up by handle (without the leading @).
func (r *UserRepository) FindByHandle(ctx context.Context, handle string) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).Where("handle = ?", handle).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Upsert creates the user on first contact (unregistered) or refreshes the
// display name and handle on later contacts. Nothing else is touched.
func (r *UserRepository) Upsert(ctx context.Context, id int64, name string, handle *string) (*db.User, error) {
	u := db.User{ID: id, Name: name, Handle: handle}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "handle", "updated_at"}),
		}).
		Create(&u).Error
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// UpdateFields writes the given columns on one user.
func (r *UserRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetReferredByOnce records the referrer only if none is recorded yet.
// Returns false when a referrer was already set.
func (r *UserRepository) SetReferredByOnce(ctx context.Context, id, referrerID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ? AND referred_by IS NULL", id).
		Update("referred_by", referrerID)
	return res.RowsAffected > 0, res.Error
}

// MarkRegistered flips registered false→true. Returns false if already registered.
func (r *UserRepository) MarkRegistered(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ? AND registered = ?", id, false).
		Update("registered", true)
	return res.RowsAffected > 0, res.Error
}

// MarkReferralCredited flips referral_credited false→true. Returns false if it
// was already set, which is how duplicate crediting is prevented.
func (r *UserRepository) MarkReferralCredited(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ? AND referral_credited = ?", id, false).
		Update("referral_credited", true)
	return res.RowsAffected > 0, res.Error
}

// IncrementReferralCount adds one successful referral and returns the new count.
// Must run inside a transaction so the read sees exactly this increment.
func (r *UserRepository) IncrementReferralCount(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", id).
		Update("referral_count", gorm.Expr("referral_count + ?", 1))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", id).
		Pluck("referral_count", &count).Error
	return count, err
}

// AddFreeUnlocks credits n free unlocks.
func (r *UserRepository) AddFreeUnlocks(ctx context.Context, id int64, n int64) error {
	return r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", id).
		Update("free_unlocks", gorm.Expr("free_unlocks + ?", n)).Error
}

// ConsumeFreeUnlock decrements the balance by one if it is positive.
// Returns false (and changes nothing) when no credit is left.
func (r *UserRepository) ConsumeFreeUnlock(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ? AND free_unlocks >= ?", id, 1).
		Update("free_unlocks", gorm.Expr("free_unlocks - ?", 1))
	return res.RowsAffected > 0, res.Error
}

// Browsable returns registered users that userID may be shown, ordered by id.
//
// Excluded:
//   - userID itself
//   - users userID blocked
//   - targets of userID's Pending or Accepted requests
//   - requesters with a Pending request to userID
//   - users already matched with userID
//
// gender == nil means no gender filter.
func (r *UserRepository) Browsable(ctx context.Context, userID int64, gender *string) ([]db.User, error) {
	query := r.db.WithContext(ctx).
		Model(&db.User{}).
		Select("id", "gender", "latitude", "longitude").
		Where("registered = ? AND id <> ?", true, userID).
		Where(`NOT EXISTS (
				SELECT 1 FROM blocks b
				WHERE b.blocker_id = ? AND b.blocked_id = users.id
			)`, userID).
		Where(`NOT EXISTS (
				SELECT 1 FROM requests o
				WHERE o.requester_id = ? AND o.target_id = users.id AND o.status IN ?
			)`, userID, []string{db.RequestPending, db.RequestAccepted}).
		Where(`NOT EXISTS (
				SELECT 1 FROM requests i
				WHERE i.target_id = ? AND i.requester_id = users.id AND i.status = ?
			)`, userID, db.RequestPending).
		Where(`NOT EXISTS (
				SELECT 1 FROM matches m
				WHERE (m.user1_id = ? AND m.user2_id = users.id)
				   OR (m.user2_id = ? AND m.user1_id = users.id)
			)`, userID, userID).
		Order("id ASC")

	if gender != nil {
		query = query.Where("gender = ?", *gender)
	}

	var users []db.User
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// RegisteredIDs lists registered user ids, optionally narrowed to one gender.
func (r *UserRepository) RegisteredIDs(ctx context.Context, gender *string) ([]int64, error) {
	query := r.db.WithContext(ctx).Model(&db.User{}).Where("registered = ?", true).Order("id ASC")
	if gender != nil {
		query = query.Where("gender = ?", *gender)
	}
	var ids []int64
	if err := query.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Count returns the number of users, or only registered ones.
func (r *UserRepository) Count(ctx context.Context, registeredOnly bool) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&db.User{})
	if registeredOnly {
		query = query.Where("registered = ?", true)
	}
	err := query.Count(&count).Error
	return count, err
}

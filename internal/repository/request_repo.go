package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/trio-connect/internal/db"
	"github.com/oggyb/trio-connect/internal/utils/pagination"
)

// RequestRepository provides data access methods for the Request model.
// It encapsulates all queries related to likes between users.
type RequestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a new repository bound to the given DB connection.
func NewRequestRepository(database *gorm.DB) *RequestRepository {
	return &RequestRepository{db: database}
}

// CreatePending inserts a Pending request for requester -> target.
//
// Behavior:
//   - If no row exists for the ordered pair → inserted, returns (row, true).
//   - If a row exists in any status → nothing is written, returns (existing, false).
//   - The unique index on (requester_id, target_id) keeps racing likes to one row.
//
// Example:
//
//	repo.CreatePending(ctx, 1, 2, "Friendship") // user 1 liked user 2
func (r *RequestRepository) CreatePending(
	ctx context.Context,
	requesterID, targetID int64,
	purpose string,
) (*db.Request, bool, error) {
	req := db.Request{
		RequesterID: requesterID,
		TargetID:    targetID,
		Purpose:     purpose,
		Status:      db.RequestPending,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "requester_id"}, {Name: "target_id"}},
			DoNothing: true,
		}).
		Create(&req)
	if res.Error != nil {
		return nil, false, res.Error
	}

	existing, err := r.FindPair(ctx, requesterID, targetID)
	if err != nil {
		return nil, false, err
	}
	return existing, res.RowsAffected > 0, nil
}

// FindPair returns the request for the ordered pair.
func (r *RequestRepository) FindPair(ctx context.Context, requesterID, targetID int64) (*db.Request, error) {
	var req db.Request
	err := r.db.WithContext(ctx).
		Where("requester_id = ? AND target_id = ?", requesterID, targetID).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Get loads a request by id.
func (r *RequestRepository) Get(ctx context.Context, id uint64) (*db.Request, error) {
	var req db.Request
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// Resolve moves a Pending request addressed to targetID into status to.
//
// The update is conditional on (id, target_id, status = Pending), so only one
// of several concurrent accept/reject calls can win. Returns false when the
// request is missing, addressed to someone else, or no longer Pending.
func (r *RequestRepository) Resolve(ctx context.Context, id uint64, targetID int64, to string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db.Request{}).
		Where("id = ? AND target_id = ? AND status = ?", id, targetID, db.RequestPending).
		Update("status", to)
	return res.RowsAffected > 0, res.Error
}

// ListPending returns Pending requests addressed to targetID.
//
// Behavior:
//   - Ordered by created_at DESC, id DESC (newest first).
//   - Supports cursor-based pagination via paginationToken.
//
// Example:
//
//	repo.ListPending(ctx, 42, nil, 20) // first 20 requests waiting on user 42
func (r *RequestRepository) ListPending(
	ctx context.Context,
	targetID int64,
	paginationToken *string,
	limit int,
) ([]db.Request, *string, error) {
	var requests []db.Request

	cursor, err := pagination.Decode[pagination.Cursor](getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Table("requests r").
		Where("r.target_id = ? AND r.status = ?", targetID, db.RequestPending).
		Order("r.created_at DESC, r.id DESC").
		Limit(limit + 1)

	// apply cursor
	if cursor.ID > 0 && cursor.CreatedNano > 0 {
		ts := time.Unix(0, cursor.CreatedNano).UTC()
		query = query.Where(
			"(r.created_at < ? OR (r.created_at = ? AND r.id < ?))",
			ts, ts, cursor.ID,
		)
	}

	if err := query.Find(&requests).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(requests) > limit {
		last := requests[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			ID:          last.ID,
			CreatedNano: last.CreatedAt.UnixNano(),
		})
		nextToken = &token
		requests = requests[:limit]
	}

	return requests, nextToken, nil
}

// CountPending returns how many Pending requests wait on targetID.
// Used together with the Redis counter cache (DB is the fallback).
func (r *RequestRepository) CountPending(ctx context.Context, targetID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Request{}).
		Where("target_id = ? AND status = ?", targetID, db.RequestPending).
		Count(&count).Error
	return count, err
}

// CountByStatus counts all requests in the given status.
func (r *RequestRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Request{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

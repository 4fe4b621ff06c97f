package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/trio-connect/internal/db"
)

// ReportRepository stores user complaints and their review status.
type ReportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new repository bound to the given DB connection.
func NewReportRepository(database *gorm.DB) *ReportRepository {
	return &ReportRepository{db: database}
}

// Create stores a Pending report.
func (r *ReportRepository) Create(ctx context.Context, reporterID, reportedID int64, reason string) (*db.Report, error) {
	report := db.Report{
		ReporterID: reporterID,
		ReportedID: reportedID,
		Reason:     reason,
		Status:     db.ReportPending,
	}
	if err := r.db.WithContext(ctx).Create(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// ListPending returns the newest pending reports first.
func (r *ReportRepository) ListPending(ctx context.Context, limit int) ([]db.Report, error) {
	var reports []db.Report
	err := r.db.WithContext(ctx).
		Where("status = ?", db.ReportPending).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&reports).Error
	return reports, err
}

// MarkReviewed moves a report to Reviewed. Returns false if it does not exist.
func (r *ReportRepository) MarkReviewed(ctx context.Context, id uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db.Report{}).
		Where("id = ?", id).
		Update("status", db.ReportReviewed)
	return res.RowsAffected > 0, res.Error
}

// CountPending returns the number of reports awaiting review.
func (r *ReportRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Report{}).Where("status = ?", db.ReportPending).Count(&count).Error
	return count, err
}

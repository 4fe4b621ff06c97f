// Package admin implements the moderation operations: stats, the report
// queue, user lookup and removal, and broadcasts.
package admin

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/oggyb/trio-connect/internal/db"
	"github.com/oggyb/trio-connect/internal/events"
	"github.com/oggyb/trio-connect/internal/repository"
)

// PendingReportLimit is how many reports the queue shows at once.
const PendingReportLimit = 20

// Broadcast audiences.
const (
	AudienceAll    = "All"
	AudienceMale   = db.GenderMale
	AudienceFemale = db.GenderFemale
	AudienceOther  = db.GenderOther
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrReportNotFound  = errors.New("report not found or already reviewed")
	ErrInvalidAudience = errors.New("invalid audience")
	ErrEmptyMessage    = errors.New("broadcast text is empty")
)

// Stats is a snapshot of the service.
type Stats struct {
	TotalUsers      int64 `json:"total_users"`
	RegisteredUsers int64 `json:"registered_users"`
	PendingReports  int64 `json:"pending_reports"`
	Matches         int64 `json:"matches"`
	PendingRequests int64 `json:"pending_requests"`
}

// BroadcastResult counts how a broadcast went.
type BroadcastResult struct {
	Audience int `json:"audience"`
	Sent     int `json:"sent"`
	Failed   int `json:"failed"`
}

// Service runs admin operations.
type Service struct {
	ledger *repository.Ledger
	events *events.Dispatcher
	log    *slog.Logger
}

// New creates an admin Service.
func New(ledger *repository.Ledger, dispatcher *events.Dispatcher, log *slog.Logger) *Service {
	return &Service{ledger: ledger, events: dispatcher, log: log}
}

// Stats counts users, reports, matches and requests.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var err error
	if st.TotalUsers, err = s.ledger.Users.Count(ctx, false); err != nil {
		return Stats{}, err
	}
	if st.RegisteredUsers, err = s.ledger.Users.Count(ctx, true); err != nil {
		return Stats{}, err
	}
	if st.PendingReports, err = s.ledger.Reports.CountPending(ctx); err != nil {
		return Stats{}, err
	}
	if st.Matches, err = s.ledger.Matches.Count(ctx); err != nil {
		return Stats{}, err
	}
	if st.PendingRequests, err = s.ledger.Requests.CountByStatus(ctx, db.RequestPending); err != nil {
		return Stats{}, err
	}
	return st, nil
}

// PendingReports returns the newest reports awaiting review.
func (s *Service) PendingReports(ctx context.Context) ([]db.Report, error) {
	return s.ledger.Reports.ListPending(ctx, PendingReportLimit)
}

// ReviewReport marks a pending report reviewed.
func (s *Service) ReviewReport(ctx context.Context, id uint64) error {
	ok, err := s.ledger.Reports.MarkReviewed(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrReportNotFound
	}
	s.log.Info("report reviewed", "report_id", id)
	return nil
}

// FindUser resolves ident, either a numeric id or a handle with or without "@".
func (s *Service) FindUser(ctx context.Context, ident string) (*db.User, error) {
	ident = strings.TrimPrefix(strings.TrimSpace(ident), "@")
	if ident == "" {
		return nil, ErrUserNotFound
	}

	var (
		u   *db.User
		err error
	)
	if id, perr := strconv.ParseInt(ident, 10, 64); perr == nil {
		u, err = s.ledger.Users.Get(ctx, id)
	} else {
		u, err = s.ledger.Users.FindByHandle(ctx, ident)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// DeleteUser removes the user named by ident with the same cascade as a
// self-deletion. Returns the deleted id.
func (s *Service) DeleteUser(ctx context.Context, ident string) (int64, error) {
	u, err := s.FindUser(ctx, ident)
	if err != nil {
		return 0, err
	}

	var deleted bool
	err = s.ledger.Atomic(ctx, func(tx *repository.Ledger) error {
		var derr error
		deleted, derr = tx.DeleteUserCascade(ctx, u.ID)
		return derr
	})
	if err != nil {
		s.log.Error("admin delete failed", "user", u.ID, "err", err)
		return 0, err
	}
	if !deleted {
		return 0, ErrUserNotFound
	}
	s.log.Info("user deleted by admin", "user", u.ID)
	return u.ID, nil
}

// Audience lists the registered users a broadcast to audience reaches.
func (s *Service) Audience(ctx context.Context, audience string) ([]int64, error) {
	var gender *string
	switch audience {
	case AudienceAll:
	case AudienceMale, AudienceFemale, AudienceOther:
		gender = &audience
	default:
		return nil, ErrInvalidAudience
	}
	return s.ledger.Users.RegisteredIDs(ctx, gender)
}

// Broadcast sends text to every user in audience, one event per recipient.
func (s *Service) Broadcast(ctx context.Context, audience, text string) (BroadcastResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return BroadcastResult{}, ErrEmptyMessage
	}
	ids, err := s.Audience(ctx, audience)
	if err != nil {
		return BroadcastResult{}, err
	}

	res := BroadcastResult{Audience: len(ids)}
	for _, id := range ids {
		if err := s.events.Deliver(ctx, events.Broadcast{RecipientID: id, Text: text}); err != nil {
			res.Failed++
			continue
		}
		res.Sent++
	}
	s.log.Info("broadcast done", "audience", audience, "sent", res.Sent, "failed", res.Failed)
	return res, nil
}

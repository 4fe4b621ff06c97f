// Package protocol implements the request/match state machine: likes,
// accept/reject, dislikes and reports.
package protocol

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/trio-connect/internal/db"
	"github.com/oggyb/trio-connect/internal/events"
	"github.com/oggyb/trio-connect/internal/repository"
)

var (
	// ErrInvalidRequest covers a request that is missing, addressed to someone
	// else, or no longer Pending.
	ErrInvalidRequest = errors.New("invalid or expired request")
	ErrSelfAction     = errors.New("cannot act on yourself")
	ErrUnknownUser    = errors.New("user not found")
)

// LikeResult is the outcome of Like.
type LikeResult struct {
	Request *db.Request
	// AlreadyRequested is set when a request for the pair existed before this call.
	AlreadyRequested bool
}

// Decision is the outcome of Respond.
type Decision struct {
	Request *db.Request
	// Match is set on accept.
	Match *db.Match
	// MatchCreated is false when an earlier reciprocal accept already made the match.
	MatchCreated bool
}

// Service owns every transition of requests, matches, blocks and reports.
type Service struct {
	ledger *repository.Ledger
	events *events.Dispatcher
	log    *slog.Logger
}

// New creates a protocol Service.
func New(ledger *repository.Ledger, dispatcher *events.Dispatcher, log *slog.Logger) *Service {
	return &Service{ledger: ledger, events: dispatcher, log: log}
}

// Like creates a Pending request from requesterID to targetID.
//
// Behavior:
//   - At most one request ever exists per ordered pair. A second like in any
//     status is a no-op reported through AlreadyRequested.
//   - On a new request the target receives a RequestReceived event.
func (s *Service) Like(ctx context.Context, requesterID, targetID int64, purpose string) (LikeResult, error) {
	if requesterID == targetID {
		return LikeResult{}, ErrSelfAction
	}
	if !validPurpose(purpose) {
		return LikeResult{}, ErrInvalidPurpose
	}

	requester, err := s.requireUser(ctx, requesterID)
	if err != nil {
		return LikeResult{}, err
	}
	if _, err := s.requireUser(ctx, targetID); err != nil {
		return LikeResult{}, err
	}

	req, created, err := s.ledger.Requests.CreatePending(ctx, requesterID, targetID, purpose)
	if err != nil {
		return LikeResult{}, fmt.Errorf("create request: %w", err)
	}
	if !created {
		s.log.Debug("like ignored, request exists", "requester", requesterID, "target", targetID, "status", req.Status)
		return LikeResult{Request: req, AlreadyRequested: true}, nil
	}

	s.log.Info("request created", "request_id", req.ID, "requester", requesterID, "target", targetID, "purpose", purpose)
	s.events.Emit(ctx, events.RequestReceived{
		TargetID:      targetID,
		RequestID:     req.ID,
		RequesterID:   requesterID,
		RequesterName: requester.Name,
		Purpose:       purpose,
	})
	return LikeResult{Request: req}, nil
}

// Accept resolves a Pending request addressed to actorID and creates the match.
func (s *Service) Accept(ctx context.Context, actorID int64, requestID uint64) (Decision, error) {
	return s.respond(ctx, actorID, requestID, true)
}

// Reject resolves a Pending request addressed to actorID as Rejected.
func (s *Service) Reject(ctx context.Context, actorID int64, requestID uint64) (Decision, error) {
	return s.respond(ctx, actorID, requestID, false)
}

// respond performs the Pending → terminal transition.
//
// Behavior:
//   - The status change is conditional on the row still being Pending and
//     addressed to actorID; anything else is ErrInvalidRequest.
//   - On accept, the match for the canonical pair is inserted if absent in
//     the same transaction; an existing match keeps its purpose.
//   - Events go out after commit: RequestRejected to the requester, or
//     MatchCreated to each participant.
func (s *Service) respond(ctx context.Context, actorID int64, requestID uint64, accept bool) (Decision, error) {
	to := db.RequestRejected
	if accept {
		to = db.RequestAccepted
	}

	var out Decision
	err := s.ledger.Atomic(ctx, func(tx *repository.Ledger) error {
		ok, err := tx.Requests.Resolve(ctx, requestID, actorID, to)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidRequest
		}

		req, err := tx.Requests.Get(ctx, requestID)
		if err != nil {
			return err
		}
		out.Request = req

		if !accept {
			return nil
		}
		m, created, err := tx.Matches.CreateIfAbsent(ctx, req.RequesterID, req.TargetID, req.Purpose)
		if err != nil {
			return err
		}
		out.Match, out.MatchCreated = m, created
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrInvalidRequest) {
			s.log.Error("respond to request failed", "request_id", requestID, "actor", actorID, "err", err)
		}
		return Decision{}, err
	}

	if !accept {
		s.log.Info("request rejected", "request_id", requestID)
		s.events.Emit(ctx, events.RequestRejected{RequesterID: out.Request.RequesterID, RequestID: requestID})
		return out, nil
	}

	s.log.Info("request accepted", "request_id", requestID, "match_id", out.Match.ID, "new_match", out.MatchCreated)
	s.notifyMatch(ctx, out.Match)
	return out, nil
}

func (s *Service) notifyMatch(ctx context.Context, m *db.Match) {
	for _, id := range []int64{m.User1ID, m.User2ID} {
		u, err := s.ledger.Users.Get(ctx, id)
		if err != nil {
			s.log.Warn("skip match notice", "user", id, "match_id", m.ID, "err", err)
			continue
		}
		other, _ := m.Other(id)
		s.events.Emit(ctx, events.MatchCreated{
			ParticipantID:       id,
			CounterpartID:       other,
			MatchID:             m.ID,
			Purpose:             m.Purpose,
			FreeUnlockAvailable: u.FreeUnlocks > 0,
		})
	}
}

// Dislike blocks targetID for actorID. Repeating it is a no-op.
func (s *Service) Dislike(ctx context.Context, actorID, targetID int64) (bool, error) {
	if actorID == targetID {
		return false, ErrSelfAction
	}
	if _, err := s.requireUser(ctx, targetID); err != nil {
		return false, err
	}
	created, err := s.ledger.Blocks.Create(ctx, actorID, targetID)
	if err != nil {
		return false, fmt.Errorf("create block: %w", err)
	}
	s.log.Debug("dislike", "actor", actorID, "target", targetID, "new_block", created)
	return created, nil
}

// Report files a complaint and blocks the reported user in one transaction,
// then notifies the administrative channel.
func (s *Service) Report(ctx context.Context, reporterID, reportedID int64, tag, text string) (*db.Report, error) {
	if reporterID == reportedID {
		return nil, ErrSelfAction
	}
	reason, err := FormatReason(tag, text)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireUser(ctx, reportedID); err != nil {
		return nil, err
	}

	var report *db.Report
	err = s.ledger.Atomic(ctx, func(tx *repository.Ledger) error {
		r, err := tx.Reports.Create(ctx, reporterID, reportedID, reason)
		if err != nil {
			return err
		}
		if _, err := tx.Blocks.Create(ctx, reporterID, reportedID); err != nil {
			return err
		}
		report = r
		return nil
	})
	if err != nil {
		s.log.Error("report failed", "reporter", reporterID, "reported", reportedID, "err", err)
		return nil, err
	}

	s.log.Info("report filed", "report_id", report.ID, "reporter", reporterID, "reported", reportedID)
	s.events.Emit(ctx, events.ReportFiled{
		ReportID:   report.ID,
		ReporterID: reporterID,
		ReportedID: reportedID,
		Reason:     reason,
	})
	return report, nil
}

// PendingInbox lists Pending requests addressed to userID, newest first.
func (s *Service) PendingInbox(ctx context.Context, userID int64, token *string, limit int) ([]db.Request, *string, error) {
	return s.ledger.Requests.ListPending(ctx, userID, token, limit)
}

func (s *Service) requireUser(ctx context.Context, id int64) (*db.User, error) {
	u, err := s.ledger.Users.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnknownUser
	}
	return u, err
}

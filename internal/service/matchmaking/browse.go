package matchmaking

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oggyb/trio-connect/internal/cache"
	svcErr "github.com/oggyb/trio-connect/internal/errors"
	pb "github.com/oggyb/trio-connect/internal/rpc"
	"github.com/oggyb/trio-connect/internal/selector"
	"github.com/oggyb/trio-connect/internal/utils/pagination"
)

// StartBrowse snapshots the caller's candidates for a filter and serves the first.
// Any earlier snapshot is replaced.
func (s *Service) StartBrowse(ctx context.Context, req *pb.StartBrowseRequest) (*pb.BrowseResponse, error) {
	s.appCtx.Logger.Debug("StartBrowse called", "user", req.UserID, "filter", req.Filter)
	if err := requireID("user_id", req.UserID); err != nil {
		return nil, err
	}
	filter, err := selector.ParseFilter(req.Filter)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	session, err := s.snapshot(ctx, req.UserID, filter)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return s.serve(ctx, session, 0)
}

// NextCandidate skips the card the token points at.
func (s *Service) NextCandidate(ctx context.Context, req *pb.BrowseRequest) (*pb.ActionResponse, error) {
	if err := requireID("user_id", req.UserID); err != nil {
		return nil, err
	}
	if req.Token == "" {
		return nil, svcErr.InvalidArgument("token is required")
	}
	next, err := s.advance(ctx, req.UserID, req.Token)
	if err != nil {
		return nil, err
	}
	return &pb.ActionResponse{Outcome: pb.OutcomeSkipped, Next: next}, nil
}

// Like sends a request with a purpose, or skips the card when the purpose
// is "cancel". A repeated like reports already_requested. The browse cursor
// advances either way when a token is given.
func (s *Service) Like(ctx context.Context, req *pb.LikeRequest) (*pb.ActionResponse, error) {
	s.appCtx.Logger.Debug("Like called", "user", req.UserID, "target", req.TargetID, "purpose", req.Purpose)
	if err := requireID("user_id", req.UserID); err != nil {
		return nil, err
	}

	outcome := pb.OutcomeSkipped
	if req.Purpose != pb.Cancel {
		if err := requireID("target_id", req.TargetID); err != nil {
			return nil, err
		}
		res, err := s.core.Protocol.Like(ctx, req.UserID, req.TargetID, req.Purpose)
		if err != nil {
			return nil, svcErr.Map(err)
		}
		outcome = pb.OutcomeRequested
		if res.AlreadyRequested {
			outcome = pb.OutcomeAlreadyRequested
		} else {
			_ = s.appCtx.RedisCache.InvalidatePendingCount(ctx, req.TargetID)
		}
	}
	return s.after(ctx, req.UserID, req.Token, outcome)
}

// Dislike hides the target from the caller for good.
func (s *Service) Dislike(ctx context.Context, req *pb.TargetRequest) (*pb.ActionResponse, error) {
	s.appCtx.Logger.Debug("Dislike called", "user", req.UserID, "target", req.TargetID)
	if err := requireID("user_id", req.UserID); err != nil {
		return nil, err
	}
	if err := requireID("target_id", req.TargetID); err != nil {
		return nil, err
	}
	if _, err := s.core.Protocol.Dislike(ctx, req.UserID, req.TargetID); err != nil {
		return nil, svcErr.Map(err)
	}
	return s.after(ctx, req.UserID, req.Token, pb.OutcomeDisliked)
}

// Report files a report (which also blocks the target), or skips the card
// when the reason is "cancel".
func (s *Service) Report(ctx context.Context, req *pb.ReportRequest) (*pb.ActionResponse, error) {
	s.appCtx.Logger.Debug("Report called", "user", req.UserID, "target", req.TargetID, "reason", req.Reason)
	if err := requireID("user_id", req.UserID); err != nil {
		return nil, err
	}

	outcome := pb.OutcomeSkipped
	if req.Reason != pb.Cancel {
		if err := requireID("target_id", req.TargetID); err != nil {
			return nil, err
		}
		if _, err := s.core.Protocol.Report(ctx, req.UserID, req.TargetID, req.Reason, req.Text); err != nil {
			return nil, svcErr.Map(err)
		}
		outcome = pb.OutcomeReported
	}
	return s.after(ctx, req.UserID, req.Token, outcome)
}

func (s *Service) after(ctx context.Context, userID int64, token, outcome string) (*pb.ActionResponse, error) {
	resp := &pb.ActionResponse{Outcome: outcome}
	if token == "" {
		return resp, nil
	}
	next, err := s.advance(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	resp.Next = next
	return resp, nil
}

// advance serves the card after the one token points at.
//
// An expired snapshot is rebuilt for the token's filter and served from the
// start; the rebuilt list already leaves out everyone acted on since. A token
// from an older filter restarts the current snapshot. A position outside the
// snapshot is rejected as an invalid token.
func (s *Service) advance(ctx context.Context, userID int64, token string) (*pb.BrowseResponse, error) {
	pos, err := pagination.Decode[pagination.Position](token)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if pos.Pos < 0 {
		return nil, svcErr.Map(pagination.ErrInvalidToken)
	}
	filter, err := selector.ParseFilter(pos.Filter)
	if err != nil {
		return nil, svcErr.Map(pagination.ErrInvalidToken)
	}

	session, ok, err := s.appCtx.RedisCache.LoadBrowse(ctx, userID, s.appCtx.Config.Match.BrowseTTL)
	if err != nil {
		s.appCtx.Logger.Warn("load browse session failed, rebuilding", "user", userID, "err", err)
	}
	switch {
	case err != nil || !ok:
		if session, err = s.snapshot(ctx, userID, filter); err != nil {
			return nil, svcErr.Map(err)
		}
		return s.serve(ctx, session, 0)
	case session.Filter != string(filter):
		return s.serve(ctx, session, 0)
	case pos.Pos >= len(session.Candidates):
		return nil, svcErr.Map(pagination.ErrInvalidToken)
	}
	return s.serve(ctx, session, pos.Pos+1)
}

func (s *Service) snapshot(ctx context.Context, userID int64, filter selector.Filter) (cache.BrowseSession, error) {
	ids, err := s.core.Selector.Select(ctx, userID, filter)
	if err != nil {
		return cache.BrowseSession{}, err
	}
	session := cache.BrowseSession{Filter: string(filter), Candidates: ids}
	if err := s.appCtx.RedisCache.SaveBrowse(ctx, userID, session, s.appCtx.Config.Match.BrowseTTL); err != nil {
		s.appCtx.Logger.Warn("save browse session failed", "user", userID, "err", err)
	}
	return session, nil
}

// serve returns the first candidate at or after pos that still exists.
func (s *Service) serve(ctx context.Context, session cache.BrowseSession, pos int) (*pb.BrowseResponse, error) {
	for ; pos < len(session.Candidates); pos++ {
		u, err := s.core.Ledger.Users.Get(ctx, session.Candidates[pos])
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, svcErr.Map(err)
		}

		token, err := pagination.Encode(pagination.Position{Filter: session.Filter, Pos: pos})
		if err != nil {
			return nil, svcErr.Map(err)
		}
		return &pb.BrowseResponse{Candidate: cardFor(u), Token: token}, nil
	}
	return &pb.BrowseResponse{Exhausted: true}, nil
}

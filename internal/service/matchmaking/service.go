package matchmaking

import (
	"context"
	"errors"

	"google.golang.org/protobuf/types/known/emptypb"
	"gorm.io/gorm"

	"github.com/oggyb/trio-connect/internal/app"
	"github.com/oggyb/trio-connect/internal/db"
	svcErr "github.com/oggyb/trio-connect/internal/errors"
	"github.com/oggyb/trio-connect/internal/profile"
	pb "github.com/oggyb/trio-connect/internal/rpc"
)

// requestsPageSize is how many pending requests one ListRequests page holds.
const requestsPageSize = 10

// Service implements the Matchmaking gRPC API on top of the engine Core.
// Each method corresponds to an RPC in pb.MatchmakingServiceDesc.
type Service struct {
	appCtx *app.AppContext
	core   *app.Core

	pb.UnimplementedMatchmakingServer
}

// NewMatchmakingService creates the service over a shared Core.
func NewMatchmakingService(appCtx *app.AppContext, core *app.Core) *Service {
	return &Service{appCtx: appCtx, core: core}
}

func requireID(name string, id int64) error {
	if id <= 0 {
		return svcErr.InvalidArgument(name + " must be a positive id")
	}
	return nil
}

// EnsureUser records first contact (and a referral start parameter) or
// refreshes name and handle.
func (s *Service) EnsureUser(ctx context.Context, req *pb.EnsureUserRequest) (*pb.ProfileResponse, error) {
	s.appCtx.Logger.Debug("EnsureUser called", "user", req.UserID, "start", req.StartParam)
	if err := requireID("user_id", req.UserID); err != nil {
		return nil, err
	}

	var handle *string
	if req.Handle != "" {
		handle = &req.Handle
	}
	u, err := s.core.Profiles.EnsureUser(ctx, req.UserID, req.Name, handle, req.StartParam)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.ProfileResponse{Profile: profileFor(u)}, nil
}

func (s *Service) GetProfile(ctx context.Context, req *pb.UserRequest) (*pb.ProfileResponse, error) {
	if err := requireID("user_id", req.UserID); err != nil {
		return nil, err
	}
	u, err := s.core.Profiles.Get(ctx, req.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.ProfileResponse{Profile: profileFor(u)}, nil
}

// UpdateProfile writes any subset of age, gender, location and photo.
//
// Behavior:
//   - Validation errors map to InvalidArgument and nothing is written.
//   - The write that completes the profile registers the user and credits
//     their referrer in the same transaction.
func (s *Service) UpdateProfile(ctx context.Context, req *pb.UpdateProfileRequest) (*pb.ProfileResponse, error) {
	s.appCtx.Logger.Debug("UpdateProfile called", "user", req.UserID)
	if err := requireID("user_id", req.UserID); err != nil {
		return nil, err
	}

	up, err := s.core.Profiles.Apply(ctx, req.UserID, profile.Draft{
		Age:       req.Age,
		Gender:    req.Gender,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		PhotoRef:  req.PhotoRef,
	})
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.ProfileResponse{
		Profile:          profileFor(up.User),
		JustRegistered:   up.JustRegistered,
		ReferralCredited: up.Credit != nil,
	}, nil
}

// DeleteProfile removes the caller and everything referencing them.
func (s *Service) DeleteProfile(ctx context.Context, req *pb.UserRequest) (*emptypb.Empty, error) {
	s.appCtx.Logger.Debug("DeleteProfile called", "user", req.UserID)
	if err := requireID("user_id", req.UserID); err != nil {
		return nil, err
	}

	deleted, err := s.core.Profiles.Delete(ctx, req.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if !deleted {
		return nil, svcErr.Map(profile.ErrUnknownUser)
	}

	_ = s.appCtx.RedisCache.DropBrowse(ctx, req.UserID)
	_ = s.appCtx.RedisCache.InvalidatePendingCount(ctx, req.UserID)
	return &emptypb.Empty{}, nil
}

// ListRequests returns Pending requests addressed to the caller, newest first,
// with the requester's card. Requesters that no longer exist are left out.
func (s *Service) ListRequests(ctx context.Context, req *pb.ListRequestsRequest) (*pb.ListRequestsResponse, error) {
	s.appCtx.Logger.Debug("ListRequests called", "user", req.UserID)
	if err := requireID("user_id", req.UserID); err != nil {
		return nil, err
	}

	requests, nextToken, err := s.core.Protocol.PendingInbox(ctx, req.UserID, req.PaginationToken, requestsPageSize)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	resp := &pb.ListRequestsResponse{Requests: []*pb.RequestCard{}, NextPaginationToken: nextToken}
	for _, r := range requests {
		requester, err := s.core.Ledger.Users.Get(ctx, r.RequesterID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, svcErr.Map(err)
		}
		resp.Requests = append(resp.Requests, &pb.RequestCard{
			RequestID:     r.ID,
			Requester:     cardFor(requester),
			Purpose:       r.Purpose,
			UnixTimestamp: uint64(r.CreatedAt.UnixMilli()),
		})
	}
	return resp, nil
}

// CountPendingRequests returns how many requests wait on the caller.
// Cache-first strategy:
//  1. Attempts to read from Redis (requests:pending:userID).
//  2. On a miss or Redis error, falls back to the DB.
//  3. On DB fetch, updates Redis with a 1h TTL.
func (s *Service) CountPendingRequests(ctx context.Context, req *pb.UserRequest) (*pb.CountResponse, error) {
	if err := requireID("user_id", req.UserID); err != nil {
		return nil, err
	}

	if n, ok, err := s.appCtx.RedisCache.GetPendingCount(ctx, req.UserID); err == nil && ok {
		return &pb.CountResponse{Count: uint64(n)}, nil
	}

	count, err := s.core.Ledger.Requests.CountPending(ctx, req.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	_ = s.appCtx.RedisCache.SetPendingCount(ctx, req.UserID, count)
	return &pb.CountResponse{Count: uint64(count)}, nil
}

// RespondRequest accepts or rejects a Pending request addressed to the caller.
func (s *Service) RespondRequest(ctx context.Context, req *pb.RespondRequest) (*pb.RespondResponse, error) {
	s.appCtx.Logger.Debug("RespondRequest called", "user", req.UserID, "request", req.RequestID, "accept", req.Accept)
	if err := requireID("user_id", req.UserID); err != nil {
		return nil, err
	}

	respond := s.core.Protocol.Reject
	if req.Accept {
		respond = s.core.Protocol.Accept
	}
	d, err := respond(ctx, req.UserID, req.RequestID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	_ = s.appCtx.RedisCache.InvalidatePendingCount(ctx, req.UserID)

	resp := &pb.RespondResponse{Status: d.Request.Status}
	if d.Match != nil {
		resp.MatchID = d.Match.ID
		resp.MatchCreated = d.MatchCreated
	}
	return resp, nil
}

// ListMatches returns the caller's matches with the counterpart's card and,
// where the caller's side is unlocked, the counterpart's handle.
func (s *Service) ListMatches(ctx context.Context, req *pb.UserRequest) (*pb.MatchesResponse, error) {
	if err := requireID("user_id", req.UserID); err != nil {
		return nil, err
	}

	matches, err := s.core.Ledger.Matches.ListForUser(ctx, req.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	resp := &pb.MatchesResponse{Matches: []*pb.MatchCard{}}
	for i := range matches {
		m := &matches[i]
		otherID, _ := m.Other(req.UserID)
		other, err := s.core.Ledger.Users.Get(ctx, otherID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, svcErr.Map(err)
		}

		mc := &pb.MatchCard{
			MatchID:     m.ID,
			Counterpart: cardFor(other),
			Purpose:     m.Purpose,
			Unlocked:    m.UnlockedFor(req.UserID),
		}
		if mc.Unlocked {
			mc.Handle, _ = other.RevealableHandle()
		}
		resp.Matches = append(resp.Matches, mc)
	}
	return resp, nil
}

func (s *Service) ReferralInfo(ctx context.Context, req *pb.UserRequest) (*pb.ReferralResponse, error) {
	if err := requireID("user_id", req.UserID); err != nil {
		return nil, err
	}
	sum, err := s.core.Referrals.Summary(ctx, s.core.Ledger, req.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.ReferralResponse{
		Link:        sum.Link,
		Count:       sum.Count,
		FreeUnlocks: sum.FreeUnlocks,
		UntilNext:   sum.UntilNext,
	}, nil
}

func profileFor(u *db.User) *pb.Profile {
	p := &pb.Profile{
		UserID:        u.ID,
		Name:          u.Name,
		Age:           u.Age,
		Latitude:      u.Latitude,
		Longitude:     u.Longitude,
		City:          u.City,
		Country:       u.Country,
		Registered:    u.Registered,
		FreeUnlocks:   u.FreeUnlocks,
		ReferralCount: u.ReferralCount,
	}
	p.Handle, _ = u.RevealableHandle()
	if u.Gender != nil {
		p.Gender = *u.Gender
	}
	if u.PhotoRef != nil {
		p.PhotoRef = *u.PhotoRef
	}
	return p
}

func cardFor(u *db.User) *pb.Card {
	c := &pb.Card{
		UserID:  u.ID,
		Name:    u.Name,
		Age:     u.Age,
		City:    u.City,
		Country: u.Country,
	}
	if u.Gender != nil {
		c.Gender = *u.Gender
	}
	if u.PhotoRef != nil {
		c.PhotoRef = *u.PhotoRef
	}
	return c
}

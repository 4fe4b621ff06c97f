package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

// MatchmakingClient calls the Matchmaking service over the JSON codec.
type MatchmakingClient struct {
	cc grpc.ClientConnInterface
}

func NewMatchmakingClient(cc grpc.ClientConnInterface) *MatchmakingClient {
	return &MatchmakingClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *MatchmakingClient, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *MatchmakingClient) EnsureUser(ctx context.Context, in *EnsureUserRequest, opts ...grpc.CallOption) (*ProfileResponse, error) {
	return invoke[ProfileResponse](ctx, c, "EnsureUser", in, opts)
}

func (c *MatchmakingClient) GetProfile(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*ProfileResponse, error) {
	return invoke[ProfileResponse](ctx, c, "GetProfile", in, opts)
}

func (c *MatchmakingClient) UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*ProfileResponse, error) {
	return invoke[ProfileResponse](ctx, c, "UpdateProfile", in, opts)
}

func (c *MatchmakingClient) DeleteProfile(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c, "DeleteProfile", in, opts)
}

func (c *MatchmakingClient) StartBrowse(ctx context.Context, in *StartBrowseRequest, opts ...grpc.CallOption) (*BrowseResponse, error) {
	return invoke[BrowseResponse](ctx, c, "StartBrowse", in, opts)
}

func (c *MatchmakingClient) NextCandidate(ctx context.Context, in *BrowseRequest, opts ...grpc.CallOption) (*ActionResponse, error) {
	return invoke[ActionResponse](ctx, c, "NextCandidate", in, opts)
}

func (c *MatchmakingClient) Like(ctx context.Context, in *LikeRequest, opts ...grpc.CallOption) (*ActionResponse, error) {
	return invoke[ActionResponse](ctx, c, "Like", in, opts)
}

func (c *MatchmakingClient) Dislike(ctx context.Context, in *TargetRequest, opts ...grpc.CallOption) (*ActionResponse, error) {
	return invoke[ActionResponse](ctx, c, "Dislike", in, opts)
}

func (c *MatchmakingClient) Report(ctx context.Context, in *ReportRequest, opts ...grpc.CallOption) (*ActionResponse, error) {
	return invoke[ActionResponse](ctx, c, "Report", in, opts)
}

func (c *MatchmakingClient) ListRequests(ctx context.Context, in *ListRequestsRequest, opts ...grpc.CallOption) (*ListRequestsResponse, error) {
	return invoke[ListRequestsResponse](ctx, c, "ListRequests", in, opts)
}

func (c *MatchmakingClient) CountPendingRequests(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*CountResponse, error) {
	return invoke[CountResponse](ctx, c, "CountPendingRequests", in, opts)
}

func (c *MatchmakingClient) RespondRequest(ctx context.Context, in *RespondRequest, opts ...grpc.CallOption) (*RespondResponse, error) {
	return invoke[RespondResponse](ctx, c, "RespondRequest", in, opts)
}

func (c *MatchmakingClient) ListMatches(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*MatchesResponse, error) {
	return invoke[MatchesResponse](ctx, c, "ListMatches", in, opts)
}

func (c *MatchmakingClient) UnlockFree(ctx context.Context, in *UnlockRequest, opts ...grpc.CallOption) (*UnlockResponse, error) {
	return invoke[UnlockResponse](ctx, c, "UnlockFree", in, opts)
}

func (c *MatchmakingClient) StartPaidUnlock(ctx context.Context, in *UnlockRequest, opts ...grpc.CallOption) (*InvoiceResponse, error) {
	return invoke[InvoiceResponse](ctx, c, "StartPaidUnlock", in, opts)
}

func (c *MatchmakingClient) PreCheckout(ctx context.Context, in *PaymentRequest, opts ...grpc.CallOption) (*PreCheckoutResponse, error) {
	return invoke[PreCheckoutResponse](ctx, c, "PreCheckout", in, opts)
}

func (c *MatchmakingClient) ConfirmPayment(ctx context.Context, in *PaymentRequest, opts ...grpc.CallOption) (*UnlockResponse, error) {
	return invoke[UnlockResponse](ctx, c, "ConfirmPayment", in, opts)
}

func (c *MatchmakingClient) ReferralInfo(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*ReferralResponse, error) {
	return invoke[ReferralResponse](ctx, c, "ReferralInfo", in, opts)
}

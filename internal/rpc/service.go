package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "trio.v1.Matchmaking"

// MatchmakingServer is the server API for the Matchmaking service.
type MatchmakingServer interface {
	EnsureUser(context.Context, *EnsureUserRequest) (*ProfileResponse, error)
	GetProfile(context.Context, *UserRequest) (*ProfileResponse, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*ProfileResponse, error)
	DeleteProfile(context.Context, *UserRequest) (*emptypb.Empty, error)

	StartBrowse(context.Context, *StartBrowseRequest) (*BrowseResponse, error)
	NextCandidate(context.Context, *BrowseRequest) (*ActionResponse, error)
	Like(context.Context, *LikeRequest) (*ActionResponse, error)
	Dislike(context.Context, *TargetRequest) (*ActionResponse, error)
	Report(context.Context, *ReportRequest) (*ActionResponse, error)

	ListRequests(context.Context, *ListRequestsRequest) (*ListRequestsResponse, error)
	CountPendingRequests(context.Context, *UserRequest) (*CountResponse, error)
	RespondRequest(context.Context, *RespondRequest) (*RespondResponse, error)
	ListMatches(context.Context, *UserRequest) (*MatchesResponse, error)

	UnlockFree(context.Context, *UnlockRequest) (*UnlockResponse, error)
	StartPaidUnlock(context.Context, *UnlockRequest) (*InvoiceResponse, error)
	PreCheckout(context.Context, *PaymentRequest) (*PreCheckoutResponse, error)
	ConfirmPayment(context.Context, *PaymentRequest) (*UnlockResponse, error)
	ReferralInfo(context.Context, *UserRequest) (*ReferralResponse, error)
}

// UnimplementedMatchmakingServer answers Unimplemented for every method.
// Embed it to stay forward compatible.
type UnimplementedMatchmakingServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedMatchmakingServer) EnsureUser(context.Context, *EnsureUserRequest) (*ProfileResponse, error) {
	return nil, unimplemented("EnsureUser")
}
func (UnimplementedMatchmakingServer) GetProfile(context.Context, *UserRequest) (*ProfileResponse, error) {
	return nil, unimplemented("GetProfile")
}
func (UnimplementedMatchmakingServer) UpdateProfile(context.Context, *UpdateProfileRequest) (*ProfileResponse, error) {
	return nil, unimplemented("UpdateProfile")
}
func (UnimplementedMatchmakingServer) DeleteProfile(context.Context, *UserRequest) (*emptypb.Empty, error) {
	return nil, unimplemented("DeleteProfile")
}
func (UnimplementedMatchmakingServer) StartBrowse(context.Context, *StartBrowseRequest) (*BrowseResponse, error) {
	return nil, unimplemented("StartBrowse")
}
func (UnimplementedMatchmakingServer) NextCandidate(context.Context, *BrowseRequest) (*ActionResponse, error) {
	return nil, unimplemented("NextCandidate")
}
func (UnimplementedMatchmakingServer) Like(context.Context, *LikeRequest) (*ActionResponse, error) {
	return nil, unimplemented("Like")
}
func (UnimplementedMatchmakingServer) Dislike(context.Context, *TargetRequest) (*ActionResponse, error) {
	return nil, unimplemented("Dislike")
}
func (UnimplementedMatchmakingServer) Report(context.Context, *ReportRequest) (*ActionResponse, error) {
	return nil, unimplemented("Report")
}
func (UnimplementedMatchmakingServer) ListRequests(context.Context, *ListRequestsRequest) (*ListRequestsResponse, error) {
	return nil, unimplemented("ListRequests")
}
func (UnimplementedMatchmakingServer) CountPendingRequests(context.Context, *UserRequest) (*CountResponse, error) {
	return nil, unimplemented("CountPendingRequests")
}
func (UnimplementedMatchmakingServer) RespondRequest(context.Context, *RespondRequest) (*RespondResponse, error) {
	return nil, unimplemented("RespondRequest")
}
func (UnimplementedMatchmakingServer) ListMatches(context.Context, *UserRequest) (*MatchesResponse, error) {
	return nil, unimplemented("ListMatches")
}
func (UnimplementedMatchmakingServer) UnlockFree(context.Context, *UnlockRequest) (*UnlockResponse, error) {
	return nil, unimplemented("UnlockFree")
}
func (UnimplementedMatchmakingServer) StartPaidUnlock(context.Context, *UnlockRequest) (*InvoiceResponse, error) {
	return nil, unimplemented("StartPaidUnlock")
}
func (UnimplementedMatchmakingServer) PreCheckout(context.Context, *PaymentRequest) (*PreCheckoutResponse, error) {
	return nil, unimplemented("PreCheckout")
}
func (UnimplementedMatchmakingServer) ConfirmPayment(context.Context, *PaymentRequest) (*UnlockResponse, error) {
	return nil, unimplemented("ConfirmPayment")
}
func (UnimplementedMatchmakingServer) ReferralInfo(context.Context, *UserRequest) (*ReferralResponse, error) {
	return nil, unimplemented("ReferralInfo")
}

// unary builds the method descriptor for one RPC.
func unary[Req, Resp any](name string, call func(MatchmakingServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(MatchmakingServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(MatchmakingServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// MatchmakingServiceDesc describes the service for grpc.Server.RegisterService.
var MatchmakingServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MatchmakingServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("EnsureUser", MatchmakingServer.EnsureUser),
		unary("GetProfile", MatchmakingServer.GetProfile),
		unary("UpdateProfile", MatchmakingServer.UpdateProfile),
		unary("DeleteProfile", MatchmakingServer.DeleteProfile),
		unary("StartBrowse", MatchmakingServer.StartBrowse),
		unary("NextCandidate", MatchmakingServer.NextCandidate),
		unary("Like", MatchmakingServer.Like),
		unary("Dislike", MatchmakingServer.Dislike),
		unary("Report", MatchmakingServer.Report),
		unary("ListRequests", MatchmakingServer.ListRequests),
		unary("CountPendingRequests", MatchmakingServer.CountPendingRequests),
		unary("RespondRequest", MatchmakingServer.RespondRequest),
		unary("ListMatches", MatchmakingServer.ListMatches),
		unary("UnlockFree", MatchmakingServer.UnlockFree),
		unary("StartPaidUnlock", MatchmakingServer.StartPaidUnlock),
		unary("PreCheckout", MatchmakingServer.PreCheckout),
		unary("ConfirmPayment", MatchmakingServer.ConfirmPayment),
		unary("ReferralInfo", MatchmakingServer.ReferralInfo),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "trio/v1/matchmaking",
}

// RegisterMatchmakingServer attaches srv to s.
func RegisterMatchmakingServer(s grpc.ServiceRegistrar, srv MatchmakingServer) {
	s.RegisterService(&MatchmakingServiceDesc, srv)
}

package server_test

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/oggyb/trio-connect/internal/logger"
	pb "github.com/oggyb/trio-connect/internal/rpc"
	"github.com/oggyb/trio-connect/internal/server"
)

// panicky fails every GetProfile call with a runtime panic.
type panicky struct {
	pb.UnimplementedMatchmakingServer
}

func (panicky) GetProfile(context.Context, *pb.UserRequest) (*pb.ProfileResponse, error) {
	panic("profile store exploded")
}

func dial(t *testing.T, impl pb.MatchmakingServer) (*grpc.Server, *pb.MatchmakingClient) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := server.NewGRPCServer(logger.Discard(), server.RegisterFunc(func(s *grpc.Server) {
		pb.RegisterMatchmakingServer(s, impl)
	}))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return srv, pb.NewMatchmakingClient(conn)
}

func TestServerRoutesJSONCallsToRegisteredService(t *testing.T) {
	srv, client := dial(t, pb.UnimplementedMatchmakingServer{})

	_, err := client.GetProfile(context.Background(), &pb.UserRequest{UserID: 1})
	assert.Equal(t, codes.Unimplemented, status.Code(err))

	info := srv.GetServiceInfo()
	assert.Contains(t, info, pb.ServiceName)
}

func TestHandlerPanicBecomesInternal(t *testing.T) {
	_, client := dial(t, panicky{})

	_, err := client.GetProfile(context.Background(), &pb.UserRequest{UserID: 1})
	assert.Equal(t, codes.Internal, status.Code(err))

	// the server is still serving after the panic
	_, err = client.ListMatches(context.Background(), &pb.UserRequest{UserID: 1})
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}

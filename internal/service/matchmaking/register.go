package matchmaking

import (
	"google.golang.org/grpc"

	"github.com/oggyb/trio-connect/internal/app"
	pb "github.com/oggyb/trio-connect/internal/rpc"
)

// Registrar ties the Matchmaking service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
	core   *app.Core
}

// NewRegistrar creates a new Registrar for the Matchmaking service
func NewRegistrar(appCtx *app.AppContext, core *app.Core) *Registrar {
	return &Registrar{appCtx: appCtx, core: core}
}

// Register attaches the Matchmaking service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	service := NewMatchmakingService(r.appCtx, r.core)
	pb.RegisterMatchmakingServer(s, service)
}

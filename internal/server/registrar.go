package server

import "google.golang.org/grpc"

// Registrar attaches one service implementation to a gRPC server.
// NewGRPCServer calls Register once per registrar before serving.
type Registrar interface {
	Register(s *grpc.Server)
}

// RegisterFunc adapts a plain function to a Registrar.
type RegisterFunc func(s *grpc.Server)

func (f RegisterFunc) Register(s *grpc.Server) { f(s) }

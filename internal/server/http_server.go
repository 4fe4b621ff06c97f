package server

import (
	"net/http"
	"time"

	"github.com/oggyb/trio-connect/internal/config"
)

// NewHTTPServer wraps handler in an http.Server bound to HTTP_ADDR.
func NewHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

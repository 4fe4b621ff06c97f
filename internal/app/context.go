package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/trio-connect/internal/cache"
	"github.com/oggyb/trio-connect/internal/config"
	"github.com/oggyb/trio-connect/internal/events"
	"github.com/oggyb/trio-connect/internal/geocode"
	"github.com/oggyb/trio-connect/internal/payment"
)

// AppContext holds shared dependencies (DB, Redis, Logger, etc.)
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger

	// Publisher delivers events to the transport. Nil drops them.
	Publisher events.Publisher
	// Geocoder resolves coordinates. Nil always yields the fallback place.
	Geocoder geocode.Lookup
	// Gateway bills paid unlocks. Nil sends invoices as events through Publisher.
	Gateway payment.Gateway
}

// Option customizes an AppContext.
type Option func(*AppContext)

func WithPublisher(p events.Publisher) Option { return func(a *AppContext) { a.Publisher = p } }

func WithGeocoder(g geocode.Lookup) Option { return func(a *AppContext) { a.Geocoder = g } }

func WithGateway(g payment.Gateway) Option { return func(a *AppContext) { a.Gateway = g } }

// New creates a new AppContext
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger, opts ...Option) *AppContext {
	a := &AppContext{
		Config:     cfg,
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

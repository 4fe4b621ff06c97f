package app

import (
	"github.com/oggyb/trio-connect/internal/admin"
	"github.com/oggyb/trio-connect/internal/events"
	"github.com/oggyb/trio-connect/internal/payment"
	"github.com/oggyb/trio-connect/internal/profile"
	"github.com/oggyb/trio-connect/internal/protocol"
	"github.com/oggyb/trio-connect/internal/referral"
	"github.com/oggyb/trio-connect/internal/repository"
	"github.com/oggyb/trio-connect/internal/selector"
	"github.com/oggyb/trio-connect/internal/unlock"
)

// Core is the matchmaking engine wired over one AppContext. The gRPC service
// and the HTTP API share a single Core.
type Core struct {
	Ledger    *repository.Ledger
	Events    *events.Dispatcher
	Selector  *selector.Selector
	Protocol  *protocol.Service
	Unlocks   *unlock.Ledger
	Referrals *referral.Accountant
	Profiles  *profile.Service
	Admin     *admin.Service
}

// NewCore builds every engine component from a.
func NewCore(a *AppContext) *Core {
	cfg := a.Config
	ledger := repository.NewLedger(a.DB)
	dispatcher := events.NewDispatcher(a.Publisher, a.Logger.With("component", "events"))
	referrals := referral.New(cfg.Match.ReferralsPerUnlock, cfg.Match.ReferralLinkBase, a.Logger.With("component", "referral"))

	gateway := a.Gateway
	if gateway == nil {
		gateway = payment.EventGateway{Publisher: dispatcher}
	}

	return &Core{
		Ledger:    ledger,
		Events:    dispatcher,
		Selector:  selector.New(ledger.Users),
		Protocol:  protocol.New(ledger, dispatcher, a.Logger.With("component", "protocol")),
		Referrals: referrals,
		Unlocks: unlock.New(
			ledger,
			payment.NewSigner(cfg.Payment.TokenSecret),
			gateway,
			unlock.Pricing{Amount: cfg.Payment.Price, Currency: cfg.Payment.Currency},
			dispatcher,
			a.Logger.With("component", "unlock"),
		),
		Profiles: profile.New(ledger, referrals, a.Geocoder, profile.Options{
			AgeMin:         cfg.Match.AgeMin,
			AgeMax:         cfg.Match.AgeMax,
			GeocodeTimeout: cfg.Geocode.Timeout,
		}, a.Logger.With("component", "profile")),
		Admin: admin.New(ledger, dispatcher, a.Logger.With("component", "admin")),
	}
}

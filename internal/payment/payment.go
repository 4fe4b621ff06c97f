// Package payment holds the paid-unlock contract with the payment provider:
// invoice requests going out, confirmations coming back, and the signed
// correlation token that ties the two together.
package payment

import (
	"context"

	"github.com/google/uuid"

	"github.com/oggyb/trio-connect/internal/events"
)

// Invoice is what the provider is asked to bill.
type Invoice struct {
	ID       string
	MatchID  uint64
	PayerID  int64
	Amount   int64
	Currency string
	Token    string
}

// Confirmation is what the provider reports back after a successful charge.
type Confirmation struct {
	ChargeID string `json:"charge_id"`
	PayerID  int64  `json:"payer_id"`
	MatchID  uint64 `json:"match_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Token    string `json:"correlation_token"`
}

// Gateway creates invoices with the payment provider.
type Gateway interface {
	CreateInvoice(ctx context.Context, inv Invoice) error
}

// NewInvoiceID returns a fresh invoice id.
func NewInvoiceID() string {
	return uuid.NewString()
}

// EventGateway hands invoices to the transport as events; the transport owns
// the provider API call (e.g. a chat platform's native invoice).
type EventGateway struct {
	Publisher events.Publisher
}

func (g EventGateway) CreateInvoice(ctx context.Context, inv Invoice) error {
	return g.Publisher.Publish(ctx, events.InvoiceRequested{
		InvoiceID:        inv.ID,
		MatchID:          inv.MatchID,
		PayerID:          inv.PayerID,
		Amount:           inv.Amount,
		Currency:         inv.Currency,
		CorrelationToken: inv.Token,
	})
}

package payment_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/trio-connect/internal/events"
	"github.com/oggyb/trio-connect/internal/payment"
)

func TestSignerRoundTrip(t *testing.T) {
	s := payment.NewSigner("secret")
	token, err := s.Issue(12, 345)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "unlock:12:345:"))

	claims, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), claims.MatchID)
	assert.Equal(t, int64(345), claims.PayerID)
	assert.NotEmpty(t, claims.Nonce)
}

func TestSignerRejectsTampering(t *testing.T) {
	s := payment.NewSigner("secret")
	token, err := s.Issue(12, 345)
	require.NoError(t, err)

	forged := strings.Replace(token, ":345:", ":346:", 1)
	_, err = s.Parse(forged)
	assert.ErrorIs(t, err, payment.ErrBadToken)

	_, err = payment.NewSigner("other").Parse(token)
	assert.ErrorIs(t, err, payment.ErrBadToken)

	_, err = s.Parse("unlock:12:345")
	assert.ErrorIs(t, err, payment.ErrBadToken)
}

func TestEventGatewayPublishesInvoice(t *testing.T) {
	rec := &events.Recorder{}
	g := payment.EventGateway{Publisher: rec}

	err := g.CreateInvoice(context.Background(), payment.Invoice{
		ID: payment.NewInvoiceID(), MatchID: 1, PayerID: 2, Amount: 7, Currency: "XTR", Token: "t",
	})
	require.NoError(t, err)

	got := rec.Named("payment.invoice_requested")
	require.Len(t, got, 1)
	inv := got[0].(events.InvoiceRequested)
	assert.Equal(t, int64(7), inv.Amount)
	assert.Equal(t, "XTR", inv.Currency)
	assert.Equal(t, "t", inv.CorrelationToken)
}

// Package unlock guards the one-way per-side unlock flag on a match and the
// two ways to earn it: spending a free unlock credit or paying the fixed price.
package unlock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/trio-connect/internal/db"
	"github.com/oggyb/trio-connect/internal/events"
	"github.com/oggyb/trio-connect/internal/payment"
	"github.com/oggyb/trio-connect/internal/repository"
)

// Unlock methods.
const (
	MethodFree = "free"
	MethodPaid = "paid"
)

var (
	ErrMatchNotFound     = errors.New("match not found")
	ErrNotParticipant    = errors.New("not a participant of this match")
	ErrAlreadyUnlocked   = errors.New("already unlocked")
	ErrNoCredit          = errors.New("no free unlock credit")
	ErrHandleUnavailable = errors.New("counterpart has no handle to reveal")
	ErrPaymentMismatch   = errors.New("payment validation failed")
)

// Reason returns the user-facing failure reason for a precondition error,
// or "" for anything else.
func Reason(err error) string {
	for _, known := range []error{
		ErrMatchNotFound, ErrNotParticipant, ErrAlreadyUnlocked,
		ErrNoCredit, ErrHandleUnavailable, ErrPaymentMismatch,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return ""
}

// Outcome describes an unlock attempt.
type Outcome struct {
	MatchID uint64
	UserID  int64
	Method  string
	// Handle is the counterpart's handle when one can be revealed.
	Handle string
	// AlreadyUnlocked is set when the side was unlocked before this attempt.
	AlreadyUnlocked bool
}

// Ledger applies unlocks. The unlock flag and whatever pays for it (a credit
// or a payment receipt) are always written in one transaction.
type Ledger struct {
	ledger   *repository.Ledger
	signer   *payment.Signer
	gateway  payment.Gateway
	price    int64
	currency string
	events   *events.Dispatcher
	log      *slog.Logger
}

// Pricing is the fixed price of a paid unlock.
type Pricing struct {
	Amount   int64
	Currency string
}

// New creates an unlock Ledger.
func New(
	ledger *repository.Ledger,
	signer *payment.Signer,
	gateway payment.Gateway,
	pricing Pricing,
	dispatcher *events.Dispatcher,
	log *slog.Logger,
) *Ledger {
	return &Ledger{
		ledger:   ledger,
		signer:   signer,
		gateway:  gateway,
		price:    pricing.Amount,
		currency: pricing.Currency,
		events:   dispatcher,
		log:      log,
	}
}

// Pricing returns the configured price.
func (l *Ledger) Pricing() Pricing {
	return Pricing{Amount: l.price, Currency: l.currency}
}

// UnlockFree spends one free unlock to reveal the counterpart's handle.
//
// Preconditions are checked in this order, and the first failure is returned
// with nothing written: not a participant, already unlocked, no credit,
// handle unavailable. On ErrAlreadyUnlocked the Outcome still carries the
// handle when it can be shown.
func (l *Ledger) UnlockFree(ctx context.Context, userID int64, matchID uint64) (Outcome, error) {
	out := Outcome{MatchID: matchID, UserID: userID, Method: MethodFree}

	err := l.ledger.Atomic(ctx, func(tx *repository.Ledger) error {
		m, other, err := participantMatch(ctx, tx, matchID, userID)
		if err != nil {
			return err
		}
		handle, revealable := counterpartHandle(ctx, tx, other)

		if m.UnlockedFor(userID) {
			out.AlreadyUnlocked, out.Handle = true, handle
			return ErrAlreadyUnlocked
		}

		me, err := tx.Users.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if me.FreeUnlocks < 1 {
			return ErrNoCredit
		}
		if !revealable {
			return ErrHandleUnavailable
		}

		set, err := tx.Matches.SetUnlocked(ctx, m, userID)
		if err != nil {
			return err
		}
		if !set {
			out.AlreadyUnlocked, out.Handle = true, handle
			return ErrAlreadyUnlocked
		}
		consumed, err := tx.Users.ConsumeFreeUnlock(ctx, userID)
		if err != nil {
			return err
		}
		if !consumed {
			return ErrNoCredit
		}

		out.Handle = handle
		return nil
	})

	l.report(ctx, out, err)
	return out, err
}

// StartPaid asks the payment gateway to bill userID for unlocking matchID.
// The invoice carries a signed correlation token naming the match and payer.
func (l *Ledger) StartPaid(ctx context.Context, userID int64, matchID uint64) (payment.Invoice, error) {
	m, _, err := participantMatch(ctx, l.ledger, matchID, userID)
	if err != nil {
		return payment.Invoice{}, err
	}
	if m.UnlockedFor(userID) {
		return payment.Invoice{}, ErrAlreadyUnlocked
	}

	token, err := l.signer.Issue(matchID, userID)
	if err != nil {
		return payment.Invoice{}, fmt.Errorf("issue correlation token: %w", err)
	}
	inv := payment.Invoice{
		ID:       payment.NewInvoiceID(),
		MatchID:  matchID,
		PayerID:  userID,
		Amount:   l.price,
		Currency: l.currency,
		Token:    token,
	}
	if err := l.gateway.CreateInvoice(ctx, inv); err != nil {
		l.log.Error("create invoice failed", "match_id", matchID, "payer", userID, "err", err)
		return payment.Invoice{}, fmt.Errorf("create invoice: %w", err)
	}

	l.log.Info("invoice created", "invoice_id", inv.ID, "match_id", matchID, "payer", userID)
	return inv, nil
}

// PreCheckout validates a payment before the provider charges it.
// It runs the same checks as ConfirmPayment without writing anything.
func (l *Ledger) PreCheckout(ctx context.Context, c payment.Confirmation) error {
	claims, err := l.verify(c)
	if err != nil {
		return err
	}
	m, _, err := participantMatch(ctx, l.ledger, claims.MatchID, claims.PayerID)
	if err != nil {
		return err
	}
	if m.UnlockedFor(claims.PayerID) {
		return ErrAlreadyUnlocked
	}
	return nil
}

// ConfirmPayment grants a paid unlock after the provider reports a charge.
//
// Behavior:
//   - Currency and amount must match the configured price exactly, the token
//     must verify, and the paying identity must equal the token's payer.
//     Any mismatch is ErrPaymentMismatch and nothing is written.
//   - The receipt (unique per charge id) and the unlock flag are written in
//     one transaction. A replayed charge changes nothing and reports
//     ErrAlreadyUnlocked.
//   - A charge for a side that is already unlocked keeps the receipt and
//     reports ErrAlreadyUnlocked.
//   - The flag is set even when the counterpart has no handle; Outcome.Handle
//     is then empty.
func (l *Ledger) ConfirmPayment(ctx context.Context, c payment.Confirmation) (Outcome, error) {
	out := Outcome{MatchID: c.MatchID, UserID: c.PayerID, Method: MethodPaid}

	claims, err := l.verify(c)
	if err == nil && c.ChargeID == "" {
		err = fmt.Errorf("%w: missing charge id", ErrPaymentMismatch)
	}
	if err != nil {
		l.log.Warn("payment rejected", "charge_id", c.ChargeID, "payer", c.PayerID, "err", err)
		l.report(ctx, out, err)
		return out, err
	}
	out.MatchID = claims.MatchID

	err = l.ledger.Atomic(ctx, func(tx *repository.Ledger) error {
		m, other, err := participantMatch(ctx, tx, claims.MatchID, claims.PayerID)
		if err != nil {
			return err
		}
		out.Handle, _ = counterpartHandle(ctx, tx, other)

		recorded, err := tx.Payments.Record(ctx, &db.UnlockPayment{
			ChargeID: c.ChargeID,
			MatchID:  m.ID,
			PayerID:  claims.PayerID,
			Amount:   c.Amount,
			Currency: c.Currency,
		})
		if err != nil {
			return err
		}
		if !recorded {
			l.log.Info("payment replay ignored", "charge_id", c.ChargeID)
			out.AlreadyUnlocked = true
			return nil
		}

		set, err := tx.Matches.SetUnlocked(ctx, m, claims.PayerID)
		if err != nil {
			return err
		}
		if !set {
			l.log.Warn("payment for an unlocked side", "charge_id", c.ChargeID, "match_id", m.ID, "payer", claims.PayerID)
			out.AlreadyUnlocked = true
		}
		return nil
	})
	if err == nil && out.AlreadyUnlocked {
		err = ErrAlreadyUnlocked
	}

	l.report(ctx, out, err)
	return out, err
}

func (l *Ledger) verify(c payment.Confirmation) (payment.Claims, error) {
	if c.Currency != l.currency || c.Amount != l.price {
		return payment.Claims{}, fmt.Errorf("%w: expected %d %s, got %d %s",
			ErrPaymentMismatch, l.price, l.currency, c.Amount, c.Currency)
	}
	claims, err := l.signer.Parse(c.Token)
	if err != nil {
		return payment.Claims{}, fmt.Errorf("%w: %w", ErrPaymentMismatch, err)
	}
	if claims.PayerID != c.PayerID {
		return payment.Claims{}, fmt.Errorf("%w: payer %d does not own token for %d",
			ErrPaymentMismatch, c.PayerID, claims.PayerID)
	}
	if c.MatchID != 0 && c.MatchID != claims.MatchID {
		return payment.Claims{}, fmt.Errorf("%w: token is for match %d", ErrPaymentMismatch, claims.MatchID)
	}
	return claims, nil
}

// report logs the attempt and emits UnlockResult for every outcome the user
// should hear about. Infrastructure errors are only logged.
func (l *Ledger) report(ctx context.Context, out Outcome, err error) {
	reason := Reason(err)
	if err != nil && reason == "" {
		l.log.Error("unlock failed", "method", out.Method, "match_id", out.MatchID, "user", out.UserID, "err", err)
		return
	}

	ev := events.UnlockResult{
		UserID:  out.UserID,
		MatchID: out.MatchID,
		Method:  out.Method,
		Success: err == nil,
	}
	if err == nil || out.AlreadyUnlocked {
		ev.RevealedHandle = out.Handle
	}
	if err != nil {
		ev.FailureReason = reason
	}
	l.log.Info("unlock attempt", "method", out.Method, "match_id", out.MatchID, "user", out.UserID, "success", ev.Success, "reason", reason)
	l.events.Emit(ctx, ev)
}

func participantMatch(ctx context.Context, tx *repository.Ledger, matchID uint64, userID int64) (*db.Match, int64, error) {
	m, err := tx.Matches.Get(ctx, matchID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, ErrMatchNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	other, ok := m.Other(userID)
	if !ok {
		return nil, 0, ErrNotParticipant
	}
	return m, other, nil
}

func counterpartHandle(ctx context.Context, tx *repository.Ledger, id int64) (string, bool) {
	u, err := tx.Users.Get(ctx, id)
	if err != nil {
		return "", false
	}
	return u.RevealableHandle()
}

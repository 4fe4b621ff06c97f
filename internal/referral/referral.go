// Package referral credits referrers with free unlocks when the users they
// brought in finish their profiles.
package referral

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/oggyb/trio-connect/internal/db"
	"github.com/oggyb/trio-connect/internal/repository"
)

// StartPrefix marks a referral start parameter, e.g. "ref_42".
const StartPrefix = "ref_"

var (
	ErrSelfReferral    = errors.New("self-referral is not allowed")
	ErrUnknownReferrer = errors.New("referrer not found")
)

// Credit describes what a completion did for the referrer.
type Credit struct {
	ReferrerID int64
	// Count is the referrer's referral count after this completion.
	Count int64
	// UnlockGranted is set when Count reached a multiple of the threshold.
	UnlockGranted bool
}

// Summary is what a user sees about their own referrals.
type Summary struct {
	Link        string
	Count       int64
	FreeUnlocks int64
	// UntilNext is how many more completed referrals earn the next free unlock.
	UntilNext int64
}

// Accountant applies the referral rules. Every mutating method takes the
// transaction it must run in.
type Accountant struct {
	perUnlock int64
	linkBase  string
	log       *slog.Logger
}

// New creates an Accountant granting one free unlock per perUnlock completions.
func New(perUnlock int64, linkBase string, log *slog.Logger) *Accountant {
	if perUnlock < 1 {
		perUnlock = 1
	}
	return &Accountant{perUnlock: perUnlock, linkBase: linkBase, log: log}
}

// ParseStart extracts the referrer id from a start parameter.
func ParseStart(param string) (int64, bool) {
	raw, ok := strings.CutPrefix(strings.TrimSpace(param), StartPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Link returns the shareable referral link for userID.
func (a *Accountant) Link(userID int64) string {
	return a.linkBase + StartPrefix + strconv.FormatInt(userID, 10)
}

// Record stores referrerID as userID's referrer.
//
// Behavior:
//   - Self-referral and unknown referrers are rejected here, not at completion.
//   - The referrer is written once; later calls return false and change nothing.
func (a *Accountant) Record(ctx context.Context, tx *repository.Ledger, userID, referrerID int64) (bool, error) {
	if userID == referrerID {
		return false, ErrSelfReferral
	}
	if _, err := tx.Users.Get(ctx, referrerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrUnknownReferrer
		}
		return false, err
	}
	return tx.Users.SetReferredByOnce(ctx, userID, referrerID)
}

// CreditCompletion credits u's referrer for u finishing registration.
// Call it in the same transaction that marks u registered.
//
// Returns nil when there is nothing to credit: no referrer, referrer gone,
// or u was credited before. The referral_credited flip is conditional, so a
// retried completion cannot count twice.
func (a *Accountant) CreditCompletion(ctx context.Context, tx *repository.Ledger, u *db.User) (*Credit, error) {
	if u.ReferredBy == nil || *u.ReferredBy == u.ID || u.ReferralCredited {
		return nil, nil
	}
	referrerID := *u.ReferredBy

	if _, err := tx.Users.Get(ctx, referrerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			a.log.Info("referrer gone, nothing to credit", "user", u.ID, "referrer", referrerID)
			return nil, nil
		}
		return nil, err
	}

	flipped, err := tx.Users.MarkReferralCredited(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("mark referral credited: %w", err)
	}
	if !flipped {
		return nil, nil
	}

	count, err := tx.Users.IncrementReferralCount(ctx, referrerID)
	if err != nil {
		return nil, fmt.Errorf("increment referral count: %w", err)
	}

	credit := &Credit{ReferrerID: referrerID, Count: count}
	if count%a.perUnlock == 0 {
		if err := tx.Users.AddFreeUnlocks(ctx, referrerID, 1); err != nil {
			return nil, fmt.Errorf("add free unlock: %w", err)
		}
		credit.UnlockGranted = true
	}

	a.log.Info("referral credited", "user", u.ID, "referrer", referrerID, "count", count, "unlock_granted", credit.UnlockGranted)
	return credit, nil
}

// Summary reports userID's referral standing.
func (a *Accountant) Summary(ctx context.Context, ledger *repository.Ledger, userID int64) (Summary, error) {
	u, err := ledger.Users.Get(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Link:        a.Link(userID),
		Count:       u.ReferralCount,
		FreeUnlocks: u.FreeUnlocks,
		UntilNext:   a.perUnlock - u.ReferralCount%a.perUnlock,
	}, nil
}

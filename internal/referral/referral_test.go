package referral_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/trio-connect/internal/db"
	"github.com/oggyb/trio-connect/internal/db/dbtest"
	"github.com/oggyb/trio-connect/internal/logger"
	"github.com/oggyb/trio-connect/internal/referral"
	"github.com/oggyb/trio-connect/internal/repository"
)

func newAccountant() *referral.Accountant {
	return referral.New(3, "https://t.me/bot?start=", logger.Discard())
}

func TestParseStart(t *testing.T) {
	id, ok := referral.ParseStart("ref_42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "42", "ref_", "ref_x", "ref_-3", "promo_42"} {
		_, ok := referral.ParseStart(bad)
		assert.False(t, ok, bad)
	}
}

func TestRecordSetsReferrerOnce(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)
	ledger := repository.NewLedger(database)
	acc := newAccountant()

	for _, id := range []int64{1, 2, 3} {
		_, err := ledger.Users.Upsert(ctx, id, "u", nil)
		require.NoError(t, err)
	}

	ok, err := acc.Record(ctx, ledger, 3, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = acc.Record(ctx, ledger, 3, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	u, err := ledger.Users.Get(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, u.ReferredBy)
	assert.Equal(t, int64(1), *u.ReferredBy)

	_, err = acc.Record(ctx, ledger, 2, 2)
	assert.ErrorIs(t, err, referral.ErrSelfReferral)
	_, err = acc.Record(ctx, ledger, 2, 77)
	assert.ErrorIs(t, err, referral.ErrUnknownReferrer)
}

func complete(t *testing.T, ctx context.Context, ledger *repository.Ledger, acc *referral.Accountant, id int64) *referral.Credit {
	t.Helper()
	var credit *referral.Credit
	err := ledger.Atomic(ctx, func(tx *repository.Ledger) error {
		u, err := tx.Users.Get(ctx, id)
		if err != nil {
			return err
		}
		credit, err = acc.CreditCompletion(ctx, tx, u)
		return err
	})
	require.NoError(t, err)
	return credit
}

func TestEveryThirdCompletionGrantsFreeUnlock(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)
	ledger := repository.NewLedger(database)
	acc := newAccountant()

	_, err := ledger.Users.Upsert(ctx, 1, "referrer", nil)
	require.NoError(t, err)
	for id := int64(10); id < 16; id++ {
		_, err := ledger.Users.Upsert(ctx, id, "friend", nil)
		require.NoError(t, err)
		_, err = acc.Record(ctx, ledger, id, 1)
		require.NoError(t, err)
	}

	var granted []bool
	for id := int64(10); id < 16; id++ {
		c := complete(t, ctx, ledger, acc, id)
		require.NotNil(t, c)
		granted = append(granted, c.UnlockGranted)
	}
	assert.Equal(t, []bool{false, false, true, false, false, true}, granted)

	referrer, err := ledger.Users.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(6), referrer.ReferralCount)
	assert.Equal(t, int64(2), referrer.FreeUnlocks)
}

func TestCompletionCreditsOnlyOnce(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)
	ledger := repository.NewLedger(database)
	acc := newAccountant()

	_, err := ledger.Users.Upsert(ctx, 1, "referrer", nil)
	require.NoError(t, err)
	require.NoError(t, database.Model(&db.User{}).Where("id = ?", 1).Update("referral_count", 2).Error)
	_, err = ledger.Users.Upsert(ctx, 2, "friend", nil)
	require.NoError(t, err)
	_, err = acc.Record(ctx, ledger, 2, 1)
	require.NoError(t, err)

	c := complete(t, ctx, ledger, acc, 2)
	require.NotNil(t, c)
	assert.Equal(t, int64(3), c.Count)
	assert.True(t, c.UnlockGranted)

	assert.Nil(t, complete(t, ctx, ledger, acc, 2))

	referrer, err := ledger.Users.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), referrer.ReferralCount)
	assert.Equal(t, int64(1), referrer.FreeUnlocks)
}

func TestCompletionWithoutReferrer(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)
	ledger := repository.NewLedger(database)

	_, err := ledger.Users.Upsert(ctx, 5, "solo", nil)
	require.NoError(t, err)
	assert.Nil(t, complete(t, ctx, ledger, newAccountant(), 5))
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)
	ledger := repository.NewLedger(database)

	_, err := ledger.Users.Upsert(ctx, 7, "me", nil)
	require.NoError(t, err)
	require.NoError(t, database.Model(&db.User{}).Where("id = ?", 7).
		Updates(map[string]any{"referral_count": 4, "free_unlocks": 1}).Error)

	s, err := newAccountant().Summary(ctx, ledger, 7)
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/bot?start=ref_7", s.Link)
	assert.Equal(t, int64(4), s.Count)
	assert.Equal(t, int64(1), s.FreeUnlocks)
	assert.Equal(t, int64(2), s.UntilNext)
}

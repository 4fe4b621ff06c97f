package profile_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/trio-connect/internal/db"
	"github.com/oggyb/trio-connect/internal/db/dbtest"
	"github.com/oggyb/trio-connect/internal/geocode"
	"github.com/oggyb/trio-connect/internal/logger"
	"github.com/oggyb/trio-connect/internal/profile"
	"github.com/oggyb/trio-connect/internal/referral"
	"github.com/oggyb/trio-connect/internal/repository"
)

type stubGeo struct {
	place geocode.Place
	err   error
	calls int
}

func (s *stubGeo) Reverse(context.Context, float64, float64) (geocode.Place, error) {
	s.calls++
	return s.place, s.err
}

func newService(t *testing.T, geo geocode.Lookup) (*profile.Service, *repository.Ledger, *gorm.DB) {
	t.Helper()
	database := dbtest.Open(t)
	ledger := repository.NewLedger(database)
	acc := referral.New(3, "https://t.me/bot?start=", logger.Discard())
	svc := profile.New(ledger, acc, geo, profile.Options{AgeMin: 18, AgeMax: 99, GeocodeTimeout: time.Second}, logger.Discard())
	return svc, ledger, database
}

func strPtr(s string) *string { return &s }

func fill(t *testing.T, svc *profile.Service, id int64) profile.Update {
	t.Helper()
	ctx := context.Background()
	_, err := svc.SetAge(ctx, id, 30)
	require.NoError(t, err)
	_, err = svc.SetGender(ctx, id, db.GenderFemale)
	require.NoError(t, err)
	_, err = svc.SetLocation(ctx, id, 41.3, 69.2)
	require.NoError(t, err)
	up, err := svc.SetPhoto(ctx, id, "file-123")
	require.NoError(t, err)
	return up
}

func TestEnsureUserCreatesAndRefreshes(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t, nil)

	u, err := svc.EnsureUser(ctx, 5, "  Ann ", strPtr("@ann"), "")
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)
	require.NotNil(t, u.Handle)
	assert.Equal(t, "ann", *u.Handle)
	assert.False(t, u.Registered)

	u, err = svc.EnsureUser(ctx, 5, "", strPtr(""), "")
	require.NoError(t, err)
	assert.Equal(t, "User", u.Name)
	assert.Nil(t, u.Handle)
}

func TestEnsureUserRecordsReferral(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t, nil)

	_, err := svc.EnsureUser(ctx, 1, "ref", nil, "")
	require.NoError(t, err)

	u, err := svc.EnsureUser(ctx, 2, "new", nil, "ref_1")
	require.NoError(t, err)
	require.NotNil(t, u.ReferredBy)
	assert.Equal(t, int64(1), *u.ReferredBy)

	self, err := svc.EnsureUser(ctx, 3, "self", nil, "ref_3")
	require.NoError(t, err)
	assert.Nil(t, self.ReferredBy)

	ghost, err := svc.EnsureUser(ctx, 4, "ghost", nil, "ref_404")
	require.NoError(t, err)
	assert.Nil(t, ghost.ReferredBy)
}

func TestCompletingProfileRegistersAndCreditsReferrer(t *testing.T) {
	ctx := context.Background()
	geo := &stubGeo{place: geocode.Place{City: "Tashkent", Country: "Uzbekistan"}}
	svc, ledger, database := newService(t, geo)

	_, err := svc.EnsureUser(ctx, 1, "ref", nil, "")
	require.NoError(t, err)
	require.NoError(t, database.Model(&db.User{}).Where("id = ?", 1).Update("referral_count", 2).Error)
	_, err = svc.EnsureUser(ctx, 2, "new", strPtr("new"), "ref_1")
	require.NoError(t, err)

	up := fill(t, svc, 2)
	assert.True(t, up.JustRegistered)
	assert.True(t, up.User.Registered)
	assert.Equal(t, "Tashkent", up.User.City)
	assert.Equal(t, "Uzbekistan", up.User.Country)
	require.NotNil(t, up.Credit)
	assert.True(t, up.Credit.UnlockGranted)

	referrer, err := ledger.Users.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), referrer.ReferralCount)
	assert.Equal(t, int64(1), referrer.FreeUnlocks)

	// editing a registered profile does not credit again
	up, err = svc.SetPhoto(ctx, 2, "file-456")
	require.NoError(t, err)
	assert.False(t, up.JustRegistered)
	assert.Nil(t, up.Credit)

	referrer, err = ledger.Users.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), referrer.ReferralCount)
}

func TestGeocodeFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	geo := &stubGeo{err: errors.New("timeout")}
	svc, _, _ := newService(t, geo)

	_, err := svc.EnsureUser(ctx, 1, "a", nil, "")
	require.NoError(t, err)
	up, err := svc.SetLocation(ctx, 1, 10, 20)
	require.NoError(t, err)
	assert.Equal(t, geocode.FallbackCity, up.User.City)
	assert.Equal(t, geocode.FallbackCountry, up.User.Country)
	assert.Equal(t, 1, geo.calls)
}

func TestValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t, nil)
	_, err := svc.EnsureUser(ctx, 1, "a", nil, "")
	require.NoError(t, err)

	for _, age := range []int{17, 100, -1} {
		_, err := svc.SetAge(ctx, 1, age)
		assert.ErrorIs(t, err, profile.ErrInvalidAge, age)
	}
	for _, age := range []int{18, 99} {
		_, err := svc.SetAge(ctx, 1, age)
		assert.NoError(t, err, age)
	}

	_, err = svc.SetGender(ctx, 1, "female")
	assert.ErrorIs(t, err, profile.ErrInvalidGender)
	_, err = svc.SetLocation(ctx, 1, 91, 0)
	assert.ErrorIs(t, err, profile.ErrInvalidLocation)
	lat := 1.0
	_, err = svc.Apply(ctx, 1, profile.Draft{Latitude: &lat})
	assert.ErrorIs(t, err, profile.ErrInvalidLocation)
	_, err = svc.SetPhoto(ctx, 1, "  ")
	assert.ErrorIs(t, err, profile.ErrInvalidPhoto)
	_, err = svc.Apply(ctx, 1, profile.Draft{})
	assert.ErrorIs(t, err, profile.ErrEmptyUpdate)

	_, err = svc.SetAge(ctx, 404, 20)
	assert.ErrorIs(t, err, profile.ErrUnknownUser)
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	svc, ledger, _ := newService(t, nil)

	for _, id := range []int64{1, 2} {
		_, err := svc.EnsureUser(ctx, id, "u", nil, "")
		require.NoError(t, err)
	}
	_, _, err := ledger.Requests.CreatePending(ctx, 1, 2, "Friendship")
	require.NoError(t, err)
	_, _, err = ledger.Matches.CreateIfAbsent(ctx, 1, 2, "Friendship")
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, 1)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = svc.Get(ctx, 1)
	assert.ErrorIs(t, err, profile.ErrUnknownUser)
	_, err = ledger.Matches.FindPair(ctx, 1, 2)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	deleted, err = svc.Delete(ctx, 1)
	require.NoError(t, err)
	assert.False(t, deleted)
}

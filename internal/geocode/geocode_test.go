package geocode_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/trio-connect/internal/geocode"
	"github.com/oggyb/trio-connect/internal/logger"
)

type failingLookup struct{}

func (failingLookup) Reverse(context.Context, float64, float64) (geocode.Place, error) {
	return geocode.Place{}, errors.New("unavailable")
}

type slowLookup struct{}

func (slowLookup) Reverse(ctx context.Context, _, _ float64) (geocode.Place, error) {
	<-ctx.Done()
	return geocode.Place{}, ctx.Err()
}

func TestNominatimReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "trio-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "51.5", r.URL.Query().Get("lat"))
		_, _ = w.Write([]byte(`{"address":{"village":"Little Town","state":"Kent","country":"United Kingdom"}}`))
	}))
	defer srv.Close()

	n := geocode.NewNominatim(srv.URL, "trio-test")
	place, err := n.Reverse(context.Background(), 51.5, 0.1)
	require.NoError(t, err)
	assert.Equal(t, "Little Town", place.City)
	assert.Equal(t, "United Kingdom", place.Country)
}

func TestNominatimNoAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Unable to geocode"}`))
	}))
	defer srv.Close()

	_, err := geocode.NewNominatim(srv.URL, "ua").Reverse(context.Background(), 0, 0)
	assert.ErrorIs(t, err, geocode.ErrNoAddress)
}

func TestResolveFallsBackOnFailure(t *testing.T) {
	place := geocode.Resolve(context.Background(), failingLookup{}, 1, 2, time.Second, logger.Discard())
	assert.Equal(t, geocode.Place{City: geocode.FallbackCity, Country: geocode.FallbackCountry}, place)
}

func TestResolveFallsBackOnTimeout(t *testing.T) {
	start := time.Now()
	place := geocode.Resolve(context.Background(), slowLookup{}, 1, 2, 20*time.Millisecond, logger.Discard())
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, geocode.FallbackCity, place.City)
}

func TestResolveFillsMissingParts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"address":{"country":"Nepal"}}`))
	}))
	defer srv.Close()

	place := geocode.Resolve(context.Background(), geocode.NewNominatim(srv.URL, "ua"), 27.7, 85.3, time.Second, logger.Discard())
	assert.Equal(t, "Nearby Area", place.City)
	assert.Equal(t, "Nepal", place.Country)
}

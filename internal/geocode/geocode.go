package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Sentinels used when a coordinate cannot be resolved.
const (
	FallbackCity    = "Nearby Area"
	FallbackCountry = "Unknown"
)

// ErrNoAddress is returned when the provider answered without an address.
var ErrNoAddress = errors.New("geocode: no address for coordinates")

// Place is a coarse, displayable location.
type Place struct {
	City    string
	Country string
}

// Lookup resolves coordinates to a place.
type Lookup interface {
	Reverse(ctx context.Context, lat, lon float64) (Place, error)
}

// Resolve asks l for a place within timeout and fills any missing part with the
// sentinels. It never fails: profile writes must not depend on geocoding.
func Resolve(ctx context.Context, l Lookup, lat, lon float64, timeout time.Duration, log *slog.Logger) Place {
	place := Place{}
	if l != nil {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		p, err := l.Reverse(ctx, lat, lon)
		if err != nil {
			log.Warn("reverse geocode failed, using fallback", "lat", lat, "lon", lon, "err", err)
		} else {
			place = p
		}
	}
	if place.City == "" {
		place.City = FallbackCity
	}
	if place.Country == "" {
		place.Country = FallbackCountry
	}
	return place
}

// Nominatim is a Lookup backed by an OSM Nominatim compatible /reverse endpoint.
type Nominatim struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

// NewNominatim builds a client for baseURL (e.g. https://nominatim.openstreetmap.org/reverse).
func NewNominatim(baseURL, userAgent string) *Nominatim {
	return &Nominatim{
		BaseURL:   baseURL,
		UserAgent: userAgent,
		Client:    &http.Client{},
	}
}

type nominatimResponse struct {
	Address map[string]string `json:"address"`
}

// city precedence mirrors how Nominatim fills address parts for rural points.
var cityKeys = []string{"city", "town", "village", "county", "state", "region"}

func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64) (Place, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("accept-language", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Place{}, err
	}
	req.Header.Set("User-Agent", n.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return Place{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Place{}, fmt.Errorf("geocode status %d", resp.StatusCode)
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Place{}, fmt.Errorf("geocode decode: %w", err)
	}
	if len(body.Address) == 0 {
		return Place{}, ErrNoAddress
	}

	place := Place{Country: body.Address["country"]}
	for _, k := range cityKeys {
		if v := body.Address[k]; v != "" {
			place.City = v
			break
		}
	}
	return place, nil
}

package geocode

import (
	"context"
	"fmt"

	"github.com/kelvins/geocoder"

	"github.com/tidemap/enviro-aggregation/internal/series"
)

// Resolver reverse-geocodes a point into a human-readable place name for
// FetchResult.locationContext. It is optional: construct it only when a
// geocoding API key is configured.
type Resolver struct{}

// New configures the geocoder with the given API key.
func New(apiKey string) *Resolver {
	geocoder.ApiKey = apiKey
	return &Resolver{}
}

// Name resolves "City, Country" (or the formatted address when those fields
// are absent) for the location. Failures are returned to the caller, which
// treats them as cosmetic; they never affect the series result.
func (r *Resolver) Name(_ context.Context, loc series.Location) (string, error) {
	addresses, err := geocoder.GeocodingReverse(geocoder.Location{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
	})
	if err != nil {
		return "", err
	}
	if len(addresses) == 0 {
		return "", nil
	}

	a := addresses[0]
	if a.City != "" && a.Country != "" {
		return fmt.Sprintf("%s, %s", a.City, a.Country), nil
	}
	return a.FormatAddress(), nil
}

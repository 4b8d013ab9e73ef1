package series

import (
	"context"
	"encoding/json"

	"github.com/tidemap/enviro-aggregation/internal/params"
)

// Location is a geographic point.
type Location struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// FetchRequest is one aggregation call. Created fresh per call, never stored.
type FetchRequest struct {
	Location Location
	Range    DateRange
	Keys     []params.Key

	// StationID selects the tide-gauge flow for sea level when set.
	StationID string
}

// Record is one merged row: a timestamp plus every requested parameter,
// numeric or explicitly null. Immutable once returned.
type Record struct {
	Time   string
	Values map[params.Key]*float64
}

// MarshalJSON flattens the record into the wire shape the UI expects:
// {"time": "...", "waveHeight": 1.2, "temperature2m": null, ...}.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Values)+1)
	out["time"] = r.Time
	for k, v := range r.Values {
		if v == nil {
			out[string(k)] = nil
		} else {
			out[string(k)] = *v
		}
	}
	return json.Marshal(out)
}

// FetchResult is the top-level return value of one aggregation call.
// Success is false only when every reachable provider failed outright.
type FetchResult struct {
	RequestID       string    `json:"requestId"`
	Success         bool      `json:"success"`
	Data            []Record  `json:"data"`
	Error           string    `json:"error,omitempty"`
	Log             []LogStep `json:"log"`
	LocationContext string    `json:"locationContext,omitempty"`
}

// ProviderKind tags one upstream data source. Endpoint selection in the
// orchestrator is a single switch over this type.
type ProviderKind string

const (
	ProviderMarine    ProviderKind = "marine"
	ProviderForecast  ProviderKind = "weather-forecast"
	ProviderArchive   ProviderKind = "weather-archive"
	ProviderTideGauge ProviderKind = "tide-gauge"
)

// RawHourly is a provider response reduced to its hourly columns, before
// structural validation. Columns are keyed by upstream parameter name and
// hold raw decoded JSON values; a malformed (non-array) column is absent.
type RawHourly struct {
	Kind    ProviderKind
	Times   []string
	Columns map[string][]interface{}
}

// HourlyFetcher is implemented by the marine, forecast and archive clients.
type HourlyFetcher interface {
	Kind() ProviderKind
	FetchHourly(ctx context.Context, loc Location, r DateRange, upstreamNames []string) (*RawHourly, error)
}

// TideGaugeFetcher is implemented by the tide-gauge readings client.
type TideGaugeFetcher interface {
	FetchReadings(ctx context.Context, stationID string, r DateRange) (*RawHourly, error)
}

// LocationNamer resolves a human-readable place name for a point.
type LocationNamer interface {
	Name(ctx context.Context, loc Location) (string, error)
}

package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/tidemap/enviro-aggregation/internal/series"
)

const readingsLimit = 2000

// TideGaugeClient fetches observed tidal levels for a single station. The
// gauge API returns a flat items[] list of {dateTime, value} rather than
// parallel arrays, and enforces a hard maximum span of its own, independent
// of the general range sanitizer.
type TideGaugeClient struct {
	baseURL      string
	client       *http.Client
	breaker      *gobreaker.CircuitBreaker
	maxRangeDays int

	// seaLevelColumn keys the readings onto the marine sea-level upstream
	// name so the shared validator and merge path apply unchanged.
	seaLevelColumn string
}

func NewTideGaugeClient(client *http.Client, baseURL string, maxRangeDays int) *TideGaugeClient {
	if maxRangeDays <= 0 {
		maxRangeDays = 30
	}
	return &TideGaugeClient{
		baseURL:        baseURL,
		client:         client,
		breaker:        newBreaker("tide-gauge"),
		maxRangeDays:   maxRangeDays,
		seaLevelColumn: "sea_level_height_msl",
	}
}

type gaugeReading struct {
	DateTime string      `json:"dateTime"`
	Value    interface{} `json:"value"`
}

type gaugePayload struct {
	Items []gaugeReading `json:"items"`
}

// FetchReadings returns the station's tidal-level series re-shaped into the
// common hourly column form. A range wider than the gauge's limit fails
// immediately with a descriptive error; it is never silently truncated.
func (c *TideGaugeClient) FetchReadings(ctx context.Context, stationID string, r series.DateRange) (*series.RawHourly, error) {
	if stationID == "" {
		return nil, fmt.Errorf("tide gauge station id is required")
	}
	if r.Days() > c.maxRangeDays {
		return nil, fmt.Errorf("tide gauge supports at most %d days per request; %s spans %d days",
			c.maxRangeDays, r.String(), r.Days())
	}

	values := url.Values{}
	values.Set("parameter", "TidalLevel")
	values.Set("startdate", r.Start.Format("2006-01-02"))
	values.Set("enddate", r.End.Format("2006-01-02"))
	values.Set("_limit", fmt.Sprintf("%d", readingsLimit))

	u := fmt.Sprintf("%s/stations/%s/readings?%s", c.baseURL, url.PathEscape(stationID), values.Encode())
	body, err := fetchBody(ctx, c.client, c.breaker, series.ProviderTideGauge, u)
	if err != nil {
		return nil, err
	}

	var payload gaugePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &UpstreamError{Kind: series.ProviderTideGauge, Body: truncate(string(body), rawBodyLimit)}
	}

	raw := &series.RawHourly{
		Kind:    series.ProviderTideGauge,
		Times:   make([]string, 0, len(payload.Items)),
		Columns: map[string][]interface{}{c.seaLevelColumn: make([]interface{}, 0, len(payload.Items))},
	}
	for _, item := range payload.Items {
		raw.Times = append(raw.Times, item.DateTime)
		raw.Columns[c.seaLevelColumn] = append(raw.Columns[c.seaLevelColumn], item.Value)
	}
	return raw, nil
}

package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/tidemap/enviro-aggregation/internal/series"
)

// OpenMeteoClient fetches hourly parallel-array data from one Open-Meteo
// family endpoint. The marine, forecast and archive services share a query
// shape and differ only in base URL and wind unit handling, so one client
// type serves all three kinds.
type OpenMeteoClient struct {
	kind    series.ProviderKind
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewMarineClient targets the marine endpoint (waves, sea level, SST).
func NewMarineClient(client *http.Client, baseURL string) *OpenMeteoClient {
	return &OpenMeteoClient{
		kind:    series.ProviderMarine,
		baseURL: baseURL,
		client:  client,
		breaker: newBreaker("marine"),
	}
}

// NewForecastClient targets the weather forecast endpoint, used when the
// requested range reaches into the present or future.
func NewForecastClient(client *http.Client, baseURL string) *OpenMeteoClient {
	return &OpenMeteoClient{
		kind:    series.ProviderForecast,
		baseURL: baseURL,
		client:  client,
		breaker: newBreaker("weather-forecast"),
	}
}

// NewArchiveClient targets the historical archive endpoint, used for ranges
// that lie entirely in the past. Same query shape, different retention.
func NewArchiveClient(client *http.Client, baseURL string) *OpenMeteoClient {
	return &OpenMeteoClient{
		kind:    series.ProviderArchive,
		baseURL: baseURL,
		client:  client,
		breaker: newBreaker("weather-archive"),
	}
}

func (c *OpenMeteoClient) Kind() series.ProviderKind {
	return c.kind
}

// FetchHourly requests the named upstream parameters for one location and
// range and returns the raw hourly columns.
func (c *OpenMeteoClient) FetchHourly(ctx context.Context, loc series.Location, r series.DateRange, upstreamNames []string) (*series.RawHourly, error) {
	if len(upstreamNames) == 0 {
		return nil, fmt.Errorf("%s: no parameters requested", c.kind)
	}

	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%.4f", loc.Latitude))
	values.Set("longitude", fmt.Sprintf("%.4f", loc.Longitude))
	values.Set("start_date", r.Start.Format("2006-01-02"))
	values.Set("end_date", r.End.Format("2006-01-02"))
	values.Set("hourly", strings.Join(upstreamNames, ","))
	values.Set("timezone", "UTC")
	if c.kind == series.ProviderForecast || c.kind == series.ProviderArchive {
		values.Set("wind_speed_unit", "ms")
	}

	body, err := fetchBody(ctx, c.client, c.breaker, c.kind, c.baseURL+"?"+values.Encode())
	if err != nil {
		return nil, err
	}
	return decodeHourly(body, c.kind)
}

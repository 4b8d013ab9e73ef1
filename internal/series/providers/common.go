package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/tidemap/enviro-aggregation/internal/series"
)

const rawBodyLimit = 500

// UpstreamError is a provider failure carrying whatever the upstream said,
// so non-JSON error pages still show up verbatim in the diagnostic trace.
type UpstreamError struct {
	Kind       series.ProviderKind
	StatusCode int
	Reason     string
	Body       string
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Reason != "":
		return fmt.Sprintf("%s provider error: %s", e.Kind, e.Reason)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s provider returned HTTP %d: %s", e.Kind, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("%s provider error: %s", e.Kind, e.Body)
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// fetchBody issues one GET and returns the full response body. The body is
// always read to completion before any parsing so that error pages survive
// for the trace. Environmental data is time-sensitive, so caches are
// bypassed explicitly. The breaker fails fast while an upstream is known
// bad; there is no retry here.
func fetchBody(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, kind series.ProviderKind, url string) ([]byte, error) {
	result, err := cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Cache-Control", "no-cache")

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &UpstreamError{
				Kind:       kind,
				StatusCode: resp.StatusCode,
				Body:       truncate(string(body), rawBodyLimit),
			}
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return body, nil
}

// hourlyEnvelope mirrors the Open-Meteo family response shape, including the
// explicit error flag some failures arrive under with a 200 status.
type hourlyEnvelope struct {
	Hourly map[string]json.RawMessage `json:"hourly"`
	Error  bool                       `json:"error"`
	Reason string                     `json:"reason"`
}

// decodeHourly parses a parallel-array hourly payload into RawHourly.
// Columns that are not JSON arrays are left absent; the validator downgrades
// them per parameter instead of failing the payload.
func decodeHourly(body []byte, kind series.ProviderKind) (*series.RawHourly, error) {
	var env hourlyEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &UpstreamError{Kind: kind, Body: truncate(string(body), rawBodyLimit)}
	}
	if env.Error {
		return nil, &UpstreamError{Kind: kind, Reason: env.Reason}
	}

	raw := &series.RawHourly{
		Kind:    kind,
		Columns: make(map[string][]interface{}, len(env.Hourly)),
	}

	if t, ok := env.Hourly["time"]; ok {
		if err := json.Unmarshal(t, &raw.Times); err != nil {
			raw.Times = nil
		}
	}

	for name, rawCol := range env.Hourly {
		if name == "time" {
			continue
		}
		var col []interface{}
		if err := json.Unmarshal(rawCol, &col); err != nil {
			continue
		}
		raw.Columns[name] = col
	}

	return raw, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "… (truncated)"
}

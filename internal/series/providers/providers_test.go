package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tidemap/enviro-aggregation/internal/series"
)

func testRange(t *testing.T) series.DateRange {
	t.Helper()
	r, err := series.ParseDateRange("2025-05-17", "2025-05-20")
	if err != nil {
		t.Fatalf("fixture range: %v", err)
	}
	return r
}

func testLocation() series.Location {
	return series.Location{Latitude: 51.71, Longitude: -5.04}
}

func TestMarineClientQueryAndDecode(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"hourly":{"time":["2025-05-17T00:00","2025-05-17T01:00"],"wave_height":[1.2,null]}}`))
	}))
	defer srv.Close()

	client := NewMarineClient(srv.Client(), srv.URL)
	raw, err := client.FetchHourly(context.Background(), testLocation(), testRange(t), []string{"wave_height"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"latitude=51.7100",
		"longitude=-5.0400",
		"start_date=2025-05-17",
		"end_date=2025-05-20",
		"hourly=wave_height",
	} {
		if !strings.Contains(gotQuery, want) {
			t.Fatalf("query missing %q: %s", want, gotQuery)
		}
	}
	if strings.Contains(gotQuery, "wind_speed_unit") {
		t.Fatalf("marine query must not carry wind_speed_unit: %s", gotQuery)
	}

	if len(raw.Times) != 2 {
		t.Fatalf("expected 2 timestamps, got %d", len(raw.Times))
	}
	col := raw.Columns["wave_height"]
	if len(col) != 2 {
		t.Fatalf("expected 2 values, got %d", len(col))
	}
	if col[1] != nil {
		t.Fatalf("null value must survive decoding, got %v", col[1])
	}
}

func TestForecastClientSetsWindUnit(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"hourly":{"time":["2025-05-17T00:00"],"wind_speed_10m":[4.2]}}`))
	}))
	defer srv.Close()

	client := NewForecastClient(srv.Client(), srv.URL)
	if _, err := client.FetchHourly(context.Background(), testLocation(), testRange(t), []string{"wind_speed_10m"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotQuery, "wind_speed_unit=ms") {
		t.Fatalf("forecast query missing wind_speed_unit=ms: %s", gotQuery)
	}
}

func TestClientSurfacesNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>upstream maintenance</html>"))
	}))
	defer srv.Close()

	client := NewMarineClient(srv.Client(), srv.URL)
	_, err := client.FetchHourly(context.Background(), testLocation(), testRange(t), []string{"wave_height"})
	if err == nil {
		t.Fatal("expected an error for a 502 response")
	}
	if !strings.Contains(err.Error(), "upstream maintenance") {
		t.Fatalf("raw error body must be preserved, got %q", err)
	}
	if !strings.Contains(err.Error(), "502") {
		t.Fatalf("status code must be reported, got %q", err)
	}
}

func TestClientSurfacesExplicitErrorFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":true,"reason":"Start date out of allowed range"}`))
	}))
	defer srv.Close()

	client := NewMarineClient(srv.Client(), srv.URL)
	_, err := client.FetchHourly(context.Background(), testLocation(), testRange(t), []string{"wave_height"})
	if err == nil {
		t.Fatal("expected an error for an error:true body")
	}
	if !strings.Contains(err.Error(), "Start date out of allowed range") {
		t.Fatalf("upstream reason must be carried, got %q", err)
	}
}

func TestClientSetsNoCacheHeader(t *testing.T) {
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("Cache-Control")
		w.Write([]byte(`{"hourly":{"time":["2025-05-17T00:00"],"wave_height":[1.0]}}`))
	}))
	defer srv.Close()

	client := NewMarineClient(srv.Client(), srv.URL)
	if _, err := client.FetchHourly(context.Background(), testLocation(), testRange(t), []string{"wave_height"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotHeader != "no-cache" {
		t.Fatalf("expected Cache-Control: no-cache, got %q", gotHeader)
	}
}

func TestDecodeSkipsNonArrayColumns(t *testing.T) {
	raw, err := decodeHourly([]byte(`{"hourly":{"time":["t1"],"wave_height":"oops","wave_period":[5.0]}}`), series.ProviderMarine)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := raw.Columns["wave_height"]; ok {
		t.Fatal("non-array column must be dropped for the validator to degrade")
	}
	if _, ok := raw.Columns["wave_period"]; !ok {
		t.Fatal("sibling array column must survive")
	}
}

func TestTideGaugeRejectsWideRange(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := NewTideGaugeClient(srv.Client(), srv.URL, 30)
	wide := series.DateRange{
		Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	_, err := client.FetchReadings(context.Background(), "E70024", wide)
	if err == nil {
		t.Fatal("expected an error for a range beyond the gauge limit")
	}
	if !strings.Contains(err.Error(), "30 days") {
		t.Fatalf("error must name the limit, got %q", err)
	}
	if called {
		t.Fatal("over-limit range must fail before any HTTP call")
	}
}

func TestTideGaugeTransformsItems(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"items":[
			{"dateTime":"2025-05-17T00:00:00Z","value":0.42},
			{"dateTime":"2025-05-17T00:15:00Z","value":null},
			{"dateTime":"2025-05-17T00:30:00Z","value":0.47}
		]}`))
	}))
	defer srv.Close()

	client := NewTideGaugeClient(srv.Client(), srv.URL, 30)
	raw, err := client.FetchReadings(context.Background(), "E70024", testRange(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/stations/E70024/readings" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	for _, want := range []string{"parameter=TidalLevel", "startdate=2025-05-17", "enddate=2025-05-20", "_limit=2000"} {
		if !strings.Contains(gotQuery, want) {
			t.Fatalf("query missing %q: %s", want, gotQuery)
		}
	}

	if len(raw.Times) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(raw.Times))
	}
	col := raw.Columns["sea_level_height_msl"]
	if len(col) != 3 {
		t.Fatalf("expected 3 values under the sea level column, got %d", len(col))
	}
	if col[0] != 0.42 || col[1] != nil {
		t.Fatalf("values not carried through: %v", col)
	}
}

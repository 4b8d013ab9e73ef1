package series

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/tidemap/enviro-aggregation/internal/params"
)

func fv(v float64) *float64 { return &v }

func TestMergeNullFillsAcrossProviders(t *testing.T) {
	a := &Columns{
		Kind:   ProviderMarine,
		Times:  []string{"2025-05-17T00:00"},
		Values: map[params.Key][]*float64{params.WaveHeight: {fv(1.2)}},
	}
	b := &Columns{
		Kind:   ProviderArchive,
		Times:  []string{"2025-05-17T00:00"},
		Values: map[params.Key][]*float64{params.Temperature2m: {fv(14.5)}},
	}

	requested := []params.Key{params.WaveHeight, params.Temperature2m, params.WindSpeed10m}
	records := Merge([]*Columns{a, b}, requested)

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]

	if got := rec.Values[params.WaveHeight]; got == nil || *got != 1.2 {
		t.Fatalf("waveHeight not populated: %v", got)
	}
	if got := rec.Values[params.Temperature2m]; got == nil || *got != 14.5 {
		t.Fatalf("temperature2m not populated: %v", got)
	}
	v, present := rec.Values[params.WindSpeed10m]
	if !present {
		t.Fatal("windSpeed10m missing from record; must be explicit null")
	}
	if v != nil {
		t.Fatalf("windSpeed10m should be null, got %v", *v)
	}
}

func TestMergeRecordShapeIsUniform(t *testing.T) {
	a := &Columns{
		Kind:  ProviderMarine,
		Times: []string{"2025-05-17T00:00", "2025-05-17T01:00"},
		Values: map[params.Key][]*float64{
			params.WaveHeight: {fv(1.0), fv(1.1)},
		},
	}
	b := &Columns{
		Kind:  ProviderArchive,
		Times: []string{"2025-05-17T01:00", "2025-05-17T02:00"},
		Values: map[params.Key][]*float64{
			params.Temperature2m: {fv(10), fv(11)},
		},
	}

	requested := []params.Key{params.WaveHeight, params.Temperature2m}
	records := Merge([]*Columns{a, b}, requested)

	if len(records) != 3 {
		t.Fatalf("expected 3 distinct timestamps, got %d", len(records))
	}
	for _, rec := range records {
		if len(rec.Values) != len(requested) {
			t.Fatalf("record at %s has %d keys, want %d", rec.Time, len(rec.Values), len(requested))
		}
		for _, k := range requested {
			if _, ok := rec.Values[k]; !ok {
				t.Fatalf("record at %s missing key %s", rec.Time, k)
			}
		}
	}
}

func TestMergeSortsByParsedTime(t *testing.T) {
	a := &Columns{
		Kind:  ProviderMarine,
		Times: []string{"2025-05-17T10:00", "2025-05-17T02:00", "2025-05-17T21:00"},
		Values: map[params.Key][]*float64{
			params.WaveHeight: {fv(1), fv(2), fv(3)},
		},
	}

	records := Merge([]*Columns{a}, []params.Key{params.WaveHeight})
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i := 1; i < len(records); i++ {
		prev, _ := parseTimestamp(records[i-1].Time)
		cur, _ := parseTimestamp(records[i].Time)
		if prev.After(cur) {
			t.Fatalf("records out of order: %s before %s", records[i-1].Time, records[i].Time)
		}
	}
}

func TestMergeIsDeterministic(t *testing.T) {
	a := &Columns{
		Kind:  ProviderMarine,
		Times: []string{"2025-05-17T03:00", "2025-05-17T00:00", "2025-05-17T01:00"},
		Values: map[params.Key][]*float64{
			params.WaveHeight: {fv(0.5), nil, fv(0.7)},
		},
	}
	b := &Columns{
		Kind:  ProviderArchive,
		Times: []string{"2025-05-17T01:00", "2025-05-17T02:00"},
		Values: map[params.Key][]*float64{
			params.Temperature2m: {fv(9.1), fv(9.3)},
		},
	}
	requested := []params.Key{params.WaveHeight, params.Temperature2m}

	first, err := json.Marshal(Merge([]*Columns{a, b}, requested))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := json.Marshal(Merge([]*Columns{a, b}, requested))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("merge output differs between runs:\n%s\n%s", first, again)
		}
	}
}

func TestMergeEmptyInput(t *testing.T) {
	records := Merge(nil, []params.Key{params.WaveHeight})
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestRecordMarshalFlattens(t *testing.T) {
	rec := Record{
		Time: "2025-05-17T00:00",
		Values: map[params.Key]*float64{
			params.WaveHeight:    fv(1.5),
			params.Temperature2m: nil,
		},
	}
	out, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["time"] != "2025-05-17T00:00" {
		t.Fatalf("time missing or wrong: %v", decoded["time"])
	}
	if decoded["waveHeight"] != 1.5 {
		t.Fatalf("waveHeight wrong: %v", decoded["waveHeight"])
	}
	v, ok := decoded["temperature2m"]
	if !ok || v != nil {
		t.Fatalf("temperature2m must be an explicit null, got %v (present=%v)", v, ok)
	}
}

package series

import (
	"sort"
	"time"

	"github.com/tidemap/enviro-aggregation/internal/params"
)

// Merge folds validated per-provider columns into one record per distinct
// timestamp. Every requested key is present on every record, numeric or
// null, regardless of which providers covered which timestamps. Output is
// sorted ascending by parsed time, so arrival order of the underlying
// fetches never shows through.
func Merge(columns []*Columns, requested []params.Key) []Record {
	byTime := make(map[string]map[params.Key]*float64)

	for _, c := range columns {
		if c == nil {
			continue
		}
		for i, ts := range c.Times {
			entry, ok := byTime[ts]
			if !ok {
				entry = make(map[params.Key]*float64, len(requested))
				byTime[ts] = entry
			}
			for key, vals := range c.Values {
				entry[key] = vals[i]
			}
		}
	}

	records := make([]Record, 0, len(byTime))
	for ts, entry := range byTime {
		for _, key := range requested {
			if _, ok := entry[key]; !ok {
				entry[key] = nil
			}
		}
		records = append(records, Record{Time: ts, Values: entry})
	}

	sort.Slice(records, func(i, j int) bool {
		ti, iok := parseTimestamp(records[i].Time)
		tj, jok := parseTimestamp(records[j].Time)
		if iok && jok && !ti.Equal(tj) {
			return ti.Before(tj)
		}
		// Unparseable timestamps sort by raw string for determinism.
		return records[i].Time < records[j].Time
	})

	return records
}

// timestampLayouts covers the grids the providers emit: Open-Meteo's
// minute-resolution ISO form and the tide gauge's RFC3339 readings.
var timestampLayouts = []string{
	"2006-01-02T15:04",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

package journal

import (
	"sync"
	"time"

	"github.com/tidemap/enviro-aggregation/internal/series"
)

// Entry summarizes one completed aggregation call for the diagnostics
// endpoint. The journal is not a cache: it is never consulted to answer a
// series request.
type Entry struct {
	RequestID string          `json:"requestId"`
	At        time.Time       `json:"at"`
	Location  series.Location `json:"location"`
	Start     string          `json:"start"`
	End       string          `json:"end"`
	Success   bool            `json:"success"`
	Rows      int             `json:"rows"`
	Error     string          `json:"error,omitempty"`
	Log       []series.LogStep `json:"log"`
}

// Journal is a concurrency-safe, bounded in-memory list of recent fetch
// outcomes, retained by count and by age.
type Journal struct {
	mu sync.RWMutex

	entries    []Entry
	maxEntries int           // max retained entries (<= 0 = unlimited)
	maxAge     time.Duration // max entry age (<= 0 = unlimited)
}

// New creates a Journal with the given retention limits.
func New(maxEntries int, maxAge time.Duration) *Journal {
	return &Journal{
		maxEntries: maxEntries,
		maxAge:     maxAge,
	}
}

// Record appends an entry and enforces retention.
func (j *Journal) Record(e Entry) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries = append(j.entries, e)

	if j.maxEntries > 0 && len(j.entries) > j.maxEntries {
		over := len(j.entries) - j.maxEntries
		j.entries = j.entries[over:]
	}

	if j.maxAge > 0 {
		cutoff := time.Now().Add(-j.maxAge)
		i := 0
		for ; i < len(j.entries); i++ {
			if !j.entries[i].At.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			j.entries = j.entries[i:]
		}
	}
}

// Recent returns retained entries, newest first.
func (j *Journal) Recent() []Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]Entry, len(j.entries))
	for i, e := range j.entries {
		out[len(j.entries)-1-i] = e
	}
	return out
}

// Len reports the number of retained entries.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}

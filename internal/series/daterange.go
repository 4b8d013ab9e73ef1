package series

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// DateRange is an inclusive calendar date pair, held at UTC midnight.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange parses "YYYY-MM-DD" endpoints. Inversion is checked later
// by SanitizeRange so the error lands in the diagnostic trace.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.ParseInLocation(dateLayout, start, time.UTC)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid start date %q: want YYYY-MM-DD", start)
	}
	e, err := time.ParseInLocation(dateLayout, end, time.UTC)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid end date %q: want YYYY-MM-DD", end)
	}
	return DateRange{Start: s, End: e}, nil
}

func (r DateRange) String() string {
	return r.Start.Format(dateLayout) + " to " + r.End.Format(dateLayout)
}

// Days returns the span of the range in whole days.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// Range-policy thresholds. The upstream providers reject ranges far in the
// future or implausibly old, so such inputs are rebased onto a nearby valid
// window instead of surfacing a raw provider error.
const (
	futureSlackDays   = 5    // starts this close to now are gently rebased
	safeEndOffsetDays = 7    // rebased windows end this many days ago
	nearEndOffsetDays = 3    // near-future ends are pulled back this far
	staleStartDays    = 1825 // starts older than ~5 years are treated as garbage
)

// SanitizeRange normalizes a caller-supplied range into one the providers
// can answer. An inverted range is an error, never silently swapped. When a
// rebase happens, the returned note names the old and new ranges; it is
// empty for a pass-through. capDays bounds the length of any substituted
// window (it deliberately truncates very long historical queries; tune via
// config, see HISTORY_CAP_DAYS).
func SanitizeRange(r DateRange, now time.Time, capDays int) (DateRange, string, error) {
	if r.Start.After(r.End) {
		return DateRange{}, "", fmt.Errorf("start date %s is after end date %s",
			r.Start.Format(dateLayout), r.End.Format(dateLayout))
	}
	if capDays <= 0 {
		capDays = 90
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	daysSinceStart := int(today.Sub(r.Start).Hours() / 24)
	duration := r.Days()
	if duration > capDays {
		duration = capDays
	}

	adjusted := r
	switch {
	case daysSinceStart < -futureSlackDays:
		// Entirely too far in the future; substitute a recent window.
		adjusted.End = today.AddDate(0, 0, -safeEndOffsetDays)
		adjusted.Start = adjusted.End.AddDate(0, 0, -duration)

	case daysSinceStart < 0:
		// Starts a few days ahead; pull the end back to data we have.
		adjusted.End = today.AddDate(0, 0, -nearEndOffsetDays)
		if r.Start.After(today) || adjusted.Start.After(adjusted.End) {
			adjusted.Start = adjusted.End.AddDate(0, 0, -duration)
		}

	case daysSinceStart > staleStartDays:
		// Implausibly old start, most likely a malformed date.
		adjusted.End = today.AddDate(0, 0, -safeEndOffsetDays)
		adjusted.Start = adjusted.End.AddDate(0, 0, -duration)

	default:
		return r, "", nil
	}

	note := fmt.Sprintf("Requested range %s is outside provider coverage; using %s instead",
		r.String(), adjusted.String())
	return adjusted, note, nil
}

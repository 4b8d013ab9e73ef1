package series

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/tidemap/enviro-aggregation/internal/params"
)

var validate = validator.New()

// ServiceConfig carries the orchestrator's tunables.
type ServiceConfig struct {
	// FetchTimeout bounds every provider call; a hung upstream becomes a
	// provider failure instead of hanging the aggregation.
	FetchTimeout time.Duration

	// HistoryCapDays bounds substituted windows in range sanitization.
	HistoryCapDays int

	// TraceMaxSteps bounds the diagnostic trace.
	TraceMaxSteps int

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Service is the fetch orchestrator: it selects providers for a request,
// runs the selected fetches concurrently, applies the tide-gauge fallback
// hop, and merges everything into one ordered record set. It holds no
// per-call state; every call is independent.
type Service struct {
	marine   HourlyFetcher
	forecast HourlyFetcher
	archive  HourlyFetcher
	gauge    TideGaugeFetcher
	namer    LocationNamer

	fetchTimeout time.Duration
	historyCap   int
	traceMax     int
	now          func() time.Time
}

// NewService creates a Service. namer may be nil, in which case results
// carry no locationContext.
func NewService(marine, forecast, archive HourlyFetcher, gauge TideGaugeFetcher, namer LocationNamer, cfg ServiceConfig) *Service {
	s := &Service{
		marine:       marine,
		forecast:     forecast,
		archive:      archive,
		gauge:        gauge,
		namer:        namer,
		fetchTimeout: cfg.FetchTimeout,
		historyCap:   cfg.HistoryCapDays,
		traceMax:     cfg.TraceMaxSteps,
		now:          cfg.Now,
	}
	if s.fetchTimeout <= 0 {
		s.fetchTimeout = 15 * time.Second
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// outcome is the result of one provider slot. cols and err can coexist:
// the tide flow may fail on the gauge yet still deliver fallback columns.
type outcome struct {
	kind ProviderKind
	cols *Columns
	err  error
}

// Fetch runs the whole aggregation pipeline for one request. It never
// panics across this boundary; callers always receive a structured result
// with a diagnostic log, even on total failure.
func (s *Service) Fetch(ctx context.Context, req FetchRequest) FetchResult {
	trace := NewTrace(s.traceMax)
	res := FetchResult{RequestID: uuid.NewString(), Data: []Record{}}

	trace.Append(StatusInfo, fmt.Sprintf("Aggregating environmental data for %.4f, %.4f", req.Location.Latitude, req.Location.Longitude), "")

	if err := validate.Struct(req.Location); err != nil {
		trace.Append(StatusError, "Invalid coordinates", err.Error())
		res.Error = fmt.Sprintf("invalid coordinates: latitude=%v longitude=%v", req.Location.Latitude, req.Location.Longitude)
		res.Log = trace.Steps()
		return res
	}

	descs, unknown := params.Resolve(req.Keys)
	if len(unknown) > 0 {
		trace.Append(StatusWarning, "Ignoring unrecognized parameters", strings.Join(unknown, ", "))
	}
	if len(descs) == 0 {
		trace.Append(StatusInfo, "No recognized parameters requested; nothing to fetch", "")
		res.Success = true
		res.Log = trace.Steps()
		return res
	}

	now := s.now()
	adjusted, note, err := SanitizeRange(req.Range, now, s.historyCap)
	if err != nil {
		trace.Append(StatusError, "Invalid date range", err.Error())
		res.Error = err.Error()
		res.Log = trace.Steps()
		return res
	}
	if note != "" {
		trace.Append(StatusWarning, "Adjusted requested date range", note)
	}

	groups := params.GroupBySource(descs)

	// When a station is supplied, sea level is served by the tide-gauge
	// flow and removed from the general marine fetch.
	marineDescs := groups.Marine
	var tideDesc *params.Descriptor
	if req.StationID != "" {
		kept := make([]params.Descriptor, 0, len(groups.Marine))
		for _, d := range groups.Marine {
			if d.Key == params.SeaLevelHeightMsl {
				dd := d
				tideDesc = &dd
				continue
			}
			kept = append(kept, d)
		}
		marineDescs = kept
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	// Fixed slots keep top-level error selection deterministic regardless
	// of which concurrent fetch settles first.
	outcomes := make([]*outcome, 3)
	var wg sync.WaitGroup

	if len(marineDescs) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[0] = s.runHourly(fetchCtx, s.marine, req.Location, adjusted, marineDescs, trace)
		}()
	}

	if len(groups.Weather) > 0 {
		// Archive and forecast are distinct services with different
		// retention windows; pick by whether the range is fully past.
		client := s.forecast
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if adjusted.End.Before(today) {
			client = s.archive
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[1] = s.runHourly(fetchCtx, client, req.Location, adjusted, groups.Weather, trace)
		}()
	}

	if tideDesc != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[2] = s.runTide(fetchCtx, req.Location, req.StationID, adjusted, *tideDesc, trace)
		}()
	}

	wg.Wait()

	var (
		all       []*Columns
		firstErr  error
		failed    int
		succeeded int
	)
	for _, o := range outcomes {
		if o == nil {
			continue
		}
		if o.err != nil && firstErr == nil {
			firstErr = o.err
		}
		if o.cols != nil {
			all = append(all, o.cols)
			succeeded++
		} else if o.err != nil {
			failed++
		}
	}

	res.Success = failed == 0 || succeeded > 0
	if firstErr != nil {
		res.Error = firstErr.Error()
	}

	res.Data = Merge(all, params.Keys(descs))
	if len(res.Data) == 0 && res.Success {
		trace.Append(StatusWarning, "No data points available for the requested range and location", "")
	} else if len(res.Data) > 0 {
		trace.Append(StatusSuccess, fmt.Sprintf("Merged %d records from %d source(s)", len(res.Data), succeeded), "")
	}

	if s.namer != nil {
		if name, nerr := s.namer.Name(ctx, req.Location); nerr == nil && name != "" {
			res.LocationContext = name
		}
	}

	res.Log = trace.Steps()
	return res
}

// runHourly executes one marine/weather fetch slot: fetch, validate,
// resolve the pending trace step.
func (s *Service) runHourly(ctx context.Context, client HourlyFetcher, loc Location, r DateRange, descs []params.Descriptor, trace *Trace) *outcome {
	kind := client.Kind()
	step := trace.Append(StatusPending, fmt.Sprintf("Fetching %s data (%d parameters)", kind, len(descs)), "")

	raw, err := client.FetchHourly(ctx, loc, r, params.UpstreamNames(descs))
	if err != nil {
		trace.Resolve(step, StatusError, fmt.Sprintf("%s fetch failed", kind), err.Error())
		return &outcome{kind: kind, err: err}
	}

	cols, err := ValidateHourly(raw, descs, trace)
	if err != nil {
		trace.Resolve(step, StatusError, fmt.Sprintf("%s response unusable", kind), err.Error())
		return &outcome{kind: kind, err: err}
	}

	trace.Resolve(step, StatusSuccess, fmt.Sprintf("%s returned %d timestamps", kind, len(cols.Times)), "")
	return &outcome{kind: kind, cols: cols}
}

// runTide executes the tide slot: gauge first, then exactly one fallback
// hop to the marine provider's modelled sea level when the gauge fails or
// returns no readings. There is no second fallback.
func (s *Service) runTide(ctx context.Context, loc Location, stationID string, r DateRange, desc params.Descriptor, trace *Trace) *outcome {
	step := trace.Append(StatusPending, "Fetching tide gauge readings for station "+stationID, "")

	raw, gaugeErr := s.gauge.FetchReadings(ctx, stationID, r)
	if gaugeErr == nil {
		if raw != nil && len(raw.Times) > 0 {
			cols, verr := ValidateHourly(raw, []params.Descriptor{desc}, trace)
			if verr == nil {
				trace.Resolve(step, StatusSuccess, fmt.Sprintf("Tide gauge returned %d readings", len(cols.Times)), "")
				return &outcome{kind: ProviderTideGauge, cols: cols}
			}
			gaugeErr = verr
		} else {
			// Empty is not a provider failure, but it does trigger the hop.
			trace.Resolve(step, StatusWarning, "Tide gauge returned no readings; falling back to marine sea level", "")
		}
	}
	if gaugeErr != nil {
		trace.Resolve(step, StatusWarning, "Tide gauge unavailable; falling back to marine sea level", gaugeErr.Error())
	}

	fstep := trace.Append(StatusPending, "Fetching modelled sea level from marine provider", "")
	raw2, err := s.marine.FetchHourly(ctx, loc, r, []string{desc.Upstream})
	if err == nil {
		var cols *Columns
		cols, err = ValidateHourly(raw2, []params.Descriptor{desc}, trace)
		if err == nil {
			trace.Resolve(fstep, StatusSuccess, fmt.Sprintf("Marine sea level fallback returned %d timestamps", len(cols.Times)), "")
			return &outcome{kind: ProviderTideGauge, cols: cols, err: gaugeErr}
		}
	}
	trace.Resolve(fstep, StatusError, "Marine sea level fallback failed", err.Error())

	if gaugeErr != nil {
		return &outcome{kind: ProviderTideGauge, err: gaugeErr}
	}
	return &outcome{kind: ProviderTideGauge, err: err}
}

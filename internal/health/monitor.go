package health

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// ProbeStatus is the latest reachability result for one provider.
type ProbeStatus struct {
	Reachable bool      `json:"reachable"`
	CheckedAt time.Time `json:"checkedAt"`
	Detail    string    `json:"detail,omitempty"`
}

// Monitor periodically probes provider base URLs so /health can report
// upstream reachability without waiting for a user request to fail.
type Monitor struct {
	scheduler *gocron.Scheduler
	client    *http.Client
	targets   map[string]string // provider name -> probe URL
	interval  time.Duration

	mu     sync.RWMutex
	status map[string]ProbeStatus
}

// New creates a Monitor probing each target on the given interval.
func New(client *http.Client, targets map[string]string, interval time.Duration) *Monitor {
	return &Monitor{
		scheduler: gocron.NewScheduler(time.UTC),
		client:    client,
		targets:   targets,
		interval:  interval,
		status:    make(map[string]ProbeStatus),
	}
}

// Start schedules the probe job and runs it once immediately.
func (m *Monitor) Start() error {
	if len(m.targets) == 0 {
		log.Println("health: no probe targets configured; nothing to schedule")
		return nil
	}

	interval := m.interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	_, err := m.scheduler.Every(interval).StartImmediately().Do(m.probeAll)
	if err != nil {
		return err
	}

	m.scheduler.StartAsync()
	return nil
}

// Stop stops the probe loop.
func (m *Monitor) Stop() {
	if m.scheduler != nil {
		m.scheduler.Stop()
	}
}

func (m *Monitor) probeAll() {
	var wg sync.WaitGroup
	for name, target := range m.targets {
		name, target := name, target
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.record(name, m.probe(target))
		}()
	}
	wg.Wait()
}

// probe counts any HTTP response as reachable; providers answer their base
// URL with 400/404, which still proves the service is up.
func (m *Monitor) probe(target string) ProbeStatus {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status := ProbeStatus{CheckedAt: time.Now().UTC()}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		status.Detail = err.Error()
		return status
	}

	resp, err := m.client.Do(req)
	if err != nil {
		status.Detail = err.Error()
		return status
	}
	resp.Body.Close()

	status.Reachable = true
	return status
}

func (m *Monitor) record(name string, s ProbeStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status[name] = s
}

// Status returns a copy of the latest probe results.
func (m *Monitor) Status() map[string]ProbeStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]ProbeStatus, len(m.status))
	for k, v := range m.status {
		out[k] = v
	}
	return out
}

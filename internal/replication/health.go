package replication

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Backup reachability states consumed by the settings surface.
const (
	StatusChecking     = "checking"
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
)

const (
	healthInterval = 5 * time.Second
	healthTimeout  = 2 * time.Second
)

// StatusListener is notified on reachability transitions.
type StatusListener func(host, status string)

// HealthMonitor polls each configured backup's /status at a constant
// interval. No retries beyond the next scheduled poll and no backoff; a
// handful of machines on a local network does not need either.
type HealthMonitor struct {
	backups  func() []string
	port     func() int
	client   *http.Client
	interval time.Duration
	listener StatusListener
	log      zerolog.Logger

	mu       sync.Mutex
	statuses map[string]string
}

// NewHealthMonitor creates a monitor; listener may be nil. Every configured
// backup starts as checking so the settings surface never reports an empty
// map before the first poll completes.
func NewHealthMonitor(backups func() []string, port func() int, listener StatusListener, log zerolog.Logger) *HealthMonitor {
	m := &HealthMonitor{
		backups:  backups,
		port:     port,
		client:   &http.Client{Timeout: healthTimeout},
		interval: healthInterval,
		listener: listener,
		log:      log,
		statuses: make(map[string]string),
	}
	m.prune(backups())
	return m
}

// Run polls until ctx is cancelled.
func (m *HealthMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.pollAll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.pollAll(ctx)
		}
	}
}

func (m *HealthMonitor) pollAll(ctx context.Context) {
	hosts := m.backups()
	port := m.port()

	m.prune(hosts)

	var wg sync.WaitGroup
	for _, host := range hosts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status := StatusDisconnected
			if m.check(ctx, host, port) {
				status = StatusConnected
			}
			m.update(host, status)
		}()
	}
	wg.Wait()
}

func (m *HealthMonitor) check(ctx context.Context, host string, port int) bool {
	rctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	url := fmt.Sprintf("http://%s:%d/status", host, port)
	req, err := http.NewRequestWithContext(rctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (m *HealthMonitor) update(host, status string) {
	m.mu.Lock()
	prev, known := m.statuses[host]
	m.statuses[host] = status
	m.mu.Unlock()

	if !known || prev != status {
		m.log.Info().Str("backup", host).Str("status", status).Msg("backup health changed")
		if m.listener != nil {
			m.listener(host, status)
		}
	}
}

// prune drops hosts no longer configured and seeds new ones as checking.
func (m *HealthMonitor) prune(hosts []string) {
	want := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		want[h] = struct{}{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for h := range m.statuses {
		if _, ok := want[h]; !ok {
			delete(m.statuses, h)
		}
	}
	for h := range want {
		if _, ok := m.statuses[h]; !ok {
			m.statuses[h] = StatusChecking
		}
	}
}

// Statuses returns a copy of the current health map.
func (m *HealthMonitor) Statuses() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.statuses))
	for h, s := range m.statuses {
		out[h] = s
	}
	return out
}

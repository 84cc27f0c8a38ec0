package telemetry

import (
	"sort"
	"sync"
	"time"

	"github.com/rakki194/nlrouter/internal/domain"
)

// HealthStatus is the coarse health verdict.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// Thresholds controls when the verdict degrades.
type Thresholds struct {
	DegradedP95  time.Duration
	UnhealthyP95 time.Duration
	MinHitRate   float64
	// MinSamples gates the hit-rate rule so a cold cache never reports
	// unhealthy.
	MinSamples uint64
}

// DefaultThresholds returns the stock verdict policy.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DegradedP95:  2 * time.Second,
		UnhealthyP95: 5 * time.Second,
		MinHitRate:   0.10,
		MinSamples:   20,
	}
}

// PerformanceStats holds monotonically-accumulating request counters. Reset
// only on process restart.
type PerformanceStats struct {
	TotalRequests      uint64        `json:"totalRequests"`
	SuccessfulRequests uint64        `json:"successfulRequests"`
	FailedRequests     uint64        `json:"failedRequests"`
	CacheHits          uint64        `json:"cacheHits"`
	CacheMisses        uint64        `json:"cacheMisses"`
	CumulativeTime     time.Duration `json:"cumulativeTime"`
	AverageTime        time.Duration `json:"averageTime"`
	P95                time.Duration `json:"p95"`
	HitRate            float64       `json:"hitRate"`
}

// HealthReport is the health endpoint payload.
type HealthReport struct {
	Status        HealthStatus     `json:"status"`
	Available     bool             `json:"available"`
	LastCheck     time.Time        `json:"lastCheck"`
	Performance   PerformanceStats `json:"performance"`
	Configuration map[string]any   `json:"configuration,omitempty"`
	Error         string           `json:"error,omitempty"`
}

// HealthTracker accumulates request counters and derives a health verdict.
// The running average is maintained incrementally; p95 is computed over a
// bounded window of recent latencies.
type HealthTracker struct {
	mu         sync.RWMutex
	clock      domain.Clock
	thresholds Thresholds

	total      uint64
	successful uint64
	failed     uint64
	hits       uint64
	misses     uint64
	cumulative time.Duration
	average    time.Duration

	window    []time.Duration
	windowPos int
	windowLen int

	status    HealthStatus
	lastCheck time.Time
	lastError string

	configuration map[string]any
}

// NewHealthTracker creates a tracker with the default verdict policy.
func NewHealthTracker(clock domain.Clock) *HealthTracker {
	return NewHealthTrackerWithThresholds(clock, DefaultThresholds())
}

// NewHealthTrackerWithThresholds creates a tracker with a custom policy.
func NewHealthTrackerWithThresholds(clock domain.Clock, thresholds Thresholds) *HealthTracker {
	if clock == nil {
		clock = domain.SystemClock()
	}
	if thresholds.DegradedP95 <= 0 {
		thresholds.DegradedP95 = DefaultThresholds().DegradedP95
	}
	if thresholds.UnhealthyP95 <= 0 {
		thresholds.UnhealthyP95 = DefaultThresholds().UnhealthyP95
	}
	return &HealthTracker{
		clock:      clock,
		thresholds: thresholds,
		window:     make([]time.Duration, domain.DefaultLatencyWindowSize),
		status:     StatusHealthy,
		lastCheck:  clock.Now(),
	}
}

// SetConfiguration attaches static configuration echoed in health reports.
func (t *HealthTracker) SetConfiguration(cfg map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.configuration = cfg
}

// CacheOutcome classifies a request's cache interaction. Requests that fail
// before the cache is consulted carry CacheOutcomeNone and leave the
// hit/miss counters untouched, so the tracker mirrors the cache's own stats.
type CacheOutcome string

const (
	CacheOutcomeHit  CacheOutcome = "hit"
	CacheOutcomeMiss CacheOutcome = "miss"
	CacheOutcomeNone CacheOutcome = "none"
)

// ObserveSuggest records one pipeline request.
func (t *HealthTracker) ObserveSuggest(duration time.Duration, cache CacheOutcome, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total++
	if err != nil {
		t.failed++
		t.lastError = err.Error()
	} else {
		t.successful++
	}
	switch cache {
	case CacheOutcomeHit:
		t.hits++
	case CacheOutcomeMiss:
		t.misses++
	}

	t.cumulative += duration
	// avg' = (avg*(n-1) + latest) / n
	t.average = (t.average*time.Duration(t.total-1) + duration) / time.Duration(t.total)

	t.window[t.windowPos] = duration
	t.windowPos = (t.windowPos + 1) % len(t.window)
	if t.windowLen < len(t.window) {
		t.windowLen++
	}
}

// Stats returns a snapshot of the performance counters.
func (t *HealthTracker) Stats() PerformanceStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.statsLocked()
}

// ForceCheck recomputes the verdict synchronously and returns the report.
func (t *HealthTracker) ForceCheck() HealthReport {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := t.statsLocked()
	t.status = t.verdictLocked(stats)
	t.lastCheck = t.clock.Now()
	return t.reportLocked(stats)
}

// Report returns the health endpoint payload, recomputing the verdict.
func (t *HealthTracker) Report() HealthReport {
	return t.ForceCheck()
}

// Run re-checks health on a best-effort timer until ctx is done.
func (t *HealthTracker) Run(done <-chan struct{}, interval time.Duration) {
	if interval <= 0 {
		interval = domain.DefaultHealthCheckInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			t.ForceCheck()
		}
	}
}

func (t *HealthTracker) statsLocked() PerformanceStats {
	stats := PerformanceStats{
		TotalRequests:      t.total,
		SuccessfulRequests: t.successful,
		FailedRequests:     t.failed,
		CacheHits:          t.hits,
		CacheMisses:        t.misses,
		CumulativeTime:     t.cumulative,
		AverageTime:        t.average,
		P95:                t.p95Locked(),
	}
	if lookups := t.hits + t.misses; lookups > 0 {
		stats.HitRate = float64(t.hits) / float64(lookups)
	}
	return stats
}

func (t *HealthTracker) verdictLocked(stats PerformanceStats) HealthStatus {
	switch {
	case stats.P95 > t.thresholds.UnhealthyP95:
		return StatusUnhealthy
	case t.hits+t.misses >= t.thresholds.MinSamples && stats.HitRate < t.thresholds.MinHitRate:
		return StatusUnhealthy
	case stats.P95 > t.thresholds.DegradedP95:
		return StatusDegraded
	default:
		return StatusHealthy
	}
}

func (t *HealthTracker) reportLocked(stats PerformanceStats) HealthReport {
	report := HealthReport{
		Status:        t.status,
		Available:     t.status != StatusUnhealthy,
		LastCheck:     t.lastCheck,
		Performance:   stats,
		Configuration: t.configuration,
	}
	if t.status != StatusHealthy {
		report.Error = t.lastError
	}
	return report
}

func (t *HealthTracker) p95Locked() time.Duration {
	if t.windowLen == 0 {
		return 0
	}
	sorted := make([]time.Duration, t.windowLen)
	copy(sorted, t.window[:t.windowLen])
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := (t.windowLen*95 + 99) / 100
	if idx > 0 {
		idx--
	}
	return sorted[idx]
}

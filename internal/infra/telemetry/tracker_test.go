package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func TestHealthTracker_Counters(t *testing.T) {
	tracker := NewHealthTracker(newFakeClock())

	tracker.ObserveSuggest(100*time.Millisecond, CacheOutcomeMiss, nil)
	tracker.ObserveSuggest(300*time.Millisecond, CacheOutcomeHit, nil)
	tracker.ObserveSuggest(200*time.Millisecond, CacheOutcomeMiss, errors.New("boom"))

	stats := tracker.Stats()
	assert.Equal(t, uint64(3), stats.TotalRequests)
	assert.Equal(t, uint64(2), stats.SuccessfulRequests)
	assert.Equal(t, uint64(1), stats.FailedRequests)
	assert.Equal(t, uint64(1), stats.CacheHits)
	assert.Equal(t, uint64(2), stats.CacheMisses)
	assert.Equal(t, 600*time.Millisecond, stats.CumulativeTime)
	assert.Equal(t, 200*time.Millisecond, stats.AverageTime)
	assert.InDelta(t, 1.0/3.0, stats.HitRate, 0.001)
}

func TestHealthTracker_RunningAverage(t *testing.T) {
	tracker := NewHealthTracker(newFakeClock())

	tracker.ObserveSuggest(100*time.Millisecond, CacheOutcomeMiss, nil)
	assert.Equal(t, 100*time.Millisecond, tracker.Stats().AverageTime)

	tracker.ObserveSuggest(200*time.Millisecond, CacheOutcomeMiss, nil)
	assert.Equal(t, 150*time.Millisecond, tracker.Stats().AverageTime)
}

func TestHealthTracker_HealthyByDefault(t *testing.T) {
	tracker := NewHealthTracker(newFakeClock())

	report := tracker.ForceCheck()
	assert.Equal(t, StatusHealthy, report.Status)
	assert.True(t, report.Available)
}

func TestHealthTracker_DegradedOnSlowP95(t *testing.T) {
	tracker := NewHealthTracker(newFakeClock())

	for i := 0; i < 30; i++ {
		tracker.ObserveSuggest(3*time.Second, CacheOutcomeHit, nil)
	}

	report := tracker.ForceCheck()
	assert.Equal(t, StatusDegraded, report.Status)
	assert.True(t, report.Available)
}

func TestHealthTracker_UnhealthyOnVerySlowP95(t *testing.T) {
	tracker := NewHealthTracker(newFakeClock())

	for i := 0; i < 30; i++ {
		tracker.ObserveSuggest(6*time.Second, CacheOutcomeHit, nil)
	}

	report := tracker.ForceCheck()
	assert.Equal(t, StatusUnhealthy, report.Status)
	assert.False(t, report.Available)
}

func TestHealthTracker_UnhealthyOnLowHitRate(t *testing.T) {
	tracker := NewHealthTracker(newFakeClock())

	for i := 0; i < 30; i++ {
		tracker.ObserveSuggest(time.Millisecond, CacheOutcomeMiss, nil)
	}

	report := tracker.ForceCheck()
	assert.Equal(t, StatusUnhealthy, report.Status)
}

func TestHealthTracker_HitRateRuleNeedsSamples(t *testing.T) {
	tracker := NewHealthTracker(newFakeClock())

	// Below the sample floor, an all-miss cache is still healthy.
	for i := 0; i < 5; i++ {
		tracker.ObserveSuggest(time.Millisecond, CacheOutcomeMiss, nil)
	}

	report := tracker.ForceCheck()
	assert.Equal(t, StatusHealthy, report.Status)
}

func TestHealthTracker_PreLookupFailuresDoNotSkewHitRate(t *testing.T) {
	tracker := NewHealthTracker(newFakeClock())

	// Rejected requests never consult the cache, so a sustained error
	// stream must not trip the hit-rate rule.
	for i := 0; i < 30; i++ {
		tracker.ObserveSuggest(time.Millisecond, CacheOutcomeNone, errors.New("query text is required"))
	}

	stats := tracker.Stats()
	assert.Equal(t, uint64(30), stats.TotalRequests)
	assert.Equal(t, uint64(30), stats.FailedRequests)
	assert.Equal(t, uint64(0), stats.CacheHits)
	assert.Equal(t, uint64(0), stats.CacheMisses)

	report := tracker.ForceCheck()
	assert.Equal(t, StatusHealthy, report.Status)
}

func TestHealthTracker_ReportCarriesConfiguration(t *testing.T) {
	clock := newFakeClock()
	tracker := NewHealthTracker(clock)
	tracker.SetConfiguration(map[string]any{"cacheTTL": "5m"})

	report := tracker.Report()
	require.NotNil(t, report.Configuration)
	assert.Equal(t, "5m", report.Configuration["cacheTTL"])
	assert.Equal(t, clock.Now(), report.LastCheck)
}

func TestHealthTracker_ErrorSurfacesWhenUnhealthy(t *testing.T) {
	tracker := NewHealthTracker(newFakeClock())

	for i := 0; i < 30; i++ {
		tracker.ObserveSuggest(6*time.Second, CacheOutcomeHit, errors.New("scorer exploded"))
	}

	report := tracker.ForceCheck()
	assert.Equal(t, "scorer exploded", report.Error)
}

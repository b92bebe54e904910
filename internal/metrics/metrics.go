// Package metrics keeps in-process counters for the fallback chains.
package metrics

import (
	"sync"
	"time"
)

// Metrics counts fallback activity. All methods are safe on a nil receiver,
// so components can take an optional *Metrics.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	FeedAttempts     int64
	FeedFailures     int64
	FetchAttempts    int64
	FetchFailures    int64
	ImageProbes      int64
	ImagePlaceholder int64
	DemoFallbacks    int64
	RunsCompleted    int64

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	LastSource    string
	IsHealthy     bool
}

func New() *Metrics {
	return &Metrics{IsHealthy: true}
}

func (m *Metrics) add(field *int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*field++
}

func (m *Metrics) IncrementFeedAttempts() {
	if m == nil {
		return
	}
	m.add(&m.FeedAttempts)
}

func (m *Metrics) IncrementFeedFailures() {
	if m == nil {
		return
	}
	m.add(&m.FeedFailures)
}

func (m *Metrics) IncrementFetchAttempts() {
	if m == nil {
		return
	}
	m.add(&m.FetchAttempts)
}

func (m *Metrics) IncrementFetchFailures() {
	if m == nil {
		return
	}
	m.add(&m.FetchFailures)
}

func (m *Metrics) IncrementImageProbes() {
	if m == nil {
		return
	}
	m.add(&m.ImageProbes)
}

func (m *Metrics) IncrementImagePlaceholder() {
	if m == nil {
		return
	}
	m.add(&m.ImagePlaceholder)
}

func (m *Metrics) IncrementDemoFallbacks() {
	if m == nil {
		return
	}
	m.add(&m.DemoFallbacks)
}

// RecordRun stores the duration and winning source of a finished run.
func (m *Metrics) RecordRun(duration time.Duration, source string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RunsCompleted++
	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.RunsCompleted)
	m.LastRunTime = time.Now()
	m.LastSource = source
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	if m == nil {
		return map[string]interface{}{"is_healthy": true}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"feed_attempts":              m.FeedAttempts,
		"feed_failures":              m.FeedFailures,
		"fetch_attempts":             m.FetchAttempts,
		"fetch_failures":             m.FetchFailures,
		"image_probes":               m.ImageProbes,
		"image_placeholder":          m.ImagePlaceholder,
		"demo_fallbacks":             m.DemoFallbacks,
		"runs_completed":             m.RunsCompleted,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_run_time":              m.LastRunTime.Format(time.RFC3339),
		"last_error_time":            m.LastErrorTime.Format(time.RFC3339),
		"last_error":                 m.LastError,
		"last_source":                m.LastSource,
		"is_healthy":                 m.IsHealthy,
	}
}

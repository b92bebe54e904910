package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncrementFeedAttempts()
			m.IncrementFetchAttempts()
		}()
	}
	wg.Wait()
	m.IncrementFeedFailures()
	m.IncrementImagePlaceholder()

	stats := m.GetStats()
	assert.Equal(t, stats["feed_attempts"], int64(10))
	assert.Equal(t, stats["fetch_attempts"], int64(10))
	assert.Equal(t, stats["feed_failures"], int64(1))
	assert.Equal(t, stats["image_placeholder"], int64(1))
}

func TestMetrics_RecordRunAndError(t *testing.T) {
	m := New()

	m.RecordRun(100*time.Millisecond, "G1")
	m.RecordRun(300*time.Millisecond, "UOL")
	assert.Equal(t, m.RunsCompleted, int64(2))
	assert.Equal(t, m.AverageProcessingTime, 200*time.Millisecond)
	assert.Equal(t, m.LastSource, "UOL")

	m.SetError("all feed sources exhausted")
	stats := m.GetStats()
	assert.Equal(t, stats["is_healthy"], false)
	assert.Equal(t, stats["last_error"], "all feed sources exhausted")
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.IncrementFeedAttempts()
	m.IncrementDemoFallbacks()
	m.RecordRun(time.Second, "G1")
	m.SetError("x")
	assert.Equal(t, m.GetStats()["is_healthy"], true)
}

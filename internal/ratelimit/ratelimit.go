// Package ratelimit caps outbound calls to paid APIs per day.
package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrBudgetExceeded = errors.New("daily request budget exceeded")

// DailyBudget allows at most max calls per 24h window. max <= 0 means unlimited.
type DailyBudget struct {
	mu        sync.Mutex
	name      string
	count     int
	max       int
	resetTime time.Time
	now       func() time.Time
}

func NewDailyBudget(name string, max int) *DailyBudget {
	return &DailyBudget{
		name:      name,
		max:       max,
		resetTime: time.Now().Add(24 * time.Hour),
		now:       time.Now,
	}
}

// Use consumes one call from the budget.
func (b *DailyBudget) Use() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkReset()

	if b.max > 0 && b.count >= b.max {
		return fmt.Errorf("%s: %w (%d/%d)", b.name, ErrBudgetExceeded, b.count, b.max)
	}
	b.count++
	return nil
}

// Remaining reports how many calls are left, or -1 when unlimited.
func (b *DailyBudget) Remaining() int {
	if b == nil || b.max <= 0 {
		return -1
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkReset()
	return b.max - b.count
}

// GetStats reports usage for the metrics endpoint. A nil budget has no stats.
func (b *DailyBudget) GetStats() map[string]interface{} {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkReset()
	return map[string]interface{}{
		"name":       b.name,
		"used":       b.count,
		"limit":      b.max,
		"reset_time": b.resetTime.Format(time.RFC3339),
	}
}

// checkReset starts a new window once the current one has passed.
func (b *DailyBudget) checkReset() {
	if now := b.now(); now.After(b.resetTime) {
		b.count = 0
		b.resetTime = now.Add(24 * time.Hour)
	}
}

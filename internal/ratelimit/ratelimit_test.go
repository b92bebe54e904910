package ratelimit

import (
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestDailyBudget_Limit(t *testing.T) {
	b := NewDailyBudget("gemini", 2)

	assert.Equal(t, b.Use(), nil)
	assert.Equal(t, b.Use(), nil)
	assert.Equal(t, b.Remaining(), 0)

	err := b.Use()
	assert.Equal(t, errors.Is(err, ErrBudgetExceeded), true)
}

func TestDailyBudget_Resets(t *testing.T) {
	now := time.Date(2026, 10, 16, 6, 0, 0, 0, time.UTC)
	b := NewDailyBudget("gemini", 1)
	b.now = func() time.Time { return now }
	b.resetTime = now.Add(24 * time.Hour)

	assert.Equal(t, b.Use(), nil)
	assert.NotEqual(t, b.Use(), nil)

	now = now.Add(25 * time.Hour)
	assert.Equal(t, b.Use(), nil)
	assert.Equal(t, b.GetStats()["used"], 1)
}

func TestDailyBudget_Unlimited(t *testing.T) {
	b := NewDailyBudget("gemini", 0)
	for i := 0; i < 100; i++ {
		assert.Equal(t, b.Use(), nil)
	}
	assert.Equal(t, b.Remaining(), -1)

	var nilBudget *DailyBudget
	assert.Equal(t, nilBudget.Use(), nil)
	assert.Equal(t, nilBudget.GetStats() == nil, true)
}

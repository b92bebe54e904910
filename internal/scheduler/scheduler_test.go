package scheduler

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestNewScheduler(t *testing.T) {
	s, err := NewScheduler("UTC")
	assert.Equal(t, err, nil)
	defer s.Stop()

	assert.Equal(t, s.location.String(), "UTC")
}

func TestNewScheduler_InvalidTimezone(t *testing.T) {
	_, err := NewScheduler("Invalid/Zone")
	assert.NotEqual(t, err, nil)
}

func TestSchedule_ReplacesEntry(t *testing.T) {
	s, _ := NewScheduler("UTC")
	defer s.Stop()

	assert.Equal(t, s.Schedule("06:00", func() {}), nil)
	assert.Equal(t, s.Schedule("07:30", func() {}), nil)
	s.Start()

	entries := s.cron.Entries()
	assert.Equal(t, len(entries), 1)

	next := s.Next()
	assert.Equal(t, next.Hour(), 7)
	assert.Equal(t, next.Minute(), 30)
}

func TestSchedule_InvalidTime(t *testing.T) {
	s, _ := NewScheduler("UTC")
	defer s.Stop()

	for _, tt := range []string{"invalid", "25:00", "12:60", "9:00", "12:0", ""} {
		t.Run(tt, func(t *testing.T) {
			assert.NotEqual(t, s.Schedule(tt, func() {}), nil)
		})
	}
}

func TestParseTime(t *testing.T) {
	h, m, err := parseTime("06:05")
	assert.Equal(t, err, nil)
	assert.Equal(t, h, 6)
	assert.Equal(t, m, 5)
}

func TestBuildCronSpec(t *testing.T) {
	assert.Equal(t, buildCronSpec(6, 0), "0 6 * * *")
	assert.Equal(t, buildCronSpec(23, 59), "59 23 * * *")
}

func TestStop_Idempotent(t *testing.T) {
	s, _ := NewScheduler("UTC")
	s.Start()
	s.Stop()
	s.Stop()
}

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerConfig_Interval(t *testing.T) {
	cases := []struct {
		name     string
		minutes  int
		seconds  int
		expected time.Duration
	}{
		{"minutes only", 5, 0, 5 * time.Minute},
		{"seconds only", 0, 30, 30 * time.Second},
		{"minutes and seconds", 2, 15, 2*time.Minute + 15*time.Second},
		{"zero", 0, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &SchedulerConfig{IntervalMinutes: tc.minutes, IntervalSeconds: tc.seconds}
			assert.Equal(t, tc.expected, cfg.Interval())
		})
	}
}

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGoalProgressPercent(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		target  float64
		want    float64
	}{
		{"zero target reports zero", 3000, 0, 0},
		{"zero progress", 0, 6000, 0},
		{"halfway", 3000, 6000, 50},
		{"complete", 6000, 6000, 100},
		{"overshooting is clamped to 100", 9000, 6000, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Goal{CurrentValue: tt.current, TargetValue: tt.target}
			assert.InDelta(t, tt.want, g.ProgressPercent(), 0.0001)
		})
	}
}

func TestGoalRemainingValue(t *testing.T) {
	assert.Equal(t, 3000.0, Goal{CurrentValue: 3000, TargetValue: 6000}.RemainingValue())
	assert.Equal(t, 0.0, Goal{CurrentValue: 6000, TargetValue: 6000}.RemainingValue())
	assert.Equal(t, 0.0, Goal{CurrentValue: 9000, TargetValue: 6000}.RemainingValue(),
		"remaining value is never negative")
}

func TestGoalDaysRemainingAt(t *testing.T) {
	now := time.Date(2026, time.June, 1, 15, 30, 0, 0, time.UTC)

	g := Goal{TargetDate: time.Date(2026, time.June, 11, 0, 0, 0, 0, time.UTC)}
	days, ok := g.DaysRemainingAt(now)
	assert.True(t, ok)
	assert.Equal(t, 10, days)

	past := Goal{TargetDate: time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)}
	days, ok = past.DaysRemainingAt(now)
	assert.True(t, ok)
	assert.Equal(t, 0, days, "past deadlines report zero, not negative")

	_, ok = Goal{}.DaysRemainingAt(now)
	assert.False(t, ok, "no target date means no countdown")
}

func TestGoalOnTrackAt(t *testing.T) {
	created := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	target := time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC)
	// Roughly 41% of the schedule has elapsed by June 1.
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	ahead := Goal{CreatedAt: created, TargetDate: target, CurrentValue: 50, TargetValue: 100}
	onTrack, ok := ahead.OnTrackAt(now)
	assert.True(t, ok)
	assert.True(t, onTrack, "50 percent done at 41 percent elapsed is on track")

	behind := Goal{CreatedAt: created, TargetDate: target, CurrentValue: 20, TargetValue: 100}
	onTrack, ok = behind.OnTrackAt(now)
	assert.True(t, ok)
	assert.False(t, onTrack, "20 percent done at 41 percent elapsed is behind")

	_, ok = Goal{CreatedAt: created}.OnTrackAt(now)
	assert.False(t, ok, "no target date means no projection")
}

func TestGoalOnTrackAtDegenerateSchedule(t *testing.T) {
	// Target date on (or before) the creation day: fall back to the
	// completion flag.
	day := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	done := Goal{CreatedAt: day, TargetDate: day, IsCompleted: true}
	onTrack, ok := done.OnTrackAt(day.AddDate(0, 0, 5))
	assert.True(t, ok)
	assert.True(t, onTrack)

	notDone := Goal{CreatedAt: day, TargetDate: day.AddDate(0, 0, -3)}
	onTrack, ok = notDone.OnTrackAt(day)
	assert.True(t, ok)
	assert.False(t, onTrack)
}

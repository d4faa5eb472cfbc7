package models

import "time"

// Goal categories used by the dashboard. Stored as free text, not enforced.
const (
	GoalCategoryFinancial  = "Financial"
	GoalCategoryCareer     = "Career"
	GoalCategoryRelocation = "Relocation"
)

// Goal represents a tracked target belonging to a user, e.g.
// "Financial: save 6000 EUR by Oct 31, 2026".
type Goal struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	Category        string     `json:"category"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	TargetValue     float64    `json:"target_value"`
	CurrentValue    float64    `json:"current_value"`
	Unit            string     `json:"unit"`
	TargetDate      time.Time  `json:"target_date,omitzero"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	IsCompleted     bool       `json:"is_completed"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CompletionNotes string     `json:"completion_notes,omitempty"`
}

// ProgressPercent returns progress toward the target as a percentage,
// clamped to 100. A zero target always reports 0.
func (g Goal) ProgressPercent() float64 {
	if g.TargetValue == 0 {
		return 0
	}
	pct := g.CurrentValue / g.TargetValue * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// RemainingValue returns how much is left to reach the target, never negative.
func (g Goal) RemainingValue() float64 {
	if remaining := g.TargetValue - g.CurrentValue; remaining > 0 {
		return remaining
	}
	return 0
}

// DaysRemainingAt returns the number of whole days from now until the target
// date, never negative. ok is false when the goal has no target date.
func (g Goal) DaysRemainingAt(now time.Time) (days int, ok bool) {
	if g.TargetDate.IsZero() {
		return 0, false
	}
	days = daysBetween(now, g.TargetDate)
	if days < 0 {
		days = 0
	}
	return days, true
}

// OnTrackAt reports whether actual progress meets the progress expected under
// a straight-line schedule from creation to the target date. When the
// schedule has no positive length it falls back to the completion flag.
// ok is false when the goal has no target date.
func (g Goal) OnTrackAt(now time.Time) (onTrack, ok bool) {
	if g.TargetDate.IsZero() {
		return false, false
	}

	totalDays := daysBetween(g.CreatedAt, g.TargetDate)
	if totalDays <= 0 {
		return g.IsCompleted, true
	}

	elapsedDays := daysBetween(g.CreatedAt, now)
	expected := float64(elapsedDays) / float64(totalDays) * 100
	return g.ProgressPercent() >= expected, true
}

// daysBetween counts calendar days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

package model

import (
	"strings"
	"time"
)

// Preference keys shared by every store implementation.
const (
	KeyFocusMinutes        = "focusMinutes"
	KeyBreakMinutes        = "breakMinutes"
	completedCyclesKeyStem = "completedPomodoros."
	dayLayout              = "2006-01-02"
)

// Preferences are the values restored when the timer is created.
type Preferences struct {
	FocusMinutes    FocusMinutes
	BreakMinutes    BreakMinutes
	CompletedCycles int
}

// DefaultPreferences returns the values used on first launch.
func DefaultPreferences() Preferences {
	return Preferences{
		FocusMinutes: DefaultFocusMinutes,
		BreakMinutes: DefaultBreakMinutes,
	}
}

// Sanitize replaces out-of-range values with defaults.
func (prefs Preferences) Sanitize() Preferences {
	if !prefs.FocusMinutes.Valid() {
		prefs.FocusMinutes = DefaultFocusMinutes
	}
	if !prefs.BreakMinutes.Valid() {
		prefs.BreakMinutes = DefaultBreakMinutes
	}
	if prefs.CompletedCycles < 0 {
		prefs.CompletedCycles = 0
	}
	return prefs
}

// Day formats t as the calendar day used in completed-cycle keys.
func Day(t time.Time) string {
	return t.Format(dayLayout)
}

// CompletedCyclesKey returns the date-qualified key for the completed count of day.
func CompletedCyclesKey(day string) string {
	return completedCyclesKeyStem + day
}

// DayFromKey extracts the day from a completed-cycle key.
func DayFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, completedCyclesKeyStem) {
		return "", false
	}
	day := strings.TrimPrefix(key, completedCyclesKeyStem)
	if _, err := time.Parse(dayLayout, day); err != nil {
		return "", false
	}
	return day, true
}

// Cycle records one finished focus interval.
type Cycle struct {
	ID           string
	Day          string
	FocusMinutes FocusMinutes
	CompletedAt  time.Time
}

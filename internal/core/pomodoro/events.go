package pomodoro

import (
	"time"

	"pomodocko/internal/core/model"
)

// Phase represents the current countdown mode.
type Phase string

const (
	PhaseFocus Phase = "focus"
	PhaseBreak Phase = "break"
)

// EventType defines the type of Timer event.
type EventType string

const (
	EventRemainingChanged EventType = "remaining_changed"
	EventPhaseChanged     EventType = "phase_changed"
	EventCyclesChanged    EventType = "cycles_changed"
	EventRunningChanged   EventType = "running_changed"
)

// Snapshot is a consistent copy of the timer state.
type Snapshot struct {
	Phase           Phase
	Remaining       int
	CompletedCycles int
	Running         bool
	FocusMinutes    model.FocusMinutes
	BreakMinutes    model.BreakMinutes
}

// Minutes returns the whole minutes left in the current phase.
func (snapshot Snapshot) Minutes() int {
	return snapshot.Remaining / 60
}

// Seconds returns the seconds left in the current minute.
func (snapshot Snapshot) Seconds() int {
	return snapshot.Remaining % 60
}

// Event represents a Timer update for observers.
// Snapshot always reflects the state after the mutation that produced the event.
type Event struct {
	Type     EventType
	Snapshot Snapshot
	Boundary bool
	At       time.Time
}

// Observer receives timer events in the order they were produced.
type Observer func(Event)

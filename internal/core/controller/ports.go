package controller

import (
	"context"
	"time"

	"pomodocko/internal/core/model"
	"pomodocko/internal/core/pomodoro"
)

// PreferenceStore loads and saves the persisted timer preferences.
type PreferenceStore interface {
	Load(day string) (model.Preferences, error)
	Save(key string, value int) error
}

// CycleRecorder keeps a history of finished focus intervals.
type CycleRecorder interface {
	RecordCycle(cycle model.Cycle) error
}

// Presenter renders timer state: the icon, the completed-count badge and the
// start/pause affordance.
type Presenter interface {
	ShowRemaining(snapshot pomodoro.Snapshot)
	ShowCompleted(count int)
	ShowRunning(snapshot pomodoro.Snapshot)
}

// Notifier posts a user notification when an interval boundary is crossed.
// The implementation picks the category and text from the snapshot.
type Notifier interface {
	NotifyBoundary(ctx context.Context, snapshot pomodoro.Snapshot) error
}

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock implementation.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

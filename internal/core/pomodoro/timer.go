package pomodoro

import (
	"sync"
	"time"

	"pomodocko/internal/core/model"
)

// Config contains the initial values for a Timer, usually restored from preferences.
type Config struct {
	Focus           model.FocusMinutes
	Break           model.BreakMinutes
	CompletedCycles int
}

// Option configures a Timer.
type Option func(*Timer)

// WithTickSource replaces the default time.Ticker based source.
func WithTickSource(source TickSource) Option {
	return func(timer *Timer) {
		if source != nil {
			timer.source = source
		}
	}
}

// WithTickInterval sets the real time between ticks. One tick is always one counted second.
func WithTickInterval(interval time.Duration) Option {
	return func(timer *Timer) {
		timer.tickInterval = interval
	}
}

type subscription struct {
	id       uint64
	observer Observer
}

// Timer is a two-phase countdown state machine.
type Timer struct {
	mu           sync.Mutex
	phase        Phase
	remaining    int
	focus        model.FocusMinutes
	breakMinutes model.BreakMinutes
	completed    int
	running      bool
	generation   uint64
	handle       TickHandle
	source       TickSource
	tickInterval time.Duration

	observers   []subscription
	nextID      uint64
	pending     []Event
	dispatching bool
}

// New creates a stopped Timer in the focus phase.
func New(config Config, opts ...Option) *Timer {
	if !config.Focus.Valid() {
		config.Focus = model.DefaultFocusMinutes
	}
	if !config.Break.Valid() {
		config.Break = model.DefaultBreakMinutes
	}
	if config.CompletedCycles < 0 {
		config.CompletedCycles = 0
	}

	timer := &Timer{
		phase:        PhaseFocus,
		focus:        config.Focus,
		breakMinutes: config.Break,
		completed:    config.CompletedCycles,
		source:       TickerSource{},
		tickInterval: time.Second,
	}
	for _, opt := range opts {
		opt(timer)
	}
	if timer.tickInterval <= 0 {
		timer.tickInterval = time.Second
	}
	timer.remaining = timer.focus.Seconds()
	return timer
}

// Subscribe registers an observer and returns a function that removes it.
func (timer *Timer) Subscribe(observer Observer) func() {
	timer.mu.Lock()
	timer.nextID++
	id := timer.nextID
	timer.observers = append(timer.observers, subscription{id: id, observer: observer})
	timer.mu.Unlock()

	return func() {
		timer.mu.Lock()
		defer timer.mu.Unlock()
		for index, sub := range timer.observers {
			if sub.id == id {
				timer.observers = append(timer.observers[:index:index], timer.observers[index+1:]...)
				return
			}
		}
	}
}

// OnRemainingChanged registers an observer for remaining_changed events.
func (timer *Timer) OnRemainingChanged(observer Observer) func() {
	return timer.subscribeType(EventRemainingChanged, observer)
}

// OnPhaseChanged registers an observer for phase_changed events.
func (timer *Timer) OnPhaseChanged(observer Observer) func() {
	return timer.subscribeType(EventPhaseChanged, observer)
}

// OnCompletedCyclesChanged registers an observer for cycles_changed events.
func (timer *Timer) OnCompletedCyclesChanged(observer Observer) func() {
	return timer.subscribeType(EventCyclesChanged, observer)
}

// OnRunningChanged registers an observer for running_changed events.
func (timer *Timer) OnRunningChanged(observer Observer) func() {
	return timer.subscribeType(EventRunningChanged, observer)
}

func (timer *Timer) subscribeType(eventType EventType, observer Observer) func() {
	return timer.Subscribe(func(event Event) {
		if event.Type == eventType {
			observer(event)
		}
	})
}

// Start begins ticking. Calling Start on a running timer does nothing.
func (timer *Timer) Start() {
	timer.mu.Lock()
	before := timer.snapshotLocked()
	timer.startLocked()
	timer.commitLocked(before, false)
	timer.mu.Unlock()

	timer.dispatch()
}

// Stop cancels the tick source. No tick is applied after Stop returns.
func (timer *Timer) Stop() {
	timer.mu.Lock()
	before := timer.snapshotLocked()
	timer.stopLocked()
	timer.commitLocked(before, false)
	timer.mu.Unlock()

	timer.dispatch()
}

// Reset stops the timer and reloads a full focus interval.
// The completed cycle count is kept.
func (timer *Timer) Reset() {
	timer.mu.Lock()
	before := timer.snapshotLocked()
	timer.resetLocked()
	timer.commitLocked(before, false)
	timer.mu.Unlock()

	timer.dispatch()
}

// SkipBreak ends the current break and starts a fresh focus interval.
// It does nothing outside the break phase.
func (timer *Timer) SkipBreak() {
	timer.mu.Lock()
	if timer.phase != PhaseBreak {
		timer.mu.Unlock()
		return
	}
	before := timer.snapshotLocked()
	timer.resetLocked()
	timer.startLocked()
	timer.commitLocked(before, false)
	timer.mu.Unlock()

	timer.dispatch()
}

// SetFocusMinutes changes the focus length used the next time a focus interval is loaded.
// Values outside the selectable set are ignored and false is returned.
func (timer *Timer) SetFocusMinutes(minutes model.FocusMinutes) bool {
	if !minutes.Valid() {
		return false
	}
	timer.mu.Lock()
	timer.focus = minutes
	timer.mu.Unlock()
	return true
}

// SetBreakMinutes changes the break length used the next time a break interval is loaded.
// Values outside the selectable set are ignored and false is returned.
func (timer *Timer) SetBreakMinutes(minutes model.BreakMinutes) bool {
	if !minutes.Valid() {
		return false
	}
	timer.mu.Lock()
	timer.breakMinutes = minutes
	timer.mu.Unlock()
	return true
}

// SetCompletedCycles restarts the counting period at count.
func (timer *Timer) SetCompletedCycles(count int) bool {
	if count < 0 {
		return false
	}
	timer.mu.Lock()
	before := timer.snapshotLocked()
	timer.completed = count
	timer.commitLocked(before, false)
	timer.mu.Unlock()

	timer.dispatch()
	return true
}

// Close stops the timer and drops every observer.
func (timer *Timer) Close() {
	timer.mu.Lock()
	timer.stopLocked()
	timer.observers = nil
	timer.pending = nil
	timer.mu.Unlock()
}

// Snapshot returns a consistent copy of the current state.
func (timer *Timer) Snapshot() Snapshot {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return timer.snapshotLocked()
}

// Phase returns the current phase.
func (timer *Timer) Phase() Phase {
	return timer.Snapshot().Phase
}

// Remaining returns the seconds left in the current phase.
func (timer *Timer) Remaining() int {
	return timer.Snapshot().Remaining
}

// Minutes returns the whole minutes left in the current phase.
func (timer *Timer) Minutes() int {
	return timer.Snapshot().Minutes()
}

// Seconds returns the seconds left in the current minute.
func (timer *Timer) Seconds() int {
	return timer.Snapshot().Seconds()
}

// CompletedCycles returns the number of finished focus intervals in the counting period.
func (timer *Timer) CompletedCycles() int {
	return timer.Snapshot().CompletedCycles
}

// Running reports whether a tick source is driving the countdown.
func (timer *Timer) Running() bool {
	return timer.Snapshot().Running
}

// FocusMinutes returns the configured focus length.
func (timer *Timer) FocusMinutes() model.FocusMinutes {
	return timer.Snapshot().FocusMinutes
}

// BreakMinutes returns the configured break length.
func (timer *Timer) BreakMinutes() model.BreakMinutes {
	return timer.Snapshot().BreakMinutes
}

func (timer *Timer) tick(generation uint64) {
	timer.mu.Lock()
	if !timer.running || generation != timer.generation {
		timer.mu.Unlock()
		return
	}

	before := timer.snapshotLocked()
	timer.remaining--
	boundary := false
	if timer.remaining <= 0 {
		timer.toggleLocked()
		boundary = true
	}
	timer.commitLocked(before, boundary)
	timer.mu.Unlock()

	timer.dispatch()
}

func (timer *Timer) toggleLocked() {
	if timer.phase == PhaseFocus {
		timer.completed++
		timer.phase = PhaseBreak
		timer.remaining = timer.breakMinutes.Seconds()
		return
	}
	timer.phase = PhaseFocus
	timer.remaining = timer.focus.Seconds()
}

func (timer *Timer) startLocked() {
	if timer.running {
		return
	}
	timer.running = true
	timer.generation++
	generation := timer.generation
	timer.handle = timer.source.Schedule(timer.tickInterval, func() {
		timer.tick(generation)
	})
}

func (timer *Timer) stopLocked() {
	if !timer.running {
		return
	}
	timer.running = false
	timer.generation++
	if timer.handle != nil {
		timer.handle.Cancel()
		timer.handle = nil
	}
}

func (timer *Timer) resetLocked() {
	timer.stopLocked()
	timer.phase = PhaseFocus
	timer.remaining = timer.focus.Seconds()
}

func (timer *Timer) snapshotLocked() Snapshot {
	return Snapshot{
		Phase:           timer.phase,
		Remaining:       timer.remaining,
		CompletedCycles: timer.completed,
		Running:         timer.running,
		FocusMinutes:    timer.focus,
		BreakMinutes:    timer.breakMinutes,
	}
}

// commitLocked queues one event per field that differs from before, all carrying
// the current snapshot.
func (timer *Timer) commitLocked(before Snapshot, boundary bool) {
	after := timer.snapshotLocked()
	now := time.Now()

	queue := func(eventType EventType) {
		timer.pending = append(timer.pending, Event{
			Type:     eventType,
			Snapshot: after,
			Boundary: boundary,
			At:       now,
		})
	}

	if after.CompletedCycles != before.CompletedCycles {
		queue(EventCyclesChanged)
	}
	if after.Phase != before.Phase {
		queue(EventPhaseChanged)
	}
	if after.Remaining != before.Remaining {
		queue(EventRemainingChanged)
	}
	if after.Running != before.Running {
		queue(EventRunningChanged)
	}
}

// dispatch drains pending events. Only one goroutine drains at a time; events queued
// by other goroutines or by observers themselves are delivered by the active drainer.
func (timer *Timer) dispatch() {
	timer.mu.Lock()
	if timer.dispatching {
		timer.mu.Unlock()
		return
	}
	timer.dispatching = true

	for len(timer.pending) > 0 {
		event := timer.pending[0]
		timer.pending = timer.pending[1:]
		observers := append([]subscription(nil), timer.observers...)
		timer.mu.Unlock()

		for _, sub := range observers {
			sub.observer(event)
		}

		timer.mu.Lock()
	}

	timer.dispatching = false
	timer.mu.Unlock()
}

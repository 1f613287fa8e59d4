// Package controller coordinates the pomodoro timer with its presenter, notifier and
// preference store, and exposes the user command surface.
package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"pomodocko/internal/core/model"
	"pomodocko/internal/core/pomodoro"
	"pomodocko/internal/logger"
)

// ErrNoPresenter is returned by New when no presenter is supplied.
var ErrNoPresenter = errors.New("controller: presenter is required")

// ErrNoStore is returned by New when no preference store is supplied.
var ErrNoStore = errors.New("controller: preference store is required")

// Option configures the controller.
type Option func(*Controller)

// WithClock replaces the system clock used for day keys and cycle timestamps.
func WithClock(clock Clock) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithTickSource sets the tick source of the underlying timer.
func WithTickSource(source pomodoro.TickSource) Option {
	return func(c *Controller) {
		c.timerOpts = append(c.timerOpts, pomodoro.WithTickSource(source))
	}
}

// WithTickInterval sets the real time between timer ticks.
func WithTickInterval(interval time.Duration) Option {
	return func(c *Controller) {
		c.timerOpts = append(c.timerOpts, pomodoro.WithTickInterval(interval))
	}
}

// WithRecorder records every finished focus interval.
// When omitted, the preference store is used if it implements CycleRecorder.
func WithRecorder(recorder CycleRecorder) Option {
	return func(c *Controller) {
		c.recorder = recorder
	}
}

// Controller owns the pomodoro timer and reacts to its events.
type Controller struct {
	timer     *pomodoro.Timer
	store     PreferenceStore
	recorder  CycleRecorder
	presenter Presenter
	notifier  Notifier
	log       *logger.Logger
	clock     Clock
	timerOpts []pomodoro.Option

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe []func()

	mu  sync.Mutex
	day string
}

// New restores preferences for today, builds the timer and pushes the initial state
// to the presenter. A nil notifier disables boundary notifications.
func New(store PreferenceStore, presenter Presenter, notifier Notifier, log *logger.Logger, opts ...Option) (*Controller, error) {
	if store == nil {
		return nil, ErrNoStore
	}
	if presenter == nil {
		return nil, ErrNoPresenter
	}
	if log == nil {
		log = logger.Discard()
	}

	c := &Controller{
		store:     store,
		presenter: presenter,
		notifier:  notifier,
		log:       log,
		clock:     SystemClock,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.recorder == nil {
		if recorder, ok := store.(CycleRecorder); ok {
			c.recorder = recorder
		}
	}

	c.day = model.Day(c.clock.Now())
	prefs, err := store.Load(c.day)
	if err != nil {
		log.Warn("loading preferences: %v", err)
		prefs = model.DefaultPreferences()
	}
	if sanitized := prefs.Sanitize(); sanitized != prefs {
		log.Warn("stored preferences out of range, using %+v", sanitized)
		prefs = sanitized
	}

	c.timer = pomodoro.New(pomodoro.Config{
		Focus:           prefs.FocusMinutes,
		Break:           prefs.BreakMinutes,
		CompletedCycles: prefs.CompletedCycles,
	}, c.timerOpts...)
	c.ctx, c.cancel = context.WithCancel(context.Background())

	c.unsubscribe = []func(){
		c.timer.OnRemainingChanged(c.handleRemaining),
		c.timer.OnCompletedCyclesChanged(c.handleCycles),
		c.timer.OnPhaseChanged(c.handlePhase),
		c.timer.OnRunningChanged(c.handleRunning),
	}

	snapshot := c.timer.Snapshot()
	presenter.ShowRemaining(snapshot)
	presenter.ShowCompleted(snapshot.CompletedCycles)
	presenter.ShowRunning(snapshot)

	log.Info("timer ready (focus=%s, break=%s, completed today=%d)",
		prefs.FocusMinutes, prefs.BreakMinutes, prefs.CompletedCycles)
	return c, nil
}

// Snapshot returns the current timer state.
func (c *Controller) Snapshot() pomodoro.Snapshot {
	return c.timer.Snapshot()
}

// StartOrPause pauses a running timer and starts a paused one.
func (c *Controller) StartOrPause() {
	if c.timer.Running() {
		c.timer.Stop()
		c.log.Info("timer paused")
		return
	}
	c.Start()
}

// Start starts the timer if it is not already running.
func (c *Controller) Start() {
	c.rollOver()
	if c.timer.Running() {
		return
	}
	c.timer.Start()
	c.log.Info("timer started (%s)", c.timer.Phase())
}

// Reset stops the timer and returns to a full focus interval.
func (c *Controller) Reset() {
	c.timer.Reset()
	c.log.Info("timer reset")
}

// SkipBreak ends the current break and starts focusing again.
func (c *Controller) SkipBreak() {
	if c.timer.Phase() != pomodoro.PhaseBreak {
		c.log.Debug("skip break ignored outside a break")
		return
	}
	c.rollOver()
	c.timer.SkipBreak()
	c.log.Info("break skipped")
}

// SetFocusMinutes changes the focus length, resets the timer and persists the value.
// Values outside the selectable set are ignored.
func (c *Controller) SetFocusMinutes(minutes int) {
	if !c.timer.SetFocusMinutes(model.FocusMinutes(minutes)) {
		c.log.Debug("ignoring invalid focus interval %d", minutes)
		return
	}
	c.timer.Reset()
	c.save(model.KeyFocusMinutes, minutes)
	c.log.Info("focus interval set to %d minutes", minutes)
}

// SetBreakMinutes changes the break length, resets the timer and persists the value.
// Values outside the selectable set are ignored.
func (c *Controller) SetBreakMinutes(minutes int) {
	if !c.timer.SetBreakMinutes(model.BreakMinutes(minutes)) {
		c.log.Debug("ignoring invalid break interval %d", minutes)
		return
	}
	c.timer.Reset()
	c.save(model.KeyBreakMinutes, minutes)
	c.log.Info("break interval set to %d minutes", minutes)
}

// Close stops the timer and detaches every observer.
func (c *Controller) Close() {
	for _, unsubscribe := range c.unsubscribe {
		unsubscribe()
	}
	c.unsubscribe = nil
	c.timer.Close()
	c.cancel()
}

func (c *Controller) handleRemaining(event pomodoro.Event) {
	c.presenter.ShowRemaining(event.Snapshot)
}

func (c *Controller) handleRunning(event pomodoro.Event) {
	c.presenter.ShowRunning(event.Snapshot)
}

func (c *Controller) handlePhase(event pomodoro.Event) {
	if !event.Boundary {
		return
	}
	c.log.Info("%s started (%02d:%02d)", event.Snapshot.Phase, event.Snapshot.Minutes(), event.Snapshot.Seconds())
	if c.notifier == nil {
		return
	}
	if err := c.notifier.NotifyBoundary(c.ctx, event.Snapshot); err != nil {
		c.log.Error("posting %s notification: %v", event.Snapshot.Phase, err)
	}
}

func (c *Controller) handleCycles(event pomodoro.Event) {
	now := c.clock.Now()
	today := model.Day(now)
	count := event.Snapshot.CompletedCycles

	if event.Boundary {
		c.record(model.Cycle{
			ID:           uuid.NewString(),
			Day:          today,
			FocusMinutes: event.Snapshot.FocusMinutes,
			CompletedAt:  now,
		})
	}

	c.mu.Lock()
	rolled := today != c.day
	c.day = today
	c.mu.Unlock()

	if rolled {
		restart := 0
		if event.Boundary {
			restart = 1
		}
		c.log.Info("new day %s, completed count restarts at %d", today, restart)
		if count != restart {
			c.timer.SetCompletedCycles(restart)
			return
		}
	}

	c.presenter.ShowCompleted(count)
	c.save(model.CompletedCyclesKey(today), count)
}

// rollOver restarts the completed count when the calendar day changed since the
// counting period began.
func (c *Controller) rollOver() {
	today := model.Day(c.clock.Now())

	c.mu.Lock()
	rolled := today != c.day
	c.day = today
	c.mu.Unlock()

	if rolled {
		c.log.Info("new day %s, completed count restarts", today)
		c.timer.SetCompletedCycles(0)
	}
}

func (c *Controller) save(key string, value int) {
	if err := c.store.Save(key, value); err != nil {
		c.log.Error("saving %s: %v", key, err)
	}
}

func (c *Controller) record(cycle model.Cycle) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.RecordCycle(cycle); err != nil {
		c.log.Error("recording cycle: %v", err)
	}
}

package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pomodocko/internal/core/model"
	"pomodocko/internal/core/pomodoro"
	"pomodocko/internal/logger"
)

type memoryStore struct {
	mu      sync.Mutex
	values  map[string]int
	loadErr error
	saveErr error
	saves   int
}

func newMemoryStore(values map[string]int) *memoryStore {
	if values == nil {
		values = map[string]int{}
	}
	return &memoryStore{values: values}
}

func (store *memoryStore) Load(day string) (model.Preferences, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.loadErr != nil {
		return model.Preferences{}, store.loadErr
	}
	return model.Preferences{
		FocusMinutes:    model.FocusMinutes(store.values[model.KeyFocusMinutes]),
		BreakMinutes:    model.BreakMinutes(store.values[model.KeyBreakMinutes]),
		CompletedCycles: store.values[model.CompletedCyclesKey(day)],
	}, nil
}

func (store *memoryStore) Save(key string, value int) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.saves++
	if store.saveErr != nil {
		return store.saveErr
	}
	store.values[key] = value
	return nil
}

func (store *memoryStore) value(key string) (int, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()
	value, ok := store.values[key]
	return value, ok
}

type fakePresenter struct {
	mu        sync.Mutex
	remaining []pomodoro.Snapshot
	completed []int
	running   []bool
}

func (presenter *fakePresenter) ShowRemaining(snapshot pomodoro.Snapshot) {
	presenter.mu.Lock()
	defer presenter.mu.Unlock()
	presenter.remaining = append(presenter.remaining, snapshot)
}

func (presenter *fakePresenter) ShowCompleted(count int) {
	presenter.mu.Lock()
	defer presenter.mu.Unlock()
	presenter.completed = append(presenter.completed, count)
}

func (presenter *fakePresenter) ShowRunning(snapshot pomodoro.Snapshot) {
	presenter.mu.Lock()
	defer presenter.mu.Unlock()
	presenter.running = append(presenter.running, snapshot.Running)
}

func (presenter *fakePresenter) lastRemaining() pomodoro.Snapshot {
	presenter.mu.Lock()
	defer presenter.mu.Unlock()
	return presenter.remaining[len(presenter.remaining)-1]
}

func (presenter *fakePresenter) lastCompleted() int {
	presenter.mu.Lock()
	defer presenter.mu.Unlock()
	return presenter.completed[len(presenter.completed)-1]
}

func (presenter *fakePresenter) lastRunning() bool {
	presenter.mu.Lock()
	defer presenter.mu.Unlock()
	return presenter.running[len(presenter.running)-1]
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyBoundary(ctx context.Context, snapshot pomodoro.Snapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) RecordCycle(cycle model.Cycle) error {
	args := m.Called(cycle)
	return args.Error(0)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (clock *fakeClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *fakeClock) Advance(d time.Duration) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = clock.now.Add(d)
}

type manualSource struct {
	mu      sync.Mutex
	handles []*manualHandle
}

type manualHandle struct {
	fire      func()
	cancelled bool
}

func (handle *manualHandle) Cancel() {
	handle.cancelled = true
}

func (source *manualSource) Schedule(_ time.Duration, fire func()) pomodoro.TickHandle {
	source.mu.Lock()
	defer source.mu.Unlock()
	handle := &manualHandle{fire: fire}
	source.handles = append(source.handles, handle)
	return handle
}

func (source *manualSource) Advance(n int) {
	for i := 0; i < n; i++ {
		source.mu.Lock()
		var live []*manualHandle
		for _, handle := range source.handles {
			if !handle.cancelled {
				live = append(live, handle)
			}
		}
		source.mu.Unlock()
		for _, handle := range live {
			handle.fire()
		}
	}
}

type fixture struct {
	controller *Controller
	store      *memoryStore
	presenter  *fakePresenter
	notifier   *mockNotifier
	recorder   *mockRecorder
	clock      *fakeClock
	source     *manualSource
}

func newFixture(t *testing.T, values map[string]int) *fixture {
	t.Helper()
	fix := &fixture{
		store:     newMemoryStore(values),
		presenter: &fakePresenter{},
		notifier:  &mockNotifier{},
		recorder:  &mockRecorder{},
		clock:     &fakeClock{now: time.Date(2026, time.October, 19, 9, 0, 0, 0, time.Local)},
		source:    &manualSource{},
	}
	controller, err := New(fix.store, fix.presenter, fix.notifier, logger.Discard(),
		WithClock(fix.clock),
		WithTickSource(fix.source),
		WithRecorder(fix.recorder),
	)
	require.NoError(t, err)
	t.Cleanup(controller.Close)
	fix.controller = controller
	return fix
}

func TestNewRequiresStoreAndPresenter(t *testing.T) {
	_, err := New(nil, &fakePresenter{}, nil, nil)
	assert.ErrorIs(t, err, ErrNoStore)

	_, err = New(newMemoryStore(nil), nil, nil, nil)
	assert.ErrorIs(t, err, ErrNoPresenter)
}

func TestNewRestoresTodaysPreferences(t *testing.T) {
	fix := newFixture(t, map[string]int{
		model.KeyFocusMinutes:                  45,
		model.KeyBreakMinutes:                  10,
		model.CompletedCyclesKey("2026-10-19"): 3,
		model.CompletedCyclesKey("2026-10-18"): 8,
	})

	snapshot := fix.controller.Snapshot()
	assert.Equal(t, model.FocusFortyFive, snapshot.FocusMinutes)
	assert.Equal(t, model.BreakTen, snapshot.BreakMinutes)
	assert.Equal(t, 2700, snapshot.Remaining)
	assert.Equal(t, 3, snapshot.CompletedCycles)

	assert.Equal(t, 2700, fix.presenter.lastRemaining().Remaining)
	assert.Equal(t, 3, fix.presenter.lastCompleted())
	assert.False(t, fix.presenter.lastRunning())
}

func TestNewFallsBackToDefaults(t *testing.T) {
	store := newMemoryStore(map[string]int{model.KeyFocusMinutes: 17, model.KeyBreakMinutes: 3})
	controller, err := New(store, &fakePresenter{}, nil, logger.Discard(), WithTickSource(&manualSource{}))
	require.NoError(t, err)
	defer controller.Close()
	assert.Equal(t, model.DefaultFocusMinutes, controller.Snapshot().FocusMinutes)
	assert.Equal(t, model.DefaultBreakMinutes, controller.Snapshot().BreakMinutes)

	broken := newMemoryStore(nil)
	broken.loadErr = errors.New("disk gone")
	controller, err = New(broken, &fakePresenter{}, nil, logger.Discard(), WithTickSource(&manualSource{}))
	require.NoError(t, err)
	defer controller.Close()
	assert.Equal(t, 1500, controller.Snapshot().Remaining)
}

func TestStartOrPauseToggles(t *testing.T) {
	fix := newFixture(t, nil)

	fix.controller.StartOrPause()
	assert.True(t, fix.controller.Snapshot().Running)
	assert.True(t, fix.presenter.lastRunning())

	fix.source.Advance(3)
	assert.Equal(t, 1497, fix.presenter.lastRemaining().Remaining)

	fix.controller.StartOrPause()
	assert.False(t, fix.controller.Snapshot().Running)
	assert.False(t, fix.presenter.lastRunning())

	fix.source.Advance(3)
	assert.Equal(t, 1497, fix.controller.Snapshot().Remaining)
}

func TestFocusBoundaryNotifiesPersistsAndRecords(t *testing.T) {
	fix := newFixture(t, nil)
	fix.notifier.On("NotifyBoundary", mock.Anything, mock.MatchedBy(func(snapshot pomodoro.Snapshot) bool {
		return snapshot.Phase == pomodoro.PhaseBreak && snapshot.CompletedCycles == 1 && snapshot.Remaining == 300
	})).Return(nil).Once()
	fix.recorder.On("RecordCycle", mock.MatchedBy(func(cycle model.Cycle) bool {
		_, err := uuid.Parse(cycle.ID)
		return err == nil && cycle.Day == "2026-10-19" && cycle.FocusMinutes == model.FocusTwentyFive
	})).Return(nil).Once()

	fix.controller.Start()
	fix.source.Advance(1500)

	fix.notifier.AssertExpectations(t)
	fix.recorder.AssertExpectations(t)
	assert.Equal(t, 1, fix.presenter.lastCompleted())
	saved, ok := fix.store.value(model.CompletedCyclesKey("2026-10-19"))
	assert.True(t, ok)
	assert.Equal(t, 1, saved)
}

func TestBreakBoundaryNotifiesWithoutCounting(t *testing.T) {
	fix := newFixture(t, nil)
	fix.notifier.On("NotifyBoundary", mock.Anything, mock.Anything).Return(nil).Twice()
	fix.recorder.On("RecordCycle", mock.Anything).Return(nil).Once()

	fix.controller.Start()
	fix.source.Advance(1500 + 300)

	fix.notifier.AssertExpectations(t)
	fix.recorder.AssertExpectations(t)
	last := fix.notifier.Calls[len(fix.notifier.Calls)-1].Arguments.Get(1).(pomodoro.Snapshot)
	assert.Equal(t, pomodoro.PhaseFocus, last.Phase)
	assert.Equal(t, 1, last.CompletedCycles)
}

func TestNotifierFailureDoesNotDisturbTimer(t *testing.T) {
	fix := newFixture(t, nil)
	fix.notifier.On("NotifyBoundary", mock.Anything, mock.Anything).Return(errors.New("permission denied"))
	fix.recorder.On("RecordCycle", mock.Anything).Return(errors.New("locked"))

	fix.controller.Start()
	fix.source.Advance(1501)

	snapshot := fix.controller.Snapshot()
	assert.Equal(t, pomodoro.PhaseBreak, snapshot.Phase)
	assert.Equal(t, 299, snapshot.Remaining)
	assert.Equal(t, 1, snapshot.CompletedCycles)
}

func TestResetDoesNotNotify(t *testing.T) {
	fix := newFixture(t, nil)
	fix.controller.Start()
	fix.source.Advance(20)

	fix.controller.Reset()

	fix.notifier.AssertNotCalled(t, "NotifyBoundary", mock.Anything, mock.Anything)
	assert.Equal(t, 1500, fix.presenter.lastRemaining().Remaining)
	assert.False(t, fix.presenter.lastRunning())
}

func TestSetFocusMinutesResetsAndPersists(t *testing.T) {
	fix := newFixture(t, nil)
	fix.controller.Start()
	fix.source.Advance(10)

	fix.controller.SetFocusMinutes(50)

	snapshot := fix.controller.Snapshot()
	assert.Equal(t, 3000, snapshot.Remaining)
	assert.False(t, snapshot.Running)
	saved, ok := fix.store.value(model.KeyFocusMinutes)
	assert.True(t, ok)
	assert.Equal(t, 50, saved)
}

func TestSetBreakMinutesResetsAndPersists(t *testing.T) {
	fix := newFixture(t, nil)
	fix.controller.SetBreakMinutes(10)

	assert.Equal(t, model.BreakTen, fix.controller.Snapshot().BreakMinutes)
	saved, ok := fix.store.value(model.KeyBreakMinutes)
	assert.True(t, ok)
	assert.Equal(t, 10, saved)
}

func TestInvalidDurationsAreIgnored(t *testing.T) {
	fix := newFixture(t, nil)
	fix.controller.Start()
	fix.source.Advance(5)

	fix.controller.SetFocusMinutes(20)
	fix.controller.SetBreakMinutes(15)

	snapshot := fix.controller.Snapshot()
	assert.Equal(t, 1495, snapshot.Remaining)
	assert.True(t, snapshot.Running)
	assert.Equal(t, 0, fix.store.saves)
}

func TestSkipBreak(t *testing.T) {
	fix := newFixture(t, nil)
	fix.notifier.On("NotifyBoundary", mock.Anything, mock.Anything).Return(nil)
	fix.recorder.On("RecordCycle", mock.Anything).Return(nil)

	fix.controller.SkipBreak()
	assert.False(t, fix.controller.Snapshot().Running)

	fix.controller.Start()
	fix.source.Advance(1500)
	fix.controller.StartOrPause()
	require.Equal(t, pomodoro.PhaseBreak, fix.controller.Snapshot().Phase)

	fix.controller.SkipBreak()

	snapshot := fix.controller.Snapshot()
	assert.Equal(t, pomodoro.PhaseFocus, snapshot.Phase)
	assert.Equal(t, 1500, snapshot.Remaining)
	assert.True(t, snapshot.Running)
	assert.Equal(t, 1, snapshot.CompletedCycles)
}

func TestNewDayRestartsCountOnStart(t *testing.T) {
	fix := newFixture(t, map[string]int{model.CompletedCyclesKey("2026-10-19"): 4})
	require.Equal(t, 4, fix.controller.Snapshot().CompletedCycles)

	fix.clock.Advance(24 * time.Hour)
	fix.controller.Start()

	assert.Equal(t, 0, fix.controller.Snapshot().CompletedCycles)
	assert.Equal(t, 0, fix.presenter.lastCompleted())
	saved, ok := fix.store.value(model.CompletedCyclesKey("2026-10-20"))
	assert.True(t, ok)
	assert.Equal(t, 0, saved)
	yesterday, _ := fix.store.value(model.CompletedCyclesKey("2026-10-19"))
	assert.Equal(t, 4, yesterday)
}

func TestNewDayDetectedAtBoundary(t *testing.T) {
	fix := newFixture(t, map[string]int{model.CompletedCyclesKey("2026-10-19"): 6})
	fix.notifier.On("NotifyBoundary", mock.Anything, mock.Anything).Return(nil)
	fix.recorder.On("RecordCycle", mock.MatchedBy(func(cycle model.Cycle) bool {
		return cycle.Day == "2026-10-20"
	})).Return(nil).Once()

	fix.controller.Start()
	fix.source.Advance(1000)
	fix.clock.Advance(24 * time.Hour)
	fix.source.Advance(500)

	assert.Equal(t, 1, fix.controller.Snapshot().CompletedCycles)
	assert.Equal(t, 1, fix.presenter.lastCompleted())
	saved, _ := fix.store.value(model.CompletedCyclesKey("2026-10-20"))
	assert.Equal(t, 1, saved)
	fix.recorder.AssertExpectations(t)
}

func TestSaveFailureIsLogged(t *testing.T) {
	fix := newFixture(t, nil)
	fix.store.saveErr = errors.New("read-only")

	fix.controller.SetBreakMinutes(10)

	assert.Equal(t, model.BreakTen, fix.controller.Snapshot().BreakMinutes)
	assert.Equal(t, 1, fix.store.saves)
}

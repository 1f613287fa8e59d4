// Package tray renders the timer in the system tray and exposes the command menu.
package tray

import (
	"fmt"
	"sync/atomic"

	"fyne.io/fyne/v2"

	"pomodocko/internal/core/model"
	"pomodocko/internal/core/pomodoro"
	"pomodocko/resources"
)

const menuTitle = "Pomodocko"

// App is the part of desktop.App the tray needs.
type App interface {
	SetSystemTrayMenu(menu *fyne.Menu)
	SetSystemTrayIcon(icon fyne.Resource)
}

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnStartOrPause    func()
	OnSkipBreak       func()
	OnFocus           func(minutes int)
	OnBreak           func(minutes int)
	OnReset           func()
	OnToggleAutostart func(enabled bool)
	OnQuit            func()
}

// Manager handles system tray state. It implements controller.Presenter.
type Manager struct {
	app       App
	callbacks Callbacks
	do        func(func())
	started   atomic.Bool

	menu          *fyne.Menu
	statusItem    *fyne.MenuItem
	toggleItem    *fyne.MenuItem
	skipItem      *fyne.MenuItem
	focusItems    map[model.FocusMinutes]*fyne.MenuItem
	breakItems    map[model.BreakMinutes]*fyne.MenuItem
	autostartItem *fyne.MenuItem

	snapshot  pomodoro.Snapshot
	completed int
	icon      fyne.Resource
}

// New creates a tray manager with the provided callbacks and installs its menu.
func New(app App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:        app,
		callbacks:  callbacks,
		do:         fyne.Do,
		focusItems: map[model.FocusMinutes]*fyne.MenuItem{},
		breakItems: map[model.BreakMinutes]*fyne.MenuItem{},
		snapshot: pomodoro.Snapshot{
			Phase:        pomodoro.PhaseFocus,
			Remaining:    model.DefaultFocusMinutes.Seconds(),
			FocusMinutes: model.DefaultFocusMinutes,
			BreakMinutes: model.DefaultBreakMinutes,
		},
	}

	manager.statusItem = fyne.NewMenuItem("", nil)
	manager.statusItem.Disabled = true

	manager.toggleItem = fyne.NewMenuItem("Start timer", func() {
		if manager.callbacks.OnStartOrPause != nil {
			manager.callbacks.OnStartOrPause()
		}
	})

	manager.skipItem = fyne.NewMenuItem("Skip break", func() {
		if manager.callbacks.OnSkipBreak != nil {
			manager.callbacks.OnSkipBreak()
		}
	})

	focusMenu := fyne.NewMenuItem("Focus interval", nil)
	var focusChoices []*fyne.MenuItem
	for _, minutes := range model.FocusOptions {
		item := fyne.NewMenuItem(minutes.String(), func() {
			if manager.callbacks.OnFocus != nil {
				manager.callbacks.OnFocus(int(minutes))
			}
		})
		manager.focusItems[minutes] = item
		focusChoices = append(focusChoices, item)
	}
	focusMenu.ChildMenu = fyne.NewMenu("", focusChoices...)

	breakMenu := fyne.NewMenuItem("Break interval", nil)
	var breakChoices []*fyne.MenuItem
	for _, minutes := range model.BreakOptions {
		item := fyne.NewMenuItem(minutes.String(), func() {
			if manager.callbacks.OnBreak != nil {
				manager.callbacks.OnBreak(int(minutes))
			}
		})
		manager.breakItems[minutes] = item
		breakChoices = append(breakChoices, item)
	}
	breakMenu.ChildMenu = fyne.NewMenu("", breakChoices...)

	reset := fyne.NewMenuItem("Reset timer", func() {
		if manager.callbacks.OnReset != nil {
			manager.callbacks.OnReset()
		}
	})

	quit := fyne.NewMenuItem("Quit", func() {
		if manager.callbacks.OnQuit != nil {
			manager.callbacks.OnQuit()
		}
	})
	quit.IsQuit = true

	items := []*fyne.MenuItem{
		manager.statusItem,
		fyne.NewMenuItemSeparator(),
		manager.toggleItem,
		manager.skipItem,
		fyne.NewMenuItemSeparator(),
		focusMenu,
		breakMenu,
		fyne.NewMenuItemSeparator(),
		reset,
	}
	if callbacks.OnToggleAutostart != nil {
		manager.autostartItem = fyne.NewMenuItem("Open at login", func() {
			manager.callbacks.OnToggleAutostart(!manager.autostartItem.Checked)
		})
		items = append(items, manager.autostartItem)
	}
	items = append(items, quit)

	manager.menu = fyne.NewMenu(menuTitle, items...)
	manager.refresh()
	return manager
}

// ShowRemaining updates the countdown, the phase icon and the interval checkmarks.
func (manager *Manager) ShowRemaining(snapshot pomodoro.Snapshot) {
	manager.run(func() {
		manager.snapshot = snapshot
		manager.refresh()
	})
}

// ShowCompleted updates the completed-today count.
func (manager *Manager) ShowCompleted(count int) {
	manager.run(func() {
		manager.completed = count
		manager.refresh()
	})
}

// ShowRunning updates the start/pause label and the icon.
func (manager *Manager) ShowRunning(snapshot pomodoro.Snapshot) {
	manager.run(func() {
		manager.snapshot = snapshot
		manager.refresh()
	})
}

// SetAutostart reflects the launch-at-login state.
func (manager *Manager) SetAutostart(enabled bool) {
	manager.run(func() {
		if manager.autostartItem == nil {
			return
		}
		manager.autostartItem.Checked = enabled
		manager.refresh()
	})
}

// Started routes later updates through the fyne main thread. Call it once the
// app is running; updates before that run inline on the calling goroutine.
func (manager *Manager) Started() {
	manager.started.Store(true)
}

// Status returns the current status line.
func (manager *Manager) Status() string {
	return manager.statusItem.Label
}

// Menu returns the installed tray menu.
func (manager *Manager) Menu() *fyne.Menu {
	return manager.menu
}

func (manager *Manager) run(fn func()) {
	if manager.started.Load() {
		manager.do(fn)
		return
	}
	fn()
}

func (manager *Manager) refresh() {
	snapshot := manager.snapshot

	manager.statusItem.Label = statusLine(snapshot, manager.completed)
	if snapshot.Running {
		manager.toggleItem.Label = "Pause timer"
	} else {
		manager.toggleItem.Label = "Start timer"
	}
	manager.skipItem.Disabled = snapshot.Phase != pomodoro.PhaseBreak

	for minutes, item := range manager.focusItems {
		item.Checked = minutes == snapshot.FocusMinutes
	}
	for minutes, item := range manager.breakItems {
		item.Checked = minutes == snapshot.BreakMinutes
	}

	if manager.app == nil {
		return
	}
	if icon, err := resources.PhaseIcon(snapshot.Phase, snapshot.Running); err == nil && icon != manager.icon {
		manager.icon = icon
		manager.app.SetSystemTrayIcon(icon)
	}
	manager.app.SetSystemTrayMenu(manager.menu)
}

func statusLine(snapshot pomodoro.Snapshot, completed int) string {
	phase := "Focus"
	if snapshot.Phase == pomodoro.PhaseBreak {
		phase = "Break"
	}
	state := ""
	if !snapshot.Running {
		state = " (paused)"
	}
	return fmt.Sprintf("%s %02d:%02d%s | Completed: %d", phase, snapshot.Minutes(), snapshot.Seconds(), state, completed)
}

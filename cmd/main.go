package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"pomodocko/internal/config"
	"pomodocko/internal/core/controller"
	"pomodocko/internal/core/model"
	"pomodocko/internal/logger"
	"pomodocko/internal/platform"
	"pomodocko/internal/storage"
	"pomodocko/internal/storage/sqlite"
	"pomodocko/internal/ui/notify"
	"pomodocko/internal/ui/tray"
	"pomodocko/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
)

const (
	appName = "Pomodocko"
	appID   = "com.pomodocko.app"
)

type closableStore interface {
	controller.PreferenceStore
	Close() error
}

type cycleHistory interface {
	CyclesOn(day string) ([]model.Cycle, error)
}

type yamlStore struct {
	*storage.YAMLStore
}

func (yamlStore) Close() error { return nil }

func main() {
	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		if activateErr := platform.ActivateRunning(appName); activateErr != nil {
			log.Printf("single instance: %v (%v)", err, activateErr)
		}
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	service := platform.NewService()
	defaultDir, err := service.DataDir(appName)
	if err != nil {
		log.Printf("data dir: %v", err)
		defaultDir = "."
	}

	if err := config.LoadEnvFiles(".", defaultDir); err != nil {
		log.Printf("%v", err)
	}
	cfg := config.Load(defaultDir)
	if err := cfg.Validate(); err != nil {
		log.Printf("%v", err)
		return
	}
	logr := logger.New(cfg.LogLevel, os.Stderr)

	store, err := openStore(cfg)
	if err != nil {
		logr.Error("open %s store: %v", cfg.Store, err)
		return
	}
	defer func() {
		if err := store.Close(); err != nil {
			logr.Error("close store: %v", err)
		}
	}()
	logr.Info("using %s store in %s", cfg.Store, cfg.DataDir)
	if history, ok := store.(cycleHistory); ok {
		logToday(logr, history, time.Now())
	}

	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.AppIcon())
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		logr.Error("system tray unsupported on this platform")
		return
	}

	var coordinator *controller.Controller
	var trayManager *tray.Manager
	trayManager = tray.New(desktopApp, tray.Callbacks{
		OnStartOrPause: func() {
			coordinator.StartOrPause()
		},
		OnSkipBreak: func() {
			coordinator.SkipBreak()
		},
		OnFocus: func(minutes int) {
			coordinator.SetFocusMinutes(minutes)
		},
		OnBreak: func(minutes int) {
			coordinator.SetBreakMinutes(minutes)
		},
		OnReset: func() {
			coordinator.Reset()
		},
		OnToggleAutostart: func(enabled bool) {
			if err := setAutostart(service, enabled); err != nil {
				logr.Error("%v", err)
				return
			}
			trayManager.SetAutostart(enabled)
		},
		OnQuit: func() {
			coordinator.Close()
			fyneApp.Quit()
		},
	})
	if enabled, err := service.AutostartEnabled(appName); err == nil {
		trayManager.SetAutostart(enabled)
	} else {
		logr.Debug("autostart status: %v", err)
	}

	notifier := notify.New(fyneApp, cfg.Notifications)

	coordinator, err = controller.New(store, trayManager, notifier, logr,
		controller.WithTickInterval(cfg.TickInterval),
	)
	if err != nil {
		logr.Error("create controller: %v", err)
		return
	}
	defer coordinator.Close()

	guard.Serve(func() {
		logr.Info("activation request from a second launch")
		fyne.Do(func() {
			fyneApp.SendNotification(fyne.NewNotification(appName+" is already running", "Use the tray menu to control the timer."))
		})
	})

	fyneApp.Lifecycle().SetOnStarted(func() {
		trayManager.Started()
	})
	fyneApp.Run()
}

// logToday reports the focus intervals already recorded today.
func logToday(logr *logger.Logger, history cycleHistory, now time.Time) {
	day := model.Day(now)
	cycles, err := history.CyclesOn(day)
	if err != nil {
		logr.Warn("read cycle history: %v", err)
		return
	}
	total := 0
	for _, cycle := range cycles {
		total += int(cycle.FocusMinutes)
	}
	logr.Info("%d focus intervals recorded on %s (%d minutes)", len(cycles), day, total)
}

func openStore(cfg config.Config) (closableStore, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		return sqlite.OpenInDir(cfg.DataDir)
	default:
		return yamlStore{storage.NewYAMLStore(cfg.DataDir)}, nil
	}
}

func setAutostart(service platform.Service, enabled bool) error {
	if !enabled {
		if err := service.DisableAutostart(appName); err != nil {
			return fmt.Errorf("disable open at login: %w", err)
		}
		return nil
	}

	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("enable open at login: %w", err)
	}
	if err := service.EnableAutostart(appName, execPath); err != nil {
		return fmt.Errorf("enable open at login: %w", err)
	}
	return nil
}

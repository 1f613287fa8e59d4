package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"pomodocko/internal/core/model"
)

const (
	settingsFileName = "settings.yaml"
	backupSuffix     = ".bak"
	keptDays         = 30
)

var errCorruptSettings = errors.New("corrupt settings file")

// YAMLStore keeps preferences as a flat key/value YAML document.
type YAMLStore struct {
	mu   sync.Mutex
	path string
}

// NewYAMLStore returns a store backed by settings.yaml inside dir.
// The file is created on first save.
func NewYAMLStore(dir string) *YAMLStore {
	return &YAMLStore{path: filepath.Join(dir, settingsFileName)}
}

// Path returns the settings file location.
func (store *YAMLStore) Path() string {
	return store.path
}

// Load reads the preferences for day. A missing file yields defaults.
func (store *YAMLStore) Load(day string) (model.Preferences, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	prefs := model.DefaultPreferences()
	values, err := store.readLocked()
	if err != nil {
		return prefs, err
	}

	if value, ok := values[model.KeyFocusMinutes]; ok {
		prefs.FocusMinutes = model.FocusMinutes(value)
	}
	if value, ok := values[model.KeyBreakMinutes]; ok {
		prefs.BreakMinutes = model.BreakMinutes(value)
	}
	prefs.CompletedCycles = values[model.CompletedCyclesKey(day)]
	return prefs, nil
}

// Save writes a single preference value. A file that no longer parses is moved
// to settings.yaml.bak and replaced by a fresh document holding only value.
func (store *YAMLStore) Save(key string, value int) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	values, err := store.readLocked()
	if errors.Is(err, errCorruptSettings) {
		if err := os.Rename(store.path, store.path+backupSuffix); err != nil {
			return fmt.Errorf("move corrupt settings aside: %w", err)
		}
		values = map[string]int{}
	} else if err != nil {
		return err
	}
	values[key] = value
	pruneCompleted(values, keptDays)

	if err := os.MkdirAll(filepath.Dir(store.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	serialized, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	tmpPath := store.path + ".tmp"
	if err := os.WriteFile(tmpPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	if err := os.Rename(tmpPath, store.path); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}

func (store *YAMLStore) readLocked() (map[string]int, error) {
	values := map[string]int{}

	rawData, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return values, nil
		}
		return values, fmt.Errorf("read settings file: %w", err)
	}

	if err := yaml.Unmarshal(rawData, &values); err != nil {
		return map[string]int{}, fmt.Errorf("parse settings yaml: %w: %w", errCorruptSettings, err)
	}
	if values == nil {
		values = map[string]int{}
	}
	return values, nil
}

// pruneCompleted drops all but the newest keep daily counts.
func pruneCompleted(values map[string]int, keep int) {
	var days []string
	for key := range values {
		if day, ok := model.DayFromKey(key); ok {
			days = append(days, day)
		}
	}
	if len(days) <= keep {
		return
	}
	sort.Strings(days)
	for _, day := range days[:len(days)-keep] {
		delete(values, model.CompletedCyclesKey(day))
	}
}

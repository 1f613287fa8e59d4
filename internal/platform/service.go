// Package platform holds the OS-specific helpers: the single-instance lock,
// the configuration directory and launch-at-login registration.
package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrAutostartUnsupported is returned where launch at login is not implemented.
var ErrAutostartUnsupported = errors.New("autostart unsupported on this platform")

// Service defines OS-specific helpers needed by the application.
type Service interface {
	GetConfigDir() (string, error)
	DataDir(appName string) (string, error)
	EnableAutostart(appName, execPath string) error
	DisableAutostart(appName string) error
	AutostartEnabled(appName string) (bool, error)
}

type platformService struct{}

// NewService returns a platform-specific implementation.
func NewService() Service {
	return &platformService{}
}

// GetConfigDir returns the OS-standard configuration directory.
func (service *platformService) GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}

	return fallbackConfigDir(homeDir), nil
}

// DataDir returns the per-application directory inside the config dir.
func (service *platformService) DataDir(appName string) (string, error) {
	name := strings.TrimSpace(appName)
	if name == "" {
		return "", fmt.Errorf("data dir: app name is empty")
	}
	configDir, err := service.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, name), nil
}

// slug lower-cases appName and replaces spaces for use in file names and labels.
func slug(appName string) string {
	name := strings.TrimSpace(appName)
	if name == "" {
		name = "pomodocko"
	}
	name = strings.ToLower(name)
	return strings.ReplaceAll(name, " ", "-")
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

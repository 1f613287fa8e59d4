//go:build linux

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func (service *platformService) EnableAutostart(appName, execPath string) error {
	if appName == "" {
		return fmt.Errorf("enable autostart: app name is empty")
	}
	if execPath == "" {
		return fmt.Errorf("enable autostart: exec path is empty")
	}

	entryPath, err := service.desktopEntryPath(appName)
	if err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(entryPath), 0o755); err != nil {
		return fmt.Errorf("enable autostart: create autostart dir: %w", err)
	}
	if err := os.WriteFile(entryPath, []byte(buildDesktopEntry(appName, execPath)), 0o644); err != nil {
		return fmt.Errorf("enable autostart: write desktop entry: %w", err)
	}
	return nil
}

func (service *platformService) DisableAutostart(appName string) error {
	if appName == "" {
		return fmt.Errorf("disable autostart: app name is empty")
	}

	entryPath, err := service.desktopEntryPath(appName)
	if err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	if err := os.Remove(entryPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("disable autostart: remove desktop entry: %w", err)
	}
	return nil
}

func (service *platformService) AutostartEnabled(appName string) (bool, error) {
	entryPath, err := service.desktopEntryPath(appName)
	if err != nil {
		return false, fmt.Errorf("autostart status: %w", err)
	}
	return fileExists(entryPath)
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config")
}

func (service *platformService) desktopEntryPath(appName string) (string, error) {
	configDir, err := service.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "autostart", slug(appName)+".desktop"), nil
}

// autostartDelaySeconds gives the tray host time to come up before the icon registers.
const autostartDelaySeconds = 5

// desktopEntryFields lists the autostart entry keys in file order.
func desktopEntryFields(appName, execPath string) [][2]string {
	execLine := execPath
	if strings.ContainsAny(execLine, " \t") && !strings.HasPrefix(execLine, `"`) {
		execLine = `"` + execLine + `"`
	}

	return [][2]string{
		{"Type", "Application"},
		{"Name", appName},
		{"GenericName", "Pomodoro Timer"},
		{"Comment", "Focus and break intervals from the system tray"},
		{"Exec", execLine},
		{"Icon", slug(appName)},
		{"Categories", "Utility;Clock;"},
		{"Keywords", "pomodoro;focus;timer;break;"},
		{"Terminal", "false"},
		{"StartupNotify", "false"},
		{"X-GNOME-Autostart-enabled", "true"},
		{"X-GNOME-Autostart-Delay", strconv.Itoa(autostartDelaySeconds)},
	}
}

func buildDesktopEntry(appName, execPath string) string {
	var entry strings.Builder
	entry.WriteString("[Desktop Entry]\n")
	for _, field := range desktopEntryFields(appName, execPath) {
		entry.WriteString(field[0] + "=" + field[1] + "\n")
	}
	return entry.String()
}

//go:build darwin

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (service *platformService) EnableAutostart(appName, execPath string) error {
	if appName == "" {
		return fmt.Errorf("enable autostart: app name is empty")
	}
	if execPath == "" {
		return fmt.Errorf("enable autostart: exec path is empty")
	}

	plistPath, err := launchAgentPath(appName)
	if err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(plistPath), 0o755); err != nil {
		return fmt.Errorf("enable autostart: create LaunchAgents dir: %w", err)
	}

	content := buildLaunchAgentPlist(launchAgentLabel(appName), execPath)
	if err := os.WriteFile(plistPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("enable autostart: write plist: %w", err)
	}
	return nil
}

func (service *platformService) DisableAutostart(appName string) error {
	if appName == "" {
		return fmt.Errorf("disable autostart: app name is empty")
	}

	plistPath, err := launchAgentPath(appName)
	if err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	if err := os.Remove(plistPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("disable autostart: remove plist: %w", err)
	}
	return nil
}

func (service *platformService) AutostartEnabled(appName string) (bool, error) {
	plistPath, err := launchAgentPath(appName)
	if err != nil {
		return false, fmt.Errorf("autostart status: %w", err)
	}
	return fileExists(plistPath)
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "Library", "Application Support")
}

func launchAgentPath(appName string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(homeDir, "Library", "LaunchAgents", launchAgentLabel(appName)+".plist"), nil
}

func launchAgentLabel(appName string) string {
	return "com.pomodocko." + slug(appName)
}

// buildLaunchAgentPlist describes a per-user agent that starts the timer once per
// GUI login and sends its log output to ~/Library/Logs.
func buildLaunchAgentPlist(label, execPath string) string {
	logPath := "/tmp/" + label + ".log"
	if homeDir, err := os.UserHomeDir(); err == nil {
		logPath = filepath.Join(homeDir, "Library", "Logs", label+".log")
	}

	var body strings.Builder
	plistString(&body, "Label", label)
	body.WriteString("\t<key>ProgramArguments</key>\n\t<array>\n")
	fmt.Fprintf(&body, "\t\t<string>%s</string>\n", xmlEscape(execPath))
	body.WriteString("\t</array>\n")
	plistBool(&body, "RunAtLoad", true)
	plistBool(&body, "KeepAlive", false)
	plistString(&body, "LimitLoadToSessionType", "Aqua")
	plistString(&body, "ProcessType", "Interactive")
	plistString(&body, "StandardOutPath", logPath)
	plistString(&body, "StandardErrorPath", logPath)

	return `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
` + body.String() + `</dict>
</plist>
`
}

func plistString(body *strings.Builder, key, value string) {
	fmt.Fprintf(body, "\t<key>%s</key>\n\t<string>%s</string>\n", key, xmlEscape(value))
}

func plistBool(body *strings.Builder, key string, value bool) {
	tag := "<false/>"
	if value {
		tag = "<true/>"
	}
	fmt.Fprintf(body, "\t<key>%s</key>\n\t%s\n", key, tag)
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func xmlEscape(value string) string {
	return xmlReplacer.Replace(value)
}

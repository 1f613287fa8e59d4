// Package notify posts desktop notifications at interval boundaries.
package notify

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"

	"pomodocko/internal/core/pomodoro"
)

// Category identifies which boundary a notification announces.
type Category string

const (
	CategoryStartOfBreak Category = "startOfBreak"
	CategoryStartOfFocus Category = "startOfFocus"
)

// Sender is the part of fyne.App used to post notifications.
type Sender interface {
	SendNotification(notification *fyne.Notification)
}

// Notifier turns boundary snapshots into desktop notifications.
type Notifier struct {
	sender  Sender
	enabled bool
	do      func(func())
}

// New returns a notifier posting through sender. When enabled is false every
// boundary is dropped silently.
func New(sender Sender, enabled bool) *Notifier {
	return &Notifier{sender: sender, enabled: enabled, do: fyne.Do}
}

// CategoryFor returns the notification category for the phase just entered.
func CategoryFor(snapshot pomodoro.Snapshot) Category {
	if snapshot.Phase == pomodoro.PhaseBreak {
		return CategoryStartOfBreak
	}
	return CategoryStartOfFocus
}

// Content returns the title and body for snapshot.
func Content(snapshot pomodoro.Snapshot) (string, string) {
	switch CategoryFor(snapshot) {
	case CategoryStartOfBreak:
		return "Time for a break",
			fmt.Sprintf("Focus interval done. Rest for %d minutes. Completed today: %d.", int(snapshot.BreakMinutes), snapshot.CompletedCycles)
	default:
		return "Back to focus",
			fmt.Sprintf("Break is over. Focus for %d minutes.", int(snapshot.FocusMinutes))
	}
}

// NotifyBoundary posts the notification for the phase just entered.
func (notifier *Notifier) NotifyBoundary(ctx context.Context, snapshot pomodoro.Snapshot) error {
	if !notifier.enabled {
		return nil
	}
	if notifier.sender == nil {
		return fmt.Errorf("notify %s: no sender", CategoryFor(snapshot))
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("notify %s: %w", CategoryFor(snapshot), err)
	}

	title, body := Content(snapshot)
	notification := fyne.NewNotification(title, body)
	notifier.do(func() {
		notifier.sender.SendNotification(notification)
	})
	return nil
}

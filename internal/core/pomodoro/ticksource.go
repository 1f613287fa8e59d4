package pomodoro

import (
	"sync"
	"time"
)

// TickHandle is a scheduled periodic tick.
type TickHandle interface {
	Cancel()
}

// TickSource fires a callback once per interval until the returned handle is cancelled.
type TickSource interface {
	Schedule(interval time.Duration, fire func()) TickHandle
}

// TickerSource schedules ticks on a time.Ticker goroutine.
type TickerSource struct{}

// Schedule starts a goroutine that calls fire every interval.
func (TickerSource) Schedule(interval time.Duration, fire func()) TickHandle {
	if interval <= 0 {
		interval = time.Second
	}
	handle := &tickerHandle{stopCh: make(chan struct{})}
	go handle.run(interval, fire)
	return handle
}

type tickerHandle struct {
	stopCh chan struct{}
	once   sync.Once
}

func (handle *tickerHandle) run(interval time.Duration, fire func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-handle.stopCh:
			return
		case <-ticker.C:
			select {
			case <-handle.stopCh:
				return
			default:
			}
			fire()
		}
	}
}

// Cancel stops the ticker goroutine. Safe to call more than once.
func (handle *tickerHandle) Cancel() {
	handle.once.Do(func() {
		close(handle.stopCh)
	})
}

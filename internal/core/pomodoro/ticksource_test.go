package pomodoro

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickerSourceCancel(t *testing.T) {
	var fired atomic.Int64
	handle := TickerSource{}.Schedule(2*time.Millisecond, func() {
		fired.Add(1)
	})

	require.Eventually(t, func() bool {
		return fired.Load() >= 3
	}, time.Second, time.Millisecond)

	handle.Cancel()
	handle.Cancel()
	time.Sleep(10 * time.Millisecond)
	settled := fired.Load()
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, settled, fired.Load())
}

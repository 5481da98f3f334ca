package accounts_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accounts "github.com/shopkit/go-accounts"
)

// watchdog tests use short real durations; the timer itself is the thing
// under test.
const tick = 40 * time.Millisecond

func countingWatchdog(idleLimit time.Duration) (*accounts.Watchdog, *atomic.Int32) {
	var fired atomic.Int32
	w := accounts.NewWatchdog(idleLimit, func() { fired.Add(1) })
	return w, &fired
}

func TestWatchdogFiresAfterIdleLimit(t *testing.T) {
	w, fired := countingWatchdog(tick)

	w.Arm()
	require.Eventually(t, func() bool { return fired.Load() == 1 },
		time.Second, 5*time.Millisecond)

	// it never fires a second time
	time.Sleep(3 * tick)
	assert.EqualValues(t, 1, fired.Load())
}

func TestWatchdogTouchRestartsWindow(t *testing.T) {
	w, fired := countingWatchdog(4 * tick)

	w.Arm()
	for i := 0; i < 5; i++ {
		time.Sleep(tick)
		w.Touch()
	}
	assert.EqualValues(t, 0, fired.Load(), "regular activity must keep the session alive")

	require.Eventually(t, func() bool { return fired.Load() == 1 },
		time.Second, 5*time.Millisecond)
}

func TestWatchdogStopPreventsFiring(t *testing.T) {
	w, fired := countingWatchdog(tick)

	w.Arm()
	w.Stop()

	time.Sleep(3 * tick)
	assert.EqualValues(t, 0, fired.Load())

	// stopped is permanent
	w.Arm()
	w.Touch()
	time.Sleep(3 * tick)
	assert.EqualValues(t, 0, fired.Load())
}

func TestWatchdogArmRemaining(t *testing.T) {
	t.Run("fresh timestamp arms the remainder", func(t *testing.T) {
		w, fired := countingWatchdog(4 * tick)

		armed := w.ArmRemaining(time.Now().Add(-2 * tick))
		assert.True(t, armed)

		time.Sleep(tick)
		assert.EqualValues(t, 0, fired.Load(), "remainder not yet elapsed")

		require.Eventually(t, func() bool { return fired.Load() == 1 },
			time.Second, 5*time.Millisecond)
	})

	t.Run("stale timestamp refuses to arm", func(t *testing.T) {
		w, fired := countingWatchdog(tick)

		armed := w.ArmRemaining(time.Now().Add(-time.Hour))
		assert.False(t, armed, "stale activity must not resurrect a session")

		time.Sleep(3 * tick)
		assert.EqualValues(t, 0, fired.Load(), "refusal means no timer at all; the caller expires explicitly")
	})
}

func TestWatchdogTouchAfterFireIsNoop(t *testing.T) {
	w, fired := countingWatchdog(tick)

	w.Arm()
	require.Eventually(t, func() bool { return fired.Load() == 1 },
		time.Second, 5*time.Millisecond)

	w.Touch()
	time.Sleep(3 * tick)
	assert.EqualValues(t, 1, fired.Load(), "an ended watchdog stays ended")
}

func TestWatchdogSingleSlot(t *testing.T) {
	w, fired := countingWatchdog(tick)

	// repeated arming replaces the pending timer instead of stacking timers
	for i := 0; i < 10; i++ {
		w.Arm()
	}

	require.Eventually(t, func() bool { return fired.Load() >= 1 },
		time.Second, 5*time.Millisecond)
	time.Sleep(3 * tick)
	assert.EqualValues(t, 1, fired.Load())
}

func TestWatchdogLastActivity(t *testing.T) {
	w := accounts.NewWatchdog(time.Minute, nil)

	before := time.Now()
	w.Arm()
	after := time.Now()

	last := w.LastActivity()
	assert.False(t, last.Before(before))
	assert.False(t, last.After(after))
	assert.Equal(t, time.Minute, w.IdleLimit())
}

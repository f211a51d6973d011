package tick

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/revscope/internal/testutil"
)

func TestTicker_DeliversTicks(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	tk := NewTicker(5*time.Millisecond, nil)
	var count atomic.Int32
	tk.Start(func() { count.Add(1) })
	require.True(t, tk.Running())

	assert.Eventually(t, func() bool { return count.Load() >= 3 }, time.Second, time.Millisecond)

	tk.Stop()
	tk.Wait()
	assert.False(t, tk.Running())

	stopped := count.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, count.Load(), "no ticks after Stop")
}

func TestTicker_HandlerCanStopItself(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	tk := NewTicker(2*time.Millisecond, nil)
	var count atomic.Int32
	tk.Start(func() {
		if count.Add(1) == 2 {
			tk.Stop()
		}
	})

	assert.Eventually(t, func() bool { return !tk.Running() }, time.Second, time.Millisecond)
	tk.Wait()
	assert.Equal(t, int32(2), count.Load())
}

func TestTicker_RestartReplacesHandler(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	tk := NewTicker(2*time.Millisecond, nil)
	var first, second atomic.Int32
	tk.Start(func() { first.Add(1) })
	assert.Eventually(t, func() bool { return first.Load() > 0 }, time.Second, time.Millisecond)

	tk.Start(func() { second.Add(1) })
	seen := first.Load()
	assert.Eventually(t, func() bool { return second.Load() >= 3 }, time.Second, time.Millisecond)
	assert.LessOrEqual(t, first.Load(), seen+1)

	tk.Stop()
	tk.Wait()
}

func TestTicker_DispatcherIsUsed(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	var dispatched atomic.Int32
	tk := NewTicker(2*time.Millisecond, func(fn func()) {
		dispatched.Add(1)
		fn()
	})
	var ticks atomic.Int32
	tk.Start(func() { ticks.Add(1) })

	assert.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, time.Millisecond)
	tk.Stop()
	tk.Wait()
	assert.Equal(t, dispatched.Load(), ticks.Load())
}

func TestTicker_StopIsIdempotent(t *testing.T) {
	tk := NewTicker(time.Millisecond, nil)
	assert.NotPanics(t, func() {
		tk.Stop()
		tk.Stop()
	})
	tk.Wait()
}

func TestManual(t *testing.T) {
	m := NewManual()
	count := 0
	assert.False(t, m.Tick())

	m.Start(func() { count++ })
	assert.True(t, m.Tick())
	assert.True(t, m.Tick())
	assert.Equal(t, 2, count)

	m.Stop()
	m.Stop()
	assert.False(t, m.Tick())
	assert.Equal(t, 2, count)
	assert.Equal(t, 1, m.Starts())
	assert.Equal(t, 1, m.Stops())
}

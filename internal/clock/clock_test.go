package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeAfterFuncFiresOnlyWhenDue(t *testing.T) {
	clk := NewFake(time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC))

	fired := 0
	clk.AfterFunc(500*time.Millisecond, func() { fired++ })

	clk.Advance(499 * time.Millisecond)
	assert.Equal(t, 0, fired)

	clk.Advance(time.Millisecond)
	assert.Equal(t, 1, fired)

	clk.Advance(time.Second)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, clk.PendingTimers())
}

func TestFakeTimerStop(t *testing.T) {
	clk := NewFake(time.Unix(0, 0))

	fired := false
	timer := clk.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	clk.Advance(2 * time.Second)
	assert.False(t, fired)
}

func TestFakeTickerDropsTicksForSlowReceivers(t *testing.T) {
	clk := NewFake(time.Unix(0, 0))
	ticker := clk.NewTicker(5 * time.Second)

	clk.Advance(20 * time.Second)

	select {
	case tick := <-ticker.C():
		assert.Equal(t, time.Unix(5, 0), tick)
	default:
		t.Fatal("expected a buffered tick")
	}

	select {
	case <-ticker.C():
		t.Fatal("expected extra ticks to be dropped")
	default:
	}

	ticker.Stop()
	clk.Advance(10 * time.Second)
	select {
	case <-ticker.C():
		t.Fatal("stopped ticker must not tick")
	default:
	}
}

func TestRealClockAfterFunc(t *testing.T) {
	done := make(chan struct{})
	New().AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "real timer did not fire")
	}
}

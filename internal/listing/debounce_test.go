package listing

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pix-storefront/internal/clock"
)

const window = 500 * time.Millisecond

type doResult struct {
	res Result[string]
	err error
}

func startDo(c *Coalescer[string], key, term string, upstream *atomic.Int32) chan doResult {
	out := make(chan doResult, 1)
	go func() {
		res, err := c.Do(context.Background(), key, func(context.Context) (string, error) {
			upstream.Add(1)
			return "results for " + term, nil
		})
		out <- doResult{res, err}
	}()
	return out
}

func recv(t *testing.T, ch chan doResult) doResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(time.Second):
		t.Fatal("no result")
		return doResult{}
	}
}

func TestCoalescerCollapsesBurst(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	c := NewCoalescer[string](clk, window)
	var upstream atomic.Int32

	first := startDo(c, "sid:users", "a", &upstream)
	require.Eventually(t, func() bool { return c.Pending() == 1 }, time.Second, time.Millisecond)

	second := startDo(c, "sid:users", "an", &upstream)
	r1 := recv(t, first)
	assert.ErrorIs(t, r1.err, ErrSuperseded)

	clk.Advance(200 * time.Millisecond)
	third := startDo(c, "sid:users", "ana", &upstream)
	r2 := recv(t, second)
	assert.ErrorIs(t, r2.err, ErrSuperseded)

	clk.Advance(window)
	r3 := recv(t, third)
	require.NoError(t, r3.err)
	assert.Equal(t, "results for ana", r3.res.Value)
	assert.Equal(t, int32(1), upstream.Load())

	assert.Greater(t, r3.res.Seq, r2.res.Seq)
	assert.Greater(t, r2.res.Seq, r1.res.Seq)
	assert.Equal(t, 0, c.Pending())
}

func TestCoalescerKeysAreIndependent(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	c := NewCoalescer[string](clk, window)
	var upstream atomic.Int32

	a := startDo(c, "a", "x", &upstream)
	b := startDo(c, "b", "y", &upstream)
	require.Eventually(t, func() bool { return c.Pending() == 2 }, time.Second, time.Millisecond)

	clk.Advance(window)
	require.NoError(t, recv(t, a).err)
	require.NoError(t, recv(t, b).err)
	assert.Equal(t, int32(2), upstream.Load())
}

func TestCoalescerContextCancel(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	c := NewCoalescer[string](clk, window)
	ctx, cancel := context.WithCancel(context.Background())

	out := make(chan error, 1)
	go func() {
		_, err := c.Do(ctx, "k", func(context.Context) (string, error) {
			t.Error("fn must not run after cancel")
			return "", nil
		})
		out <- err
	}()
	require.Eventually(t, func() bool { return c.Pending() == 1 }, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-out:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Do did not return")
	}
	assert.Equal(t, 0, c.Pending())

	clk.Advance(window)
}

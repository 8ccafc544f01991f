package listing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"pix-storefront/internal/clock"
)

// ErrSuperseded is returned to a caller whose request was replaced by a newer
// one for the same key before the quiet window elapsed.
var ErrSuperseded = errors.New("superseded by a newer request")

// Result carries a sequence number that grows with every request, so a client
// can discard responses older than one it already rendered.
type Result[T any] struct {
	Seq   uint64 `json:"seq"`
	Value T      `json:"data"`
}

type outcome[T any] struct {
	value T
	err   error
}

type call[T any] struct {
	ctx   context.Context
	seq   uint64
	timer clock.Timer
	fn    func(context.Context) (T, error)
	done  chan outcome[T]
}

// Coalescer debounces requests per key on the server: only the last request
// in a burst reaches fn.
type Coalescer[T any] struct {
	mu      sync.Mutex
	clock   clock.Clock
	wait    time.Duration
	seq     atomic.Uint64
	pending map[string]*call[T]
}

func NewCoalescer[T any](clk clock.Clock, wait time.Duration) *Coalescer[T] {
	return &Coalescer[T]{
		clock:   clk,
		wait:    wait,
		pending: make(map[string]*call[T]),
	}
}

// Do waits for the quiet window and runs fn, unless a newer call for key
// arrives first. A call whose fn already started is never superseded.
func (c *Coalescer[T]) Do(ctx context.Context, key string, fn func(context.Context) (T, error)) (Result[T], error) {
	cl := &call[T]{
		ctx:  ctx,
		seq:  c.seq.Add(1),
		fn:   fn,
		done: make(chan outcome[T], 1),
	}

	c.mu.Lock()
	if prev, ok := c.pending[key]; ok && prev.timer.Stop() {
		prev.done <- outcome[T]{err: ErrSuperseded}
	}
	c.pending[key] = cl
	cl.timer = c.clock.AfterFunc(c.wait, func() { c.fire(key, cl) })
	c.mu.Unlock()

	select {
	case out := <-cl.done:
		if out.err != nil {
			return Result[T]{Seq: cl.seq}, out.err
		}
		return Result[T]{Seq: cl.seq, Value: out.value}, nil
	case <-ctx.Done():
		c.mu.Lock()
		if c.pending[key] == cl && cl.timer.Stop() {
			delete(c.pending, key)
		}
		c.mu.Unlock()
		return Result[T]{Seq: cl.seq}, ctx.Err()
	}
}

func (c *Coalescer[T]) fire(key string, cl *call[T]) {
	c.mu.Lock()
	if c.pending[key] == cl {
		delete(c.pending, key)
	}
	c.mu.Unlock()

	go func() {
		v, err := cl.fn(cl.ctx)
		cl.done <- outcome[T]{value: v, err: err}
	}()
}

// Pending reports how many keys have a request waiting for its window.
func (c *Coalescer[T]) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

package payment

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"pix-storefront/internal/clock"
)

// Registry owns the running watchers, keyed by transaction ID. Finished
// watchers stay readable for the retention period; after that only their
// final snapshot is kept, for outcomeTTL, so a finished payment is never
// polled again.
type Registry struct {
	mu         sync.Mutex
	ctx        context.Context
	cancel     context.CancelFunc
	watchers   map[string]*Watcher
	outcomes   map[string]*Snapshot
	clock      clock.Clock
	retention  time.Duration
	outcomeTTL time.Duration
	log        *zap.Logger
}

func NewRegistry(clk clock.Clock, retention, outcomeTTL time.Duration, log *zap.Logger) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		ctx:        ctx,
		cancel:     cancel,
		watchers:   make(map[string]*Watcher),
		outcomes:   make(map[string]*Snapshot),
		clock:      clk,
		retention:  retention,
		outcomeTTL: outcomeTTL,
		log:        log,
	}
}

// Add starts w and registers it. An existing watcher for the same transaction
// is kept and returned instead.
func (r *Registry) Add(w *Watcher) *Watcher {
	txID := w.Snapshot().TransactionID

	r.mu.Lock()
	if existing, ok := r.watchers[txID]; ok {
		r.mu.Unlock()
		return existing
	}
	if r.ctx.Err() != nil {
		r.mu.Unlock()
		w.Stop()
		return w
	}
	r.watchers[txID] = w
	r.mu.Unlock()

	w.Start(r.ctx)
	go r.evictWhenDone(txID, w)
	return w
}

func (r *Registry) evictWhenDone(txID string, w *Watcher) {
	select {
	case <-w.Done():
	case <-r.ctx.Done():
		return
	}
	r.clock.AfterFunc(r.retention, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.watchers[txID] != w {
			return
		}
		delete(r.watchers, txID)

		snap := w.Snapshot()
		r.outcomes[txID] = &snap
		r.clock.AfterFunc(r.outcomeTTL, func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if r.outcomes[txID] == &snap {
				delete(r.outcomes, txID)
			}
		})
	})
}

// Outcome is the final snapshot of a finished watcher that was already evicted.
func (r *Registry) Outcome(txID string) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap, ok := r.outcomes[txID]
	if !ok {
		return Snapshot{}, false
	}
	return *snap, true
}

// Forget drops the recorded outcome for txID.
func (r *Registry) Forget(txID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.outcomes[txID]
	delete(r.outcomes, txID)
	return ok
}

func (r *Registry) Get(txID string) (*Watcher, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.watchers[txID]
	return w, ok
}

// Remove stops and forgets the watcher for txID.
func (r *Registry) Remove(txID string) bool {
	r.mu.Lock()
	w, ok := r.watchers[txID]
	delete(r.watchers, txID)
	r.mu.Unlock()

	if ok {
		w.Stop()
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.watchers)
}

// Shutdown stops every watcher. Watchers added afterwards never start.
func (r *Registry) Shutdown() {
	r.cancel()

	r.mu.Lock()
	watchers := make([]*Watcher, 0, len(r.watchers))
	for _, w := range r.watchers {
		watchers = append(watchers, w)
	}
	r.watchers = make(map[string]*Watcher)
	r.mu.Unlock()

	for _, w := range watchers {
		w.Stop()
	}
	r.log.Info("payment watchers stopped", zap.Int("count", len(watchers)))
}

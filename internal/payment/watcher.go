package payment

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"pix-storefront/internal/clock"
	"pix-storefront/internal/model"
)

type Checker interface {
	CheckPayment(ctx context.Context, transactionID string) (*model.PaymentStatus, error)
}

// Watcher polls the API for one pending payment until the machine reaches a
// terminal state or the watcher is stopped.
type Watcher struct {
	machine  *Machine
	checker  Checker
	clock    clock.Clock
	interval time.Duration
	log      *zap.Logger

	once   sync.Once
	cancel context.CancelFunc
	done   chan struct{}
}

func NewWatcher(machine *Machine, checker Checker, clk clock.Clock, interval time.Duration, log *zap.Logger) *Watcher {
	return &Watcher{
		machine:  machine,
		checker:  checker,
		clock:    clk,
		interval: interval,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Start begins polling. The ticker is armed before Start returns, so the first
// check happens one interval later. Starting twice is a no-op.
func (w *Watcher) Start(ctx context.Context) {
	w.once.Do(func() {
		ctx, w.cancel = context.WithCancel(ctx)
		if w.machine.State() != StatePending {
			w.cancel()
			close(w.done)
			return
		}
		ticker := w.clock.NewTicker(w.interval)
		go w.run(ctx, ticker)
	})
}

func (w *Watcher) run(ctx context.Context, ticker clock.Ticker) {
	defer close(w.done)
	defer ticker.Stop()

	txID := w.machine.Snapshot().TransactionID
	log := w.log.With(zap.String("transaction_id", txID))

	for {
		select {
		case <-ctx.Done():
			log.Debug("payment watcher stopped")
			return
		case <-ticker.C():
		}

		status, err := w.checker.CheckPayment(ctx, txID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("check payment failed", zap.Error(err))
			w.machine.PollFailed(err)
		} else {
			w.machine.Observe(status)
		}

		snap := w.machine.Snapshot()
		if snap.State.Terminal() {
			log.Info("payment finished",
				zap.String("state", string(snap.State)),
				zap.Int("attempts", snap.Attempts),
				zap.String("purchase_code", snap.PurchaseCode))
			return
		}
	}
}

// Stop cancels polling and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.done)
	})
	if w.cancel != nil {
		w.cancel()
	}
	<-w.done
}

// Done is closed once the watcher no longer polls.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) Snapshot() Snapshot {
	return w.machine.Snapshot()
}

func (w *Watcher) Machine() *Machine {
	return w.machine
}

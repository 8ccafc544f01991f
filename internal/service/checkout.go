package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"pix-storefront/internal/client"
	"pix-storefront/internal/clock"
	"pix-storefront/internal/config"
	"pix-storefront/internal/dto"
	"pix-storefront/internal/payment"
)

type CheckoutService interface {
	// Start creates the PIX payment and begins watching it. On failure the
	// returned snapshot is in the error state and carries the reason.
	Start(ctx context.Context, productID int64, email string) (payment.Snapshot, error)
	// Status returns the watcher state, adopting payments this process has
	// not seen yet.
	Status(ctx context.Context, transactionID string) (payment.Snapshot, error)
	Abandon(transactionID string) bool
	// Retry sends an expired or failed checkout back to the form and returns
	// the product it was for.
	Retry(transactionID string) (int64, error)
	Active() int
	Shutdown()
}

type checkoutServiceImpl struct {
	storefront client.StorefrontClient
	registry   *payment.Registry
	validator  *dto.Validator
	clock      clock.Clock
	cfg        *config.Payment
	log        *zap.Logger
}

func NewCheckoutService(
	storefront client.StorefrontClient,
	validator *dto.Validator,
	clk clock.Clock,
	cfg *config.Payment,
	log *zap.Logger,
) CheckoutService {
	return &checkoutServiceImpl{
		storefront: storefront,
		registry:   payment.NewRegistry(clk, cfg.Retention, cfg.OutcomeTTL, log),
		validator:  validator,
		clock:      clk,
		cfg:        cfg,
		log:        log,
	}
}

func (s *checkoutServiceImpl) newMachine() *payment.Machine {
	return payment.NewMachine(s.cfg.MaxAttempts, s.cfg.RedirectDelay, s.clock.Now)
}

func (s *checkoutServiceImpl) watch(m *payment.Machine) *payment.Watcher {
	w := payment.NewWatcher(m, s.storefront, s.clock, s.cfg.PollInterval, s.log)
	return s.registry.Add(w)
}

func (s *checkoutServiceImpl) Start(ctx context.Context, productID int64, email string) (payment.Snapshot, error) {
	m := s.newMachine()
	email = strings.TrimSpace(email)
	if !s.validator.Email(email) {
		return m.Snapshot(), ErrInvalidEmail
	}
	if err := m.Submit(); err != nil {
		return m.Snapshot(), err
	}

	data, err := s.storefront.CreatePayment(ctx, productID, email, "")
	if err != nil {
		_ = m.Failed(client.Message(err))
		s.log.Warn("create payment failed",
			zap.Int64("product_id", productID), zap.Error(err))
		return m.Snapshot(), fmt.Errorf("create payment: %w", err)
	}
	if data.Product.ID == 0 {
		data.Product.ID = productID
	}
	if err := m.Created(data); err != nil {
		return m.Snapshot(), err
	}

	s.log.Info("payment created",
		zap.String("transaction_id", data.TransactionID),
		zap.Int64("product_id", productID))
	return s.watch(m).Snapshot(), nil
}

func (s *checkoutServiceImpl) Status(ctx context.Context, transactionID string) (payment.Snapshot, error) {
	if w, ok := s.registry.Get(transactionID); ok {
		return w.Snapshot(), nil
	}
	if snap, ok := s.registry.Outcome(transactionID); ok {
		return snap, nil
	}

	status, err := s.storefront.CheckPayment(ctx, transactionID)
	if err != nil {
		if client.IsBusiness(err) {
			return payment.Snapshot{}, ErrPaymentNotFound
		}
		return payment.Snapshot{}, fmt.Errorf("check payment %s: %w", transactionID, err)
	}
	if status.TransactionID == "" {
		status.TransactionID = transactionID
	}

	m := s.newMachine()
	if err := m.Resume(status); err != nil {
		return payment.Snapshot{}, err
	}
	return s.watch(m).Snapshot(), nil
}

func (s *checkoutServiceImpl) Abandon(transactionID string) bool {
	return s.registry.Remove(transactionID)
}

func retryable(snap payment.Snapshot) error {
	if snap.State != payment.StateError && snap.State != payment.StateExpired {
		return fmt.Errorf("retry %s: %w: %s", snap.TransactionID, payment.ErrInvalidTransition, snap.State)
	}
	return nil
}

func (s *checkoutServiceImpl) Retry(transactionID string) (int64, error) {
	w, ok := s.registry.Get(transactionID)
	if !ok {
		snap, ok := s.registry.Outcome(transactionID)
		if !ok {
			return 0, ErrPaymentNotFound
		}
		if err := retryable(snap); err != nil {
			return 0, err
		}
		s.registry.Forget(transactionID)
		return snap.ProductID, nil
	}

	snap := w.Snapshot()
	if err := retryable(snap); err != nil {
		return 0, err
	}
	// unregister before resetting so no status request sees the blank form
	s.registry.Remove(transactionID)
	if err := w.Machine().Retry(); err != nil {
		return 0, err
	}
	return snap.ProductID, nil
}

func (s *checkoutServiceImpl) Active() int {
	return s.registry.Len()
}

func (s *checkoutServiceImpl) Shutdown() {
	s.registry.Shutdown()
}

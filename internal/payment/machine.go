// Package payment tracks a PIX payment from checkout submission until it is
// paid, expires or fails.
package payment

import (
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"pix-storefront/internal/model"
)

type State string

const (
	StateForm       State = "form"
	StateGenerating State = "generating"
	StatePending    State = "pending"
	StatePaid       State = "paid"
	StateExpired    State = "expired"
	StateError      State = "error"
)

func (s State) Terminal() bool {
	return s == StatePaid || s == StateExpired || s == StateError
}

var ErrInvalidTransition = errors.New("invalid payment state transition")

// Snapshot is a copy of the machine state safe to hand to templates and JSON.
type Snapshot struct {
	State         State                   `json:"state"`
	TransactionID string                  `json:"transaction_id,omitempty"`
	PurchaseCode  string                  `json:"purchase_code,omitempty"`
	QRCode        string                  `json:"qr_code,omitempty"`
	QRCodeBase64  string                  `json:"qr_code_base64,omitempty"`
	QRExpiresAt   *time.Time              `json:"qr_expires_at,omitempty"`
	Value         string                  `json:"value,omitempty"`
	ProductID     int64                   `json:"product_id,omitempty"`
	ProductName   string                  `json:"product_name,omitempty"`
	LastStatus    model.PaymentStatusCode `json:"last_status,omitempty"`
	Attempts      int                     `json:"attempts"`
	MaxAttempts   int                     `json:"max_attempts"`
	RedirectURL   string                  `json:"redirect_url,omitempty"`
	RedirectAt    *time.Time              `json:"redirect_at,omitempty"`
	Error         string                  `json:"error,omitempty"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// SecondsLeft is the QR code lifetime remaining at now, or -1 when unknown.
func (s Snapshot) SecondsLeft(now time.Time) int {
	if s.QRExpiresAt == nil {
		return -1
	}
	left := s.QRExpiresAt.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(left.Round(time.Second) / time.Second)
}

// SuccessURL is where a paid checkout sends the buyer.
func SuccessURL(purchaseCode string) string {
	return "/sucesso?" + url.Values{"purchase_code": {purchaseCode}}.Encode()
}

// Machine is the checkout state machine. It is safe for concurrent use.
// Terminal states ignore every event except Retry.
type Machine struct {
	mu            sync.Mutex
	snap          Snapshot
	redirectDelay time.Duration
	now           func() time.Time
}

func NewMachine(maxAttempts int, redirectDelay time.Duration, now func() time.Time) *Machine {
	if now == nil {
		now = time.Now
	}
	return &Machine{
		snap:          Snapshot{State: StateForm, MaxAttempts: maxAttempts, UpdatedAt: now()},
		redirectDelay: redirectDelay,
		now:           now,
	}
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.State
}

func (m *Machine) transition(from State, to State) error {
	if m.snap.State != from {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.snap.State, to)
	}
	m.snap.State = to
	m.snap.UpdatedAt = m.now()
	return nil
}

// Submit moves the form into generating while create-payment is in flight.
func (m *Machine) Submit() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transition(StateForm, StateGenerating)
}

// Created records the created payment and starts the pending phase.
func (m *Machine) Created(data *model.PaymentData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.transition(StateGenerating, StatePending); err != nil {
		return err
	}
	m.snap.TransactionID = data.TransactionID
	m.snap.PurchaseCode = data.PurchaseCode
	m.snap.QRCode = data.QRCode
	m.snap.QRCodeBase64 = data.QRCodeBase64
	m.snap.ProductID = data.Product.ID
	m.snap.ProductName = data.Product.Name
	if !data.Value.IsZero() {
		m.snap.Value = data.Value.StringFixed(2)
	}
	m.snap.LastStatus = model.PaymentPending
	return nil
}

// Failed records a create-payment failure.
func (m *Machine) Failed(reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.transition(StateGenerating, StateError); err != nil {
		return err
	}
	m.snap.Error = reason
	return nil
}

// Resume adopts a payment created elsewhere, e.g. before a restart, from its
// current status. It does not count as a poll attempt.
func (m *Machine) Resume(status *model.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.transition(StateForm, StatePending); err != nil {
		return err
	}
	m.snap.TransactionID = status.TransactionID
	m.snap.ProductID = status.Product.ID
	m.snap.ProductName = status.Product.Name
	if !status.PricePaid.IsZero() {
		m.snap.Value = status.PricePaid.StringFixed(2)
	}
	m.apply(status)
	return nil
}

// Observe applies one poll result. It reports whether the state changed.
func (m *Machine) Observe(status *model.PaymentStatus) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snap.State != StatePending {
		return false
	}
	m.snap.Attempts++
	if m.apply(status) {
		return true
	}
	return m.exhausted()
}

// PollFailed counts a failed status check as an attempt.
func (m *Machine) PollFailed(err error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snap.State != StatePending {
		return false
	}
	m.snap.Attempts++
	m.snap.UpdatedAt = m.now()
	return m.exhausted()
}

// Retry returns a failed or expired checkout to the form.
func (m *Machine) Retry() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snap.State != StateError && m.snap.State != StateExpired {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.snap.State, StateForm)
	}
	m.snap = Snapshot{State: StateForm, MaxAttempts: m.snap.MaxAttempts, UpdatedAt: m.now()}
	return nil
}

// apply folds a status into the snapshot and reports whether it ended the
// pending phase. Caller holds mu and has checked the state is pending.
func (m *Machine) apply(status *model.PaymentStatus) bool {
	now := m.now()
	m.snap.UpdatedAt = now
	m.snap.LastStatus = status.PaymentStatus
	if status.PurchaseCode != "" {
		m.snap.PurchaseCode = status.PurchaseCode
	}
	if status.QRCode != nil {
		m.snap.QRCode = *status.QRCode
	}
	if status.QRCodeBase64 != nil {
		m.snap.QRCodeBase64 = *status.QRCodeBase64
	}
	if exp, ok := status.ExpiresAt(); ok {
		m.snap.QRExpiresAt = &exp
	}

	switch status.PaymentStatus {
	case model.PaymentPaid:
		m.snap.State = StatePaid
		m.snap.RedirectURL = SuccessURL(m.snap.PurchaseCode)
		at := now.Add(m.redirectDelay)
		m.snap.RedirectAt = &at
		return true
	case model.PaymentExpired, model.PaymentCancelled:
		m.snap.State = StateExpired
		return true
	}
	return false
}

func (m *Machine) exhausted() bool {
	if m.snap.MaxAttempts > 0 && m.snap.Attempts >= m.snap.MaxAttempts {
		m.snap.State = StateExpired
		m.snap.UpdatedAt = m.now()
		return true
	}
	return false
}

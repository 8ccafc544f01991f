package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pix-storefront/internal/client"
	"pix-storefront/internal/clock"
	"pix-storefront/internal/config"
	"pix-storefront/internal/model"
	"pix-storefront/internal/payment"
)

func newStorefront(t *testing.T, h http.HandlerFunc) client.StorefrontClient {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	sf, err := client.NewStorefrontClient(&config.Storefront{BaseApiURL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)
	return sf
}

func pendingMachine(t *testing.T, cfg *config.Payment) *payment.Machine {
	t.Helper()

	m := newMachine(cfg)
	require.NoError(t, m.Resume(&model.PaymentStatus{TransactionID: "tx-123", PaymentStatus: model.PaymentPending}))
	return m
}

func TestFollowPaid(t *testing.T) {
	var calls atomic.Int32
	sf := newStorefront(t, func(w http.ResponseWriter, r *http.Request) {
		status := "pending"
		if calls.Add(1) >= 2 {
			status = "paid"
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"transaction_id":"tx-123","payment_status":"` + status + `","purchase_code":"ABC"}}`))
	})
	cfg := &config.Payment{PollInterval: 5 * time.Millisecond, MaxAttempts: 10, RedirectDelay: 2 * time.Second}

	var out bytes.Buffer
	err := follow(context.Background(), &out, pendingMachine(t, cfg), sf, clock.New(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Código da compra: ABC")
	assert.Contains(t, out.String(), "download.php?purchase_code=ABC")
	assert.Equal(t, int32(2), calls.Load())
}

func TestFollowExpiresAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	sf := newStorefront(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"transaction_id":"tx-123","payment_status":"pending"}}`))
	})
	cfg := &config.Payment{PollInterval: 5 * time.Millisecond, MaxAttempts: 3}

	var out bytes.Buffer
	err := follow(context.Background(), &out, pendingMachine(t, cfg), sf, clock.New(), cfg, zap.NewNop())
	require.ErrorIs(t, err, errNotPaid)
	assert.Contains(t, out.String(), "expirado após 3 verificações")
	assert.Equal(t, int32(3), calls.Load())
}

func TestFollowStopsOnCancel(t *testing.T) {
	sf := newStorefront(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"payment_status":"pending"}}`))
	})
	cfg := &config.Payment{PollInterval: time.Hour, MaxAttempts: 180}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := follow(ctx, &out, pendingMachine(t, cfg), sf, clock.New(), cfg, zap.NewNop())
	require.ErrorIs(t, err, errNotPaid)
	assert.Contains(t, out.String(), "interrompido")
}

func TestReportError(t *testing.T) {
	var out bytes.Buffer
	err := report(&out, payment.Snapshot{State: payment.StateError, Error: "Produto inativo"}, nil)
	require.ErrorIs(t, err, errNotPaid)
	assert.Equal(t, "Erro: Produto inativo\n", out.String())
}

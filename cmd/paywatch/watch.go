package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pix-storefront/internal/client"
	"pix-storefront/internal/clock"
	"pix-storefront/internal/config"
	"pix-storefront/internal/payment"
	"pix-storefront/internal/view"
)

var (
	createProduct int64
	createEmail   string

	errNotPaid = errors.New("payment was not completed")
)

var watchCmd = &cobra.Command{
	Use:   "watch <transaction-id>",
	Short: "Poll an existing payment until it is paid or expires",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		status, err := storefront.CheckPayment(ctx, args[0])
		if err != nil {
			return fmt.Errorf("check payment: %w", err)
		}
		if status.TransactionID == "" {
			status.TransactionID = args[0]
		}

		m := newMachine(&cfg.Payment)
		if err := m.Resume(status); err != nil {
			return err
		}
		return follow(ctx, cmd.OutOrStdout(), m, storefront, clock.New(), &cfg.Payment, log)
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a PIX payment and watch it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		m := newMachine(&cfg.Payment)
		if err := m.Submit(); err != nil {
			return err
		}
		data, err := storefront.CreatePayment(ctx, createProduct, strings.TrimSpace(createEmail), "")
		if err != nil {
			_ = m.Failed(client.Message(err))
			return fmt.Errorf("create payment: %w", err)
		}
		if err := m.Created(data); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Transação: %s\nValor: %s\n\nPIX copia e cola:\n%s\n\n",
			data.TransactionID, view.BRL(data.Value), data.QRCode)
		return follow(ctx, out, m, storefront, clock.New(), &cfg.Payment, log)
	},
}

func newMachine(cfg *config.Payment) *payment.Machine {
	return payment.NewMachine(cfg.MaxAttempts, cfg.RedirectDelay, time.Now)
}

// follow runs the watcher for m and draws one bar step per poll. It returns
// nil only when the payment was confirmed.
func follow(
	ctx context.Context,
	out io.Writer,
	m *payment.Machine,
	sf client.StorefrontClient,
	clk clock.Clock,
	cfg *config.Payment,
	log *zap.Logger,
) error {
	w := payment.NewWatcher(m, sf, clk, cfg.PollInterval, log)
	w.Start(ctx)
	defer w.Stop()

	bar := progressbar.NewOptions(m.Snapshot().MaxAttempts,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Aguardando pagamento"),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetRenderBlankState(true),
	)

	refresh := clk.NewTicker(time.Second)
	defer refresh.Stop()

	update := func() {
		snap := w.Snapshot()
		_ = bar.Set(snap.Attempts)
		if left := snap.SecondsLeft(clk.Now()); left >= 0 {
			bar.Describe("Aguardando pagamento, QR expira em " + view.Countdown(left))
		}
	}

loop:
	for {
		select {
		case <-w.Done():
			break loop
		case <-ctx.Done():
			break loop
		case <-refresh.C():
			update()
		}
	}
	update()
	_ = bar.Finish()
	fmt.Fprintln(out)

	return report(out, w.Snapshot(), sf)
}

// report prints the outcome. A nil dl skips the download link.
func report(out io.Writer, snap payment.Snapshot, dl client.StorefrontClient) error {
	switch snap.State {
	case payment.StatePaid:
		fmt.Fprintf(out, "Pagamento confirmado!\nCódigo da compra: %s\n", snap.PurchaseCode)
		if dl != nil {
			fmt.Fprintf(out, "Download: %s\n", dl.DownloadURL(snap.PurchaseCode))
		}
		return nil
	case payment.StateExpired:
		fmt.Fprintf(out, "Pagamento expirado após %d verificações.\n", snap.Attempts)
	case payment.StateError:
		fmt.Fprintf(out, "Erro: %s\n", snap.Error)
	default:
		fmt.Fprintln(out, "Acompanhamento interrompido.")
	}
	return errNotPaid
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/openalpha/savings-ledger/app"
	"github.com/openalpha/savings-ledger/metrics"
)

const flagRefresh = "refresh"

// MetricsCmd returns the metrics subcommands
func MetricsCmd(d *daemon) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Prometheus metrics subcommands",
	}
	cmd.AddCommand(MetricsServeCmd(d))
	return cmd
}

// sampleLedger opens the ledger long enough to publish its committed state
// on c, so other savingsd processes can use the database between samples
func (d *daemon) sampleLedger(c *metrics.Collector) (app.LedgerSnapshot, error) {
	ledger, err := d.openLedger(nil)
	if err != nil {
		return app.LedgerSnapshot{}, err
	}
	defer ledger.Close()
	return ledger.RecordSnapshot(c)
}

// MetricsServeCmd returns the command that serves ledger metrics over HTTP
func MetricsServeCmd(d *daemon) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve prometheus gauges sampled from the committed ledger until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			refresh, _ := cmd.Flags().GetDuration(flagRefresh)
			if refresh <= 0 {
				return fmt.Errorf("--%s must be positive, got %s", flagRefresh, refresh)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			collector := metrics.GetCollector()
			sample := func() {
				snap, err := d.sampleLedger(collector)
				if err != nil {
					d.logger.Error("Ledger sample failed", "err", err)
					return
				}
				d.logger.Debug("Ledger sampled", "version", snap.Version, "live_pools", snap.LivePools)
			}
			sample()

			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			srv := &http.Server{
				Addr:              d.cfg.Metrics.Listen,
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				d.logger.Info("Serving metrics", "listen", d.cfg.Metrics.Listen, "refresh", refresh.String())
				errCh <- srv.ListenAndServe()
			}()

			ticker := time.NewTicker(refresh)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					sample()
				case err := <-errCh:
					if errors.Is(err, http.ErrServerClosed) {
						return nil
					}
					return err
				case <-ctx.Done():
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					return srv.Shutdown(shutdownCtx)
				}
			}
		},
	}

	cmd.Flags().Duration(flagRefresh, 5*time.Second, "Interval between ledger samples")
	return cmd
}

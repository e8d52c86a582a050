package toyledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/manifest-network/toyledger/internal/api"
	"github.com/manifest-network/toyledger/internal/config"
	"github.com/manifest-network/toyledger/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve [flags]",
	Short: "Serve the ledger over HTTP",
	Long:  `Load the ledger, serve the transaction and balance API and save the ledger on shutdown.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		serveConfig := config.LoadServeConfigFromCLI()
		if err := serveConfig.Validate(); err != nil {
			return fmt.Errorf("invalid serve configuration: %w", err)
		}
		slog.Debug("Command-line arguments", "serveConfig", serveConfig)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		l, _, err := openLedger(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := l.Close(context.Background()); err != nil {
				slog.Error("Error saving blockchain data", "error", err)
				return
			}
			slog.Info("Blockchain data saved before shutting down")
		}()

		servers := []*http.Server{api.NewServer(l, serveConfig.Addr, api.Options{SaveOnWrite: serveConfig.SaveOnWrite})}
		if serveConfig.EnablePrometheus {
			metricsServer, err := metrics.CreateMetricsServer(l, serveConfig.PrometheusAddr)
			if err != nil {
				return fmt.Errorf("failed to start metrics server: %w", err)
			}
			servers = append(servers, metricsServer)
		}

		eg, egCtx := errgroup.WithContext(ctx)
		eg.Go(func() error {
			slog.Info("Server listening", "addr", serveConfig.Addr, "blocks", l.Len())
			if err := servers[0].ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("failed to serve: %w", err)
			}
			return nil
		})
		eg.Go(func() error {
			<-egCtx.Done()
			slog.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			var errs []error
			for _, s := range servers {
				if err := s.Shutdown(shutdownCtx); err != nil {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		})

		return eg.Wait()
	},
}

func init() {
	serveCmd.Flags().StringP("addr", "a", "0.0.0.0:3000", "Address and port of the HTTP API")
	serveCmd.Flags().Bool("save-on-write", false, "Save the ledger after every accepted transaction")
	serveCmd.Flags().Bool("enable-prometheus", false, "Enable Prometheus metrics server")
	serveCmd.Flags().String("prometheus-addr", "0.0.0.0:2112", "Address and port of the Prometheus metrics server")

	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		slog.Error("Failed to bind serveCmd flags", "error", err)
	}
}

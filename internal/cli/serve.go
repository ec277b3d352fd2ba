package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/schemeqa/internal/mcpserver"
)

var metricsAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the answer pipeline as MCP tools over stdio",
	Long: `Serve starts an MCP server on stdin/stdout with two tools:
  ask-financial-assistance   answer a question from the scheme catalog
  list-financial-schemes     list the catalog, optionally for one category

Logs go to stderr. With --metrics-addr a Prometheus endpoint is served
at /metrics on that address.

Example:
  schemeqa serve
  schemeqa serve --metrics-addr :9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address for the Prometheus /metrics endpoint (disabled when empty)")
}

// startMetrics serves /metrics until the returned shutdown func is called
func startMetrics(addr string, logger *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	if metricsAddr != "" {
		stop := startMetrics(metricsAddr, a.logger)
		defer stop()
	}

	srv := mcpserver.New(version, a.pipeline, a.catalog, a.logger)
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

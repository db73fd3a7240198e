package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"paypalmcp/internal/app"
	"paypalmcp/internal/buildinfo"
	"paypalmcp/internal/domain"
	"paypalmcp/internal/infra/config"
	"paypalmcp/internal/infra/telemetry"
)

func main() {
	var logger *zap.Logger

	root := &cobra.Command{
		Use:     "paypalmcp",
		Short:   "MCP server exposing the PayPal REST API as tools",
		Version: buildinfo.Version,
		Args:    cobra.NoArgs,
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyFlagOverrides(cmd.Flags(), &cfg)

			logger, err = telemetry.NewLogger(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}

			metrics := (*telemetry.Metrics)(nil)
			if cfg.MetricsAddr != "" {
				metrics = telemetry.NewMetrics(nil)
			}

			server, err := app.New(cfg, logger, metrics)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	root.SilenceUsage = true
	root.Flags().String("log-level", "", "override PAYPAL_LOG_LEVEL")
	root.Flags().String("metrics-addr", "", "override PAYPAL_METRICS_ADDR")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func applyFlagOverrides(flags *pflag.FlagSet, cfg *domain.Config) {
	if level, err := flags.GetString("log-level"); err == nil && level != "" {
		cfg.LogLevel = level
	}
	if addr, err := flags.GetString("metrics-addr"); err == nil && addr != "" {
		cfg.MetricsAddr = addr
	}
}

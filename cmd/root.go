package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/agvfleet/app"
	"github.com/kilianp07/agvfleet/config"
	"github.com/kilianp07/agvfleet/infra/logger"
)

var (
	cfgPath  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "agvfleet",
	Short: "AGV fleet task scheduler",
	Long: "Runs the tick-driven scheduler for a fleet of automated guided vehicles:\n" +
		"task queues, low-battery charging, fault replanning and the HTTP API.",
	SilenceUsage:      true,
	PersistentPreRunE: applyLogLevel,
	RunE:              run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "minimum log level (overrides LOG_LEVEL)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func applyLogLevel(*cobra.Command, []string) error {
	if logLevel == "" {
		return nil
	}
	return logger.SetLevel(logLevel)
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New("main")
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Errorf("service close: %v", err)
		}
	}()
	log.Infow("scheduler starting", map[string]any{
		"vehicles":   svc.Coordinator.VehicleCount(),
		"chargers":   len(cfg.Chargers),
		"tick_ms":    cfg.Scheduler.TickIntervalMS,
		"http":       cfg.HTTP.Address,
		"mqtt":       cfg.MQTT.Enabled(),
		"journal":    cfg.Journal.Backend,
		"prometheus": cfg.Metrics.PrometheusEnabled,
	})
	return svc.Run(ctx)
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"rewards_quest_bot/pkg/console"
	"rewards_quest_bot/pkg/logger"
	"go.uber.org/zap"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env: %v", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "app",
		Short:         "Daily rewards quest autopilot for a list of portal accounts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config file (default ./config.yaml)")

	root.AddCommand(newRunCmd(&configFile))
	root.AddCommand(newOnceCmd(&configFile))
	root.AddCommand(newVersionCmd())

	return root
}

func newRunCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process all accounts forever, waiting between passes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := setup(ctx, *configFile, true)
			if err != nil {
				return err
			}
			defer a.Close()

			err = a.scheduler.Run(ctx)
			if errors.Is(err, context.Canceled) {
				a.printer.Warnf("Interrupted, shutting down")
				return nil
			}
			return err
		},
	}
}

func newOnceCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Process all accounts once and print when the next pass is due",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := setup(ctx, *configFile, false)
			if err != nil {
				return err
			}
			defer a.Close()

			report := a.scheduler.RunOnce(ctx)
			if ctx.Err() != nil {
				return nil
			}
			a.printer.Infof("Next pass due in %s at %s", report.Wait, console.FormatTime(report.NextPassAt))
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("app %s (commit=%s, built=%s)\n", Version, CommitSHA, BuildDate)
		},
	}
}

func setup(ctx context.Context, configFile string, serve bool) (*app, error) {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogEncoding); err != nil {
		return nil, errors.Wrap(err, "failed to initialize logger")
	}

	a, err := newApp(ctx, cfg, serve)
	if err != nil {
		logger.Logger().Error("Startup failed", zap.Error(err))
		_ = logger.Sync()
		return nil, err
	}
	return a, nil
}

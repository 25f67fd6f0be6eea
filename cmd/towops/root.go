package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/towops/towops/internal/config"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:           "towops",
	Short:         "Tow dispatch and live tracking server",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dispatch server",
	RunE:  serve,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "towops %s:%s\n", gitBranch, gitRevision)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "towops.yml", "name of config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug")

	rootCmd.AddCommand(serveCmd, versionCmd)
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("exit", slog.Any("error", err))
		return err
	}

	return nil
}

func serve(_ *cobra.Command, _ []string) error {
	cfg := config.NewAppConfig()
	cfg.Load(cfgPath)

	if err := cfg.LoadEnv(config.EnvPrefix); err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	setupLogger(debug, cfg.LogJSON())

	slog.Info(fmt.Sprintf("version %s:%s", gitBranch, gitRevision))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(cfg)
	if err != nil {
		return err
	}

	return app.Run(ctx)
}

func setupLogger(debug, json bool) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	if debug {
		opts.Level = slog.LevelDebug
	}

	var h slog.Handler

	if json {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(h))
}

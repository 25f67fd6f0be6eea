package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/towops/towops/internal/config"
	"github.com/towops/towops/internal/dispatch"
	"github.com/towops/towops/internal/journal"
	"github.com/towops/towops/internal/seed"
	"github.com/towops/towops/internal/telemetry"
)

type Listener interface {
	Address() string
	Listen() error
	Shutdown() error
}

type App struct {
	cfg    *config.AppConfig
	logger *slog.Logger

	state   *dispatch.State
	engine  *dispatch.Engine
	tracker *dispatch.Tracker
	journal *journal.Journal
	ingest  *telemetry.Ingest

	listeners map[string]Listener
}

func NewApp(cfg *config.AppConfig) (*App, error) {
	st := dispatch.NewState(cfg.DispatchOptions())

	app := &App{
		cfg:       cfg,
		logger:    slog.Default().With("logger", "app"),
		state:     st,
		engine:    dispatch.NewEngine(st),
		tracker:   dispatch.NewTracker(st),
		listeners: make(map[string]Listener),
	}

	db, err := journal.GetDatabase(cfg.DB(), debug)
	if err != nil {
		return nil, fmt.Errorf("journal database: %w", err)
	}

	app.journal = journal.New(db)

	if err := app.journal.Migrate(); err != nil {
		return nil, fmt.Errorf("journal migrate: %w", err)
	}

	app.journal.Attach(st)

	if name := cfg.SeedFile(); name != "" {
		f, err := seed.Load(name)
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", name, err)
		}

		f.Apply(st)
	}

	if cfg.MQTTEnabled() {
		app.ingest = telemetry.New(cfg.Telemetry(), st)
	}

	return app, nil
}

func (app *App) Run(ctx context.Context) error {
	if app.ingest != nil {
		if err := app.ingest.Start(ctx); err != nil {
			return err
		}
	}

	if addr := app.cfg.APIAddr(); addr != "" {
		app.listeners["public api"] = NewPublicAPI(app, addr)
	}

	if addr := app.cfg.LocalAddr(); addr != "" {
		app.listeners["local api"] = NewLocalAPI(addr)
	}

	errCh := make(chan error, len(app.listeners))

	for name, listener := range app.listeners {
		name, listener := name, listener
		go func() {
			app.logger.Info(fmt.Sprintf("start listener %s at %s", name, listener.Address()))

			if err := listener.Listen(); err != nil {
				errCh <- fmt.Errorf("%s: %w", name, err)
			}
		}()
	}

	var err error

	select {
	case <-ctx.Done():
		app.logger.Info("exiting...")
	case err = <-errCh:
		app.logger.Error("listener failed", slog.Any("error", err))
	}

	for name, listener := range app.listeners {
		if e := listener.Shutdown(); e != nil {
			app.logger.Warn("shutdown "+name, slog.Any("error", e))
			err = errors.Join(err, e)
		}
	}

	if app.ingest != nil {
		app.ingest.Stop()
	}

	app.journal.Detach(app.state)

	return err
}

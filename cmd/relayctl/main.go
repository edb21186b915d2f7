// Command relayctl sends SMS commands to a GSM relay.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"gsm-relay-remote/internal/adapters/input/cli"
	"gsm-relay-remote/internal/adapters/output/persistence"
	"gsm-relay-remote/internal/adapters/output/sms"
	"gsm-relay-remote/internal/config"
	"gsm-relay-remote/internal/domain/service"
	"gsm-relay-remote/internal/logging"
	"gsm-relay-remote/internal/ports"
)

func main() {
	cfg, err := config.FromEnv(os.LookupEnv)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = cli.NewRootCommand(cfg, wire).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(cli.ExitCode(err))
}

func wire(_ context.Context, cfg config.Config) (cli.Deps, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return cli.Deps{}, err
	}
	logs, err := logging.New(cfg.LogPath, level)
	if err != nil {
		return cli.Deps{}, fmt.Errorf("open log: %w", err)
	}
	closers := []func() error{logs.Close}
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		_ = closeAll()
		return cli.Deps{}, err
	}
	if closeStore != nil {
		closers = append(closers, closeStore)
	}

	var dispatcher ports.Dispatcher
	switch cfg.Dispatcher {
	case config.DispatcherModem:
		dispatcher = sms.NewModemDispatcher(cfg.ModemPort, cfg.ModemBaud, sms.OpenSerial)
	case config.DispatcherStdout:
		dispatcher = sms.NewPrintDispatcher(os.Stdout)
	default:
		dispatcher = sms.NewURIDispatcher(cfg.Opener)
	}

	policy, err := service.ParseStatusPasswordPolicy(cfg.StatusPassword)
	if err != nil {
		_ = closeAll()
		return cli.Deps{}, err
	}

	logger := logs.Logger.With("dispatcher", cfg.Dispatcher, "store_backend", cfg.StoreBackend)
	settings := service.NewSettingsService(store, logger)
	relay := service.NewRelayService(settings, dispatcher,
		service.WithStatusPasswordPolicy(policy),
		service.WithLogger(logger),
	)

	return cli.Deps{Relay: relay, Settings: settings, Close: closeAll}, nil
}

func openStore(cfg config.Config) (ports.SettingsStore, func() error, error) {
	path, err := config.ResolveStorePath(cfg.StorePath, cfg.StoreBackend)
	if err != nil {
		return nil, nil, err
	}

	if cfg.StoreBackend != config.BackendSQLite {
		return persistence.NewJSONSettingsRepository(path), nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, err
	}
	repo, err := persistence.NewSQLiteSettingsRepository(path)
	if err != nil {
		return nil, nil, err
	}
	return repo, repo.Close, nil
}

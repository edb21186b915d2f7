// Package cli is the relayctl command-line front end. It parses user text,
// drives the relay and settings ports, and reports outcomes. It holds no
// protocol logic.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gsm-relay-remote/internal/config"
	"gsm-relay-remote/internal/domain/model"
	"gsm-relay-remote/internal/ports"
)

// Deps is what a command needs once flags are known.
type Deps struct {
	Relay    ports.RelayPort
	Settings ports.SettingsPort
	Close    func() error
}

// Wiring builds Deps from the final configuration. It runs once per
// command invocation, after flag parsing.
type Wiring func(ctx context.Context, cfg config.Config) (Deps, error)

type app struct {
	cfg    config.Config
	opener string
	wire   Wiring
	deps   Deps
	unsub  func()
}

func NewRootCommand(base config.Config, wire Wiring) *cobra.Command {
	a := &app{cfg: base, opener: strings.Join(base.Opener, " "), wire: wire}

	root := &cobra.Command{
		Use:           "relayctl",
		Short:         "Send SMS commands to a GSM relay",
		Long:          "relayctl renders GSM relay SMS commands and hands them to the host for sending.\nA successful run means the message was handed off, never that the relay received it.",
		Args:          usageArgs(cobra.NoArgs),
		RunE:          func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err} })

	f := root.PersistentFlags()
	f.StringVar(&a.cfg.StorePath, "store", a.cfg.StorePath, "settings store path (default $XDG_CONFIG_HOME/relayctl/settings.{json,db})")
	f.StringVar(&a.cfg.StoreBackend, "store-backend", a.cfg.StoreBackend, "settings store backend: json or sqlite")
	f.StringVar(&a.cfg.Dispatcher, "dispatcher", a.cfg.Dispatcher, "how commands leave the machine: uri, modem or stdout")
	f.StringVar(&a.opener, "opener", a.opener, "program (and arguments) that opens sms: URIs")
	f.StringVar(&a.cfg.ModemPort, "modem-port", a.cfg.ModemPort, "serial port of the GSM modem")
	f.IntVar(&a.cfg.ModemBaud, "modem-baud", a.cfg.ModemBaud, "GSM modem baud rate")
	f.StringVar(&a.cfg.StatusPassword, "status-password", a.cfg.StatusPassword, "password for status queries: factory or configured")

	root.AddCommand(
		a.relayCommand(),
		a.templateCommand("open", model.TemplateOpen, "Send the stored open template"),
		a.templateCommand("hold", model.TemplateHoldOpen, "Send the stored hold-open template"),
		a.templateCommand("close", model.TemplateClose, "Send the stored close template"),
		a.statusCommand(),
		a.adminCommand(),
		a.usersCommand(),
		a.settingsCommand(),
	)
	return root
}

// action wires dependencies around fn and releases them afterwards.
func (a *app) action(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		if err := a.open(cmd); err != nil {
			return err
		}
		defer func() {
			if cerr := a.shutdown(); err == nil {
				err = cerr
			}
		}()
		return fn(cmd, args)
	}
}

func (a *app) open(cmd *cobra.Command) error {
	a.cfg.Opener = strings.Fields(a.opener)
	if err := config.Validate(a.cfg); err != nil {
		return usageError{err}
	}

	deps, err := a.wire(cmd.Context(), a.cfg)
	if err != nil {
		return err
	}
	a.deps = deps

	out := cmd.OutOrStdout()
	a.unsub = deps.Settings.Subscribe(func(c model.SettingChange) {
		fmt.Fprintf(out, "saved %s\n", c.Key)
	})
	return nil
}

func (a *app) shutdown() error {
	if a.unsub != nil {
		a.unsub()
		a.unsub = nil
	}
	if a.deps.Close == nil {
		return nil
	}
	return a.deps.Close()
}

// group is a parent command that only holds subcommands.
func group(use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  usageArgs(cobra.NoArgs),
		RunE:  func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}
}

func handedOff(cmd *cobra.Command, rc model.RelayCommand) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s handed off to %s (delivery is not confirmed)\n", rc.Intent, rc.Destination)
}

type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

// ExitCode maps an Execute error to a process exit status: 0 on success,
// 2 for usage mistakes, 1 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var u usageError
	if errors.As(err, &u) {
		return 2
	}
	return 1
}

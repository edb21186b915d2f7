package cli

import (
	"github.com/spf13/cobra"
	"gsm-relay-remote/internal/domain/command"
	"gsm-relay-remote/internal/domain/model"
	"gsm-relay-remote/internal/domain/validator"
)

func (a *app) relayCommand() *cobra.Command {
	cmd := group("relay", "Switch the relay or set its latch time")

	toggle := func(use, short string, on bool) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  usageArgs(cobra.NoArgs),
			RunE: a.action(func(cmd *cobra.Command, _ []string) error {
				rc, err := a.deps.Relay.SetRelay(cmd.Context(), on)
				if err != nil {
					return err
				}
				handedOff(cmd, rc)
				return nil
			}),
		}
	}

	cmd.AddCommand(
		toggle("on", "Close the relay contact", true),
		toggle("off", "Open the relay contact", false),
		&cobra.Command{
			Use:   "latch SECONDS",
			Short: "Set how long the relay stays closed (0-999 seconds)",
			Args:  usageArgs(cobra.ExactArgs(1)),
			RunE: a.action(func(cmd *cobra.Command, args []string) error {
				seconds, err := validator.ParseLatchSeconds(args[0])
				if err != nil {
					return err
				}
				rc, err := a.deps.Relay.SetLatchTime(cmd.Context(), seconds)
				if err != nil {
					return err
				}
				handedOff(cmd, rc)
				return nil
			}),
		},
	)
	return cmd
}

// templateCommand sends a stored custom template. Templates are sent
// exactly as saved; nothing checks that the relay understands them.
func (a *app) templateCommand(use string, slot model.TemplateSlot, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  short + ".\nThe template text is sent verbatim; it is not checked against the relay protocol.",
		Args:  usageArgs(cobra.NoArgs),
		RunE: a.action(func(cmd *cobra.Command, _ []string) error {
			rc, err := a.deps.Relay.SendTemplate(cmd.Context(), slot)
			if err != nil {
				return err
			}
			handedOff(cmd, rc)
			return nil
		}),
	}
}

func (a *app) statusCommand() *cobra.Command {
	var valid []string
	for _, q := range command.StatusQueries() {
		valid = append(valid, string(q))
	}

	return &cobra.Command{
		Use:       "status relay|signal|numbers|log",
		Short:     "Ask the relay to report its state by SMS",
		Long:      "Ask the relay to report its state by SMS.\nThe reply arrives on the phone registered with the relay, not here.",
		ValidArgs: valid,
		Args:      usageArgs(cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs)),
		RunE: a.action(func(cmd *cobra.Command, args []string) error {
			rc, err := a.deps.Relay.QueryStatus(cmd.Context(), model.StatusQuery(args[0]))
			if err != nil {
				return err
			}
			handedOff(cmd, rc)
			return nil
		}),
	}
}

package cli

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gsm-relay-remote/internal/domain/model"
)

func (a *app) settingsCommand() *cobra.Command {
	cmd := group("settings", "Show or edit the stored device settings")
	cmd.AddCommand(a.settingsShowCommand(), a.settingsSetCommand(), a.settingsInitCommand())
	return cmd
}

func (a *app) settingsShowCommand() *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored settings",
		Args:  usageArgs(cobra.NoArgs),
		RunE: a.action(func(cmd *cobra.Command, _ []string) error {
			s, err := a.deps.Settings.Load(cmd.Context())
			if err != nil {
				return err
			}

			name := s.Profile.Name
			if name == "" {
				name = model.DefaultDeviceName
			}
			password := "****"
			if reveal {
				password = s.Credentials.Password
			}

			out := cmd.OutOrStdout()
			table := tablewriter.NewWriter(out)
			table.SetAutoFormatHeaders(false)
			table.SetHeader([]string{"Setting", "Value"})
			table.Append([]string{model.KeyDeviceName, name})
			table.Append([]string{model.KeyPhoneNumber, flagged(s, orUnset(s.Profile.PhoneNumber), model.KeyPhoneNumber, model.KeyGSMNumber)})
			table.Append([]string{model.KeyAdminNumber, flagged(s, orUnset(s.AdminNumber), model.KeyAdminNumber)})
			table.Append([]string{model.KeyPassword, flagged(s, password, model.KeyPassword)})
			for _, slot := range []model.TemplateSlot{model.TemplateOpen, model.TemplateHoldOpen, model.TemplateClose} {
				table.Append([]string{slot.Key(), orUnset(s.Templates[slot])})
			}
			table.Render()

			for _, key := range model.Keys() {
				if err, ok := s.Problems[key]; ok {
					fmt.Fprintf(out, "warning: %v (fix with: relayctl %s)\n", err, fixFor(key))
				}
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "print the password instead of masking it")
	return cmd
}

func (a *app) settingsSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set name|phone|password|open|holdOpen|close VALUE",
		Short: "Change one setting",
		Long: "Change one setting.\n" +
			"name and phone edit the device profile. password only updates the stored\n" +
			"password, for a relay whose password was already changed elsewhere; use\n" +
			"'admin password' to change it on the relay. open, holdOpen and close store\n" +
			"custom templates verbatim (an empty VALUE clears the slot).",
		ValidArgs: []string{"name", "phone", "password", string(model.TemplateOpen), string(model.TemplateHoldOpen), string(model.TemplateClose)},
		Args:      usageArgs(cobra.MatchAll(cobra.ExactArgs(2), validFirstArg)),
		RunE: a.action(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			field, value := args[0], args[1]

			switch field {
			case "name", "phone":
				s, err := a.deps.Settings.Load(ctx)
				if err != nil {
					return err
				}
				profile := s.Profile
				if field == "name" {
					if profile.PhoneNumber == "" {
						return &model.MissingConfigurationError{Key: model.KeyPhoneNumber}
					}
					profile.Name = value
				} else {
					profile.PhoneNumber = strings.TrimSpace(value)
				}
				return a.deps.Settings.SaveProfile(ctx, profile)
			case "password":
				return a.deps.Settings.SaveCredentials(ctx, model.Credentials{Password: value})
			default:
				return a.deps.Settings.SaveTemplate(ctx, model.TemplateSlot(field), value)
			}
		}),
	}
}

func (a *app) settingsInitCommand() *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Fill empty template slots with the factory suggestions",
		Args:  usageArgs(cobra.NoArgs),
		RunE: a.action(func(cmd *cobra.Command, _ []string) error {
			written, err := a.deps.Settings.InitTemplates(cmd.Context(), overwrite)
			if err != nil {
				return err
			}
			if len(written) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "all template slots already set")
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace templates that are already set")
	return cmd
}

func validFirstArg(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	for _, v := range cmd.ValidArgs {
		if args[0] == v {
			return nil
		}
	}
	return fmt.Errorf("invalid argument %q for %q", args[0], cmd.CommandPath())
}

// flagged marks a value that failed validation when it was read back.
func flagged(s *model.Settings, value string, keys ...string) string {
	for _, key := range keys {
		if _, ok := s.Problems[key]; ok {
			return value + " (invalid)"
		}
	}
	return value
}

func fixFor(key string) string {
	switch key {
	case model.KeyPassword:
		return "settings set password VALUE"
	case model.KeyAdminNumber:
		return "admin setup ADMIN_NUMBER GSM_NUMBER"
	}
	return "settings set phone VALUE"
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gsm-relay-remote/internal/domain/model"
	"gsm-relay-remote/internal/domain/validator"
)

func (a *app) adminCommand() *cobra.Command {
	cmd := group("admin", "Register the admin number or change the device password")

	var yes bool
	password := &cobra.Command{
		Use:   "password NEW_PASSWORD",
		Short: "Change the 4-digit device password",
		Long:  "Change the 4-digit device password.\nThe change command is signed with the current password; the new one is saved only after the handoff succeeds.",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: a.action(func(cmd *cobra.Command, args []string) error {
			if err := validator.CheckPassword("new password", args[0]); err != nil {
				return err
			}
			if !yes {
				ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Change the device password?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "password unchanged")
					return nil
				}
			}
			rc, err := a.deps.Relay.ChangePassword(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			handedOff(cmd, rc)
			return nil
		}),
	}
	password.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "setup ADMIN_NUMBER GSM_NUMBER",
			Short: "Register ADMIN_NUMBER as admin of the relay reachable at GSM_NUMBER",
			Args:  usageArgs(cobra.ExactArgs(2)),
			RunE: a.action(func(cmd *cobra.Command, args []string) error {
				rc, err := a.deps.Relay.SetupAdmin(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				handedOff(cmd, rc)
				return nil
			}),
		},
		password,
	)
	return cmd
}

func (a *app) usersCommand() *cobra.Command {
	cmd := group("users", "Manage the relay's authorized numbers")
	cmd.AddCommand(&cobra.Command{
		Use:   "add INDEX PHONE_NUMBER",
		Short: "Store PHONE_NUMBER in allow-list slot INDEX (0-200)",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: a.action(func(cmd *cobra.Command, args []string) error {
			index, err := validator.ParseIndex(args[0])
			if err != nil {
				return err
			}
			rc, err := a.deps.Relay.AddAuthorizedUser(cmd.Context(), model.AuthorizedUser{Index: index, PhoneNumber: args[1]})
			if err != nil {
				return err
			}
			handedOff(cmd, rc)
			return nil
		}),
	})
	return cmd
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newSecurityCmd(o *rootOptions) *cobra.Command {
	securityCmd := &cobra.Command{
		Use:   "security",
		Short: "Manage the manager security configuration",
	}

	setTokenExpirationCmd := &cobra.Command{
		Use:   "set-token-expiration SECONDS",
		Short: "Set the lifetime of the tokens issued by the manager",
		Long: `Set the lifetime of the tokens issued by the manager. Tokens issued before the change
are revoked.

Examples:
  fsapi security set-token-expiration 3600`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := strconv.Atoi(args[0])
			if err != nil || seconds <= 0 {
				return fmt.Errorf("invalid number of seconds %q", args[0])
			}
			s, err := o.newSession(cmd)
			if err != nil {
				return err
			}
			res, err := s.SetTokenExpiration(cmd.Context(), seconds)
			if err != nil {
				return err
			}
			if !res.OK() {
				return fmt.Errorf("unable to set token expiration, status %d: %s", res.StatusCode(), res.Get("detail").String())
			}
			if o.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]any{"result": 1, "token_expiration": seconds})
			}
			okLabel.Fprintf(cmd.OutOrStdout(), "Token expiration set to %d seconds\n", seconds)
			return nil
		},
	}

	securityCmd.AddCommand(setTokenExpirationCmd)
	return securityCmd
}

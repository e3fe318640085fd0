package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newTokenCmd(o *rootOptions) *cobra.Command {
	var claims bool
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Obtain a bearer token",
		Long: `Obtain a bearer token with the configured credentials and print it.

Examples:
  # Use the token with curl
  curl -k -H "Authorization: Bearer $(fsapi token)" https://localhost:55000/

  # Show who the token was issued to and when it expires
  fsapi token --claims`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.newSession(cmd)
			if err != nil {
				return err
			}
			token, err := s.AcquireToken(cmd.Context())
			if err != nil {
				return err
			}
			if !claims {
				if o.jsonOutput {
					return printJSON(cmd.OutOrStdout(), map[string]string{"token": token})
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			}

			tc, err := s.TokenClaims()
			if err != nil {
				return err
			}
			out := map[string]any{
				"subject":    tc.Subject,
				"issued_at":  tc.IssuedAt.UTC().Format(time.RFC3339),
				"expires_at": tc.ExpiresAt.UTC().Format(time.RFC3339),
				"lifetime":   tc.ExpiresAt.Sub(tc.IssuedAt).String(),
			}
			return printResult(cmd, o, out)
		},
	}
	cmd.Flags().BoolVar(&claims, "claims", false, "Print the token claims instead of the token")
	return cmd
}

package cli

import (
	"github.com/spf13/cobra"
)

func newInfoCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the manager API information",
		Long: `Show the manager API information: title, version, revision and host name.

Examples:
  fsapi info
  fsapi info -j`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.newSession(cmd)
			if err != nil {
				return err
			}
			data, err := s.GetInfo(cmd.Context())
			if err != nil {
				return err
			}
			return printResult(cmd, o, data)
		},
	}
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fortishield/fortishield-qa-framework/pkg/api"
)

func newAgentsCmd(o *rootOptions) *cobra.Command {
	agentsCmd := &cobra.Command{
		Use:   "agents",
		Short: "List and restart agents",
	}
	agentsCmd.AddCommand(newAgentsListCmd(o), newAgentsRestartCmd(o))
	return agentsCmd
}

func newAgentsListCmd(o *rootOptions) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the agents registered in the manager",
		Long: `List the agents registered in the manager.

Examples:
  fsapi agents list
  fsapi agents list --status disconnected -j`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.newSession(cmd)
			if err != nil {
				return err
			}
			var opts []api.RequestOption
			if status != "" {
				opts = append(opts, api.WithQuery(map[string]string{"status": status}))
			}
			res, err := s.Call(cmd.Context(), "GET", api.AgentsEndpoint, opts...)
			if err != nil {
				return err
			}
			if !res.OK() {
				return fmt.Errorf("listing agents failed with status %d: %s", res.StatusCode(), res.Get("detail").String())
			}

			var list api.AgentList
			if err := res.DecodeData(&list); err != nil {
				return err
			}
			if o.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"result": 1,
					"value":  list,
				})
			}
			printAgents(cmd, list)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only agents with this status (active, disconnected, pending, never_connected)")
	return cmd
}

func printAgents(cmd *cobra.Command, list api.AgentList) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-6s %-24s %-16s %-16s %s\n", "ID", "NAME", "IP", "STATUS", "VERSION")
	for _, a := range list.Items {
		fmt.Fprintf(w, "%-6s %-24s %-16s %-16s %s\n", a.ID, a.Name, a.IP, a.Status, a.Version)
	}
	fmt.Fprintf(w, "\nTotal: %d\n", list.Total)
}

func newAgentsRestartCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restart AGENT_ID",
		Short: "Restart an agent",
		Long: `Restart an agent. The command fails when the manager reports that the agent could
not be restarted.

Examples:
  fsapi agents restart 003`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.newSession(cmd)
			if err != nil {
				return err
			}
			res, err := s.RestartAgent(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			failures := res.Get("data.failed_items.#.error.message").Array()
			if o.jsonOutput {
				data, err := res.Data()
				if err != nil {
					return err
				}
				result := 1
				if !res.OK() || len(failures) > 0 {
					result = 0
				}
				if err := printJSON(cmd.OutOrStdout(), map[string]any{"result": result, "value": data}); err != nil {
					return err
				}
				if result == 0 {
					return ErrAlreadyHandled
				}
				return nil
			}

			if !res.OK() {
				return fmt.Errorf("restart failed with status %d: %s", res.StatusCode(), res.Get("detail").String())
			}
			if len(failures) > 0 {
				msgs := make([]string, 0, len(failures))
				for _, f := range failures {
					msgs = append(msgs, f.String())
				}
				return fmt.Errorf("agent %s was not restarted: %s", args[0], strings.Join(msgs, "; "))
			}
			okLabel.Fprintf(cmd.OutOrStdout(), "Restart command sent to agent %s\n", args[0])
			return nil
		},
	}
}

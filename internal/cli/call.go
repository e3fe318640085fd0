package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fortishield/fortishield-qa-framework/pkg/api"
)

func newCallCmd(o *rootOptions) *cobra.Command {
	var data string
	var query []string
	var headers []string
	cmd := &cobra.Command{
		Use:   "call METHOD ENDPOINT [flags]",
		Short: "Send an authenticated request to any endpoint",
		Long: `Send an authenticated request to any endpoint and print the response body. The
command fails when the manager answers with a status other than 2xx.

Examples:
  fsapi call GET /manager/status
  fsapi call GET /agents -q select=id,name -q limit=5
  fsapi call PUT /security/config -d '{"auth_token_exp_timeout": 900}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []api.RequestOption
			if data != "" {
				var payload map[string]any
				if err := json.Unmarshal([]byte(data), &payload); err != nil {
					return fmt.Errorf("invalid JSON payload: %v", err)
				}
				opts = append(opts, api.WithPayload(payload))
			}
			if len(query) > 0 {
				q, err := parsePairs(query, "query parameter")
				if err != nil {
					return err
				}
				opts = append(opts, api.WithQuery(q))
			}
			if len(headers) > 0 {
				h, err := parsePairs(headers, "header")
				if err != nil {
					return err
				}
				opts = append(opts, api.WithHeaders(h))
			}

			s, err := o.newSession(cmd)
			if err != nil {
				return err
			}
			res, err := s.Call(cmd.Context(), args[0], args[1], opts...)
			if err != nil {
				return err
			}

			body, jsonErr := res.JSON()
			switch {
			case o.jsonOutput && jsonErr == nil:
				result := 1
				if !res.OK() {
					result = 0
				}
				if err := printJSON(cmd.OutOrStdout(), map[string]any{"result": result, "status": res.StatusCode(), "value": body}); err != nil {
					return err
				}
			case jsonErr == nil:
				if err := printYAML(cmd.OutOrStdout(), body); err != nil {
					return err
				}
			default:
				fmt.Fprintln(cmd.OutOrStdout(), res.Text())
			}

			if !res.OK() {
				if o.jsonOutput {
					return ErrAlreadyHandled
				}
				return fmt.Errorf("%s %s answered with status %d", strings.ToUpper(args[0]), args[1], res.StatusCode())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON object sent as the request body")
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "Query parameter as key=value, repeatable")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "Header as key=value, repeatable")
	return cmd
}

func parsePairs(pairs []string, what string) (map[string]string, error) {
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid %s %q, expected key=value", what, p)
		}
		m[k] = v
	}
	return m, nil
}

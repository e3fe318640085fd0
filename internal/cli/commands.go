// Package cli implements fsapi, a command line front-end to the Fortishield management
// API and the installation path tables.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/fortishield/fortishield-qa-framework/internal/common/logtrace"
	"github.com/fortishield/fortishield-qa-framework/pkg/api"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrAlreadyHandled = errors.New("already handled")

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed)

const cliVersion = "v0.3.0"

// rootOptions holds the global flags.
type rootOptions struct {
	jsonOutput bool
	configFile string
	logLevel   string

	user     string
	password string
	address  string
	port     int
	protocol string
	verify   bool
	timeout  time.Duration

	// sessionOptions are appended to every Session, after the configuration.
	sessionOptions []api.Option
}

// NewRootCmd builds the fsapi command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{})
}

func newRootCmd(o *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fsapi [command] [flags]",
		Short: "fsapi - drive the Fortishield management API from the command line",
		Long: `fsapi talks to a Fortishield manager through its REST API and prints the
installation paths of Fortishield components.

Connection parameters come from the configuration file and can be overridden with flags.

Examples:
  # Show the API information
  fsapi info --address manager.local

  # List active agents as JSON
  fsapi agents list --status active -j

  # Restart an agent
  fsapi agents restart 003

  # Print the Windows installation paths
  fsapi paths --platform windows`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logtrace.InitLogger(o.logLevel)
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&o.configFile, "config", "", "", "Path to configuration file to override default")
	flags.BoolVarP(&o.jsonOutput, "json", "j", false, "Output in JSON format")
	flags.StringVar(&o.logLevel, "log-level", "warn", "Log level (trace, debug, info, warn, error)")
	flags.StringVarP(&o.user, "user", "u", api.DefaultUser, "API user")
	flags.StringVarP(&o.password, "password", "p", api.DefaultPassword, "API password")
	flags.StringVarP(&o.address, "address", "a", api.DefaultAddress, "Manager address")
	flags.IntVar(&o.port, "port", api.DefaultPort, "API port")
	flags.StringVar(&o.protocol, "protocol", api.DefaultProtocol, "API protocol (http or https)")
	flags.BoolVar(&o.verify, "verify", false, "Verify the server TLS certificate")
	flags.DurationVar(&o.timeout, "timeout", 30*time.Second, "Timeout of each API call")

	rootCmd.AddCommand(newVersionCmd(o))
	rootCmd.AddCommand(newConfigCmd(o))
	rootCmd.AddCommand(newTokenCmd(o))
	rootCmd.AddCommand(newInfoCmd(o))
	rootCmd.AddCommand(newAgentsCmd(o))
	rootCmd.AddCommand(newSecurityCmd(o))
	rootCmd.AddCommand(newCallCmd(o))
	rootCmd.AddCommand(newPathsCmd(o))
	return rootCmd
}

// Execute runs the command line and exits on failure. This is called by main.main().
func Execute() {
	o := &rootOptions{}
	rootCmd := newRootCmd(o)
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, ErrAlreadyHandled) {
			os.Exit(1)
		}
		printError(os.Stdout, os.Stderr, o.jsonOutput, err)
		os.Exit(1)
	}
}

func printError(stdout, stderr io.Writer, jsonOutput bool, err error) {
	if jsonOutput {
		printJSON(stdout, map[string]string{"error": err.Error()})
		return
	}
	errorLabel.Fprintf(stderr, "Error: %v\n", err)
}

// printJSON prints data as indented JSON
func printJSON(w io.Writer, data any) error {
	jsonData, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to format JSON output: %v", err)
	}
	fmt.Fprintln(w, string(jsonData))
	return nil
}

// printYAML prints data as YAML
func printYAML(w io.Writer, data any) error {
	yamlBytes, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to convert to YAML: %v", err)
	}
	fmt.Fprint(w, string(yamlBytes))
	return nil
}

// printResult prints a value as {"result": 1, "value": ...} JSON or as YAML
func printResult(cmd *cobra.Command, o *rootOptions, value any) error {
	if o.jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"result": 1,
			"value":  value,
		})
	}
	return printYAML(cmd.OutOrStdout(), value)
}

func newVersionCmd(o *rootOptions) *cobra.Command {
	var local bool
	var require string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version of fsapi and of the manager API",
		Long: `Print the version of fsapi and of the manager API.

With --require the command fails when the API version does not satisfy the constraint,
which lets scripts skip tests against older managers.

Examples:
  fsapi version
  fsapi version --require ">= 4.8"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := map[string]string{
				"version_cli": cliVersion,
				"config_file": o.resolvedConfigFile(),
			}
			if !local {
				s, err := o.newSession(cmd)
				if err != nil {
					return err
				}
				v, err := s.APIVersion(cmd.Context())
				if err != nil {
					return err
				}
				out["version_api"] = v.String()
				if require != "" {
					ok, err := s.RequireAPIVersion(cmd.Context(), require)
					if err != nil {
						return err
					}
					if !ok {
						return fmt.Errorf("api version %s does not satisfy %q", v, require)
					}
				}
			}

			if o.jsonOutput {
				return printJSON(cmd.OutOrStdout(), out)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fsapi CLI %s\n", cliVersion)
			fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n", out["config_file"])
			if v, ok := out["version_api"]; ok {
				fmt.Fprintf(cmd.OutOrStdout(), "API version: %s\n", v)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "Do not contact the manager")
	cmd.Flags().StringVar(&require, "require", "", "Semantic version constraint the API must satisfy")
	return cmd
}

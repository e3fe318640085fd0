package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fortishield/fortishield-qa-framework/pkg/api"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "config.yaml"

// GetDefaultConfigPath returns the default path for the config file
// It uses the OS-specific config directory (e.g., ~/.config/fortishield on Linux)
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "fortishield", DefaultConfigFile), nil
}

func (o *rootOptions) resolvedConfigFile() string {
	if o.configFile != "" {
		return o.configFile
	}
	p, err := GetDefaultConfigPath()
	if err != nil {
		return "unknown"
	}
	return p
}

// loadConfig reads the configuration file and applies the connection flags given on the
// command line. A missing default file means defaults; a missing explicit file is an
// error.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*api.Config, error) {
	cfg := api.DefaultConfig()
	file := o.resolvedConfigFile()
	if _, err := os.Stat(file); err == nil {
		loaded, err := api.LoadConfig(file)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	} else if o.configFile != "" {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("user") {
		cfg.User = o.user
	}
	if flags.Changed("password") {
		cfg.Password = o.password
	}
	if flags.Changed("address") {
		cfg.Address = o.address
	}
	if flags.Changed("port") {
		cfg.Port = o.port
	}
	if flags.Changed("protocol") {
		cfg.Protocol = o.protocol
	}
	if flags.Changed("verify") {
		cfg.Verify = o.verify
	}
	return &cfg, nil
}

// newSession creates a Session that authenticates on first use. The token expiration of
// the configuration file is not pushed to the manager; use "security
// set-token-expiration" for that.
func (o *rootOptions) newSession(cmd *cobra.Command) (*api.Session, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	cfg.AutoAuth = false
	cfg.TokenExpiration = api.DefaultTokenExpiration

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	opts := append([]api.Option{api.WithConfig(*cfg), api.WithTimeout(o.timeout)}, o.sessionOptions...)
	return api.New(ctx, opts...)
}

func newConfigCmd(o *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the fsapi configuration file",
	}

	var force bool
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Write a configuration file from defaults and flags",
		Long: `Write a configuration file from the defaults and the connection flags.

Values can reference environment variables, which are expanded when the file is read:
  password: '{{ .ENV.FORTISHIELD_API_PASSWORD }}'

Examples:
  fsapi config create --address manager.local --user qa --password '{{ .ENV.FS_PASSWORD }}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file := o.resolvedConfigFile()
			if _, err := os.Stat(file); err == nil && !force {
				return fmt.Errorf("config file %s already exists, use --force to overwrite", file)
			}

			cfg := api.DefaultConfig()
			cfg.User = o.user
			cfg.Password = o.password
			cfg.Address = o.address
			cfg.Port = o.port
			cfg.Protocol = o.protocol
			cfg.Verify = o.verify
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.WriteConfig(file); err != nil {
				return err
			}
			if o.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]any{"result": 1, "config_file": file})
			}
			okLabel.Fprintf(cmd.OutOrStdout(), "Config file written to %s\n", file)
			return nil
		},
	}
	createCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration, password masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Password != "" {
				cfg.Password = "********"
			}
			return printResult(cmd, o, cfg)
		},
	}

	configCmd.AddCommand(createCmd, showCmd)
	return configCmd
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fortishield/fortishield-qa-framework/pkg/paths"
)

var pathGroups = []struct {
	prefix string
	title  string
}{
	{"", "directories"},
	{"bin/", "binaries"},
	{"config/", "configuration files"},
	{"logs/", "log files"},
	{"db/", "databases"},
}

func newPathsCmd(o *rootOptions) *cobra.Command {
	var platform string
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Print the installation paths of a platform",
		Long: `Print where binaries, configuration, logs and databases are installed. The platform
defaults to the one fsapi runs on; unknown platforms use the Linux layout.

Examples:
  fsapi paths
  fsapi paths --platform windows -j`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if platform == "" {
				platform = string(paths.Current())
			}
			layout := paths.For(platform)
			entries := layout.Entries()

			if o.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"platform": layout.Platform,
					"paths":    entries,
				})
			}

			w := cmd.OutOrStdout()
			caser := cases.Title(language.English)
			fmt.Fprintf(w, "Platform: %s\n", caser.String(string(layout.Platform)))
			for _, g := range pathGroups {
				fmt.Fprintf(w, "\n%s:\n", caser.String(g.title))
				for _, e := range entries {
					name, ok := strings.CutPrefix(e.Name, g.prefix)
					if !ok || (g.prefix == "" && strings.Contains(name, "/")) {
						continue
					}
					fmt.Fprintf(w, "  %-32s %s\n", name, e.Path)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&platform, "platform", "", "Target platform (linux, windows, darwin)")
	return cmd
}

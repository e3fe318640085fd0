// Package envtemplate expands {{ .ENV.VAR }} placeholders in configuration files with
// values from the process environment and an optional .env file.
package envtemplate

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/joho/godotenv"
)

type templateContext struct {
	ENV map[string]string
}

var missingKeyRegex = regexp.MustCompile(`map has no entry for key "(.*?)"`)

// Expand replaces {{ .ENV.VAR }} placeholders in input. Variables already present in the
// environment win over those read from envFile, which is never loaded into the process
// environment. An empty envFile means ".env" in the current working directory. A missing
// file is not an error, an unreadable or malformed one is.
func Expand(input []byte, envFile string) ([]byte, error) {
	if envFile == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		envFile = filepath.Join(cwd, ".env")
	}
	envMap, err := godotenv.Read(envFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("unable to read env file %s: %w", envFile, err)
		}
		envMap = map[string]string{}
	}
	// the process environment overrides the file
	for _, e := range os.Environ() {
		if k, v, ok := strings.Cut(e, "="); ok {
			envMap[k] = v
		}
	}

	tmpl, err := template.New("config").Option("missingkey=error").Parse(string(input))
	if err != nil {
		return nil, fmt.Errorf("template error: %w", err)
	}

	var output bytes.Buffer
	if err := tmpl.Execute(&output, templateContext{ENV: envMap}); err != nil {
		if matches := missingKeyRegex.FindStringSubmatch(err.Error()); len(matches) == 2 {
			return nil, fmt.Errorf("missing environment variable: %s (set it in your shell or .env file)", matches[1])
		}
		return nil, fmt.Errorf("template error: %w", err)
	}

	return output.Bytes(), nil
}

package envtemplate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		envVars  map[string]string
		expected string
		wantErr  bool
	}{
		{
			name:     "simple substitution",
			input:    "password: {{ .ENV.FS_TEST_PASSWORD }}",
			envVars:  map[string]string{"FS_TEST_PASSWORD": "s3cr3t"},
			expected: "password: s3cr3t",
		},
		{
			name:     "multiple variables",
			input:    "address: {{ .ENV.FS_TEST_HOST }}\nport: {{ .ENV.FS_TEST_PORT }}",
			envVars:  map[string]string{"FS_TEST_HOST": "manager", "FS_TEST_PORT": "55000"},
			expected: "address: manager\nport: 55000",
		},
		{
			name:     "special characters and equals signs",
			input:    "password: {{ .ENV.FS_TEST_SPECIAL }}",
			envVars:  map[string]string{"FS_TEST_SPECIAL": "p@ss=w0rd!"},
			expected: "password: p@ss=w0rd!",
		},
		{
			name:     "no placeholders",
			input:    "user: fortishield\nprotocol: https",
			expected: "user: fortishield\nprotocol: https",
		},
		{
			name:    "missing variable",
			input:   "password: {{ .ENV.FS_TEST_DOES_NOT_EXIST }}",
			wantErr: true,
		},
		{
			name:    "invalid template",
			input:   "password: {{ .ENV.FS_TEST_PASSWORD }",
			wantErr: true,
		},
	}

	noEnv := filepath.Join(t.TempDir(), "absent.env")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}
			result, err := Expand([]byte(tt.input), noEnv)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestExpandMissingVariableMessage(t *testing.T) {
	_, err := Expand([]byte("{{ .ENV.FS_TEST_NOPE }}"), filepath.Join(t.TempDir(), "none"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing environment variable: FS_TEST_NOPE")
}

func TestExpandWithEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("FS_TEST_FILE_USER=from_file\nFS_TEST_FILE_PASSWORD=file_password\n"), 0600))
	t.Setenv("FS_TEST_FILE_PASSWORD", "from_environment")

	result, err := Expand([]byte("user: {{ .ENV.FS_TEST_FILE_USER }}\npassword: {{ .ENV.FS_TEST_FILE_PASSWORD }}"), envFile)
	require.NoError(t, err)
	assert.Equal(t, "user: from_file\npassword: from_environment", string(result))
}

func TestExpandEnvFileLeavesEnvironment(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("FS_TEST_ISOLATED=from_file\n"), 0600))

	result, err := Expand([]byte("value: {{ .ENV.FS_TEST_ISOLATED }}"), envFile)
	require.NoError(t, err)
	assert.Equal(t, "value: from_file", string(result))

	_, set := os.LookupEnv("FS_TEST_ISOLATED")
	assert.False(t, set)
}

func TestExpandMalformedEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("FS-TEST-BAD=1\n"), 0600))

	_, err := Expand([]byte("user: fortishield"), envFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to read env file")
}

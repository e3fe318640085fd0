package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/fortishield/fortishield-qa-framework/pkg/api"
	"github.com/fortishield/fortishield-qa-framework/pkg/api/apitest"
)

func run(t *testing.T, srv *apitest.Server, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	o := &rootOptions{}
	if srv != nil {
		o.sessionOptions = []api.Option{api.WithHandler(srv.Handler())}
	}
	cmd := newRootCmd(o)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInfoCmd(t *testing.T) {
	srv := apitest.NewServer()

	out, err := run(t, srv, "info")
	require.NoError(t, err)
	assert.Contains(t, out, "api_version: 4.8.0")

	out, err = run(t, srv, "info", "-j")
	require.NoError(t, err)
	assert.Equal(t, int64(1), gjson.Get(out, "result").Int())
	assert.Equal(t, "Fortishield API REST", gjson.Get(out, "value.title").String())
}

func TestAgentsCmd(t *testing.T) {
	srv := apitest.NewServer()

	out, err := run(t, srv, "agents", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "agent-3")
	assert.Contains(t, out, "Total: 4")

	out, err = run(t, srv, "agents", "list", "--status", "active", "-j")
	require.NoError(t, err)
	assert.Equal(t, int64(3), gjson.Get(out, "value.affected_items.#").Int())

	out, err = run(t, srv, "agents", "restart", "003")
	require.NoError(t, err)
	assert.Contains(t, out, "Restart command sent to agent 003")
	assert.Equal(t, 1, srv.Restarts("003"))

	_, err = run(t, srv, "agents", "restart", "000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Action not available for Manager")

	out, err = run(t, srv, "agents", "restart", "002", "-j")
	assert.ErrorIs(t, err, ErrAlreadyHandled)
	assert.Equal(t, int64(0), gjson.Get(out, "result").Int())

	_, err = run(t, srv, "agents", "restart")
	assert.Error(t, err)
}

func TestSecurityCmd(t *testing.T) {
	srv := apitest.NewServer()

	out, err := run(t, srv, "security", "set-token-expiration", "60")
	require.NoError(t, err)
	assert.Contains(t, out, "Token expiration set to 60 seconds")
	assert.Equal(t, 60, srv.TokenExpiration())

	_, err = run(t, srv, "security", "set-token-expiration", "soon")
	assert.Error(t, err)

	srv.SetStatus("PUT", "/security/config", 403)
	_, err = run(t, srv, "security", "set-token-expiration", "120")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestCallCmd(t *testing.T) {
	srv := apitest.NewServer()

	out, err := run(t, srv, "call", "get", "/agents", "-q", "agents_list=001", "-H", "X-Test=cli", "-j")
	require.NoError(t, err)
	assert.Equal(t, int64(200), gjson.Get(out, "status").Int())
	assert.Equal(t, `["001"]`, gjson.Get(out, "value.data.affected_items.#.id").Raw)
	reqs := srv.Requests()
	last := reqs[len(reqs)-1]
	assert.Equal(t, "agents_list=001", last.RawQuery)
	assert.Equal(t, "cli", last.Header.Get("X-Test"))

	_, err = run(t, srv, "call", "PUT", "/security/config", "-d", `{"auth_token_exp_timeout": 30}`)
	require.NoError(t, err)
	assert.Equal(t, 30, srv.TokenExpiration())

	_, err = run(t, srv, "call", "DELETE", "/agents")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 405")

	_, err = run(t, srv, "call", "PUT", "/security/config", "-d", `not json`)
	assert.Error(t, err)

	_, err = run(t, srv, "call", "GET", "/agents", "-q", "novalue")
	assert.Error(t, err)
}

func TestTokenCmd(t *testing.T) {
	srv := apitest.NewServer(apitest.WithCredentials("qa", "secret"))

	out, err := run(t, srv, "token", "-u", "qa", "-p", "secret")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "."), 3)

	out, err = run(t, srv, "token", "--claims", "-j", "-u", "qa", "-p", "secret")
	require.NoError(t, err)
	assert.Equal(t, "qa", gjson.Get(out, "value.subject").String())
	assert.Equal(t, "15m0s", gjson.Get(out, "value.lifetime").String())

	_, err = run(t, srv, "token")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrAuthentication)
}

func TestVersionCmd(t *testing.T) {
	srv := apitest.NewServer(apitest.WithAPIVersion("4.8.1"))

	out, err := run(t, nil, "version", "--local", "-j")
	require.NoError(t, err)
	assert.Equal(t, cliVersion, gjson.Get(out, "version_cli").String())
	assert.False(t, gjson.Get(out, "version_api").Exists())

	out, err = run(t, srv, "version", "--require", ">= 4.8")
	require.NoError(t, err)
	assert.Contains(t, out, "API version: 4.8.1")

	_, err = run(t, srv, "version", "--require", ">= 5.0")
	assert.Error(t, err)
}

func TestPathsCmd(t *testing.T) {
	out, err := run(t, nil, "paths", "--platform", "windows")
	require.NoError(t, err)
	assert.Contains(t, out, "Platform: Windows")
	assert.Contains(t, out, "Binaries:")
	assert.Contains(t, out, "Configuration Files:")
	assert.Contains(t, out, `C:\Program Files (x86)\ossec-agent\ossec.conf`)

	out, err = run(t, nil, "paths", "--platform", "linux", "-j")
	require.NoError(t, err)
	assert.Equal(t, "linux", gjson.Get(out, "platform").String())
	assert.Equal(t, "/var/ossec", gjson.Get(out, `paths.#(name=="root").path`).String())
}

func TestConfigCmd(t *testing.T) {
	file := filepath.Join(t.TempDir(), "fsapi", "config.yaml")

	out, err := run(t, nil, "config", "create", "--config", file, "--address", "10.2.0.1", "--password", "s3cret")
	require.NoError(t, err)
	assert.Contains(t, out, "Config file written to")

	_, err = run(t, nil, "config", "create", "--config", file)
	assert.Error(t, err)

	cfg, err := api.LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, "10.2.0.1", cfg.Address)
	assert.Equal(t, "s3cret", cfg.Password)

	out, err = run(t, nil, "config", "show", "--config", file, "--port", "55010", "-j")
	require.NoError(t, err)
	assert.Equal(t, "10.2.0.1", gjson.Get(out, "value.address").String())
	assert.Equal(t, int64(55010), gjson.Get(out, "value.port").Int())
	assert.Equal(t, "********", gjson.Get(out, "value.password").String())

	_, err = run(t, nil, "config", "show", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = run(t, nil, "config", "create", "--config", file, "--force", "--protocol", "gopher")
	assert.ErrorIs(t, err, api.ErrInvalidConfig)
}

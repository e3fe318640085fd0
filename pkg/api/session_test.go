package api_test

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortishield/fortishield-qa-framework/pkg/api"
	"github.com/fortishield/fortishield-qa-framework/pkg/api/apitest"
)

// newSession binds a Session to srv in-process.
func newSession(t *testing.T, srv *apitest.Server, opts ...api.Option) *api.Session {
	t.Helper()
	opts = append([]api.Option{api.WithHandler(srv.Handler())}, opts...)
	s, err := api.New(context.Background(), opts...)
	require.NoError(t, err)
	return s
}

// closedAddress returns a loopback address nothing listens on.
func closedAddress(t *testing.T) (string, int) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().(*net.TCPAddr)
	require.NoError(t, l.Close())
	return addr.IP.String(), addr.Port
}

func paths(reqs []apitest.RecordedRequest) []string {
	var out []string
	for _, r := range reqs {
		out = append(out, r.Method+" "+r.Path)
	}
	return out
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		opts []api.Option
	}{
		{name: "bad protocol", opts: []api.Option{api.WithProtocol("ftp")}},
		{name: "bad port", opts: []api.Option{api.WithPort(70000)}},
		{name: "empty user", opts: []api.Option{api.WithCredentials("", "x")}},
		{name: "empty address", opts: []api.Option{api.WithAddress("")}},
		{name: "zero expiration", opts: []api.Option{api.WithTokenExpiration(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := api.New(context.Background(), append(tt.opts, api.WithAutoAuth(false))...)
			assert.Nil(t, s)
			assert.ErrorIs(t, err, api.ErrInvalidConfig)
		})
	}
}

func TestNewDefaults(t *testing.T) {
	srv := apitest.NewServer()
	s := newSession(t, srv, api.WithAutoAuth(false))
	assert.Equal(t, "https://localhost:55000", s.BaseURL())
	assert.Equal(t, api.DefaultUser, s.User())
	assert.Equal(t, api.DefaultTokenExpiration, s.TokenExpiration())

	s = newSession(t, srv, api.WithAutoAuth(false), api.WithAddress("::1"), api.WithPort(8443), api.WithProtocol("http"))
	assert.Equal(t, "http://[::1]:8443", s.BaseURL())
}

func TestAcquireToken(t *testing.T) {
	srv := apitest.NewServer()
	s := newSession(t, srv, api.WithAutoAuth(false))

	token, err := s.AcquireToken(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	held, ok := s.Token()
	assert.True(t, ok)
	assert.Equal(t, token, held)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, apitest.AuthenticateEndpoint, reqs[0].Path)
	assert.Equal(t, "raw=true", reqs[0].RawQuery)
	assert.Equal(t, "application/json", reqs[0].Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(reqs[0].Header.Get("Authorization"), "Basic "))
}

// authenticator answers the authentication endpoint with a fixed body.
func authenticator(status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	})
}

func TestAcquireTokenBody(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "token is the body", status: http.StatusOK, body: "abc.def.ghi"},
		{name: "json error body", status: http.StatusUnauthorized, body: `{"title": "Unauthorized", "detail": "Invalid credentials"}`,
			wantErr: `error obtaining login token: {"title":"Unauthorized","detail":"Invalid credentials"}`},
		{name: "text error body", status: http.StatusInternalServerError, body: "boom",
			wantErr: "error obtaining login token: boom"},
		{name: "no content is not a token", status: http.StatusNoContent,
			wantErr: "error obtaining login token: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := api.New(context.Background(), api.WithAutoAuth(false), api.WithHandler(authenticator(tt.status, tt.body)))
			require.NoError(t, err)

			token, err := s.AcquireToken(context.Background())
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.body, token)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, api.ErrAuthentication)
			assert.Equal(t, tt.wantErr, err.Error())
			var apiErr interface{ StatusCode() int }
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode())
			_, ok := s.Token()
			assert.False(t, ok)
		})
	}
}

func TestAuthenticationRejected(t *testing.T) {
	srv := apitest.NewServer()

	_, err := api.New(context.Background(), api.WithHandler(srv.Handler()), api.WithCredentials("fortishield", "wrong"))
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrAuthentication)
	assert.Contains(t, err.Error(), "invalid credentials")

	s := newSession(t, srv)
	_, ok := s.Token()
	require.True(t, ok)

	// a failed renewal leaves the Session without a token
	srv.FailAuthentication(http.StatusUnauthorized)
	_, err = s.AcquireToken(context.Background())
	assert.ErrorIs(t, err, api.ErrAuthentication)
	assert.Contains(t, err.Error(), "injected failure")
	_, ok = s.Token()
	assert.False(t, ok)

	_, err = s.GetInfo(context.Background())
	assert.ErrorIs(t, err, api.ErrAuthentication)
}

func TestConnectionFailure(t *testing.T) {
	host, port := closedAddress(t)
	s, err := api.New(context.Background(),
		api.WithAutoAuth(false),
		api.WithAddress(host),
		api.WithPort(port),
		api.WithProtocol("http"),
	)
	require.NoError(t, err)

	_, err = s.AcquireToken(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrConnection)
	assert.NotErrorIs(t, err, api.ErrAuthentication)
	assert.Contains(t, err.Error(), s.BaseURL())

	_, err = s.GetInfo(context.Background())
	assert.ErrorIs(t, err, api.ErrConnection)

	_, err = s.Call(context.Background(), http.MethodGet, "/agents")
	assert.ErrorIs(t, err, api.ErrConnection)

	_, err = api.New(context.Background(), api.WithAddress(host), api.WithPort(port), api.WithProtocol("http"))
	assert.ErrorIs(t, err, api.ErrConnection)
}

func TestLazyAuthentication(t *testing.T) {
	srv := apitest.NewServer()
	s := newSession(t, srv, api.WithAutoAuth(false))

	_, ok := s.Token()
	assert.False(t, ok)
	assert.Empty(t, srv.Requests())

	_, err := s.GetInfo(context.Background())
	require.NoError(t, err)
	token, ok := s.Token()
	assert.True(t, ok)
	assert.Equal(t, []string{"GET /security/user/authenticate", "GET /"}, paths(srv.Requests()))

	_, err = s.GetInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"GET /security/user/authenticate", "GET /", "GET /"}, paths(srv.Requests()))
	again, _ := s.Token()
	assert.Equal(t, token, again)
}

func TestConcurrentFirstUse(t *testing.T) {
	srv := apitest.NewServer()
	s := newSession(t, srv, api.WithAutoAuth(false))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ListAgents(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	auths := 0
	for _, r := range srv.Requests() {
		if r.Path == apitest.AuthenticateEndpoint {
			auths++
		}
	}
	assert.Equal(t, 1, auths)
}

func TestNonDefaultTokenExpiration(t *testing.T) {
	for _, autoAuth := range []bool{true, false} {
		srv := apitest.NewServer()
		s := newSession(t, srv, api.WithAutoAuth(autoAuth), api.WithTokenExpiration(60))

		assert.Equal(t, []string{
			"GET /security/user/authenticate",
			"PUT /security/config",
			"GET /security/user/authenticate",
		}, paths(srv.Requests()))
		assert.JSONEq(t, `{"auth_token_exp_timeout": 60}`, string(srv.Requests()[1].Body))
		assert.Equal(t, 60, srv.TokenExpiration())
		assert.Equal(t, 60, s.TokenExpiration())

		// the fresh token is accepted after the configuration change revoked the old one
		_, err := s.GetInfo(context.Background())
		require.NoError(t, err)

		claims, err := s.TokenClaims()
		require.NoError(t, err)
		assert.Equal(t, 60*time.Second, claims.ExpiresAt.Sub(claims.IssuedAt))
	}
}

func TestTokenExpirationRefused(t *testing.T) {
	srv := apitest.NewServer()
	srv.SetStatus(http.MethodPut, "/security/config", http.StatusForbidden)

	_, err := api.New(context.Background(), api.WithHandler(srv.Handler()), api.WithTokenExpiration(60))
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrTokenExpiration)
	var apiErr interface{ StatusCode() int }
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode())
	assert.Equal(t, apitest.DefaultTokenExpiration, srv.TokenExpiration())
}

func TestPartialReconfiguration(t *testing.T) {
	srv := apitest.NewServer()
	var mu sync.Mutex
	auths := 0
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == apitest.AuthenticateEndpoint {
			mu.Lock()
			auths++
			n := auths
			mu.Unlock()
			if n == 2 {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"title":"Internal Server Error","detail":"database locked"}`))
				return
			}
		}
		srv.Handler().ServeHTTP(w, r)
	})

	_, err := api.New(context.Background(), api.WithHandler(h), api.WithTokenExpiration(120))
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrPartialReconfiguration)
	assert.ErrorIs(t, err, api.ErrAuthentication)
	assert.Contains(t, err.Error(), "database locked")
	assert.Equal(t, 120, srv.TokenExpiration())
}

func TestTokenClaims(t *testing.T) {
	srv := apitest.NewServer()
	s := newSession(t, srv, api.WithAutoAuth(false))

	_, err := s.TokenClaims()
	assert.ErrorIs(t, err, api.ErrNoToken)

	_, err = s.AcquireToken(context.Background())
	require.NoError(t, err)
	claims, err := s.TokenClaims()
	require.NoError(t, err)
	assert.Equal(t, apitest.DefaultUser, claims.Subject)
	assert.Equal(t, time.Duration(apitest.DefaultTokenExpiration)*time.Second, claims.ExpiresAt.Sub(claims.IssuedAt))
	assert.Equal(t, "fortishield", claims.Raw["iss"])

	s.InvalidateToken()
	_, ok := s.Token()
	assert.False(t, ok)
}

func TestTLSVerify(t *testing.T) {
	srv := apitest.NewServer()
	ts := srv.ServeTLS(t)
	host, port := apitest.HostPort(t, ts)

	s, err := api.New(context.Background(), api.WithAddress(host), api.WithPort(port))
	require.NoError(t, err)
	_, err = s.GetInfo(context.Background())
	require.NoError(t, err)

	_, err = s.Call(context.Background(), http.MethodGet, "/", api.WithVerify(true))
	assert.ErrorIs(t, err, api.ErrConnection)

	_, err = api.New(context.Background(), api.WithAddress(host), api.WithPort(port), api.WithTLSVerify(true))
	assert.ErrorIs(t, err, api.ErrConnection)

	s, err = api.New(context.Background(), api.WithAddress(host), api.WithPort(port), api.WithHTTPClient(ts.Client()))
	require.NoError(t, err)
	_, err = s.Call(context.Background(), http.MethodGet, "/", api.WithVerify(true))
	assert.NoError(t, err)
}

func TestContextCanceled(t *testing.T) {
	srv := apitest.NewServer()
	ts := srv.Serve(t)
	host, port := apitest.HostPort(t, ts)
	s, err := api.New(context.Background(), api.WithAddress(host), api.WithPort(port), api.WithProtocol("http"))
	require.NoError(t, err)

	srv.SetLatency(time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = s.GetInfo(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, api.ErrConnection)
}

func TestSessionTimeout(t *testing.T) {
	srv := apitest.NewServer()
	ts := srv.Serve(t)
	host, port := apitest.HostPort(t, ts)
	s, err := api.New(context.Background(),
		api.WithAddress(host),
		api.WithPort(port),
		api.WithProtocol("http"),
		api.WithTimeout(50*time.Millisecond),
	)
	require.NoError(t, err)

	srv.SetLatency(time.Second)
	_, err = s.GetInfo(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrClient)
	assert.ErrorIs(t, err, api.ErrConnection)
	assert.Contains(t, err.Error(), s.BaseURL())

	_, err = s.AcquireToken(context.Background())
	assert.ErrorIs(t, err, api.ErrConnection)
}

func TestSessionLogFields(t *testing.T) {
	var buf bytes.Buffer
	srv := apitest.NewServer()
	s := newSession(t, srv, api.WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))

	_, err := s.GetInfo(context.Background())
	require.NoError(t, err)

	var line string
	for _, l := range strings.Split(buf.String(), "\n") {
		if strings.Contains(l, "request completed") {
			line = l
		}
	}
	require.NotEmpty(t, line)
	assert.Equal(t, 1, strings.Count(line, `"url":`))
	assert.Equal(t, 1, strings.Count(line, `"base_url":"`+s.BaseURL()+`"`))
}

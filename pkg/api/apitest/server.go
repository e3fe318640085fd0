// Package apitest provides an in-process mock of the Fortishield management service API
// for tests. It implements authentication, the service information, agent listing and
// restart, and the security configuration endpoints, records every request it receives
// and can be told to fail specific calls.
//
//	srv := apitest.NewServer()
//	ts := srv.Serve(t)
//	host, port := apitest.HostPort(t, ts)
package apitest

import (
	"crypto/ed25519"
	"crypto/rand"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fortishield/fortishield-qa-framework/internal/common/httpx"
	"github.com/fortishield/fortishield-qa-framework/internal/common/middleware"
)

// Defaults of a new Server.
const (
	DefaultUser            = "fortishield"
	DefaultPassword        = "fortishield"
	DefaultAPIVersion      = "4.8.0"
	DefaultTokenExpiration = 900
)

// Agent is an agent known to the mock.
type Agent struct {
	ID      string
	Name    string
	IP      string
	Status  string
	Version string
}

// DefaultAgents are registered when no WithAgents option is given. Agent 000 is the
// manager itself.
var DefaultAgents = []Agent{
	{ID: "000", Name: "fortishield-manager", IP: "127.0.0.1", Status: "active", Version: "Fortishield v4.8.0"},
	{ID: "001", Name: "agent-1", IP: "172.17.0.2", Status: "active", Version: "Fortishield v4.8.0"},
	{ID: "002", Name: "agent-2", IP: "172.17.0.3", Status: "disconnected", Version: "Fortishield v4.7.2"},
	{ID: "003", Name: "agent-3", IP: "172.17.0.4", Status: "active", Version: "Fortishield v4.8.0"},
}

// Server is the mock service. It is safe for concurrent use.
type Server struct {
	mu sync.Mutex

	user       string
	password   string
	apiVersion string
	expiration int
	generation int
	agents     []Agent
	restarts   map[string]int

	requests []RecordedRequest
	inject   map[string]int
	latency  time.Duration

	handlerTimeout time.Duration

	publicKey  ed25519.PublicKey
	privateKey ed25519.PrivateKey

	router *chi.Mux
}

// Option configures a Server.
type Option func(*Server)

// WithCredentials sets the only user and password accepted by the mock.
func WithCredentials(user, password string) Option {
	return func(s *Server) {
		s.user = user
		s.password = password
	}
}

// WithAPIVersion sets the version reported by GET /.
func WithAPIVersion(version string) Option {
	return func(s *Server) {
		s.apiVersion = version
	}
}

// WithAgents replaces the registered agents.
func WithAgents(agents ...Agent) Option {
	return func(s *Server) {
		s.agents = append([]Agent(nil), agents...)
	}
}

// WithHandlerTimeout answers 503 when a request takes longer than d to handle.
func WithHandlerTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.handlerTimeout = d
	}
}

// NewServer creates a mock service.
func NewServer(opts ...Option) *Server {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	s := &Server{
		user:       DefaultUser,
		password:   DefaultPassword,
		apiVersion: DefaultAPIVersion,
		expiration: DefaultTokenExpiration,
		agents:     append([]Agent(nil), DefaultAgents...),
		restarts:   make(map[string]int),
		inject:     make(map[string]int),
		publicKey:  pub,
		privateKey: priv,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = chi.NewRouter()
	s.mountHandlers()
	return s
}

func (s *Server) mountHandlers() {
	s.router.Use(middleware.RequestLogger)
	s.router.Use(middleware.PanicHandler)
	s.router.Use(s.record)
	s.router.Use(middleware.SetTimeout(s.handlerTimeout))
	s.router.Use(s.delay)
	s.router.Use(s.injectFailure)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.ErrNotFound("no route for " + r.Method + " " + r.URL.Path).Send(w)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.ErrReqMethodNotSupported().Send(w)
	})

	s.router.Get(AuthenticateEndpoint, httpx.WrapHttpRsp(s.authenticate))
	s.router.Post(AuthenticateEndpoint, httpx.WrapHttpRsp(s.authenticate))

	s.router.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Get("/", httpx.WrapHttpRsp(s.getInfo))
		r.Get("/agents", httpx.WrapHttpRsp(s.listAgents))
		r.Put("/agents/{agent_id}/restart", httpx.WrapHttpRsp(s.restartAgent))
		r.Get("/security/config", httpx.WrapHttpRsp(s.getSecurityConfig))
		r.Put("/security/config", httpx.WrapHttpRsp(s.putSecurityConfig))
	})
}

// Handler returns the mock as an http.Handler, for in-process use.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve starts the mock on a loopback listener that is closed when the test ends.
func (s *Server) Serve(t testing.TB) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(s.router)
	t.Cleanup(ts.Close)
	return ts
}

// ServeTLS is Serve over https with a self-signed certificate.
func (s *Server) ServeTLS(t testing.TB) *httptest.Server {
	t.Helper()
	ts := httptest.NewTLSServer(s.router)
	t.Cleanup(ts.Close)
	return ts
}

// HostPort splits the address of ts.
func HostPort(t testing.TB, ts *httptest.Server) (string, int) {
	t.Helper()
	u, err := url.Parse(ts.URL)
	if err != nil {
		t.Fatalf("invalid server url %s: %v", ts.URL, err)
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("invalid server address %s: %v", u.Host, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("invalid server port %s: %v", portStr, err)
	}
	return host, port
}

// TokenExpiration returns the configured token lifetime in seconds.
func (s *Server) TokenExpiration() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiration
}

// Restarts returns how many times agent id was restarted.
func (s *Server) Restarts(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restarts[id]
}

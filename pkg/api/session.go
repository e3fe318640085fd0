// Package api drives the Fortishield management service through its HTTP API on behalf
// of test code.
//
// A Session owns the connection parameters and the bearer token. Requests are built with
// NewRequest and sent against a Session, which mints a token on first use. Responses are
// wrapped in Response without interpreting the status code. Bind associates a fixed
// method and endpoint with a handler so that each operation is written once:
//
//	s, err := api.New(ctx, api.WithAddress("manager"), api.WithCredentials("fortishield", "secret"))
//	if err != nil {
//		return err
//	}
//	info, err := s.GetInfo(ctx)
//
// A Session may be shared between goroutines: minting the token is serialized so that at
// most one authentication happens even under concurrent first use.
package api

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fortishield/fortishield-qa-framework/internal/common/httpclient"
)

// Session is an authenticated conversation with one management service.
type Session struct {
	user     string
	password string
	address  string
	port     int
	protocol string
	baseURL  string
	verify   bool

	transport httpclient.Transport
	logger    zerolog.Logger

	mu              sync.Mutex
	token           string
	tokenExpiration int
}

// Option configures a Session.
type Option func(*options)

type options struct {
	cfg        Config
	httpClient *http.Client
	handler    http.Handler
	timeout    time.Duration
	logger     *zerolog.Logger
}

// WithConfig replaces every connection parameter with cfg. Options after it still apply.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithCredentials sets the API user and password.
func WithCredentials(user, password string) Option {
	return func(o *options) {
		o.cfg.User = user
		o.cfg.Password = password
	}
}

// WithAddress sets the host name or IP address of the service.
func WithAddress(address string) Option {
	return func(o *options) {
		o.cfg.Address = address
	}
}

// WithPort sets the API port.
func WithPort(port int) Option {
	return func(o *options) {
		o.cfg.Port = port
	}
}

// WithProtocol sets the URL scheme, http or https.
func WithProtocol(protocol string) Option {
	return func(o *options) {
		o.cfg.Protocol = protocol
	}
}

// WithAutoAuth controls whether New mints a token before returning.
func WithAutoAuth(autoAuth bool) Option {
	return func(o *options) {
		o.cfg.AutoAuth = autoAuth
	}
}

// WithTokenExpiration sets the token lifetime, in seconds, that New pushes to the service.
func WithTokenExpiration(seconds int) Option {
	return func(o *options) {
		o.cfg.TokenExpiration = seconds
	}
}

// WithTLSVerify sets the default TLS verification of the Session's requests.
func WithTLSVerify(verify bool) Option {
	return func(o *options) {
		o.cfg.Verify = verify
	}
}

// WithHTTPClient sends requests through client. Its TLS settings take precedence over
// the verify flags.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithHandler serves every request in-process through h instead of the network.
func WithHandler(h http.Handler) Option {
	return func(o *options) {
		o.handler = h
	}
}

// WithTimeout bounds each round trip. Zero, the default, leaves it to the context.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithLogger replaces the global zerolog logger for this Session.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

// New creates a Session. With AutoAuth a token is minted before returning. When the
// configured token expiration differs from DefaultTokenExpiration, the new expiration is
// pushed to the service and a fresh token governed by it is minted afterwards.
func New(ctx context.Context, opts ...Option) (*Session, error) {
	o := options{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}

	logger := log.Logger
	if o.logger != nil {
		logger = *o.logger
	}

	var transport httpclient.Transport
	if o.handler != nil {
		transport = httpclient.NewHandlerTransport(o.handler)
	} else {
		transport = httpclient.NewTransport(httpclient.ClientOptions{
			HTTPClient: o.httpClient,
			Timeout:    o.timeout,
		})
	}

	s := &Session{
		user:            o.cfg.User,
		password:        o.cfg.Password,
		address:         o.cfg.Address,
		port:            o.cfg.Port,
		protocol:        o.cfg.Protocol,
		baseURL:         o.cfg.Protocol + "://" + net.JoinHostPort(o.cfg.Address, strconv.Itoa(o.cfg.Port)),
		verify:          o.cfg.Verify,
		transport:       transport,
		tokenExpiration: DefaultTokenExpiration,
	}
	s.logger = logger.With().Str("component", "fortishield-api").Str("base_url", s.baseURL).Logger()

	if o.cfg.AutoAuth {
		if _, err := s.AcquireToken(ctx); err != nil {
			return nil, err
		}
	}

	if o.cfg.TokenExpiration != DefaultTokenExpiration {
		if err := s.applyTokenExpiration(ctx, o.cfg.TokenExpiration); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// BaseURL returns protocol://address:port.
func (s *Session) BaseURL() string {
	return s.baseURL
}

// User returns the API user the Session authenticates as.
func (s *Session) User() string {
	return s.user
}

// TokenExpiration returns the token lifetime, in seconds, last applied to the service.
func (s *Session) TokenExpiration() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenExpiration
}

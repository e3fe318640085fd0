package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Masterminds/semver/v3"
)

// Endpoints of the management service used by this package.
const (
	InfoEndpoint           = "/"
	AgentsEndpoint         = "/agents"
	SecurityConfigEndpoint = "/security/config"
)

var (
	getInfo    = Bind(http.MethodGet, InfoEndpoint, DataHandler)
	listAgents = Bind(http.MethodGet, AgentsEndpoint, DataHandler)
	info       = Bind(http.MethodGet, InfoEndpoint, DecodeDataHandler[APIInfo])
	agents     = Bind(http.MethodGet, AgentsEndpoint, DecodeDataHandler[AgentList])
)

// GetInfo returns the data member of GET /.
func (s *Session) GetInfo(ctx context.Context) (map[string]any, error) {
	return getInfo(ctx, s)
}

// ListAgents returns the data member of GET /agents.
func (s *Session) ListAgents(ctx context.Context) (map[string]any, error) {
	return listAgents(ctx, s)
}

// Info returns GET / decoded. A non-2xx status is an error.
func (s *Session) Info(ctx context.Context) (*APIInfo, error) {
	v, err := info(ctx, s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Agents returns GET /agents decoded. A non-2xx status is an error.
func (s *Session) Agents(ctx context.Context) (*AgentList, error) {
	v, err := agents(ctx, s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// RestartAgent sends PUT /agents/{id}/restart and returns whatever the service answered.
func (s *Session) RestartAgent(ctx context.Context, id string) (*Response, error) {
	if id == "" {
		return nil, ErrInvalidRequest.Msg("agent id cannot be empty")
	}
	return NewRequest("/agents/"+url.PathEscape(id)+"/restart", http.MethodPut).Send(ctx, s)
}

// SetTokenExpiration sets the lifetime, in seconds, of tokens minted by the service. When
// the service accepts it, the live token is discarded because it was minted under the old
// policy; the next authenticated call mints one governed by the new value.
func (s *Session) SetTokenExpiration(ctx context.Context, seconds int) (*Response, error) {
	res, err := NewRequest(SecurityConfigEndpoint, http.MethodPut,
		WithPayload(map[string]any{"auth_token_exp_timeout": seconds}),
	).Send(ctx, s)
	if err != nil {
		return nil, err
	}
	if res.OK() {
		s.mu.Lock()
		s.tokenExpiration = seconds
		s.token = ""
		s.mu.Unlock()
	}
	return res, nil
}

// applyTokenExpiration pushes a non-default expiration at construction and mints the
// token it governs. The two calls are not atomic: when the second fails the service keeps
// the new policy and ErrPartialReconfiguration is returned.
func (s *Session) applyTokenExpiration(ctx context.Context, seconds int) error {
	res, err := s.SetTokenExpiration(ctx, seconds)
	if err != nil {
		return err
	}
	if !res.OK() {
		return ErrTokenExpiration.Msg("unable to set token expiration: " + res.Text()).SetStatusCode(res.StatusCode())
	}
	if _, err := s.AcquireToken(ctx); err != nil {
		s.logger.Error().Err(err).Int("token_expiration", seconds).Msg("token expiration applied but no fresh token was obtained")
		return ErrPartialReconfiguration.MsgErr(ErrPartialReconfiguration.Error()+": "+err.Error(), err)
	}
	return nil
}

// Call sends an authenticated request to any endpoint.
func (s *Session) Call(ctx context.Context, method, endpoint string, opts ...RequestOption) (*Response, error) {
	return NewRequest(endpoint, method, opts...).Send(ctx, s)
}

// APIVersion returns the version reported by GET /.
func (s *Session) APIVersion(ctx context.Context) (*semver.Version, error) {
	i, err := s.Info(ctx)
	if err != nil {
		return nil, err
	}
	v, err := semver.NewVersion(i.APIVersion)
	if err != nil {
		return nil, ErrMalformedResponse.MsgErr("invalid api_version "+i.APIVersion, err)
	}
	return v, nil
}

// RequireAPIVersion reports whether the service version satisfies constraint, for
// example ">= 4.0".
func (s *Session) RequireAPIVersion(ctx context.Context, constraint string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, ErrInvalidRequest.MsgErr("invalid version constraint "+constraint, err)
	}
	v, err := s.APIVersion(ctx)
	if err != nil {
		return false, err
	}
	return c.Check(v), nil
}

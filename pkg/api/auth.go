package api

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tidwall/gjson"

	"github.com/fortishield/fortishield-qa-framework/internal/common/httpclient"
)

// AuthenticateEndpoint exchanges basic credentials for a bearer token.
const AuthenticateEndpoint = "/security/user/authenticate"

// AcquireToken exchanges the Session credentials for a new bearer token and stores it.
// The previous token is discarded first, so on failure the Session holds no token.
func (s *Session) AcquireToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acquireTokenLocked(ctx)
}

func (s *Session) acquireTokenLocked(ctx context.Context) (string, error) {
	s.token = ""

	credentials := base64.StdEncoding.EncodeToString([]byte(s.user + ":" + s.password))
	req := &httpclient.Request{
		Method: http.MethodGet,
		URL:    s.baseURL + AuthenticateEndpoint + "?raw=true",
		Header: http.Header{
			"Content-Type":  []string{ContentTypeJSON},
			"Authorization": []string{"Basic " + credentials},
		},
		Verify: s.verify,
	}

	res, err := s.transport.Do(ctx, req)
	if err != nil {
		return "", translate(s.baseURL, err)
	}

	if res.StatusCode != http.StatusOK {
		detail := string(res.Body)
		if gjson.ValidBytes(res.Body) {
			detail = gjson.GetBytes(res.Body, "@ugly").String()
		}
		s.logger.Warn().Int("status", res.StatusCode).Str("user", s.user).Msg("token request rejected")
		return "", ErrAuthentication.Msg("error obtaining login token: " + detail).SetStatusCode(res.StatusCode)
	}

	s.token = string(res.Body)
	s.logger.Debug().Str("user", s.user).Msg("token acquired")
	return s.token, nil
}

// ensureToken returns the live token, minting one when the Session holds none. The lock is
// held across the exchange so concurrent first calls authenticate once.
func (s *Session) ensureToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" {
		return s.token, nil
	}
	return s.acquireTokenLocked(ctx)
}

// Token returns the live token and whether the Session holds one.
func (s *Session) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

// InvalidateToken discards the live token. The next authenticated request mints a new one.
func (s *Session) InvalidateToken() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

// TokenClaims is the informational content of a bearer token.
type TokenClaims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Raw       jwt.MapClaims
}

// TokenClaims decodes the live token without verifying its signature. The Session never
// acts on the expiry it reports.
func (s *Session) TokenClaims() (*TokenClaims, error) {
	token, ok := s.Token()
	if !ok {
		return nil, ErrNoToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, ErrMalformedResponse.MsgErr("token is not a valid JWT", err)
	}

	tc := &TokenClaims{Raw: claims}
	tc.Subject, _ = claims.GetSubject()
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		tc.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		tc.ExpiresAt = exp.Time
	}
	return tc, nil
}

package apitest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/sjson"

	"github.com/fortishield/fortishield-qa-framework/internal/common/httpx"
)

const (
	AuthenticateEndpoint = "/security/user/authenticate"

	tokenIssuer   = "fortishield"
	tokenAudience = "Fortishield API REST"
)

type userContextKey struct{}

func (s *Server) authenticate(r *http.Request) (*httpx.Response, error) {
	user, password, ok := r.BasicAuth()
	if !ok {
		return nil, httpx.ErrUnAuthorized("missing basic credentials")
	}

	s.mu.Lock()
	valid := user == s.user && password == s.password
	expiration := s.expiration
	generation := s.generation
	s.mu.Unlock()

	if !valid {
		log.Ctx(r.Context()).Debug().Str("user", user).Msg("invalid credentials")
		return nil, httpx.ErrUnAuthorized("invalid credentials")
	}

	token, err := s.mintToken(user, expiration, generation)
	if err != nil {
		return nil, httpx.ErrApplicationError("unable to mint token")
	}

	if r.URL.Query().Get("raw") == "true" {
		return &httpx.Response{
			StatusCode:  http.StatusOK,
			Response:    token,
			ContentType: httpx.ContentTypeText,
		}, nil
	}

	body, _ := sjson.Set(`{"error":0}`, "data.token", token)
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   body,
	}, nil
}

func (s *Server) mintToken(user string, expiration, generation int) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":        tokenIssuer,
		"aud":        tokenAudience,
		"sub":        user,
		"nbf":        jwt.NewNumericDate(now.Add(-time.Minute)),
		"iat":        jwt.NewNumericDate(now),
		"exp":        jwt.NewNumericDate(now.Add(time.Duration(expiration) * time.Second)),
		"run_as":     false,
		"rbac_roles": []int{1},
		"gen":        generation,
	}
	return jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(s.privateKey)
}

// requireToken rejects requests without a bearer token minted by this server since the
// last security configuration change.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(authz, "Bearer ")
		if !ok || tokenString == "" {
			httpx.ErrUnAuthorized("no bearer token").Send(w)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			return s.publicKey, nil
		},
			jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
			jwt.WithIssuer(tokenIssuer),
			jwt.WithAudience(tokenAudience),
		)
		if err != nil {
			log.Ctx(r.Context()).Debug().Err(err).Msg("invalid token")
			httpx.ErrUnAuthorized("invalid token").Send(w)
			return
		}

		claims, _ := token.Claims.(jwt.MapClaims)
		gen, _ := claims["gen"].(float64)
		s.mu.Lock()
		current := s.generation
		s.mu.Unlock()
		if int(gen) != current {
			httpx.ErrUnAuthorized("token revoked").Send(w)
			return
		}

		sub, _ := claims.GetSubject()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey{}, sub)))
	})
}

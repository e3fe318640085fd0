package apitest

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/fortishield/fortishield-qa-framework/internal/common/httpx"
	"github.com/fortishield/fortishield-qa-framework/internal/common/logtrace"
)

// RecordedRequest is one request received by the mock.
type RecordedRequest struct {
	Method    string
	Path      string
	RawQuery  string
	Header    http.Header
	Body      []byte
	RequestID string
	Time      time.Time
}

// Requests returns the journal of received requests, oldest first.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// ResetRequests empties the journal.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	s.requests = nil
	s.mu.Unlock()
}

// SetStatus makes every request for method and path fail with status and a problem body.
// A zero status removes the failure.
func (s *Server) SetStatus(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	if status == 0 {
		delete(s.inject, key)
		return
	}
	s.inject[key] = status
}

// FailAuthentication makes the authentication endpoint answer with status. A zero status
// restores normal authentication.
func (s *Server) FailAuthentication(status int) {
	s.SetStatus(http.MethodGet, AuthenticateEndpoint, status)
	s.SetStatus(http.MethodPost, AuthenticateEndpoint, status)
}

// ClearFailures removes every injected failure.
func (s *Server) ClearFailures() {
	s.mu.Lock()
	s.inject = make(map[string]int)
	s.mu.Unlock()
}

// SetLatency delays every response by d.
func (s *Server) SetLatency(d time.Duration) {
	s.mu.Lock()
	s.latency = d
	s.mu.Unlock()
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:    r.Method,
			Path:      r.URL.Path,
			RawQuery:  r.URL.RawQuery,
			Header:    r.Header.Clone(),
			Body:      body,
			RequestID: logtrace.RequestIdFromContext(r.Context()),
			Time:      time.Now(),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) delay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		d := s.latency
		s.mu.Unlock()
		if d > 0 {
			select {
			case <-time.After(d):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status, ok := s.inject[r.Method+" "+r.URL.Path]
		s.mu.Unlock()
		if ok {
			httpx.ErrStatus(status, "injected failure").Send(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

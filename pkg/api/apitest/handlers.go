package apitest

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/sjson"

	"github.com/fortishield/fortishield-qa-framework/internal/common/httpx"
)

// Error codes reported in failed_items.
const (
	codeAgentNotFound  = 1701
	codeManagerAction  = 1703
	codeAgentNotActive = 1707
)

type failedItem struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	ID []string `json:"id"`
}

func newFailedItem(id string, code int, message string) failedItem {
	f := failedItem{ID: []string{id}}
	f.Error.Code = code
	f.Error.Message = message
	return f
}

// envelope renders the service's list result format.
func envelope(items any, failed []failedItem, total int, message string) (string, error) {
	if failed == nil {
		failed = []failedItem{}
	}
	body := `{}`
	var err error
	set := func(path string, v any) {
		if err == nil {
			body, err = sjson.Set(body, path, v)
		}
	}
	set("data.affected_items", items)
	set("data.total_affected_items", total)
	set("data.total_failed_items", len(failed))
	set("data.failed_items", failed)
	set("message", message)
	if len(failed) > 0 {
		set("error", 1)
	} else {
		set("error", 0)
	}
	return body, err
}

func (s *Server) getInfo(r *http.Request) (*httpx.Response, error) {
	s.mu.Lock()
	version := s.apiVersion
	s.mu.Unlock()

	body := `{"error":0}`
	for _, kv := range []struct {
		path  string
		value string
	}{
		{"data.title", "Fortishield API REST"},
		{"data.api_version", version},
		{"data.revision", "40800"},
		{"data.license_name", "GPL 2.0"},
		{"data.license_url", "https://github.com/fortishield/fortishield/blob/master/LICENSE"},
		{"data.hostname", "fortishield-manager"},
		{"data.timestamp", time.Now().UTC().Format(time.RFC3339)},
	} {
		var err error
		if body, err = sjson.Set(body, kv.path, kv.value); err != nil {
			return nil, httpx.ErrApplicationError(err.Error())
		}
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: body}, nil
}

type agentItem struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IP      string `json:"ip"`
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) listAgents(r *http.Request) (*httpx.Response, error) {
	var ids []string
	var wanted map[string]bool
	if list := r.URL.Query().Get("agents_list"); list != "" {
		wanted = make(map[string]bool)
		for _, id := range strings.Split(list, ",") {
			id = strings.TrimSpace(id)
			if !wanted[id] {
				ids = append(ids, id)
			}
			wanted[id] = true
		}
	}
	status := r.URL.Query().Get("status")

	s.mu.Lock()
	items := []agentItem{}
	for _, a := range s.agents {
		if wanted != nil && !wanted[a.ID] {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		items = append(items, agentItem(a))
	}
	s.mu.Unlock()

	var failed []failedItem
	for _, id := range ids {
		if !s.hasAgent(id) {
			failed = append(failed, newFailedItem(id, codeAgentNotFound, "Agent does not exist"))
		}
	}

	body, err := envelope(items, failed, len(items), "All selected agents information was returned")
	if err != nil {
		return nil, httpx.ErrApplicationError(err.Error())
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: body}, nil
}

func (s *Server) hasAgent(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.agents {
		if a.ID == id {
			return true
		}
	}
	return false
}

func (s *Server) restartAgent(r *http.Request) (*httpx.Response, error) {
	id := chi.URLParam(r, "agent_id")

	s.mu.Lock()
	var agent *Agent
	for i := range s.agents {
		if s.agents[i].ID == id {
			agent = &s.agents[i]
			break
		}
	}
	var failed []failedItem
	affected := []string{}
	switch {
	case agent == nil:
		failed = append(failed, newFailedItem(id, codeAgentNotFound, "Agent does not exist"))
	case agent.ID == "000":
		failed = append(failed, newFailedItem(id, codeManagerAction, "Action not available for Manager (agent 000)"))
	case agent.Status != "active":
		failed = append(failed, newFailedItem(id, codeAgentNotActive, "Agent is not active"))
	default:
		s.restarts[id]++
		affected = append(affected, id)
	}
	s.mu.Unlock()

	message := "Restart command was sent to all agents"
	if len(failed) > 0 {
		message = "Restart command was not sent to any agent"
	}
	log.Ctx(r.Context()).Debug().Str("agent_id", id).Int("failed", len(failed)).Msg("restart requested")

	body, err := envelope(affected, failed, len(affected), message)
	if err != nil {
		return nil, httpx.ErrApplicationError(err.Error())
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: body}, nil
}

func (s *Server) getSecurityConfig(r *http.Request) (*httpx.Response, error) {
	s.mu.Lock()
	expiration := s.expiration
	s.mu.Unlock()

	body, _ := sjson.Set(`{"error":0}`, "data.auth_token_exp_timeout", expiration)
	body, _ = sjson.Set(body, "data.rbac_mode", "white")
	return &httpx.Response{StatusCode: http.StatusOK, Response: body}, nil
}

type securityConfig struct {
	AuthTokenExpTimeout *int    `json:"auth_token_exp_timeout"`
	RBACMode            *string `json:"rbac_mode"`
}

// putSecurityConfig applies a new configuration. Every change revokes the tokens issued
// so far.
func (s *Server) putSecurityConfig(r *http.Request) (*httpx.Response, error) {
	var req securityConfig
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	if req.AuthTokenExpTimeout == nil && req.RBACMode == nil {
		return nil, httpx.ErrInvalidRequest("no security configuration given")
	}
	if req.AuthTokenExpTimeout != nil && *req.AuthTokenExpTimeout <= 0 {
		return nil, httpx.ErrInvalidRequest("auth_token_exp_timeout must be a positive integer")
	}
	if req.RBACMode != nil && *req.RBACMode != "white" && *req.RBACMode != "black" {
		return nil, httpx.ErrInvalidRequest("rbac_mode must be white or black")
	}

	s.mu.Lock()
	if req.AuthTokenExpTimeout != nil {
		s.expiration = *req.AuthTokenExpTimeout
	}
	s.generation++
	s.mu.Unlock()

	user, _ := r.Context().Value(userContextKey{}).(string)
	log.Ctx(r.Context()).Debug().Str("user", user).Msg("security configuration updated")

	body, err := envelope([]string{"Security configuration was successfully updated"}, nil, 1,
		"Security configuration was successfully updated")
	if err != nil {
		return nil, httpx.ErrApplicationError(err.Error())
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: body}, nil
}

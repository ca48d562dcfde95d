// Package registrytest provides an in-process tool registry for tests.
package registrytest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cicidi/product-sales-prediction/internal/registry"
)

// Tool is one tool served by the fake registry. Result is written as the
// JSON body of a successful execute call; ResultStatus overrides the status.
type Tool struct {
	Summary      registry.ToolSummary
	Parameters   []registry.ToolParameter
	Result       any
	ResultStatus int
}

// ExecuteRequest is a recorded POST /api/mcp/execute body.
type ExecuteRequest struct {
	ToolName   string         `json:"toolName"`
	Parameters map[string]any `json:"parameters"`
	Raw        string         `json:"-"`
}

// Server is a fake registry backed by httptest.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	tools      []Tool
	listStatus int
	listBody   string
	detailFail map[string]int
	listCalls  int
	executions []ExecuteRequest
}

// New starts a fake registry serving tools. It is closed on test cleanup.
func New(t testing.TB, tools ...Tool) *Server {
	t.Helper()

	s := &Server{tools: tools, detailFail: map[string]int{}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/mcp/tools", s.handleList)
	mux.HandleFunc("GET /api/mcp/tools/{name}", s.handleDetail)
	mux.HandleFunc("POST /api/mcp/execute", s.handleExecute)
	mux.HandleFunc("GET /api/mcp/status", s.handleStatus)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// FailList makes GET /api/mcp/tools answer with status code.
func (s *Server) FailList(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listStatus = code
}

// SetListBody makes GET /api/mcp/tools answer 200 with a raw body.
func (s *Server) SetListBody(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listBody = body
}

// FailDetail makes the detail endpoint for name answer with status code.
func (s *Server) FailDetail(name string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detailFail[name] = code
}

// SetTools replaces the served tool set.
func (s *Server) SetTools(tools ...Tool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools = tools
}

// ListCalls returns how many times the tool list was requested.
func (s *Server) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

// Executions returns the recorded execute requests in arrival order.
func (s *Server) Executions() []ExecuteRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ExecuteRequest(nil), s.executions...)
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.listCalls++
	status, body := s.listStatus, s.listBody
	summaries := make([]registry.ToolSummary, 0, len(s.tools))
	for _, t := range s.tools {
		summaries = append(summaries, t.Summary)
	}
	s.mu.Unlock()

	if status != 0 {
		http.Error(w, "registry exploded", status)
		return
	}
	if body != "" {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": summaries})
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	s.mu.Lock()
	code := s.detailFail[name]
	var found *Tool
	for i := range s.tools {
		if s.tools[i].Summary.Name == name {
			found = &s.tools[i]
			break
		}
	}
	s.mu.Unlock()

	if code != 0 {
		http.Error(w, "detail unavailable", code)
		return
	}
	if found == nil {
		http.NotFound(w, r)
		return
	}
	params := found.Parameters
	if params == nil {
		params = []registry.ToolParameter{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data": map[string]any{
			"name": found.Summary.Name,
			"definition": map[string]any{
				"name":        found.Summary.Name,
				"displayName": found.Summary.DisplayName,
				"description": found.Summary.Description,
				"parameters":  params,
			},
		},
	})
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)

	var req ExecuteRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	req.Raw = string(raw)

	s.mu.Lock()
	s.executions = append(s.executions, req)
	var found *Tool
	for i := range s.tools {
		if s.tools[i].Summary.Name == req.ToolName {
			found = &s.tools[i]
			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"status": "error", "error": "unknown tool " + req.ToolName})
		return
	}
	status := found.ResultStatus
	if status == 0 {
		status = http.StatusOK
	}
	if text, ok := found.Result.(string); ok {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, text)
		return
	}
	writeJSON(w, status, found.Result)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	n := len(s.tools)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"status": "online", "version": "1.0.0", "toolCount": n})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

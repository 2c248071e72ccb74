package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/njchilds90/mathsolver"
	"github.com/njchilds90/mathsolver/internal/config"
	"github.com/njchilds90/mathsolver/internal/server"
	"github.com/njchilds90/mathsolver/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newServer(t *testing.T) (*server.Server, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return server.New(mathsolver.New(), config.Default().Server, zap.New(core)), logs
}

func do(t *testing.T, s *server.Server, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

// ============================================================
// POST /solve
// ============================================================

func TestSolve_OK(t *testing.T) {
	s, _ := newServer(t)
	w := do(t, s, http.MethodPost, "/solve", `{"expression": "x + 10 = 0"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got types.SolveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	want := mathsolver.Solve(mathsolver.SolveRequest{Expression: "x + 10 = 0"})
	assert.Empty(t, cmp.Diff(want, got))
	assert.Equal(t, "x = -10", got.Solution)
}

func TestSolve_FailureIsStill200(t *testing.T) {
	s, _ := newServer(t)
	for _, body := range []string{`{"expression": ""}`, `{"expression": "hello world"}`, `{"expression": "lim sin(x)"}`} {
		w := do(t, s, http.MethodPost, "/solve", body, nil)
		assert.Equal(t, http.StatusOK, w.Code, body)

		var got types.SolveResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.False(t, got.OK)
		assert.NotEmpty(t, got.ErrorKind)
	}
}

func TestSolve_BadRequest(t *testing.T) {
	s, _ := newServer(t)
	for _, body := range []string{`{`, `{}`, `{"expression": 5}`, `[]`} {
		w := do(t, s, http.MethodPost, "/solve", body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Contains(t, w.Body.String(), `"error"`)
	}
}

func TestSolve_RequestID(t *testing.T) {
	s, logs := newServer(t)
	w := do(t, s, http.MethodPost, "/solve", `{"expression": "x = 1"}`, nil)
	id := w.Header().Get("X-Request-ID")
	_, err := uuid.Parse(id)
	assert.NoError(t, err)

	entries := logs.FilterMessage("request").All()
	require.NotEmpty(t, entries)
	fields := entries[len(entries)-1].ContextMap()
	assert.Equal(t, id, fields["request_id"])
	assert.Equal(t, "/solve", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])

	w = do(t, s, http.MethodPost, "/solve", `{"expression": "x = 1"}`, map[string]string{"X-Request-ID": "abc"})
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}

// ============================================================
// Other routes
// ============================================================

func TestRoot(t *testing.T) {
	s, _ := newServer(t)
	w := do(t, s, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"running"}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	s, _ := newServer(t)
	w := do(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestMetrics(t *testing.T) {
	s, _ := newServer(t)
	do(t, s, http.MethodPost, "/solve", `{"expression": "2x + 3 = 7"}`, nil)
	w := do(t, s, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `mathsolver_solve_requests_total{ok="true",problem_type="algebra"}`)
	assert.Contains(t, w.Body.String(), "mathsolver_solve_duration_seconds")
}

func TestSchema(t *testing.T) {
	s, _ := newServer(t)
	w := do(t, s, http.MethodGet, "/schema", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var schema struct {
		Tools []struct {
			Name        string `json:"name"`
			Path        string `json:"path"`
			InputSchema struct {
				Required []string `json:"required"`
			} `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &schema))
	require.Len(t, schema.Tools, 1)
	assert.Equal(t, "solve", schema.Tools[0].Name)
	assert.Equal(t, "/solve", schema.Tools[0].Path)
	assert.Equal(t, []string{"expression"}, schema.Tools[0].InputSchema.Required)
}

// ============================================================
// CORS
// ============================================================

func TestCORS_Preflight(t *testing.T) {
	s, _ := newServer(t)
	w := do(t, s, http.MethodOptions, "/solve", "", map[string]string{
		"Origin":                         "http://localhost:5173",
		"Access-Control-Request-Method":  "POST",
		"Access-Control-Request-Headers": "content-type",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "content-type", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	s, _ := newServer(t)
	w := do(t, s, http.MethodOptions, "/solve", "", map[string]string{
		"Origin":                        "http://evil.example",
		"Access-Control-Request-Method": "POST",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_SimpleRequest(t *testing.T) {
	s, _ := newServer(t)
	w := do(t, s, http.MethodPost, "/solve", `{"expression": "x = 1"}`, map[string]string{"Origin": "http://127.0.0.1:5174"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://127.0.0.1:5174", w.Header().Get("Access-Control-Allow-Origin"))
}

// ============================================================
// Lifecycle
// ============================================================

func TestServe_GracefulShutdown(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s, _ := newServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRun_BadAddr(t *testing.T) {
	cfg := config.Default().Server
	cfg.Addr = "127.0.0.1:99999"
	err := server.New(mathsolver.New(), cfg, nil).Run(context.Background())
	assert.Error(t, err)
}

package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wcpsServer answers every query with a fixed status and body, recording
// the queries it receives.
type wcpsServer struct {
	*httptest.Server
	mu      sync.Mutex
	queries []string
}

func newWCPSServer(t *testing.T, status int, body string) *wcpsServer {
	t.Helper()
	s := &wcpsServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.queries = append(s.queries, r.FormValue("query"))
		s.mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *wcpsServer) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

// runFixture writes plans and a config pointing at endpoint with a
// history database in a temp dir.
func runFixture(t *testing.T, endpoint string) (plans, configPath, history string) {
	t.Helper()
	dir := t.TempDir()
	plans = writeFile(t, dir, "plans.cue", testPlans)
	history = filepath.Join(dir, "state", "history.db")
	configPath = writeFile(t, dir, "config.toml", fmt.Sprintf(
		"endpoint = %q\ntimeout = \"5s\"\nhistory = %q\nlog_level = \"error\"\n", endpoint, history))
	return plans, configPath, history
}

func TestRun_NumericResult(t *testing.T) {
	srv := newWCPSServer(t, http.StatusOK, "21.5 18")
	plans, cfg, history := runFixture(t, srv.URL)

	out, _, err := executeCommand(t, "--config", cfg, "run", plans, "--plan", "avg_temp")
	require.NoError(t, err)
	assert.Equal(t, "21.5\n18\n", out)
	assert.Equal(t, []string{"for $c in (AvgLandTemp)\nreturn\navg($c[ansi(\"2014-07\")])"}, srv.Queries())

	_, err = os.Stat(history)
	assert.NoError(t, err, "history database should be created")
}

func TestRun_JSON(t *testing.T) {
	srv := newWCPSServer(t, http.StatusOK, "3")
	plans, cfg, _ := runFixture(t, srv.URL)

	out, _, err := executeCommand(t, "--config", cfg, "--format", "json", "run", plans, "-p", "avg_temp")
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   RunResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "avg_temp", resp.Data.Plan)
	assert.Equal(t, []float64{3}, resp.Data.Values)
}

func TestRun_ImageRequiresOutput(t *testing.T) {
	srv := newWCPSServer(t, http.StatusOK, "PNG")
	plans, cfg, _ := runFixture(t, srv.URL)

	out, _, err := executeCommand(t, "--config", cfg, "run", plans, "--plan", "july_png")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "--output is required")
	assert.Empty(t, srv.Queries())
}

func TestRun_ImageWritesFile(t *testing.T) {
	srv := newWCPSServer(t, http.StatusOK, "\x89PNG\r\n")
	plans, cfg, _ := runFixture(t, srv.URL)
	target := filepath.Join(t.TempDir(), "july.png")

	out, _, err := executeCommand(t, "--config", cfg, "run", plans, "--plan", "july_png", "-o", target)
	require.NoError(t, err)
	assert.Equal(t, "Wrote 6 bytes to "+target+"\n", out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG\r\n", string(data))
}

func TestRun_ServerError(t *testing.T) {
	srv := newWCPSServer(t, http.StatusInternalServerError, "boom")
	plans, cfg, _ := runFixture(t, srv.URL)

	out, _, err := executeCommand(t, "--config", cfg, "run", plans, "--plan", "avg_temp")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeQueryFailed)
}

func TestRun_EndpointFlagOverridesConfig(t *testing.T) {
	srv := newWCPSServer(t, http.StatusOK, "1")
	plans, cfg, _ := runFixture(t, "http://127.0.0.1:1/unused")

	out, _, err := executeCommand(t, "--config", cfg, "run", plans, "-p", "avg_temp", "--endpoint", srv.URL, "--no-history")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
	assert.Len(t, srv.Queries(), 1)
}

func TestRun_FlagAndConfigErrors(t *testing.T) {
	plans, cfg, _ := runFixture(t, "http://127.0.0.1:1/unused")
	badCfg := writeFile(t, t.TempDir(), "config.toml", "endpoint = \"x\"\ncolour = \"red\"\n")

	tests := []struct {
		name    string
		args    []string
		wantOut string
	}{
		{"bad timeout", []string{"--config", cfg, "run", plans, "-p", "avg_temp", "--timeout", "soon"}, ErrCodeInvalidFlag},
		{"unknown config key", []string{"--config", badCfg, "run", plans, "-p", "avg_temp"}, ErrCodeConfig},
		{"missing config", []string{"--config", filepath.Join(t.TempDir(), "none.toml"), "run", plans}, ErrCodeConfig},
		{"bad endpoint", []string{"--config", cfg, "run", plans, "-p", "avg_temp", "--endpoint", "ftp://x"}, ErrCodeConfig},
		{"ambiguous plan", []string{"--config", cfg, "run", plans}, ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := executeCommand(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, tt.wantOut)
		})
	}
}

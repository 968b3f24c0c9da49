package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"self-healing-kernel/internal/analysis"
	"self-healing-kernel/internal/clock"
	"self-healing-kernel/internal/health"
	"self-healing-kernel/internal/logs"
	"self-healing-kernel/internal/metrics"
	"self-healing-kernel/internal/subsystem"
)

type testEnv struct {
	server    *httptest.Server
	registry  *subsystem.Registry
	manualLog *logs.FileLog
}

func setUpTestServer(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	clk := clock.NewManual(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	reg := metrics.NewRegistry()
	registry := subsystem.NewRegistry(subsystem.DefaultNames())

	manualLog := logs.NewFileLog(filepath.Join(dir, "manual.txt"), 0, 50, clk, reg, nil)
	autoLog := logs.NewFileLog(filepath.Join(dir, "auto.txt"), 0, 50, clk, reg, nil)

	machine := health.NewMachine(registry, manualLog, clk, reg)
	h := NewHandler(machine, reg, map[string]analysis.Tail{
		"manual": manualLog,
		"auto":   autoLog,
	})

	server := httptest.NewServer(NewRouter(h, nil))
	t.Cleanup(server.Close)

	return &testEnv{server: server, registry: registry, manualLog: manualLog}
}

func (e *testEnv) do(t *testing.T, method, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.server.URL+path, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

/* ---------------- GET /subsystems ---------------- */

func TestListSubsystems(t *testing.T) {
	env := setUpTestServer(t)

	for _, path := range []string{"/subsystems", "/subsystems/"} {
		resp := env.do(t, http.MethodGet, path)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)

		subs := decode[[]subsystem.Subsystem](t, resp)
		require.Len(t, subs, 5)
		assert.Equal(t, "CPU", subs[0].Name)
		assert.Equal(t, subsystem.Healthy, subs[0].Status)
		assert.Equal(t, 100, subs[0].Health)
	}
}

/* ---------------- GET /subsystems/{id} ---------------- */

func TestGetSubsystem(t *testing.T) {
	env := setUpTestServer(t)

	t.Run("Found", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/subsystems/3")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		s := decode[subsystem.Subsystem](t, resp)
		assert.Equal(t, 3, s.ID)
		assert.Equal(t, "I/O", s.Name)
	})

	t.Run("OutOfRange", func(t *testing.T) {
		for _, id := range []string{"0", "6", "-1"} {
			resp := env.do(t, http.MethodGet, "/subsystems/"+id)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode, id)
		}
	})

	t.Run("NotANumber", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/subsystems/cpu")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

/* ---------------- POST /subsystems/{id}/{op} ---------------- */

func TestOperations(t *testing.T) {
	env := setUpTestServer(t)

	type response struct {
		Outcome   string               `json:"outcome"`
		Subsystem *subsystem.Subsystem `json:"subsystem"`
	}

	t.Run("CrashHealRestart", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/subsystems/2/crash")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		got := decode[response](t, resp)
		assert.Equal(t, "applied", got.Outcome)
		require.NotNil(t, got.Subsystem)
		assert.Equal(t, subsystem.Failed, got.Subsystem.Status)

		got = decode[response](t, env.do(t, http.MethodPost, "/subsystems/2/crash"))
		assert.Equal(t, "noop", got.Outcome)

		got = decode[response](t, env.do(t, http.MethodPost, "/subsystems/2/heal"))
		assert.Equal(t, "applied", got.Outcome)
		assert.Equal(t, subsystem.Healthy, got.Subsystem.Status)
		assert.Equal(t, 100, got.Subsystem.Health)

		got = decode[response](t, env.do(t, http.MethodPost, "/subsystems/2/restart"))
		assert.Equal(t, "applied", got.Outcome)
		assert.Equal(t, 1, got.Subsystem.RestartCount)
	})

	t.Run("IgnoredIsNotAnError", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/subsystems/42/crash")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		got := decode[response](t, resp)
		assert.Equal(t, "ignored", got.Outcome)
		assert.Nil(t, got.Subsystem)
	})

	t.Run("UnknownOperation", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/subsystems/1/explode")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("WrongMethod", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/subsystems/1/crash")
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("AuditedToManualLog", func(t *testing.T) {
		var msgs []string
		for _, e := range env.manualLog.GetLast(10) {
			msgs = append(msgs, e.Message)
		}
		assert.Equal(t, []string{
			"Subsystem Memory crashed.",
			"Healing subsystem Memory...",
			"Subsystem Memory healed successfully.",
			"Restarting subsystem Memory...",
			"Subsystem Memory restarted successfully.",
		}, msgs)
	})
}

/* ---------------- GET /health ---------------- */

func TestGetHealth(t *testing.T) {
	env := setUpTestServer(t)

	report := decode[analysis.HealthReport](t, env.do(t, http.MethodGet, "/health"))
	assert.Equal(t, analysis.StatusOK, report.OverallStatus)

	env.do(t, http.MethodPost, "/subsystems/1/crash")

	report = decode[analysis.HealthReport](t, env.do(t, http.MethodGet, "/health"))
	assert.Equal(t, analysis.StatusDegraded, report.OverallStatus)
}

/* ---------------- GET /metrics ---------------- */

func TestGetMetrics(t *testing.T) {
	env := setUpTestServer(t)

	env.do(t, http.MethodPost, "/subsystems/4/crash")

	resp := env.do(t, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "kernel_subsystem_crashes_total 1")
	assert.Contains(t, string(body), "kernel_subsystems_failed 1")
	assert.True(t, strings.Contains(string(body), "go_goroutines"))
}

/* ---------------- GET /logs/{mode} ---------------- */

func TestGetLogs(t *testing.T) {
	env := setUpTestServer(t)

	env.do(t, http.MethodPost, "/subsystems/1/crash")
	env.do(t, http.MethodPost, "/subsystems/1/heal")

	t.Run("LastN", func(t *testing.T) {
		entries := decode[[]logs.Entry](t, env.do(t, http.MethodGet, "/logs/manual?n=2"))
		require.Len(t, entries, 2)
		assert.Equal(t, logs.INFO, entries[0].Level)
		assert.Equal(t, "Subsystem CPU healed successfully.", entries[1].Message)
		assert.Equal(t, logs.SUCCESS, entries[1].Level)
	})

	t.Run("DefaultN", func(t *testing.T) {
		entries := decode[[]logs.Entry](t, env.do(t, http.MethodGet, "/logs/manual"))
		assert.Len(t, entries, 3)
	})

	t.Run("EmptyDestination", func(t *testing.T) {
		entries := decode[[]logs.Entry](t, env.do(t, http.MethodGet, "/logs/auto"))
		assert.Empty(t, entries)
	})

	t.Run("UnknownMode", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/logs/kernel")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("BadN", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/logs/manual?n=-3")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"self-healing-kernel/internal/analysis"
	"self-healing-kernel/internal/health"
	"self-healing-kernel/internal/metrics"
	"self-healing-kernel/internal/subsystem"
)

// DefaultLogLines is how many audit records GET /logs/{mode} returns when n
// is not given.
const DefaultLogLines = 20

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	registry       *subsystem.Registry
	machine        *health.Machine
	analyzer       *analysis.HealthAnalyzer
	tails          map[string]analysis.Tail
	metricsHandler http.Handler
}

// NewHandler creates a new API handler. Operations run through machine and
// are audited to its sink. tails maps a mode name ("manual", "auto") to the
// audit tail served under /logs/{mode}.
func NewHandler(
	machine *health.Machine,
	reg *metrics.Registry,
	tails map[string]analysis.Tail,
) *Handler {
	if reg == nil {
		reg = metrics.NewRegistry()
	}

	all := make([]analysis.Tail, 0, len(tails))
	for _, t := range tails {
		all = append(all, t)
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(reg, collectors.NewGoCollector())

	return &Handler{
		registry:       machine.Registry(),
		machine:        machine,
		analyzer:       analysis.NewHealthAnalyzer(machine.Registry(), reg, all...),
		tails:          tails,
		metricsHandler: promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}),
	}
}

/* ---------------- GET /subsystems ---------------- */

func (h *Handler) ListSubsystems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Snapshot())
}

/* ---------------- GET /subsystems/{id} ---------------- */

func (h *Handler) GetSubsystem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	s, found := h.registry.Get(id)
	if !found {
		http.Error(w, "subsystem not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

/* ---------------- POST /subsystems/{id}/{op} ---------------- */

type operationResponse struct {
	Outcome   health.Outcome       `json:"outcome"`
	Subsystem *subsystem.Subsystem `json:"subsystem,omitempty"`
}

// Operation runs op against the subsystem in the path. An id that names no
// subsystem is not an HTTP error: the response reports outcome "ignored".
func (h *Handler) Operation(op health.Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}

		res := h.machine.Do(op, id)

		resp := operationResponse{Outcome: res.Outcome}
		if res.Outcome != health.Ignored {
			resp.Subsystem = &res.Subsystem
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

/* ---------------- GET /health ---------------- */

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.analyzer.Analyze())
}

/* ---------------- GET /logs/{mode} ---------------- */

func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	tail, ok := h.tails[chi.URLParam(r, "mode")]
	if !ok {
		http.Error(w, "unknown log mode", http.StatusNotFound)
		return
	}

	n := DefaultLogLines
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			http.Error(w, "n must be a non-negative integer", http.StatusBadRequest)
			return
		}
		n = v
	}

	writeJSON(w, http.StatusOK, tail.GetLast(n))
}

func parseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid subsystem id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

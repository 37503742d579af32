package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/faceoff/internal/features"
	"github.com/fortuna/faceoff/internal/scheduler"
	"github.com/fortuna/faceoff/internal/stats"
)

const dateLayout = "2006-01-02"

// maxPredictDays bounds one prediction request.
const maxPredictDays = 31

// Handler contains dependencies for HTTP handlers
type Handler struct {
	deps Dependencies
	log  *logrus.Entry
}

// NewHandler creates a new handler
func NewHandler(deps Dependencies, log *logrus.Entry) *Handler {
	return &Handler{deps: deps, log: log}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "healthy",
		"service": "faceoff",
	}
	if h.deps.Ledger != nil {
		if _, err := h.deps.Ledger.Report(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, "Ledger unavailable", err)
			return
		}
		status["ledger_mode"] = h.deps.Ledger.Mode()
	}

	checks := make(map[string]string, len(h.deps.Checks))
	code := http.StatusOK
	for name, check := range h.deps.Checks {
		if err := check(r.Context()); err != nil {
			h.log.WithError(err).WithField("check", name).Warn("Health check failed")
			checks[name] = err.Error()
			code = http.StatusServiceUnavailable
			status["status"] = "unhealthy"
			continue
		}
		checks[name] = "ok"
	}
	if len(checks) > 0 {
		status["checks"] = checks
	}
	respondJSON(w, code, status)
}

// GetLedgerReport returns per-table row counts and watermarks.
func (h *Handler) GetLedgerReport(w http.ResponseWriter, r *http.Request) {
	if h.deps.Ledger == nil {
		respondError(w, http.StatusServiceUnavailable, "Ledger not configured", nil)
		return
	}
	rep, err := h.deps.Ledger.Report(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to read ledger", err)
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

type predictionResponse struct {
	Scope   stats.Scope    `json:"scope"`
	From    string         `json:"from"`
	To      string         `json:"to"`
	Headers []string       `json:"headers"`
	Rows    []features.Row `json:"rows"`
}

// GetPrediction handles GET /api/v1/predict?date=YYYY-MM-DD or
// ?start=...&end=..., with an optional scope of career (default), season
// or game.
func (h *Handler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	if h.deps.Predictor == nil {
		respondError(w, http.StatusServiceUnavailable, "Prediction not configured", nil)
		return
	}

	q := r.URL.Query()
	from, to, err := parseRange(q.Get("date"), q.Get("start"), q.Get("end"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	scope := stats.Scope(q.Get("scope"))
	switch scope {
	case "":
		scope = stats.ScopeCareer
	case stats.ScopeCareer, stats.ScopeSeason, stats.ScopeGame:
	default:
		respondError(w, http.StatusBadRequest, "Invalid scope (career, season or game)", nil)
		return
	}

	rows, err := h.deps.Predictor.Predict(r.Context(), from, to, scope)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to build prediction rows", err)
		return
	}
	if rows == nil {
		rows = []features.Row{}
	}

	respondJSON(w, http.StatusOK, predictionResponse{
		Scope:   scope,
		From:    from.Format(dateLayout),
		To:      to.Format(dateLayout),
		Headers: h.deps.Predictor.Headers(),
		Rows:    rows,
	})
}

func parseRange(date, start, end string) (time.Time, time.Time, error) {
	if date != "" {
		d, err := time.Parse(dateLayout, date)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return d, d, nil
	}
	if start == "" || end == "" {
		return time.Time{}, time.Time{}, errors.New("provide date, or start and end (YYYY-MM-DD)")
	}
	from, err := time.Parse(dateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := time.Parse(dateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("end is before start")
	}
	if to.Sub(from) > maxPredictDays*24*time.Hour {
		return time.Time{}, time.Time{}, errors.New("range is longer than 31 days")
	}
	return from, to, nil
}

// TriggerRun handles POST /api/v1/runs
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	if h.deps.Runs == nil {
		respondError(w, http.StatusServiceUnavailable, "Runs not configured", nil)
		return
	}
	if err := h.deps.Runs.TriggerAsync(h.deps.RunContext); err != nil {
		if errors.Is(err, scheduler.ErrBusy) {
			respondError(w, http.StatusConflict, "A run is already in progress", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to start run", err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"message": "Run started",
		"status":  h.deps.Runs.Status(),
	})
}

// GetRunStatus handles GET /api/v1/runs
func (h *Handler) GetRunStatus(w http.ResponseWriter, r *http.Request) {
	if h.deps.Runs == nil {
		respondError(w, http.StatusServiceUnavailable, "Runs not configured", nil)
		return
	}
	respondJSON(w, http.StatusOK, h.deps.Runs.Status())
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}

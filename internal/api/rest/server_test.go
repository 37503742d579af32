package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/faceoff/internal/features"
	"github.com/fortuna/faceoff/internal/ledger"
	"github.com/fortuna/faceoff/internal/scheduler"
	"github.com/fortuna/faceoff/internal/stats"
	"github.com/fortuna/faceoff/internal/store"
	"github.com/fortuna/faceoff/pkg/logger"
)

type fakePredictor struct {
	from, to time.Time
	scope    stats.Scope
	rows     []features.Row
	err      error
}

func (p *fakePredictor) Predict(_ context.Context, from, to time.Time, scope stats.Scope) ([]features.Row, error) {
	p.from, p.to, p.scope = from, to, scope
	return p.rows, p.err
}

func (p *fakePredictor) Headers() []string { return []string{"periods", "label"} }

type fakeRuns struct {
	err    error
	status scheduler.Status
	calls  int
}

func (r *fakeRuns) TriggerAsync(context.Context) error {
	r.calls++
	return r.err
}

func (r *fakeRuns) Status() scheduler.Status { return r.status }

func serve(t *testing.T, deps Dependencies, method, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	srv := NewServer(":0", deps)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func TestHealthReportsLedgerMode(t *testing.T) {
	rec, body := serve(t, Dependencies{Ledger: ledger.NewMemory(ledger.ModeReadOnly)}, "GET", "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "read-only", body["ledger_mode"])
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthRunsConnectionChecks(t *testing.T) {
	checks := map[string]func(context.Context) error{
		"ledger": func(context.Context) error { return nil },
	}
	rec, body := serve(t, Dependencies{Checks: checks}, "GET", "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{"ledger": "ok"}, body["checks"])

	checks["redis"] = func(context.Context) error { return errors.New("connection refused") }
	rec, body = serve(t, Dependencies{Checks: checks}, "GET", "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, map[string]interface{}{"ledger": "ok", "redis": "connection refused"}, body["checks"])
}

func TestLedgerReport(t *testing.T) {
	l := ledger.NewMemory(ledger.ModeIncremental)
	ok, err := l.RecordGame(context.Background(), store.Game{GameID: 2024020001, Season: 20242025}, nil, nil)
	require.NoError(t, err)
	require.True(t, ok)

	rec, body := serve(t, Dependencies{Ledger: l}, "GET", "/api/v1/ledger")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "incremental", body["mode"])

	tables, ok := body["tables"].([]interface{})
	require.True(t, ok)
	found := false
	for _, raw := range tables {
		tbl := raw.(map[string]interface{})
		if tbl["table"] == store.TableGames {
			found = true
			assert.EqualValues(t, 1, tbl["rows"])
		}
	}
	assert.True(t, found)
}

func TestLedgerReportWithoutLedger(t *testing.T) {
	rec, body := serve(t, Dependencies{}, "GET", "/api/v1/ledger")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Ledger not configured", body["error"])
}

func TestPredictSingleDateDefaultsToCareer(t *testing.T) {
	p := &fakePredictor{rows: []features.Row{{GameID: 7, Season: 20252026, Values: []float64{3, 1}}}}
	rec, body := serve(t, Dependencies{Predictor: p}, "GET", "/api/v1/predict?date=2025-10-09")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, stats.ScopeCareer, p.scope)
	assert.True(t, p.from.Equal(p.to))
	assert.Equal(t, "2025-10-09", body["from"])
	assert.Len(t, body["rows"], 1)
	assert.Equal(t, []interface{}{"periods", "label"}, body["headers"])
}

func TestPredictRangeAndScope(t *testing.T) {
	p := &fakePredictor{}
	rec, body := serve(t, Dependencies{Predictor: p}, "GET", "/api/v1/predict?start=2025-10-01&end=2025-10-03&scope=season")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, stats.ScopeSeason, p.scope)
	assert.Equal(t, "2025-10-03", body["to"])
	assert.Equal(t, []interface{}{}, body["rows"])
}

func TestPredictRejectsBadInput(t *testing.T) {
	p := &fakePredictor{}
	for _, target := range []string{
		"/api/v1/predict",
		"/api/v1/predict?date=10/09/2025",
		"/api/v1/predict?start=2025-10-05&end=2025-10-01",
		"/api/v1/predict?start=2025-01-01&end=2025-03-01",
		"/api/v1/predict?date=2025-10-09&scope=weekly",
	} {
		rec, _ := serve(t, Dependencies{Predictor: p}, "GET", target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestPredictUpstreamFailure(t *testing.T) {
	p := &fakePredictor{err: errors.New("schedule unavailable")}
	rec, body := serve(t, Dependencies{Predictor: p}, "GET", "/api/v1/predict?date=2025-10-09")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "schedule unavailable", body["details"])
}

func TestTriggerRun(t *testing.T) {
	runs := &fakeRuns{status: scheduler.Status{Running: true, Schedule: "0 6 * * *"}}
	rec, body := serve(t, Dependencies{Runs: runs}, "POST", "/api/v1/runs")

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "Run started", body["message"])
	assert.Equal(t, 1, runs.calls)
}

func TestTriggerRunWhileBusy(t *testing.T) {
	runs := &fakeRuns{err: scheduler.ErrBusy}
	rec, _ := serve(t, Dependencies{Runs: runs}, "POST", "/api/v1/runs")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRunStatus(t *testing.T) {
	runs := &fakeRuns{status: scheduler.Status{Schedule: "0 6 * * *", LastError: "ledger is read-only"}}
	rec, body := serve(t, Dependencies{Runs: runs}, "GET", "/api/v1/runs")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["running"])
	assert.Equal(t, "ledger is read-only", body["last_error"])
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(logger.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() { h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil)) })
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

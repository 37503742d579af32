package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/faceoff/internal/features"
	"github.com/fortuna/faceoff/internal/ledger"
	"github.com/fortuna/faceoff/internal/scheduler"
	"github.com/fortuna/faceoff/internal/stats"
	"github.com/fortuna/faceoff/pkg/logger"
)

// Predictor builds ad hoc feature rows.
type Predictor interface {
	Predict(ctx context.Context, from, to time.Time, scope stats.Scope) ([]features.Row, error)
	Headers() []string
}

// RunController starts ingestion runs on demand.
type RunController interface {
	TriggerAsync(ctx context.Context) error
	Status() scheduler.Status
}

// Dependencies are the services the API exposes.
type Dependencies struct {
	Ledger    ledger.Ledger
	Predictor Predictor
	Runs      RunController
	Metrics   http.Handler
	// Checks are connection checks reported by /health, keyed by name.
	Checks map[string]func(context.Context) error
	Log    *logrus.Entry
	// RunContext bounds runs started through the API. It outlives the
	// request that started them.
	RunContext context.Context
}

// Server represents the REST API server
type Server struct {
	addr   string
	server *http.Server
	router *mux.Router
}

// NewServer creates a new REST API server
func NewServer(addr string, deps Dependencies) *Server {
	if deps.Log == nil {
		deps.Log = logger.Discard()
	}
	if deps.RunContext == nil {
		deps.RunContext = context.Background()
	}
	log := deps.Log.WithField("component", "rest")
	handler := NewHandler(deps, log)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware(log))
	router.Use(LoggingMiddleware(log))
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	if deps.Metrics != nil {
		router.Handle("/metrics", deps.Metrics).Methods("GET")
	}

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/ledger", handler.GetLedgerReport).Methods("GET")
	api.HandleFunc("/predict", handler.GetPrediction).Methods("GET")
	api.HandleFunc("/runs", handler.TriggerRun).Methods("POST")
	api.HandleFunc("/runs", handler.GetRunStatus).Methods("GET")

	return &Server{
		addr:   addr,
		router: router,
		server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

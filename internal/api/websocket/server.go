// Package websocket streams ingestion progress to browser clients.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/faceoff/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server represents the WebSocket server
type Server struct {
	server *http.Server
	hub    *Hub
	log    *logrus.Entry
	mux    *http.ServeMux
}

// NewServer creates a new WebSocket server and starts its hub.
func NewServer(log *logrus.Entry) *Server {
	if log == nil {
		log = logger.Discard()
	}
	log = log.WithField("component", "websocket")

	s := &Server{hub: NewHub(log), log: log, mux: http.NewServeMux()}
	go s.hub.Run()

	s.mux.HandleFunc("/ws/progress", s.handleProgress)
	s.mux.HandleFunc("/ws/health", s.handleHealth)
	return s
}

// Hub returns the broadcast hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Reporter returns an ingest reporter that publishes to connected clients.
func (s *Server) Reporter() *ProgressReporter {
	return NewProgressReporter(s.hub)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the WebSocket server
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.WithField("addr", addr).Info("WebSocket server listening")
	return s.server.ListenAndServe()
}

// handleProgress upgrades a connection and subscribes it to progress events.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("Failed to upgrade connection")
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	select {
	case client.hub.register <- client:
	case <-client.hub.done:
		conn.Close()
		return
	}

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// handleHealth returns WebSocket server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "healthy",
		"clients": s.hub.ClientCount(),
	})
}

// Shutdown stops the hub and the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Stop()
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

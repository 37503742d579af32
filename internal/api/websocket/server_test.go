package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/faceoff/internal/ingest"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/progress"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var e Event
	require.NoError(t, json.Unmarshal(data, &e))
	return e
}

func TestProgressEventsReachClients(t *testing.T) {
	s := NewServer(nil)
	defer s.Shutdown(context.Background())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.Hub().ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	r := s.Reporter()
	r.OnRunStart("run-1", []int{20242025})
	r.OnTeamStart(20242025, "BOS", 2, 32)
	r.OnGameProcessed(20242025, 2024020001)
	r.OnRunComplete(ingest.Summary{RunID: "run-1", GamesLedgered: 1})
	r.OnRunError(errors.New("ledger is read-only"))

	e := readEvent(t, conn)
	assert.Equal(t, EventRunStart, e.Type)
	assert.Equal(t, "run-1", e.RunID)
	assert.Equal(t, []int{20242025}, e.Seasons)

	e = readEvent(t, conn)
	assert.Equal(t, EventTeamStart, e.Type)
	assert.Equal(t, "BOS", e.Team)
	assert.Equal(t, 2, e.Current)
	assert.Equal(t, 32, e.Total)

	e = readEvent(t, conn)
	assert.Equal(t, EventGame, e.Type)
	assert.Equal(t, 2024020001, e.GameID)

	e = readEvent(t, conn)
	assert.Equal(t, EventRunComplete, e.Type)
	require.NotNil(t, e.Summary)
	assert.Equal(t, 1, e.Summary.GamesLedgered)

	e = readEvent(t, conn)
	assert.Equal(t, EventRunError, e.Type)
	assert.Equal(t, "ledger is read-only", e.Error)
}

func TestClientDisconnectUnregisters(t *testing.T) {
	s := NewServer(nil)
	defer s.Shutdown(context.Background())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return s.Hub().ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return s.Hub().ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHealthReportsClientCount(t *testing.T) {
	s := NewServer(nil)
	defer s.Shutdown(context.Background())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/health", nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.EqualValues(t, 0, body["clients"])
}

func TestBroadcastAfterStopDoesNotBlock(t *testing.T) {
	s := NewServer(nil)
	require.NoError(t, s.Shutdown(context.Background()))

	done := make(chan struct{})
	go func() {
		s.Reporter().OnProgress("late", 1, 1)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked after shutdown")
	}
}

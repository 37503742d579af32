package websocket

import (
	"encoding/json"
	"time"

	"github.com/fortuna/faceoff/internal/ingest"
)

// Event types sent on /ws/progress.
const (
	EventRunStart    = "run_start"
	EventSeasonStart = "season_start"
	EventTeamStart   = "team_start"
	EventGame        = "game_processed"
	EventProgress    = "progress"
	EventRunComplete = "run_complete"
	EventRunError    = "run_error"
)

// Event is one progress message.
type Event struct {
	Type    string          `json:"type"`
	RunID   string          `json:"run_id,omitempty"`
	Seasons []int           `json:"seasons,omitempty"`
	Season  int             `json:"season,omitempty"`
	Team    string          `json:"team,omitempty"`
	GameID  int             `json:"game_id,omitempty"`
	Message string          `json:"message,omitempty"`
	Current int             `json:"current,omitempty"`
	Total   int             `json:"total,omitempty"`
	Summary *ingest.Summary `json:"summary,omitempty"`
	Error   string          `json:"error,omitempty"`
	Time    time.Time       `json:"time"`
}

// ProgressReporter streams orchestrator progress to websocket clients.
type ProgressReporter struct {
	hub *Hub
	now func() time.Time
}

var _ ingest.Reporter = (*ProgressReporter)(nil)

// NewProgressReporter returns a reporter that broadcasts on hub.
func NewProgressReporter(hub *Hub) *ProgressReporter {
	return &ProgressReporter{hub: hub, now: time.Now}
}

func (p *ProgressReporter) OnRunStart(runID string, seasons []int) {
	p.send(Event{Type: EventRunStart, RunID: runID, Seasons: seasons})
}

func (p *ProgressReporter) OnSeasonStart(season, index, total int) {
	p.send(Event{Type: EventSeasonStart, Season: season, Current: index, Total: total})
}

func (p *ProgressReporter) OnTeamStart(season int, team string, index, total int) {
	p.send(Event{Type: EventTeamStart, Season: season, Team: team, Current: index, Total: total})
}

func (p *ProgressReporter) OnGameProcessed(season, gameID int) {
	p.send(Event{Type: EventGame, Season: season, GameID: gameID})
}

func (p *ProgressReporter) OnProgress(message string, current, total int) {
	p.send(Event{Type: EventProgress, Message: message, Current: current, Total: total})
}

func (p *ProgressReporter) OnRunComplete(s ingest.Summary) {
	p.send(Event{Type: EventRunComplete, RunID: s.RunID, Summary: &s})
}

func (p *ProgressReporter) OnRunError(err error) {
	p.send(Event{Type: EventRunError, Error: err.Error()})
}

func (p *ProgressReporter) send(e Event) {
	e.Time = p.now().UTC()
	data, err := json.Marshal(e)
	if err != nil {
		p.hub.log.WithError(err).Warn("Failed to encode progress event")
		return
	}
	p.hub.Broadcast(data)
}

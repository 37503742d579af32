package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fortuna/faceoff/internal/features"
	"github.com/fortuna/faceoff/internal/nhl"
	"github.com/fortuna/faceoff/internal/stats"
)

const testSeason = 20232024

var errBoom = errors.New("boom")

// fakeSource serves canned upstream data and counts box score fetches.
type fakeSource struct {
	mu          sync.Mutex
	schedules   map[string][]nhl.GameStub
	scheduleErr map[string]error
	boxes       map[int]*nhl.BoxScore
	boxErr      map[int]error
	players     map[int]*nhl.PlayerCareerStats
	playerErr   map[int]error
	daily       map[string][]nhl.GameStub
	boxCalls    map[int]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		schedules:   make(map[string][]nhl.GameStub),
		scheduleErr: make(map[string]error),
		boxes:       make(map[int]*nhl.BoxScore),
		boxErr:      make(map[int]error),
		players:     make(map[int]*nhl.PlayerCareerStats),
		playerErr:   make(map[int]error),
		daily:       make(map[string][]nhl.GameStub),
		boxCalls:    make(map[int]int),
	}
}

func (f *fakeSource) Schedule(_ context.Context, team string, _ int) ([]nhl.GameStub, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.scheduleErr[team]; err != nil {
		return nil, err
	}
	return f.schedules[team], nil
}

func (f *fakeSource) DailySchedule(_ context.Context, date time.Time) ([]nhl.GameStub, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.daily[date.Format("2006-01-02")], nil
}

func (f *fakeSource) BoxScore(_ context.Context, id int) (*nhl.BoxScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.boxCalls[id]++
	if err := f.boxErr[id]; err != nil {
		return nil, err
	}
	box, ok := f.boxes[id]
	if !ok {
		return nil, fmt.Errorf("game %d: %w", id, nhl.ErrNotFound)
	}
	return box, nil
}

func (f *fakeSource) Player(_ context.Context, id int) (*nhl.PlayerCareerStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.playerErr[id]; err != nil {
		return nil, err
	}
	p, ok := f.players[id]
	if !ok {
		return &nhl.PlayerCareerStats{PlayerID: id, Active: true}, nil
	}
	return p, nil
}

func (f *fakeSource) boxCallCount(id int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.boxCalls[id]
}

// addGame schedules a finished regular-season game for both teams.
func (f *fakeSource) addGame(id int, home, away string, homeScore, awayScore int) {
	stub := nhl.GameStub{
		ID: id, Season: testSeason, Type: nhl.GameTypeRegular, State: nhl.GameStateOfficial,
		GameDate: "2023-10-10", HomeAbbrev: home, AwayAbbrev: away,
	}
	f.schedules[home] = append(f.schedules[home], stub)
	f.schedules[away] = append(f.schedules[away], stub)
	f.daily[stub.GameDate] = append(f.daily[stub.GameDate], stub)
	f.boxes[id] = finalBox(id, teamID(home), teamID(away), home, away, homeScore, awayScore)
}

func teamID(abbrev string) int {
	id := 0
	for _, c := range abbrev {
		id = id*31 + int(c)
	}
	return id % 1000
}

// finalBox builds a box score with one forward, one defenseman and one
// goalie per side. Player ids derive from the team id.
func finalBox(id, homeID, awayID int, home, away string, homeScore, awayScore int) *nhl.BoxScore {
	side := func(teamID, goals int) stats.RawRoster {
		return stats.RawRoster{
			Forwards: []stats.Record{{"playerId": teamID*10 + 1, "goals": goals, "points": goals, "toi": "15:00", "faceoffWinningPctg": 0.5}},
			Defense:  []stats.Record{{"playerId": teamID*10 + 2, "assists": 1, "points": 1, "toi": "20:00"}},
			Goalies:  []stats.Record{{"playerId": teamID*10 + 3, "evenStrengthShotsAgainst": "20/22", "saveShotsAgainst": "28/30", "toi": "60:00"}},
		}
	}
	return &nhl.BoxScore{
		ID: id, Season: testSeason, Type: nhl.GameTypeRegular, State: nhl.GameStateOfficial,
		GameDate: "2023-10-10", Periods: 3,
		Home:    nhl.TeamLine{ID: homeID, Abbrev: home, Score: homeScore, SOG: 30},
		Away:    nhl.TeamLine{ID: awayID, Abbrev: away, Score: awayScore, SOG: 25},
		Rosters: &nhl.Rosters{Home: side(homeID, homeScore), Away: side(awayID, awayScore)},
	}
}

// memorySink collects rows.
type memorySink struct {
	mu   sync.Mutex
	rows []features.Row
	err  error
}

func (s *memorySink) Name() string { return "memory" }

func (s *memorySink) Emit(_ context.Context, row features.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.rows = append(s.rows, row)
	return nil
}

func (s *memorySink) Rows() []features.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]features.Row(nil), s.rows...)
}

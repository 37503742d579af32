package nhl

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scheduleJSON = `{
  "games": [
    {"id": 2023020001, "season": 20232024, "gameType": 2, "gameState": "OFF",
     "gameDate": "2023-10-10", "homeTeam": {"abbrev": "TOR"}, "awayTeam": {"abbrev": "MTL"}},
    {"id": 2023010001, "season": 20232024, "gameType": 1, "gameState": "OFF"},
    {"id": 2023020099, "season": 20232024, "gameType": 9, "gameState": "XYZ"}
  ]
}`

const boxScoreJSON = `{
  "id": 2023020001, "season": 20232024, "gameType": 2, "gameState": "OFF",
  "periodDescriptor": {"number": 3},
  "homeTeam": {"id": 10, "abbrev": "TOR", "score": 4, "sog": 33},
  "awayTeam": {"id": 8, "abbrev": "MTL", "score": 2, "sog": 29},
  "playerByGameStats": {
    "homeTeam": {
      "forwards": [{"playerId": 1, "goals": 2, "toi": "18:32"}],
      "defense": [{"playerId": 2, "toi": "22:10"}],
      "goalies": [{"playerId": 3, "evenStrengthShotsAgainst": "25/27", "toi": "60:00"}]
    },
    "awayTeam": {"forwards": [], "defense": [], "goalies": []}
  }
}`

const playerJSON = `{
  "playerId": 8479318, "isActive": true, "currentTeamId": 10,
  "firstName": {"default": "Auston"}, "lastName": {"default": "Matthews"},
  "position": "C", "heightInInches": 75, "weightInPounds": 208,
  "seasonTotals": [
    {"season": 20222023, "leagueAbbrev": "NHL", "gameTypeId": 2, "gamesPlayed": 74, "goals": 40, "avgToi": "20:43"},
    {"season": 20222023, "leagueAbbrev": "NHL", "gameTypeId": 3, "gamesPlayed": 11, "goals": 5, "avgToi": "21:00"},
    {"season": 20232024, "leagueAbbrev": "NHL", "gameTypeId": 2, "gamesPlayed": 81, "goals": 69, "avgToi": "20:37"}
  ],
  "careerTotals": {"regularSeason": {"gamesPlayed": 562, "goals": 368, "faceoffWinningPctg": 0.53, "avgToi": "19:58"}}
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/club-schedule-season/TOR/20232024", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(scheduleJSON))
	})
	mux.HandleFunc("/v1/gamecenter/2023020001/boxscore", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(boxScoreJSON))
	})
	mux.HandleFunc("/v1/gamecenter/2023020002/boxscore", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/v1/player/8479318/landing", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(playerJSON))
	})
	mux.HandleFunc("/v1/schedule/2023-10-10", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"gameWeek": [
			{"date": "2023-10-10", "games": [{"id": 2023020001, "gameType": 2, "gameState": "OFF"}]},
			{"date": "2023-10-11", "games": [{"id": 2023020005, "gameType": 2, "gameState": "OFF"}]}
		]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientSchedule(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(ClientConfig{BaseURL: srv.URL}, nil, nil)

	games, err := c.Schedule(context.Background(), "TOR", 20232024)
	require.NoError(t, err)
	require.Len(t, games, 3)

	assert.Equal(t, 2023020001, games[0].ID)
	assert.Equal(t, GameTypeRegular, games[0].Type)
	assert.Equal(t, GameStateOfficial, games[0].State)
	assert.Equal(t, "TOR", games[0].HomeAbbrev)
	assert.Equal(t, GameTypePreseason, games[1].Type)
	assert.Equal(t, GameTypeUnknown, games[2].Type)
	assert.Equal(t, GameStateUnknown, games[2].State)
}

func TestClientBoxScore(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(ClientConfig{BaseURL: srv.URL}, nil, nil)

	box, err := c.BoxScore(context.Background(), 2023020001)
	require.NoError(t, err)

	assert.Equal(t, 3, box.Periods)
	assert.Equal(t, TeamLine{ID: 10, Abbrev: "TOR", Score: 4, SOG: 33}, box.Home)
	assert.Equal(t, 2, box.Away.Score)
	require.NotNil(t, box.Rosters)
	assert.Len(t, box.Rosters.Home.Forwards, 1)
	assert.Len(t, box.Rosters.Home.Goalies, 1)
	assert.Empty(t, box.Rosters.Away.Forwards)
}

func TestClientBoxScoreUpstreamError(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(ClientConfig{BaseURL: srv.URL, Breaker: true, BreakerTimeout: time.Second}, nil, nil)

	_, err := c.BoxScore(context.Background(), 2023020002)
	assert.True(t, errors.Is(err, ErrUpstream))

	_, err = c.BoxScore(context.Background(), 2023029999)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestParseBoxScoreWithoutRoster(t *testing.T) {
	box, err := ParseBoxScore(map[string]any{
		"id":        float64(2025020500),
		"gameType":  float64(2),
		"gameState": "FUT",
	})
	require.NoError(t, err)
	assert.Nil(t, box.Rosters)
	assert.Equal(t, GameStateFuture, box.State)
}

func TestClientPlayer(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(ClientConfig{BaseURL: srv.URL}, nil, nil)

	p, err := c.Player(context.Background(), 8479318)
	require.NoError(t, err)

	assert.True(t, p.Active)
	assert.Equal(t, "Matthews", p.LastName)
	assert.Equal(t, 75, p.HeightInches)
	require.NotNil(t, p.Season)
	assert.Equal(t, 69, p.Season.Goals)
	require.NotNil(t, p.Career)
	assert.Equal(t, 562, p.Career.GamesPlayed)
	assert.Equal(t, 19*3600+58*60, p.Career.AvgTOI)
}

func TestClientDailySchedule(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(ClientConfig{BaseURL: srv.URL}, nil, nil)

	games, err := c.DailySchedule(context.Background(), time.Date(2023, 10, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, 2023020001, games[0].ID)
}

package nhl

import (
	"fmt"

	"github.com/fortuna/faceoff/internal/stats"
)

// ParseSchedule extracts game stubs from a club season schedule payload.
func ParseSchedule(data stats.Record) []GameStub {
	games := stats.List(data, "games")
	out := make([]GameStub, 0, len(games))
	for _, g := range games {
		out = append(out, parseStub(g))
	}
	return out
}

// ParseDailySchedule extracts the stubs listed under date (YYYY-MM-DD) from
// a schedule payload, which covers a whole week.
func ParseDailySchedule(data stats.Record, date string) []GameStub {
	var out []GameStub
	for _, day := range stats.List(data, "gameWeek") {
		if stats.String(day, "date") != date {
			continue
		}
		for _, g := range stats.List(day, "games") {
			out = append(out, parseStub(g))
		}
	}
	return out
}

func parseStub(g stats.Record) GameStub {
	return GameStub{
		ID:         stats.Int(g, "id"),
		Season:     stats.Int(g, "season"),
		Type:       ParseGameType(stats.Int(g, "gameType")),
		State:      ParseGameState(stats.String(g, "gameState")),
		GameDate:   stats.String(g, "gameDate"),
		HomeAbbrev: stats.String(g, "homeTeam", "abbrev"),
		AwayAbbrev: stats.String(g, "awayTeam", "abbrev"),
	}
}

// ParseBoxScore decodes a game center box score payload.
func ParseBoxScore(data stats.Record) (*BoxScore, error) {
	id := stats.Int(data, "id")
	if id == 0 {
		return nil, fmt.Errorf("box score has no game id")
	}

	box := &BoxScore{
		ID:       id,
		Season:   stats.Int(data, "season"),
		Type:     ParseGameType(stats.Int(data, "gameType")),
		State:    ParseGameState(stats.String(data, "gameState")),
		GameDate: stats.String(data, "gameDate"),
		Periods:  stats.Int(data, "periodDescriptor", "number"),
		Home:     parseTeamLine(stats.Sub(data, "homeTeam")),
		Away:     parseTeamLine(stats.Sub(data, "awayTeam")),
	}

	if _, ok := data["playerByGameStats"]; ok {
		byGame := stats.Sub(data, "playerByGameStats")
		box.Rosters = &Rosters{
			Home: parseRoster(stats.Sub(byGame, "homeTeam")),
			Away: parseRoster(stats.Sub(byGame, "awayTeam")),
		}
	}

	return box, nil
}

func parseTeamLine(t stats.Record) TeamLine {
	return TeamLine{
		ID:     stats.Int(t, "id"),
		Abbrev: stats.String(t, "abbrev"),
		Score:  stats.Int(t, "score"),
		SOG:    stats.Int(t, "sog"),
	}
}

func parseRoster(t stats.Record) stats.RawRoster {
	return stats.RawRoster{
		Forwards: stats.List(t, "forwards"),
		Defense:  stats.List(t, "defense"),
		Goalies:  stats.List(t, "goalies"),
	}
}

// ParsePlayer decodes a player landing payload. Season totals come from the
// latest NHL regular-season entry; career totals from the regular-season
// career block.
func ParsePlayer(data stats.Record) (*PlayerCareerStats, error) {
	id := stats.Int(data, "playerId")
	if id == 0 {
		return nil, fmt.Errorf("player payload has no player id")
	}

	p := &PlayerCareerStats{
		PlayerID:     id,
		Active:       stats.Bool(data, "isActive"),
		TeamID:       stats.Int(data, "currentTeamId"),
		FirstName:    stats.String(data, "firstName", "default"),
		LastName:     stats.String(data, "lastName", "default"),
		Position:     stats.String(data, "position"),
		HeightInches: stats.Int(data, "heightInInches"),
		WeightPounds: stats.Int(data, "weightInPounds"),
	}

	var latest stats.Record
	for _, entry := range stats.List(data, "seasonTotals") {
		if stats.String(entry, "leagueAbbrev") == "NHL" && ParseGameType(stats.Int(entry, "gameTypeId")) == GameTypeRegular {
			latest = entry
		}
	}
	if latest != nil {
		t, err := parseTotals(latest)
		if err != nil {
			return nil, fmt.Errorf("player %d season totals: %w", id, err)
		}
		p.Season = &t
	}

	if career := stats.Sub(data, "careerTotals", "regularSeason"); len(career) > 0 {
		t, err := parseTotals(career)
		if err != nil {
			return nil, fmt.Errorf("player %d career totals: %w", id, err)
		}
		p.Career = &t
	}

	return p, nil
}

func parseTotals(r stats.Record) (stats.Totals, error) {
	toi, err := stats.TimeOnIce(stats.ValueOr(r, 0, "avgToi"))
	if err != nil {
		return stats.Totals{}, err
	}
	return stats.Totals{
		GamesPlayed:    stats.Int(r, "gamesPlayed"),
		Goals:          stats.Int(r, "goals"),
		Assists:        stats.Int(r, "assists"),
		Points:         stats.Int(r, "points"),
		PlusMinus:      stats.Int(r, "plusMinus"),
		PIM:            stats.Int(r, "pim"),
		PowerPlayGoals: stats.Int(r, "powerPlayGoals"),
		Shots:          stats.Int(r, "shots"),
		FaceoffPct:     stats.Float(r, "faceoffWinningPctg"),
		AvgTOI:         toi,
	}, nil
}

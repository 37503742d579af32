package stats

import (
	"fmt"
)

// RawRoster is one team's roster section of a box score.
type RawRoster struct {
	Forwards []Record
	Defense  []Record
	Goalies  []Record
}

// SkaterLine is one skater's stat line for one game.
type SkaterLine struct {
	PlayerID       int     `json:"player_id"`
	TeamID         int     `json:"team_id"`
	Position       string  `json:"position"`
	Goals          int     `json:"goals"`
	Assists        int     `json:"assists"`
	Points         int     `json:"points"`
	PlusMinus      int     `json:"plus_minus"`
	PIM            int     `json:"pim"`
	Hits           int     `json:"hits"`
	PowerPlayGoals int     `json:"power_play_goals"`
	Shots          int     `json:"shots"`
	FaceoffPct     float64 `json:"faceoff_pct"`
	TOI            int     `json:"toi"`
	BlockedShots   int     `json:"blocked_shots"`
	Shifts         int     `json:"shifts"`
	Giveaways      int     `json:"giveaways"`
	Takeaways      int     `json:"takeaways"`
}

// GoalieLine is one goalie's stat line for one game.
type GoalieLine struct {
	PlayerID                 int     `json:"player_id"`
	TeamID                   int     `json:"team_id"`
	EvenStrengthSaves        int     `json:"even_strength_saves"`
	EvenStrengthShotsAgainst int     `json:"even_strength_shots_against"`
	PowerPlaySaves           int     `json:"power_play_saves"`
	PowerPlayShotsAgainst    int     `json:"power_play_shots_against"`
	ShorthandedSaves         int     `json:"shorthanded_saves"`
	ShorthandedShotsAgainst  int     `json:"shorthanded_shots_against"`
	SaveShotsAgainst         int     `json:"save_shots_against"`
	SavePct                  float64 `json:"save_pct"`
	EvenStrengthGoalsAgainst int     `json:"even_strength_goals_against"`
	PowerPlayGoalsAgainst    int     `json:"power_play_goals_against"`
	ShorthandedGoalsAgainst  int     `json:"shorthanded_goals_against"`
	PIM                      int     `json:"pim"`
	GoalsAgainst             int     `json:"goals_against"`
	TOI                      int     `json:"toi"`
	Starter                  bool    `json:"starter"`
	Decision                 string  `json:"decision"`
	ShotsAgainst             int     `json:"shots_against"`
	Saves                    int     `json:"saves"`
}

// Lines is a normalized roster: every raw record turned into a stat line.
type Lines struct {
	Forwards []SkaterLine
	Defense  []SkaterLine
	Goalies  []GoalieLine
}

// Skaters returns forwards followed by defense.
func (l Lines) Skaters() []SkaterLine {
	out := make([]SkaterLine, 0, len(l.Forwards)+len(l.Defense))
	out = append(out, l.Forwards...)
	return append(out, l.Defense...)
}

// PlayerIDs lists every player referenced by the roster.
func (l Lines) PlayerIDs() []int {
	ids := make([]int, 0, len(l.Forwards)+len(l.Defense)+len(l.Goalies))
	for _, s := range l.Forwards {
		ids = append(ids, s.PlayerID)
	}
	for _, s := range l.Defense {
		ids = append(ids, s.PlayerID)
	}
	for _, g := range l.Goalies {
		ids = append(ids, g.PlayerID)
	}
	return ids
}

// NormalizeSkater maps one raw skater record. Missing fields are 0.
func NormalizeSkater(r Record, teamID int) (SkaterLine, error) {
	toi, err := TimeOnIce(ValueOr(r, 0, "toi"))
	if err != nil {
		return SkaterLine{}, fmt.Errorf("skater %d: %w", Int(r, "playerId"), err)
	}
	return SkaterLine{
		PlayerID:       Int(r, "playerId"),
		TeamID:         teamID,
		Position:       String(r, "position"),
		Goals:          Int(r, "goals"),
		Assists:        Int(r, "assists"),
		Points:         Int(r, "points"),
		PlusMinus:      Int(r, "plusMinus"),
		PIM:            Int(r, "pim"),
		Hits:           Int(r, "hits"),
		PowerPlayGoals: Int(r, "powerPlayGoals"),
		Shots:          Int(r, "sog"),
		FaceoffPct:     Float(r, "faceoffWinningPctg"),
		TOI:            toi,
		BlockedShots:   Int(r, "blockedShots"),
		Shifts:         Int(r, "shifts"),
		Giveaways:      Int(r, "giveaways"),
		Takeaways:      Int(r, "takeaways"),
	}, nil
}

// NormalizeGoalie maps one raw goalie record. The situational shots-against
// fields arrive as "saves/attempts" pairs; an absent pair reads as "0/0".
func NormalizeGoalie(r Record, teamID int) (GoalieLine, error) {
	id := Int(r, "playerId")
	line := GoalieLine{
		PlayerID:                 id,
		TeamID:                   teamID,
		SavePct:                  Float(r, "savePctg"),
		EvenStrengthGoalsAgainst: Int(r, "evenStrengthGoalsAgainst"),
		PowerPlayGoalsAgainst:    Int(r, "powerPlayGoalsAgainst"),
		ShorthandedGoalsAgainst:  Int(r, "shorthandedGoalsAgainst"),
		PIM:                      Int(r, "pim"),
		GoalsAgainst:             Int(r, "goalsAgainst"),
		Starter:                  Bool(r, "starter"),
		Decision:                 String(r, "decision"),
		ShotsAgainst:             Int(r, "shotsAgainst"),
		Saves:                    Int(r, "saves"),
	}

	var err error
	if line.EvenStrengthSaves, line.EvenStrengthShotsAgainst, err = SaveAttemptPair(ValueOr(r, "0/0", "evenStrengthShotsAgainst")); err != nil {
		return GoalieLine{}, fmt.Errorf("goalie %d: %w", id, err)
	}
	if line.PowerPlaySaves, line.PowerPlayShotsAgainst, err = SaveAttemptPair(ValueOr(r, "0/0", "powerPlayShotsAgainst")); err != nil {
		return GoalieLine{}, fmt.Errorf("goalie %d: %w", id, err)
	}
	if line.ShorthandedSaves, line.ShorthandedShotsAgainst, err = SaveAttemptPair(ValueOr(r, "0/0", "shorthandedShotsAgainst")); err != nil {
		return GoalieLine{}, fmt.Errorf("goalie %d: %w", id, err)
	}
	if _, line.SaveShotsAgainst, err = SaveAttemptPair(ValueOr(r, "0/0", "saveShotsAgainst")); err != nil {
		return GoalieLine{}, fmt.Errorf("goalie %d: %w", id, err)
	}
	if line.TOI, err = TimeOnIce(ValueOr(r, 0, "toi")); err != nil {
		return GoalieLine{}, fmt.Errorf("goalie %d: %w", id, err)
	}
	return line, nil
}

// NormalizeRoster maps a whole roster section. The first malformed record
// fails the roster.
func NormalizeRoster(raw RawRoster, teamID int) (Lines, error) {
	var out Lines
	for _, r := range raw.Forwards {
		line, err := NormalizeSkater(r, teamID)
		if err != nil {
			return Lines{}, err
		}
		out.Forwards = append(out.Forwards, line)
	}
	for _, r := range raw.Defense {
		line, err := NormalizeSkater(r, teamID)
		if err != nil {
			return Lines{}, err
		}
		out.Defense = append(out.Defense, line)
	}
	for _, r := range raw.Goalies {
		line, err := NormalizeGoalie(r, teamID)
		if err != nil {
			return Lines{}, err
		}
		out.Goalies = append(out.Goalies, line)
	}
	return out, nil
}

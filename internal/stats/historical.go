package stats

// Scope picks which totals the historical variant reads.
type Scope string

const (
	ScopeGame   Scope = "game"
	ScopeCareer Scope = "career"
	ScopeSeason Scope = "season"
)

// Totals are a player's accumulated regular-season numbers over a season or
// a career. AvgTOI is already per game, in seconds.
type Totals struct {
	GamesPlayed    int     `json:"games_played"`
	Goals          int     `json:"goals"`
	Assists        int     `json:"assists"`
	Points         int     `json:"points"`
	PlusMinus      int     `json:"plus_minus"`
	PIM            int     `json:"pim"`
	PowerPlayGoals int     `json:"power_play_goals"`
	Shots          int     `json:"shots"`
	FaceoffPct     float64 `json:"faceoff_pct"`
	AvgTOI         int     `json:"avg_toi"`
}

// PerGame converts totals into a per-game skater vector. Hits, blocked
// shots, shifts, giveaways and takeaways have no historical source and
// stay zero.
func (t Totals) PerGame() SkaterStats {
	if t.GamesPlayed <= 0 {
		return SkaterStats{}
	}
	gp := float64(t.GamesPlayed)
	return SkaterStats{
		Goals:          float64(t.Goals) / gp,
		Assists:        float64(t.Assists) / gp,
		Points:         float64(t.Points) / gp,
		PlusMinus:      float64(t.PlusMinus) / gp,
		PIM:            float64(t.PIM) / gp,
		PowerPlayGoals: float64(t.PowerPlayGoals) / gp,
		Shots:          float64(t.Shots) / gp,
		FaceoffPct:     t.FaceoffPct,
		TOI:            float64(t.AvgTOI),
	}
}

// TotalsLookup returns a skater's totals for the requested scope. ok is
// false when the player has none.
type TotalsLookup func(playerID int) (t Totals, ok bool)

// Historical builds a Roster whose skaters carry per-game averages from
// lookup instead of the game's own numbers. Skaters without totals
// contribute a zero vector. Goalies have no historical source, and their
// game lines carry the goals against, so each contributes a zero vector.
func (l Lines) Historical(lookup TotalsLookup) Roster {
	return Roster{
		Forwards: historicalGroup(l.Forwards, lookup),
		Defense:  historicalGroup(l.Defense, lookup),
		Goalies:  make([]GoalieStats, len(l.Goalies)),
	}
}

func historicalGroup(lines []SkaterLine, lookup TotalsLookup) []SkaterStats {
	out := make([]SkaterStats, 0, len(lines))
	for _, s := range lines {
		t, ok := lookup(s.PlayerID)
		if !ok {
			out = append(out, SkaterStats{})
			continue
		}
		out = append(out, t.PerGame())
	}
	return out
}

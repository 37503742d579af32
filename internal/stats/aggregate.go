package stats

// SkaterStats is the numeric part of a skater line, or a sum of many.
type SkaterStats struct {
	Goals          float64
	Assists        float64
	Points         float64
	PlusMinus      float64
	PIM            float64
	Hits           float64
	PowerPlayGoals float64
	Shots          float64
	FaceoffPct     float64
	TOI            float64
	BlockedShots   float64
	Shifts         float64
	Giveaways      float64
	Takeaways      float64
}

// SkaterFields names SkaterStats.Values positionally.
var SkaterFields = []string{
	"goals", "assists", "points", "plus_minus", "pim", "hits", "pp_goals",
	"sog", "faceoff_pct", "toi", "blocked_shots", "shifts", "giveaways", "takeaways",
}

// Stats returns the line's numeric fields.
func (l SkaterLine) Stats() SkaterStats {
	return SkaterStats{
		Goals:          float64(l.Goals),
		Assists:        float64(l.Assists),
		Points:         float64(l.Points),
		PlusMinus:      float64(l.PlusMinus),
		PIM:            float64(l.PIM),
		Hits:           float64(l.Hits),
		PowerPlayGoals: float64(l.PowerPlayGoals),
		Shots:          float64(l.Shots),
		FaceoffPct:     l.FaceoffPct,
		TOI:            float64(l.TOI),
		BlockedShots:   float64(l.BlockedShots),
		Shifts:         float64(l.Shifts),
		Giveaways:      float64(l.Giveaways),
		Takeaways:      float64(l.Takeaways),
	}
}

// Add sums field by field.
func (s SkaterStats) Add(o SkaterStats) SkaterStats {
	return SkaterStats{
		Goals:          s.Goals + o.Goals,
		Assists:        s.Assists + o.Assists,
		Points:         s.Points + o.Points,
		PlusMinus:      s.PlusMinus + o.PlusMinus,
		PIM:            s.PIM + o.PIM,
		Hits:           s.Hits + o.Hits,
		PowerPlayGoals: s.PowerPlayGoals + o.PowerPlayGoals,
		Shots:          s.Shots + o.Shots,
		FaceoffPct:     s.FaceoffPct + o.FaceoffPct,
		TOI:            s.TOI + o.TOI,
		BlockedShots:   s.BlockedShots + o.BlockedShots,
		Shifts:         s.Shifts + o.Shifts,
		Giveaways:      s.Giveaways + o.Giveaways,
		Takeaways:      s.Takeaways + o.Takeaways,
	}
}

// Values lays the fields out in SkaterFields order.
func (s SkaterStats) Values() []float64 {
	return []float64{
		s.Goals, s.Assists, s.Points, s.PlusMinus, s.PIM, s.Hits, s.PowerPlayGoals,
		s.Shots, s.FaceoffPct, s.TOI, s.BlockedShots, s.Shifts, s.Giveaways, s.Takeaways,
	}
}

// GoalieStats is the numeric part of a goalie line, or a sum of many.
// Starter and decision are categorical and are not aggregated.
type GoalieStats struct {
	EvenStrengthSaves        float64
	EvenStrengthShotsAgainst float64
	PowerPlaySaves           float64
	PowerPlayShotsAgainst    float64
	ShorthandedSaves         float64
	ShorthandedShotsAgainst  float64
	SaveShotsAgainst         float64
	SavePct                  float64
	EvenStrengthGoalsAgainst float64
	PowerPlayGoalsAgainst    float64
	ShorthandedGoalsAgainst  float64
	PIM                      float64
	GoalsAgainst             float64
	TOI                      float64
	ShotsAgainst             float64
	Saves                    float64
}

// GoalieFields names GoalieStats.Values positionally.
var GoalieFields = []string{
	"es_saves", "es_shots_against", "pp_saves", "pp_shots_against",
	"sh_saves", "sh_shots_against", "save_shots_against", "save_pct",
	"es_goals_against", "pp_goals_against", "sh_goals_against", "pim",
	"goals_against", "toi", "shots_against", "saves",
}

// Stats returns the line's numeric fields.
func (l GoalieLine) Stats() GoalieStats {
	return GoalieStats{
		EvenStrengthSaves:        float64(l.EvenStrengthSaves),
		EvenStrengthShotsAgainst: float64(l.EvenStrengthShotsAgainst),
		PowerPlaySaves:           float64(l.PowerPlaySaves),
		PowerPlayShotsAgainst:    float64(l.PowerPlayShotsAgainst),
		ShorthandedSaves:         float64(l.ShorthandedSaves),
		ShorthandedShotsAgainst:  float64(l.ShorthandedShotsAgainst),
		SaveShotsAgainst:         float64(l.SaveShotsAgainst),
		SavePct:                  l.SavePct,
		EvenStrengthGoalsAgainst: float64(l.EvenStrengthGoalsAgainst),
		PowerPlayGoalsAgainst:    float64(l.PowerPlayGoalsAgainst),
		ShorthandedGoalsAgainst:  float64(l.ShorthandedGoalsAgainst),
		PIM:                      float64(l.PIM),
		GoalsAgainst:             float64(l.GoalsAgainst),
		TOI:                      float64(l.TOI),
		ShotsAgainst:             float64(l.ShotsAgainst),
		Saves:                    float64(l.Saves),
	}
}

// Add sums field by field.
func (s GoalieStats) Add(o GoalieStats) GoalieStats {
	return GoalieStats{
		EvenStrengthSaves:        s.EvenStrengthSaves + o.EvenStrengthSaves,
		EvenStrengthShotsAgainst: s.EvenStrengthShotsAgainst + o.EvenStrengthShotsAgainst,
		PowerPlaySaves:           s.PowerPlaySaves + o.PowerPlaySaves,
		PowerPlayShotsAgainst:    s.PowerPlayShotsAgainst + o.PowerPlayShotsAgainst,
		ShorthandedSaves:         s.ShorthandedSaves + o.ShorthandedSaves,
		ShorthandedShotsAgainst:  s.ShorthandedShotsAgainst + o.ShorthandedShotsAgainst,
		SaveShotsAgainst:         s.SaveShotsAgainst + o.SaveShotsAgainst,
		SavePct:                  s.SavePct + o.SavePct,
		EvenStrengthGoalsAgainst: s.EvenStrengthGoalsAgainst + o.EvenStrengthGoalsAgainst,
		PowerPlayGoalsAgainst:    s.PowerPlayGoalsAgainst + o.PowerPlayGoalsAgainst,
		ShorthandedGoalsAgainst:  s.ShorthandedGoalsAgainst + o.ShorthandedGoalsAgainst,
		PIM:                      s.PIM + o.PIM,
		GoalsAgainst:             s.GoalsAgainst + o.GoalsAgainst,
		TOI:                      s.TOI + o.TOI,
		ShotsAgainst:             s.ShotsAgainst + o.ShotsAgainst,
		Saves:                    s.Saves + o.Saves,
	}
}

// Values lays the fields out in GoalieFields order.
func (s GoalieStats) Values() []float64 {
	return []float64{
		s.EvenStrengthSaves, s.EvenStrengthShotsAgainst, s.PowerPlaySaves, s.PowerPlayShotsAgainst,
		s.ShorthandedSaves, s.ShorthandedShotsAgainst, s.SaveShotsAgainst, s.SavePct,
		s.EvenStrengthGoalsAgainst, s.PowerPlayGoalsAgainst, s.ShorthandedGoalsAgainst, s.PIM,
		s.GoalsAgainst, s.TOI, s.ShotsAgainst, s.Saves,
	}
}

// Roster is a team's per-player stats ready for aggregation.
type Roster struct {
	Forwards []SkaterStats
	Defense  []SkaterStats
	Goalies  []GoalieStats
}

// PerGame builds a Roster from the game's own stat lines.
func (l Lines) PerGame() Roster {
	var r Roster
	for _, s := range l.Forwards {
		r.Forwards = append(r.Forwards, s.Stats())
	}
	for _, s := range l.Defense {
		r.Defense = append(r.Defense, s.Stats())
	}
	for _, g := range l.Goalies {
		r.Goalies = append(r.Goalies, g.Stats())
	}
	return r
}

// SumSkaters adds up a group. An empty group is the zero vector.
// Faceoff percentage is summed like every other field.
func SumSkaters(group []SkaterStats) SkaterStats {
	var total SkaterStats
	for _, s := range group {
		total = total.Add(s)
	}
	return total
}

// SumGoalies adds up a group. An empty group is the zero vector.
func SumGoalies(group []GoalieStats) GoalieStats {
	var total GoalieStats
	for _, g := range group {
		total = total.Add(g)
	}
	return total
}

package stats

import (
	"fmt"
)

// Summarizer reduces one team's roster into a flat vector with a fixed
// column layout.
type Summarizer interface {
	Name() string
	// Headers names the columns Summarize produces, each prefixed.
	Headers(prefix string) []string
	Summarize(r Roster) []float64
}

// NewSummarizer resolves a summarizer by name.
func NewSummarizer(name string) (Summarizer, error) {
	switch name {
	case "", "pooled":
		return Pooled{}, nil
	case "positional":
		return Positional{}, nil
	default:
		return nil, fmt.Errorf("unknown summarizer %q", name)
	}
}

// Pooled sums forwards and defense as one skater group, then goalies.
type Pooled struct{}

func (Pooled) Name() string { return "pooled" }

func (Pooled) Headers(prefix string) []string {
	return append(prefixed(prefix+"skaters_", SkaterFields), prefixed(prefix+"goalies_", GoalieFields)...)
}

func (Pooled) Summarize(r Roster) []float64 {
	skaters := make([]SkaterStats, 0, len(r.Forwards)+len(r.Defense))
	skaters = append(skaters, r.Forwards...)
	skaters = append(skaters, r.Defense...)
	return append(SumSkaters(skaters).Values(), SumGoalies(r.Goalies).Values()...)
}

// Positional sums forwards, defense and goalies separately.
type Positional struct{}

func (Positional) Name() string { return "positional" }

func (Positional) Headers(prefix string) []string {
	out := prefixed(prefix+"forwards_", SkaterFields)
	out = append(out, prefixed(prefix+"defense_", SkaterFields)...)
	return append(out, prefixed(prefix+"goalies_", GoalieFields)...)
}

func (Positional) Summarize(r Roster) []float64 {
	out := SumSkaters(r.Forwards).Values()
	out = append(out, SumSkaters(r.Defense).Values()...)
	return append(out, SumGoalies(r.Goalies).Values()...)
}

func prefixed(prefix string, fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = prefix + f
	}
	return out
}

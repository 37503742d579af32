package features

import (
	"fmt"

	"github.com/fortuna/faceoff/internal/stats"
)

// LabelMode selects how the trailing label column encodes the winner.
type LabelMode string

const (
	// LabelHomeAway writes 1 for a home win and 0 for an away win.
	LabelHomeAway LabelMode = "home_away"
	// LabelFranchise writes the winning team's id.
	LabelFranchise LabelMode = "franchise"
)

// ParseLabelMode validates a label mode name.
func ParseLabelMode(s string) (LabelMode, error) {
	switch LabelMode(s) {
	case "", LabelHomeAway:
		return LabelHomeAway, nil
	case LabelFranchise:
		return LabelFranchise, nil
	default:
		return "", fmt.Errorf("unknown label mode %q", s)
	}
}

// Row is one game's feature vector. GameID and Season identify it but are
// not columns.
type Row struct {
	GameID int       `json:"game_id"`
	Season int       `json:"season"`
	Values []float64 `json:"values"`
}

// Label returns the trailing label value.
func (r Row) Label() float64 {
	if len(r.Values) == 0 {
		return 0
	}
	return r.Values[len(r.Values)-1]
}

// Builder lays out rows for one summarizer and label mode. Headers and
// Build agree column for column.
type Builder struct {
	summarizer stats.Summarizer
	label      LabelMode
	headers    []string
}

// NewBuilder fixes the column schema for a run.
func NewBuilder(s stats.Summarizer, label LabelMode) *Builder {
	headers := []string{"periods", "home_score", "home_sog", "away_score", "away_sog"}
	headers = append(headers, s.Headers("winner_")...)
	headers = append(headers, s.Headers("loser_")...)
	headers = append(headers, "label")
	return &Builder{summarizer: s, label: label, headers: headers}
}

// Headers returns a copy of the column names.
func (b *Builder) Headers() []string {
	return append([]string(nil), b.headers...)
}

// Summarizer returns the summarizer in use.
func (b *Builder) Summarizer() stats.Summarizer {
	return b.summarizer
}

// Build orients the rosters winner first and concatenates the row.
func (b *Builder) Build(o Outcome, home, away stats.Roster) Row {
	winner, loser := away, home
	if o.Winner == Home {
		winner, loser = home, away
	}

	values := make([]float64, 0, len(b.headers))
	values = append(values,
		float64(o.Periods),
		float64(o.HomeScore), float64(o.HomeSOG),
		float64(o.AwayScore), float64(o.AwaySOG),
	)
	values = append(values, b.summarizer.Summarize(winner)...)
	values = append(values, b.summarizer.Summarize(loser)...)
	values = append(values, b.labelValue(o))

	return Row{GameID: o.GameID, Season: o.Season, Values: values}
}

func (b *Builder) labelValue(o Outcome) float64 {
	if b.label == LabelFranchise {
		return float64(o.WinnerTeamID)
	}
	return float64(o.Winner)
}

// Package features classifies box scores and lays out feature rows.
package features

import (
	"github.com/fortuna/faceoff/internal/nhl"
)

// SkipReason explains why a game produced no row. The empty reason means
// the game was accepted.
type SkipReason string

const (
	Accept                 SkipReason = ""
	SkipUnsupportedType    SkipReason = "unsupported_type"
	SkipNotFinal           SkipReason = "not_final"
	SkipRosterNotPublished SkipReason = "roster_not_published"
)

// Side is home or away.
type Side int

const (
	Away Side = 0
	Home Side = 1
)

func (s Side) String() string {
	if s == Home {
		return "home"
	}
	return "away"
}

// Winner compares scores directly. Home wins only on a strictly greater
// score; anything else, a tie included, goes to away.
func Winner(homeScore, awayScore int) Side {
	if homeScore > awayScore {
		return Home
	}
	return Away
}

// ScreenStub applies the checks a schedule entry alone can answer, so the
// box score fetch can be avoided. requireFinal rejects games whose score
// is not settled yet.
func ScreenStub(stub nhl.GameStub, requireFinal bool) SkipReason {
	if !stub.Type.Supported() {
		return SkipUnsupportedType
	}
	if requireFinal && !stub.State.Terminal() {
		return SkipNotFinal
	}
	return Accept
}

// Outcome is the classified header of one game.
type Outcome struct {
	GameID       int
	Season       int
	Periods      int
	HomeTeamID   int
	AwayTeamID   int
	HomeAbbrev   string
	AwayAbbrev   string
	HomeScore    int
	HomeSOG      int
	AwayScore    int
	AwaySOG      int
	Winner       Side
	WinnerTeamID int
	LoserTeamID  int
}

// Classify checks a box score and derives its outcome. A skip is a normal
// result, not an error.
func Classify(box *nhl.BoxScore, requireFinal bool) (Outcome, SkipReason) {
	if !box.Type.Supported() {
		return Outcome{}, SkipUnsupportedType
	}
	if requireFinal && !box.State.Terminal() {
		return Outcome{}, SkipNotFinal
	}
	if box.Rosters == nil {
		return Outcome{}, SkipRosterNotPublished
	}

	o := Outcome{
		GameID:     box.ID,
		Season:     box.Season,
		Periods:    box.Periods,
		HomeTeamID: box.Home.ID,
		AwayTeamID: box.Away.ID,
		HomeAbbrev: box.Home.Abbrev,
		AwayAbbrev: box.Away.Abbrev,
		HomeScore:  box.Home.Score,
		HomeSOG:    box.Home.SOG,
		AwayScore:  box.Away.Score,
		AwaySOG:    box.Away.SOG,
		Winner:     Winner(box.Home.Score, box.Away.Score),
	}
	if o.Winner == Home {
		o.WinnerTeamID, o.LoserTeamID = o.HomeTeamID, o.AwayTeamID
	} else {
		o.WinnerTeamID, o.LoserTeamID = o.AwayTeamID, o.HomeTeamID
	}
	return o, Accept
}

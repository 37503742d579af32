package stats

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAggregation(t *testing.T) {
	Convey("Given a team of three skaters and no goalies", t, func() {
		lines := Lines{
			Forwards: []SkaterLine{{PlayerID: 1, Goals: 1, FaceoffPct: 0.5}, {PlayerID: 2, Goals: 0, FaceoffPct: 0.25}},
			Defense:  []SkaterLine{{PlayerID: 3, Goals: 2}},
		}
		roster := lines.PerGame()

		Convey("When the pooled summarizer runs", func() {
			out := Pooled{}.Summarize(roster)

			Convey("Then the skater goals field is the sum", func() {
				So(out[0], ShouldEqual, 3)
			})

			Convey("Then faceoff percentages are summed, not weighted", func() {
				So(out[8], ShouldEqual, 0.75)
			})

			Convey("Then the goalie vector is all zeros", func() {
				goalies := out[len(SkaterFields):]
				So(len(goalies), ShouldEqual, len(GoalieFields))
				for _, v := range goalies {
					So(v, ShouldEqual, 0)
				}
			})
		})

		Convey("When the positional summarizer runs", func() {
			out := Positional{}.Summarize(roster)

			Convey("Then forwards and defense are summed apart", func() {
				So(len(out), ShouldEqual, 2*len(SkaterFields)+len(GoalieFields))
				So(out[0], ShouldEqual, 1)
				So(out[len(SkaterFields)], ShouldEqual, 2)
			})
		})
	})

	Convey("Given empty groups", t, func() {
		Convey("Then each sums to a zero vector of its width", func() {
			So(SumSkaters(nil).Values(), ShouldResemble, make([]float64, len(SkaterFields)))
			So(SumGoalies(nil).Values(), ShouldResemble, make([]float64, len(GoalieFields)))
		})
	})
}

func TestSummarizerHeaders(t *testing.T) {
	Convey("Given each summarizer", t, func() {
		for _, name := range []string{"pooled", "positional"} {
			s, err := NewSummarizer(name)
			So(err, ShouldBeNil)

			Convey("Then "+name+" headers match its vector width", func() {
				So(len(s.Headers("w_")), ShouldEqual, len(s.Summarize(Roster{})))
				So(s.Headers("w_")[0], ShouldStartWith, "w_")
			})
		}

		Convey("When the name is unknown", func() {
			_, err := NewSummarizer("median")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestHistorical(t *testing.T) {
	Convey("Given skaters with and without career totals", t, func() {
		lines := Lines{
			Forwards: []SkaterLine{{PlayerID: 1, Goals: 3, Hits: 5, Takeaways: 2}, {PlayerID: 2, Goals: 1}},
			Goalies:  []GoalieLine{{PlayerID: 9, Saves: 30, ShotsAgainst: 33, GoalsAgainst: 3}},
		}
		lookup := func(id int) (Totals, bool) {
			if id == 1 {
				return Totals{GamesPlayed: 10, Goals: 5, Shots: 30, FaceoffPct: 0.52, AvgTOI: 1080}, true
			}
			return Totals{}, false
		}

		roster := lines.Historical(lookup)

		Convey("Then mapped fields become per-game averages", func() {
			So(roster.Forwards[0].Goals, ShouldEqual, 0.5)
			So(roster.Forwards[0].Shots, ShouldEqual, 3)
			So(roster.Forwards[0].FaceoffPct, ShouldEqual, 0.52)
			So(roster.Forwards[0].TOI, ShouldEqual, 1080)
		})

		Convey("Then fields with no historical source are zero", func() {
			So(roster.Forwards[0].Hits, ShouldEqual, 0)
			So(roster.Forwards[0].Takeaways, ShouldEqual, 0)
		})

		Convey("Then a player without totals contributes zeros", func() {
			So(roster.Forwards[1], ShouldResemble, SkaterStats{})
		})

		Convey("Then goalies contribute zeros so the game's goals against stay hidden", func() {
			So(len(roster.Goalies), ShouldEqual, 1)
			So(roster.Goalies[0], ShouldResemble, GoalieStats{})
		})
	})
}

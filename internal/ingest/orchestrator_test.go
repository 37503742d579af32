package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/fortuna/faceoff/internal/features"
	"github.com/fortuna/faceoff/internal/ledger"
	"github.com/fortuna/faceoff/internal/nhl"
	"github.com/fortuna/faceoff/internal/stats"
	"github.com/fortuna/faceoff/internal/store"
)

func newTestOrchestrator(src Source, l ledger.Ledger, opts ...Option) (*Orchestrator, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	opts = append([]Option{
		WithLogger(logrus.NewEntry(log)),
		WithTeams([]string{"TOR", "MTL", "BOS"}),
	}, opts...)
	return New(src, l, opts...), hook
}

func errorEntries(hook *test.Hook) []*logrus.Entry {
	var out []*logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			out = append(out, e)
		}
	}
	return out
}

func TestOrchestratorRun(t *testing.T) {
	ctx := context.Background()

	Convey("Given three teams sharing two finished games", t, func() {
		src := newFakeSource()
		src.addGame(1, "TOR", "MTL", 4, 2)
		src.addGame(2, "BOS", "TOR", 1, 3)
		mem := ledger.NewMemory(ledger.ModeIncremental)
		sink := &memorySink{}
		o, _ := newTestOrchestrator(src, mem, WithSinks(sink))

		Convey("When the season is ingested", func() {
			sum, err := o.Run(ctx, []int{testSeason})
			So(err, ShouldBeNil)

			Convey("Then each game is ledgered exactly once", func() {
				So(sum.GamesLedgered, ShouldEqual, 2)
				So(mem.GameIDs(), ShouldResemble, []int{1, 2})
				So(src.boxCallCount(1), ShouldEqual, 1)
				So(src.boxCallCount(2), ShouldEqual, 1)
			})

			Convey("Then one row per game reaches the sink", func() {
				rows := sink.Rows()
				So(len(rows), ShouldEqual, 2)
				So(len(rows[0].Values), ShouldEqual, len(o.Headers()))
			})

			Convey("Then the stored game carries its winner", func() {
				g, ok := mem.Game(2)
				So(ok, ShouldBeTrue)
				So(g.Winner, ShouldEqual, "away")
				So(g.HomeAbbrev, ShouldEqual, "BOS")
			})

			Convey("Then stat lines from both sides are stored", func() {
				So(len(mem.SkaterLines(1)), ShouldEqual, 4)
			})

			Convey("Then the game tables have watermarks", func() {
				for _, table := range []string{store.TableGames, store.TableSkaters, store.TableGoalies, store.TablePlayers} {
					_, ok, err := mem.Watermark(ctx, table)
					So(err, ShouldBeNil)
					So(ok, ShouldBeTrue)
				}
			})

			Convey("And the same inputs are ingested again", func() {
				sink2 := &memorySink{}
				o2, _ := newTestOrchestrator(src, mem, WithSinks(sink2))
				sum2, err := o2.Run(ctx, []int{testSeason})
				So(err, ShouldBeNil)

				Convey("Then nothing new is ledgered or emitted", func() {
					So(sum2.GamesLedgered, ShouldEqual, 0)
					So(sum2.GamesDuplicate, ShouldBeGreaterThanOrEqualTo, 2)
					So(mem.GameIDs(), ShouldResemble, []int{1, 2})
					So(sink2.Rows(), ShouldBeEmpty)
				})

				Convey("Then box scores are not fetched again", func() {
					So(src.boxCallCount(1), ShouldEqual, 1)
				})
			})
		})
	})

	Convey("Given a stored game whose upstream data later changes", t, func() {
		src := newFakeSource()
		src.addGame(1, "TOR", "MTL", 4, 2)
		mem := ledger.NewMemory(ledger.ModeIncremental)
		o, _ := newTestOrchestrator(src, mem)
		_, err := o.Run(ctx, []int{testSeason})
		So(err, ShouldBeNil)

		src.boxes[1] = finalBox(1, teamID("TOR"), teamID("MTL"), "TOR", "MTL", 0, 5)

		Convey("When ingested again", func() {
			_, err := o.Run(ctx, []int{testSeason})
			So(err, ShouldBeNil)

			Convey("Then the stored fields are unchanged", func() {
				g, _ := mem.Game(1)
				So(g.HomeScore, ShouldEqual, 4)
				So(g.Winner, ShouldEqual, "home")
				So(len(mem.SkaterLines(1)), ShouldEqual, 4)
			})
		})
	})

	Convey("Given one failing team and one failing game", t, func() {
		src := newFakeSource()
		src.addGame(1, "TOR", "MTL", 4, 2)
		src.addGame(2, "TOR", "MTL", 1, 2)
		src.addGame(3, "BOS", "MTL", 2, 1)
		src.boxErr[2] = errBoom
		src.scheduleErr["TOR"] = errBoom
		mem := ledger.NewMemory(ledger.ModeIncremental)
		o, hook := newTestOrchestrator(src, mem)

		Convey("When the season is ingested", func() {
			sum, err := o.Run(ctx, []int{testSeason})

			Convey("Then the run still completes", func() {
				So(err, ShouldBeNil)
				So(sum.TeamsFailed, ShouldEqual, 1)
				So(sum.GamesFailed, ShouldEqual, 1)
			})

			Convey("Then sibling games are ledgered", func() {
				So(sum.GamesLedgered, ShouldEqual, 2)
				has, _ := mem.HasGame(ctx, 2)
				So(has, ShouldBeFalse)
			})

			Convey("Then the failures are logged with context", func() {
				entries := errorEntries(hook)
				So(len(entries), ShouldEqual, 2)
				So(entries[0].Data["team"], ShouldEqual, "TOR")
				So(entries[1].Data["game_id"], ShouldEqual, 2)
			})
		})
	})

	Convey("Given a game with a malformed time-on-ice value", t, func() {
		src := newFakeSource()
		src.addGame(1, "TOR", "MTL", 4, 2)
		src.addGame(2, "TOR", "MTL", 3, 2)
		src.boxes[2].Rosters.Home.Forwards[0]["toi"] = "1:2"
		mem := ledger.NewMemory(ledger.ModeIncremental)
		o, _ := newTestOrchestrator(src, mem)

		Convey("Then only that game fails", func() {
			sum, err := o.Run(ctx, []int{testSeason})
			So(err, ShouldBeNil)
			So(sum.GamesLedgered, ShouldEqual, 1)
			So(sum.GamesFailed, ShouldEqual, 1)
		})
	})

	Convey("Given games that are not eligible", t, func() {
		src := newFakeSource()
		src.addGame(1, "TOR", "MTL", 4, 2)
		src.schedules["TOR"] = append(src.schedules["TOR"],
			nhl.GameStub{ID: 10, Season: testSeason, Type: nhl.GameTypePreseason, State: nhl.GameStateOfficial},
			nhl.GameStub{ID: 11, Season: testSeason, Type: nhl.GameTypeRegular, State: nhl.GameStateFuture},
			nhl.GameStub{ID: 12, Season: testSeason, Type: nhl.GameTypeRegular, State: nhl.GameStateFinal},
		)
		unpublished := finalBox(12, 1, 2, "TOR", "MTL", 1, 0)
		unpublished.Rosters = nil
		src.boxes[12] = unpublished
		mem := ledger.NewMemory(ledger.ModeIncremental)
		o, _ := newTestOrchestrator(src, mem)

		Convey("Then they are skipped without errors or fetches", func() {
			sum, err := o.Run(ctx, []int{testSeason})
			So(err, ShouldBeNil)
			So(sum.GamesLedgered, ShouldEqual, 1)
			So(sum.GamesSkipped, ShouldEqual, 3)
			So(sum.GamesFailed, ShouldEqual, 0)
			So(src.boxCallCount(10), ShouldEqual, 0)
			So(src.boxCallCount(11), ShouldEqual, 0)
			So(src.boxCallCount(12), ShouldEqual, 1)
		})
	})

	Convey("Given a read-only ledger", t, func() {
		src := newFakeSource()
		o, _ := newTestOrchestrator(src, ledger.NewMemory(ledger.ModeReadOnly))

		Convey("Then a run is refused", func() {
			_, err := o.Run(ctx, []int{testSeason})
			So(errors.Is(err, ledger.ErrReadOnly), ShouldBeTrue)
		})
	})

	Convey("Given several workers", t, func() {
		src := newFakeSource()
		src.addGame(1, "TOR", "MTL", 4, 2)
		src.addGame(2, "BOS", "TOR", 1, 3)
		src.addGame(3, "MTL", "BOS", 2, 5)
		mem := ledger.NewMemory(ledger.ModeIncremental)
		o, _ := newTestOrchestrator(src, mem, WithWorkers(3))

		Convey("Then every game is still ledgered once", func() {
			sum, err := o.Run(ctx, []int{testSeason})
			So(err, ShouldBeNil)
			So(sum.GamesLedgered, ShouldEqual, 3)
			So(len(mem.GameIDs()), ShouldEqual, 3)
			for _, id := range []int{1, 2, 3} {
				So(src.boxCallCount(id), ShouldEqual, 1)
			}
		})
	})

	Convey("Given a franchise-labelled positional builder", t, func() {
		src := newFakeSource()
		src.addGame(1, "TOR", "MTL", 1, 3)
		sink := &memorySink{}
		b := features.NewBuilder(stats.Positional{}, features.LabelFranchise)
		o, _ := newTestOrchestrator(src, ledger.NewMemory(ledger.ModeIncremental), WithBuilder(b), WithSinks(sink))

		Convey("Then the label is the winning team id", func() {
			_, err := o.Run(ctx, []int{testSeason})
			So(err, ShouldBeNil)
			rows := sink.Rows()
			So(len(rows), ShouldEqual, 1)
			So(rows[0].Label(), ShouldEqual, float64(teamID("MTL")))
			So(len(rows[0].Values), ShouldEqual, len(b.Headers()))
		})
	})

	Convey("Given a sink that fails", t, func() {
		src := newFakeSource()
		src.addGame(1, "TOR", "MTL", 4, 2)
		mem := ledger.NewMemory(ledger.ModeIncremental)
		o, hook := newTestOrchestrator(src, mem, WithSinks(&memorySink{err: errBoom}))

		Convey("Then the game is still ledgered and the failure logged", func() {
			sum, err := o.Run(ctx, []int{testSeason})
			So(err, ShouldBeNil)
			So(sum.GamesLedgered, ShouldEqual, 1)
			entries := errorEntries(hook)
			So(len(entries), ShouldEqual, 1)
			So(entries[0].Data["sink"], ShouldEqual, "memory")
		})
	})
}

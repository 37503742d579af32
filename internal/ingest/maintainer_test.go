package ingest

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/fortuna/faceoff/internal/ledger"
	"github.com/fortuna/faceoff/internal/nhl"
	"github.com/fortuna/faceoff/internal/store"
)

func TestMaintainer(t *testing.T) {
	ctx := context.Background()

	Convey("Given a ledger with one stored player", t, func() {
		mem := ledger.NewMemory(ledger.ModeIncremental)
		So(mem.UpsertPlayer(ctx, store.Player{PlayerID: 1, LastName: "Old"}), ShouldBeNil)

		src := newFakeSource()
		m := NewMaintainer(src, mem, nil, nil)

		Convey("When the stored player is reported inactive", func() {
			src.players[1] = &nhl.PlayerCareerStats{PlayerID: 1, Active: false}
			res := m.Reconcile(ctx, []int{1})

			Convey("Then the player is pruned", func() {
				So(res.Pruned, ShouldEqual, 1)
				_, ok := mem.Player(1)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When an absent player is reported active", func() {
			src.players[2] = &nhl.PlayerCareerStats{PlayerID: 2, Active: true, FirstName: "New", LastName: "Guy", TeamID: 10, Position: "D"}
			res := m.Reconcile(ctx, []int{2})

			Convey("Then the player is inserted with their bio", func() {
				So(res.Upserted, ShouldEqual, 1)
				p, ok := mem.Player(2)
				So(ok, ShouldBeTrue)
				So(p.LastName, ShouldEqual, "Guy")
				So(p.Position, ShouldEqual, "D")
			})
		})

		Convey("When an absent player is reported inactive", func() {
			src.players[3] = &nhl.PlayerCareerStats{PlayerID: 3, Active: false}
			res := m.Reconcile(ctx, []int{3})

			Convey("Then nothing changes", func() {
				So(res, ShouldResemble, MaintainResult{})
				_, ok := mem.Player(3)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When a retired player unknown to a read-only ledger is checked", func() {
			ro := NewMaintainer(src, ledger.NewMemory(ledger.ModeReadOnly), nil, nil)
			src.players[6] = &nhl.PlayerCareerStats{PlayerID: 6, Active: false}
			res := ro.Reconcile(ctx, []int{6})

			Convey("Then no delete is attempted", func() {
				So(res, ShouldResemble, MaintainResult{})
			})
		})

		Convey("When one lookup fails", func() {
			src.playerErr[4] = errBoom
			src.players[5] = &nhl.PlayerCareerStats{PlayerID: 5, Active: true}
			res := m.Reconcile(ctx, []int{4, 5})

			Convey("Then the other player is still handled", func() {
				So(res.Failed, ShouldEqual, 1)
				So(res.Upserted, ShouldEqual, 1)
				_, ok := mem.Player(5)
				So(ok, ShouldBeTrue)
			})
		})
	})
}

// stalePlayers answers every lookup from an old snapshot.
type stalePlayers map[int]*nhl.PlayerCareerStats

func (s stalePlayers) Player(_ context.Context, id int) (*nhl.PlayerCareerStats, error) {
	return s[id], nil
}

func TestMaintainerBypassesPlayerCache(t *testing.T) {
	ctx := context.Background()

	Convey("Given a player cached as active who has since retired upstream", t, func() {
		src := newFakeSource()
		src.addGame(2023020001, "TOR", "MTL", 3, 1)
		retired := teamID("TOR")*10 + 1
		src.players[retired] = &nhl.PlayerCareerStats{PlayerID: retired, Active: false}
		cached := stalePlayers{retired: {PlayerID: retired, Active: true, LastName: "Stale"}}

		mem := ledger.NewMemory(ledger.ModeIncremental)
		So(mem.UpsertPlayer(ctx, store.Player{PlayerID: retired, LastName: "Stale"}), ShouldBeNil)

		o := New(RoutePlayers(src, cached), mem, WithTeams([]string{"TOR", "MTL"}))

		Convey("When a season pass runs", func() {
			sum, err := o.Run(ctx, []int{testSeason})
			So(err, ShouldBeNil)

			Convey("Then the maintainer sees the upstream status and prunes the player", func() {
				So(sum.PlayersPruned, ShouldEqual, 1)
				_, ok := mem.Player(retired)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("Then Upstream unwraps the routed source", func() {
			So(Upstream(RoutePlayers(src, cached)), ShouldEqual, src)
			So(Upstream(src), ShouldEqual, src)
		})
	})
}

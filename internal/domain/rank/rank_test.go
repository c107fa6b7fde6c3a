package rank_test

import (
	"context"
	"testing"

	"github.com/fastbreaklabs/fastbreak/internal/adapters/repository"
	"github.com/fastbreaklabs/fastbreak/internal/domain/ledger"
	"github.com/fastbreaklabs/fastbreak/internal/domain/model"
	"github.com/fastbreaklabs/fastbreak/internal/domain/rank"
	. "github.com/smartystreets/goconvey/convey"
)

func seedLeague(ctx context.Context, store *repository.MemStore, lg *ledger.Ledger) {
	for _, id := range []string{"a", "b", "c"} {
		So(store.CreateTeam(ctx, model.NewTeam(id, "owner-"+id, 100)), ShouldBeNil)
	}
	So(lg.RecordMatchday(ctx, "a", 1, 15), ShouldBeNil)
	So(lg.RecordMatchday(ctx, "b", 1, 30), ShouldBeNil)
	So(lg.RecordMatchday(ctx, "c", 1, 15), ShouldBeNil)
}

func TestOverall(t *testing.T) {
	ctx := context.Background()

	Convey("Given teams at {a:15, b:30, c:15} total points", t, func() {
		store := repository.NewMemStore()
		lg := ledger.New(store)
		seedLeague(ctx, store, lg)
		ranker := rank.New(store, lg)

		Convey("When ranking overall", func() {
			rows, err := ranker.Overall(ctx)

			Convey("Then order is points descending, team id breaking the tie", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 3)
				So(rows[0].TeamID, ShouldEqual, "b")
				So(rows[1].TeamID, ShouldEqual, "a")
				So(rows[2].TeamID, ShouldEqual, "c")
			})

			Convey("Then ranks are sequential even on tied points", func() {
				So(rows[0].Rank, ShouldEqual, 1)
				So(rows[1].Rank, ShouldEqual, 2)
				So(rows[2].Rank, ShouldEqual, 3)
				So(rows[1].Points, ShouldEqual, rows[2].Points)
			})
		})

		Convey("When a team has no ledger entries", func() {
			So(store.CreateTeam(ctx, model.NewTeam("d", "owner-d", 100)), ShouldBeNil)
			rows, err := ranker.Overall(ctx)

			Convey("Then it still appears, ranked at zero points", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 4)
				So(rows[3].TeamID, ShouldEqual, "d")
				So(rows[3].Points, ShouldEqual, 0.0)
				So(rows[3].Rank, ShouldEqual, 4)
			})
		})
	})

	Convey("Given an empty league", t, func() {
		store := repository.NewMemStore()
		ranker := rank.New(store, ledger.New(store))

		Convey("When ranking overall", func() {
			rows, err := ranker.Overall(ctx)

			Convey("Then the board is empty, not an error", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldBeEmpty)
			})
		})
	})
}

func TestMatchday(t *testing.T) {
	ctx := context.Background()

	Convey("Given two matchdays of history", t, func() {
		store := repository.NewMemStore()
		lg := ledger.New(store)
		seedLeague(ctx, store, lg)

		// Matchday 2: only a and c score; b sits out.
		So(lg.RecordMatchday(ctx, "a", 2, 4), ShouldBeNil)
		So(lg.RecordMatchday(ctx, "c", 2, 9), ShouldBeNil)

		ranker := rank.New(store, lg)

		Convey("When ranking the latest matchday", func() {
			rows, err := ranker.Matchday(ctx)

			Convey("Then only matchday 2 points count", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 3)
				So(rows[0].TeamID, ShouldEqual, "c")
				So(rows[0].Points, ShouldEqual, 9.0)
				So(rows[1].TeamID, ShouldEqual, "a")
				So(rows[1].Points, ShouldEqual, 4.0)
			})

			Convey("Then the team that sat out ranks at zero", func() {
				So(rows[2].TeamID, ShouldEqual, "b")
				So(rows[2].Points, ShouldEqual, 0.0)
			})
		})

		Convey("When ranking overall after both matchdays", func() {
			rows, err := ranker.Overall(ctx)

			Convey("Then cumulative totals decide the order", func() {
				So(err, ShouldBeNil)
				// b:30, c:24, a:19
				So(rows[0].TeamID, ShouldEqual, "b")
				So(rows[1].TeamID, ShouldEqual, "c")
				So(rows[2].TeamID, ShouldEqual, "a")
			})
		})
	})
}

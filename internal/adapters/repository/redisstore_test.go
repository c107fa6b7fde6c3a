package repository //nolint:testpackage // exercises unexported reset retry path

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/fastbreaklabs/fastbreak/internal/domain/model"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(context.Background(), mr.Addr())
	if err != nil {
		t.Fatalf("connect to test redis: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRedisStoreResetAll(t *testing.T) {
	ctx := context.Background()

	Convey("Given a redis store with scored teams", t, func() {
		store := newTestRedisStore(t)

		for _, id := range []string{"team-a", "team-b"} {
			So(store.CreateTeam(ctx, model.NewTeam(id, "ada", 100)), ShouldBeNil)
			So(store.AppendEntry(ctx, model.LedgerEntry{TeamID: id, Matchday: 1, Points: 15}), ShouldBeNil)

			team, err := store.GetTeam(ctx, id)
			So(err, ShouldBeNil)
			team.PointsMatchday = 15
			team.TotalPoints = 15
			So(store.PutTeam(ctx, team), ShouldBeNil)
		}
		So(store.SetMatchday(ctx, 2), ShouldBeNil)

		Convey("When resetting all state", func() {
			So(store.ResetAll(ctx), ShouldBeNil)

			Convey("Then every team's points and ledger should be cleared", func() {
				for _, id := range []string{"team-a", "team-b"} {
					team, err := store.GetTeam(ctx, id)
					So(err, ShouldBeNil)
					So(team.TotalPoints, ShouldEqual, 0.0)
					So(team.PointsMatchday, ShouldEqual, 0.0)

					entries, err := store.Entries(ctx, id)
					So(err, ShouldBeNil)
					So(entries, ShouldBeEmpty)
				}
			})

			Convey("Then the matchday counter should be back at 1", func() {
				day, err := store.Matchday(ctx)
				So(err, ShouldBeNil)
				So(day, ShouldEqual, 1)
			})
		})
	})
}

func TestRedisStoreResetConflict(t *testing.T) {
	ctx := context.Background()

	Convey("Given a team updated concurrently during a reset", t, func() {
		store := newTestRedisStore(t)

		So(store.CreateTeam(ctx, model.NewTeam("team-a", "ada", 100)), ShouldBeNil)
		stale, err := store.GetTeam(ctx, "team-a")
		So(err, ShouldBeNil)

		// A write lands after the reset read its snapshot.
		current := stale.Clone()
		current.Slots[model.SlotGuard] = "p1"
		current.Coins = 60
		current.TotalPoints = 15
		current.PointsMatchday = 15
		So(store.PutTeam(ctx, current), ShouldBeNil)

		Convey("When zeroing points from the stale snapshot", func() {
			So(store.zeroTeamPoints(ctx, stale), ShouldBeNil)

			Convey("Then the conflicting write is re-read and zeroed, not skipped", func() {
				team, err := store.GetTeam(ctx, "team-a")
				So(err, ShouldBeNil)
				So(team.TotalPoints, ShouldEqual, 0.0)
				So(team.PointsMatchday, ShouldEqual, 0.0)
			})

			Convey("Then the rest of the concurrent write survives", func() {
				team, err := store.GetTeam(ctx, "team-a")
				So(err, ShouldBeNil)
				So(team.Slots[model.SlotGuard], ShouldEqual, "p1")
				So(team.Coins, ShouldEqual, 60.0)
			})
		})
	})
}

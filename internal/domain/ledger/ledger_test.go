package ledger_test

import (
	"context"
	"testing"

	"github.com/fastbreaklabs/fastbreak/internal/adapters/repository"
	"github.com/fastbreaklabs/fastbreak/internal/domain/ledger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRecordMatchday(t *testing.T) {
	ctx := context.Background()

	Convey("Given a ledger over an in-memory store", t, func() {
		lg := ledger.New(repository.NewMemStore())

		Convey("When recording an award", func() {
			So(lg.RecordMatchday(ctx, "team-a", 1, 15), ShouldBeNil)

			Convey("Then recording the same matchday again should fail", func() {
				err := lg.RecordMatchday(ctx, "team-a", 1, 99)
				So(err, ShouldEqual, repository.ErrDuplicateMatchday)

				total, _ := lg.TotalPoints(ctx, "team-a")
				So(total, ShouldEqual, 15.0)
			})

			Convey("Then a later matchday should accumulate", func() {
				So(lg.RecordMatchday(ctx, "team-a", 2, 5), ShouldBeNil)
				total, err := lg.TotalPoints(ctx, "team-a")
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 20.0)
			})
		})

		Convey("When recording a matchday below 1", func() {
			err := lg.RecordMatchday(ctx, "team-a", 0, 10)

			Convey("Then it should be rejected", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When recording zero points", func() {
			So(lg.RecordMatchday(ctx, "team-a", 1, 0), ShouldBeNil)

			Convey("Then the entry still blocks a rerun", func() {
				err := lg.RecordMatchday(ctx, "team-a", 1, 10)
				So(err, ShouldEqual, repository.ErrDuplicateMatchday)
			})
		})
	})
}

func TestPointQueries(t *testing.T) {
	ctx := context.Background()

	Convey("Given a ledger with history for several teams", t, func() {
		lg := ledger.New(repository.NewMemStore())
		So(lg.RecordMatchday(ctx, "a", 1, 10), ShouldBeNil)
		So(lg.RecordMatchday(ctx, "a", 2, 5), ShouldBeNil)
		So(lg.RecordMatchday(ctx, "b", 1, 30), ShouldBeNil)

		Convey("Then TotalPoints should sum all entries", func() {
			total, err := lg.TotalPoints(ctx, "a")
			So(err, ShouldBeNil)
			So(total, ShouldEqual, 15.0)
		})

		Convey("Then MatchdayPoints should return the asked-for matchday", func() {
			last, err := lg.MatchdayPoints(ctx, "a", 2)
			So(err, ShouldBeNil)
			So(last, ShouldEqual, 5.0)
		})

		Convey("Then MatchdayPoints should agree with Totals when a team sat out", func() {
			// b has no matchday-2 entry; both views must say 0.
			last, err := lg.MatchdayPoints(ctx, "b", 2)
			So(err, ShouldBeNil)
			So(last, ShouldEqual, 0.0)

			totals, err := lg.Totals(ctx)
			So(err, ShouldBeNil)
			So(totals["b"].PointsMatchday, ShouldEqual, last)
		})

		Convey("Then a team without entries should report zero", func() {
			total, err := lg.TotalPoints(ctx, "ghost")
			So(err, ShouldBeNil)
			So(total, ShouldEqual, 0.0)

			last, err := lg.MatchdayPoints(ctx, "ghost", 2)
			So(err, ShouldBeNil)
			So(last, ShouldEqual, 0.0)
		})

		Convey("Then Totals should derive the latest matchday view", func() {
			totals, err := lg.Totals(ctx)
			So(err, ShouldBeNil)
			So(totals, ShouldHaveLength, 2)

			So(totals["a"].TotalPoints, ShouldEqual, 15.0)
			So(totals["a"].PointsMatchday, ShouldEqual, 5.0)

			// b did not score on matchday 2, the latest.
			So(totals["b"].TotalPoints, ShouldEqual, 30.0)
			So(totals["b"].PointsMatchday, ShouldEqual, 0.0)
		})
	})
}

func TestLedgerResetAll(t *testing.T) {
	ctx := context.Background()

	Convey("Given a ledger with history", t, func() {
		lg := ledger.New(repository.NewMemStore())
		So(lg.RecordMatchday(ctx, "a", 1, 10), ShouldBeNil)

		Convey("When resetting", func() {
			So(lg.ResetAll(ctx), ShouldBeNil)

			Convey("Then all history should be gone", func() {
				total, err := lg.TotalPoints(ctx, "a")
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 0.0)

				totals, err := lg.Totals(ctx)
				So(err, ShouldBeNil)
				So(totals, ShouldBeEmpty)
			})

			Convey("Then matchday 1 should be recordable again", func() {
				So(lg.RecordMatchday(ctx, "a", 1, 8), ShouldBeNil)
			})
		})
	})
}

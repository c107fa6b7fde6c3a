package feed_test

import (
	"context"
	"testing"
	"time"

	"github.com/fastbreaklabs/fastbreak/internal/adapters/feed"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryFeed(t *testing.T) {
	ctx := context.Background()

	Convey("Given a feed seeded with performances", t, func() {
		f := feed.NewInMemoryFeed(
			feed.WithPerformances(map[int]map[string]float64{
				1: {"p1": 15, "p2": 7.5},
				2: {"p1": 3},
			}),
		)

		Convey("When looking up a known pair", func() {
			v, ok, err := f.Performance(ctx, "p1", 1)

			Convey("Then it should return the seeded value", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 15.0)
			})
		})

		Convey("When looking up a player with no data for the matchday", func() {
			v, ok, err := f.Performance(ctx, "p2", 2)

			Convey("Then it should report unknown, not an error", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
				So(v, ShouldEqual, 0.0)
			})
		})

		Convey("When setting a value incrementally", func() {
			f.Set("p3", 2, 11)
			v, ok, err := f.Performance(ctx, "p3", 2)

			Convey("Then it should be visible", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 11.0)
			})
		})

		Convey("When overwriting a value", func() {
			f.Set("p1", 1, 20)
			v, _, _ := f.Performance(ctx, "p1", 1)
			So(v, ShouldEqual, 20.0)
		})
	})
}

func TestInMemoryFeedLatency(t *testing.T) {
	Convey("Given a feed with simulated latency", t, func() {
		f := feed.NewInMemoryFeed(
			feed.WithLatencyRange(5*time.Millisecond, 10*time.Millisecond),
			feed.WithPerformances(map[int]map[string]float64{1: {"p1": 1}}),
		)

		Convey("When the lookup context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, _, err := f.Performance(ctx, "p1", 1)

			Convey("Then it should surface the cancellation", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When looking up with a live context", func() {
			start := time.Now()
			v, ok, err := f.Performance(context.Background(), "p1", 1)

			Convey("Then it should answer after the simulated delay", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 1.0)
				So(time.Since(start), ShouldBeGreaterThanOrEqualTo, 5*time.Millisecond)
			})
		})
	})
}

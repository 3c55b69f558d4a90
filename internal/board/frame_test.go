package board_test

import (
	"testing"
	"time"

	"ThermalBoard/internal/board"

	"github.com/smartystreets/goconvey/convey"
)

func TestFrameRequester(t *testing.T) {
	convey.Convey("Given a frame requester on a queue", t, func() {
		q := &board.QueueScheduler{}
		draws := 0
		fr := board.NewFrameRequester(q, func() { draws++ })

		convey.Convey("Repeated requests before a flush draw once", func() {
			fr.Request()
			fr.Request()
			fr.Request()
			convey.So(fr.Pending(), convey.ShouldBeTrue)
			convey.So(q.Flush(), convey.ShouldEqual, 1)
			convey.So(draws, convey.ShouldEqual, 1)
			convey.So(fr.Pending(), convey.ShouldBeFalse)
		})

		convey.Convey("A request after a flush schedules again", func() {
			fr.Request()
			q.Flush()
			fr.Request()
			q.Flush()
			convey.So(draws, convey.ShouldEqual, 2)
		})
	})
}

func TestFPSCounter(t *testing.T) {
	convey.Convey("Given an FPS counter", t, func() {
		var c board.FPSCounter
		start := time.Unix(1000, 0)
		c.Tick(start)
		for i := 1; i < 30; i++ {
			_, done := c.Tick(start.Add(time.Duration(i) * 30 * time.Millisecond))
			convey.So(done, convey.ShouldBeFalse)
		}

		convey.Convey("The rate is reported once a second has passed", func() {
			fps, done := c.Tick(start.Add(time.Second))
			convey.So(done, convey.ShouldBeTrue)
			convey.So(fps, convey.ShouldEqual, 31)
			convey.So(c.FPS(), convey.ShouldEqual, 31)
		})
	})
}

func TestFitWithin(t *testing.T) {
	convey.Convey("Given image sizes", t, func() {
		cases := []struct {
			w, h, wantW, wantH int
		}{
			{800, 600, 800, 600},
			{2400, 1200, 1200, 600},
			{1000, 3000, 400, 1200},
			{1201, 1201, 1200, 1200},
			{5000, 1, 1200, 1},
		}
		for _, tc := range cases {
			w, h := board.FitWithin(tc.w, tc.h, board.DefaultMaxImageDim)
			convey.So(w, convey.ShouldEqual, tc.wantW)
			convey.So(h, convey.ShouldEqual, tc.wantH)
		}
	})

	convey.Convey("Given mode names", t, func() {
		m, err := board.ParseMode("point")
		convey.So(err, convey.ShouldBeNil)
		convey.So(m, convey.ShouldEqual, board.ModePoint)
		_, err = board.ParseMode("spray")
		convey.So(err, convey.ShouldNotBeNil)
	})
}

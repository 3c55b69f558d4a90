package metrics_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ThermalBoard/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	convey.Convey("Given a manager on a private registry", t, func() {
		reg := prometheus.NewRegistry()
		m := metrics.NewManager(metrics.WithRegistry(reg), metrics.WithNamespace("test"))

		convey.Convey("When render events are recorded", func() {
			m.RecordFrame()
			m.RecordFrame()
			m.RecordCacheHit()
			m.RecordRecomposite(3 * time.Millisecond)
			m.RecordExport("csv")
			m.UpdateStoreSize(3, 6)

			convey.Convey("Then the collectors are registered and populated", func() {
				n, err := testutil.GatherAndCount(reg, "test_render_frames_total", "test_render_zones")
				convey.So(err, convey.ShouldBeNil)
				convey.So(n, convey.ShouldEqual, 2)

				expected := `
# HELP test_render_frames_total Frames presented to the display.
# TYPE test_render_frames_total counter
test_render_frames_total 2
`
				convey.So(testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_render_frames_total"), convey.ShouldBeNil)
			})

			convey.Convey("Then the handler serves the exposition format", func() {
				rec := httptest.NewRecorder()
				m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
				convey.So(rec.Code, convey.ShouldEqual, 200)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, `test_render_exports_total{format="csv"} 1`)
			})
		})
	})

	convey.Convey("Given a nil manager", t, func() {
		var m *metrics.Manager

		convey.Convey("Recording is a no-op", func() {
			convey.So(func() {
				m.RecordFrame()
				m.RecordRecomposite(time.Second)
				m.UpdateStoreSize(1, 1)
			}, convey.ShouldNotPanic)
			convey.So(m.Registry(), convey.ShouldBeNil)
		})
	})
}

package net_test

import (
	"encoding/json"
	"image/png"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ThermalBoard/internal/metrics"
	boardnet "ThermalBoard/internal/net"
	"ThermalBoard/internal/state"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func snapshot() boardnet.Snapshot {
	s := state.NewSessionState(state.DefaultRange)
	s.LoadSamples()
	return boardnet.SnapshotOf(s, 400, 300)
}

func dial(srv *httptest.Server) (*websocket.Conn, error) {
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	return conn, err
}

func readSnapshot(conn *websocket.Conn) (boardnet.Snapshot, error) {
	var snap boardnet.Snapshot
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return snap, err
	}
	err = json.Unmarshal(data, &snap)
	return snap, err
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestMirror(t *testing.T) {
	convey.Convey("Given a mirror behind a test server", t, func() {
		reg := prometheus.NewRegistry()
		m := boardnet.NewMirror(nil, metrics.NewManager(metrics.WithRegistry(reg)))
		srv := httptest.NewServer(m.Handler())
		defer srv.Close()

		convey.Convey("When a viewer connects after a publish", func() {
			m.Publish(snapshot())
			conn, err := dial(srv)
			convey.So(err, convey.ShouldBeNil)
			defer conn.Close()

			convey.Convey("Then it receives the latest snapshot first", func() {
				snap, err := readSnapshot(conn)
				convey.So(err, convey.ShouldBeNil)
				convey.So(snap.Seq, convey.ShouldEqual, uint64(1))
				convey.So(snap.Zones, convey.ShouldHaveLength, 3)
				convey.So(snap.Zones[0].Name, convey.ShouldEqual, "Hot Zone")
				convey.So(snap.Selected, convey.ShouldEqual, snap.Zones[0].ID)
			})

			convey.Convey("Then later publishes are streamed", func() {
				_, err := readSnapshot(conn)
				convey.So(err, convey.ShouldBeNil)
				convey.So(waitFor(func() bool { return m.Peers() == 1 }), convey.ShouldBeTrue)

				m.Publish(boardnet.Snapshot{Width: 10, Height: 10, Range: state.DefaultRange})
				snap, err := readSnapshot(conn)
				convey.So(err, convey.ShouldBeNil)
				convey.So(snap.Seq, convey.ShouldEqual, uint64(2))
				convey.So(snap.Zones, convey.ShouldBeEmpty)
			})

			convey.Convey("Then closing the viewer removes it", func() {
				convey.So(waitFor(func() bool { return m.Peers() == 1 }), convey.ShouldBeTrue)
				conn.Close()
				convey.So(waitFor(func() bool { return m.Peers() == 0 }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the zone list is fetched", func() {
			m.Publish(snapshot())
			resp, err := http.Get(srv.URL + "/zones")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			var snap boardnet.Snapshot
			convey.So(json.NewDecoder(resp.Body).Decode(&snap), convey.ShouldBeNil)
			convey.So(snap.Width, convey.ShouldEqual, 400)
			convey.So(snap.Zones, convey.ShouldHaveLength, 3)
		})

		convey.Convey("When the snapshot image is fetched", func() {
			m.Publish(snapshot())
			resp, err := http.Get(srv.URL + "/snapshot.png")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			convey.Convey("Then it is a PNG of the published size", func() {
				convey.So(resp.Header.Get("Content-Type"), convey.ShouldEqual, "image/png")
				img, err := png.Decode(resp.Body)
				convey.So(err, convey.ShouldBeNil)
				convey.So(img.Bounds().Dx(), convey.ShouldEqual, 400)
				convey.So(img.Bounds().Dy(), convey.ShouldEqual, 300)
			})
		})

		convey.Convey("When metrics are scraped", func() {
			resp, err := http.Get(srv.URL + "/metrics")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
		})
	})
}

func TestPort(t *testing.T) {
	convey.Convey("Given a TCP listener", t, func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		convey.So(err, convey.ShouldBeNil)
		defer ln.Close()
		convey.So(boardnet.Port(ln), convey.ShouldBeGreaterThan, 0)
	})
}

package net

import (
	stdnet "net"
	"testing"

	"github.com/hashicorp/mdns"
	"github.com/smartystreets/goconvey/convey"
)

func TestBoardFromEntry(t *testing.T) {
	convey.Convey("Given discovery responses", t, func() {
		convey.Convey("An IPv4 entry with a port becomes a board", func() {
			b, ok := boardFromEntry(&mdns.ServiceEntry{
				Name:       "lab._thermalboard._tcp.local.",
				AddrV4:     stdnet.IPv4(192, 168, 1, 20),
				Port:       8470,
				InfoFields: []string{"ThermalBoard"},
			})
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(b.Addr, convey.ShouldEqual, "192.168.1.20:8470")
			convey.So(b.Info, convey.ShouldResemble, []string{"ThermalBoard"})
		})

		convey.Convey("Entries without an address or port are skipped", func() {
			_, ok := boardFromEntry(&mdns.ServiceEntry{Port: 8470})
			convey.So(ok, convey.ShouldBeFalse)
			_, ok = boardFromEntry(&mdns.ServiceEntry{AddrV4: stdnet.IPv4(10, 0, 0, 1)})
			convey.So(ok, convey.ShouldBeFalse)
			_, ok = boardFromEntry(nil)
			convey.So(ok, convey.ShouldBeFalse)
		})
	})

	convey.Convey("The share URL carries the port", t, func() {
		convey.So(ShareURL(8470), convey.ShouldEndWith, ":8470/")
	})
}

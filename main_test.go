package main

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ThermalBoard/internal/export"
	"ThermalBoard/internal/state"

	"github.com/smartystreets/goconvey/convey"
)

const zonesCSV = `ZoneID,ZoneName,AvgPointX,AvgPointY,ZoneTemp_C,BrushSize
a,"Boiler",300,200,95.50,50
b,"Window",120,400,12.00,30
`

func execute(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRenderCommand(t *testing.T) {
	t.Setenv("THERMAL_CONFIG", "")
	in := writeFile(t, "zones.csv", zonesCSV)
	dir := t.TempDir()

	convey.Convey("Given an exported zone summary", t, func() {
		convey.Convey("render writes a labelled PNG the size of the canvas", func() {
			out := filepath.Join(dir, "board.png")
			stdout, err := execute("render", in, "-o", out)
			convey.So(err, convey.ShouldBeNil)
			convey.So(stdout, convey.ShouldContainSubstring, "wrote 2 zones")

			f, err := os.Open(out)
			convey.So(err, convey.ShouldBeNil)
			defer f.Close()
			cfg, err := png.DecodeConfig(f)
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Width, convey.ShouldEqual, state.SampleCanvasWidth)
			convey.So(cfg.Height, convey.ShouldEqual, state.SampleCanvasHeight)
		})

		convey.Convey("--format wins over the extension", func() {
			out := filepath.Join(dir, "report.out")
			_, err := execute("render", in, "-o", out, "--format", "pdf")
			convey.So(err, convey.ShouldBeNil)
			data, err := os.ReadFile(out)
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(data[:5]), convey.ShouldEqual, "%PDF-")
		})

		convey.Convey("an unknown extension is refused", func() {
			_, err := execute("render", in, "-o", filepath.Join(dir, "board.tiff"))
			convey.So(errors.Is(err, export.ErrUnknownFormat), convey.ShouldBeTrue)
		})

		convey.Convey("a header-only file exports nothing", func() {
			empty := writeFile(t, "empty.csv", strings.SplitN(zonesCSV, "\n", 2)[0]+"\n")
			out := filepath.Join(dir, "empty.png")
			_, err := execute("render", empty, "-o", out)
			convey.So(errors.Is(err, export.ErrNoZones), convey.ShouldBeTrue)
			_, statErr := os.Stat(out)
			convey.So(os.IsNotExist(statErr), convey.ShouldBeTrue)
		})
	})
}

func TestZonesCommand(t *testing.T) {
	t.Setenv("THERMAL_CONFIG", "")
	in := writeFile(t, "zones.csv", zonesCSV)

	convey.Convey("zones lists every zone of a file", t, func() {
		stdout, err := execute("zones", in)
		convey.So(err, convey.ShouldBeNil)
		convey.So(stdout, convey.ShouldContainSubstring, "2 zones")
		convey.So(stdout, convey.ShouldContainSubstring, "Boiler")
		convey.So(stdout, convey.ShouldContainSubstring, "95.5")
		convey.So(stdout, convey.ShouldContainSubstring, "(120, 400)")
	})

	convey.Convey("zones without a file or --discover fails", t, func() {
		_, err := execute("zones")
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestRenderTarget(t *testing.T) {
	convey.Convey("The output defaults follow the format", t, func() {
		renderFormat, renderOutput = "", ""
		f, out, err := renderTarget()
		convey.So(err, convey.ShouldBeNil)
		convey.So(f, convey.ShouldEqual, export.FormatPNG)
		convey.So(out, convey.ShouldEqual, "heatmap_report.png")

		renderFormat = "points"
		f, out, err = renderTarget()
		convey.So(err, convey.ShouldBeNil)
		convey.So(f, convey.ShouldEqual, export.FormatPointsCSV)
		convey.So(out, convey.ShouldEqual, "thermal_points.csv")
		renderFormat = ""
	})
}

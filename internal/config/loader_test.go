package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ThermalBoard/internal/board"
	"ThermalBoard/internal/config"
	"ThermalBoard/internal/heatmap"

	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"THERMAL_CONFIG",
	"THERMAL_BRUSH_SIZE",
	"THERMAL_MAX_TEMP",
	"THERMAL_MIN_TEMP",
	"THERMAL_TEMPERATURE",
	"THERMAL_PLACEMENT_MODE",
	"THERMAL_SELECTED_SCALE",
	"THERMAL_ADVERTISE",
}

func clearConfigEnvVars() {
	for _, v := range configEnvVars {
		_ = os.Unsetenv(v)
	}
}

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "thermal.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then the desktop defaults apply", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.CanvasWidth, convey.ShouldEqual, 800)
				convey.So(cfg.CanvasHeight, convey.ShouldEqual, 600)
				convey.So(cfg.MaxImageDim, convey.ShouldEqual, 1200)
				convey.So(cfg.BrushSize, convey.ShouldEqual, 30.0)
				convey.So(cfg.Temperature, convey.ShouldEqual, 25.0)
				convey.So(cfg.SelectedScale, convey.ShouldEqual, 1.3)
				convey.So(cfg.Settings(), convey.ShouldResemble, board.DefaultSettings())
				convey.So(cfg.RenderOptions(), convey.ShouldResemble, heatmap.DefaultOptions())
			})
		})

		convey.Convey("When loading from a YAML file", func() {
			path := writeConfig(t, `
brush_size: 60
min_temp: -20
max_temp: 40
placement_mode: point
brush_style: gradient
share_addr: ":8470"
`)
			_ = os.Setenv("THERMAL_CONFIG", path)
			cfg, err := config.Load(ctx)

			convey.Convey("Then the file overrides defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.BrushSize, convey.ShouldEqual, 60.0)
				convey.So(cfg.Range().Min, convey.ShouldEqual, -20.0)
				convey.So(cfg.Range().Max, convey.ShouldEqual, 40.0)
				convey.So(cfg.Settings().Mode, convey.ShouldEqual, board.ModePoint)
				convey.So(cfg.RenderOptions().Renderer.Style, convey.ShouldEqual, heatmap.BrushGradient)
				convey.So(cfg.ShareAddr, convey.ShouldEqual, ":8470")
			})

			convey.Convey("Then environment variables win over the file", func() {
				_ = os.Setenv("THERMAL_BRUSH_SIZE", "45")
				_ = os.Setenv("THERMAL_ADVERTISE", "true")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.BrushSize, convey.ShouldEqual, 45.0)
				convey.So(cfg.Advertise, convey.ShouldBeTrue)
				convey.So(cfg.MaxTemp, convey.ShouldEqual, 40.0)
			})
		})

		convey.Convey("When the file does not exist", func() {
			_, err := config.LoadFile(ctx, filepath.Join(t.TempDir(), "missing.yaml"))
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When values are out of bounds", func() {
			cases := []struct{ key, value string }{
				{"THERMAL_MAX_TEMP", "-5"},
				{"THERMAL_BRUSH_SIZE", "500"},
				{"THERMAL_PLACEMENT_MODE", "spray"},
				{"THERMAL_SELECTED_SCALE", "2"},
				{"THERMAL_TEMPERATURE", "NaN"},
				{"THERMAL_MIN_TEMP", "-Inf"},
				{"THERMAL_BRUSH_SIZE", "NaN"},
				{"THERMAL_SELECTED_SCALE", "NaN"},
			}
			for _, tc := range cases {
				convey.Convey("Then "+tc.key+"="+tc.value+" is rejected", func() {
					_ = os.Setenv(tc.key, tc.value)
					_, err := config.Load(ctx)
					convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			}
		})
	})
}

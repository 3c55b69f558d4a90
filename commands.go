package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"ThermalBoard/internal/board"
	"ThermalBoard/internal/export"
	"ThermalBoard/internal/heatmap"
	"ThermalBoard/internal/logger"
	"ThermalBoard/internal/metrics"
	boardnet "ThermalBoard/internal/net"
	"ThermalBoard/internal/state"
	"ThermalBoard/internal/ui"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	renderImage  string
	renderOutput string
	renderFormat string
	renderMin    float64
	renderMax    float64

	discover        bool
	discoverTimeout time.Duration
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [zones.csv]",
		Short: "render exported zones to a csv, png or pdf without opening a window",
		Args:  cobra.ExactArgs(1),
		RunE:  runRender,
	}
	cmd.Flags().StringVar(&renderImage, "image", "", "background image")
	cmd.Flags().StringVarP(&renderOutput, "out", "o", "", "output file, the format follows the extension")
	cmd.Flags().StringVar(&renderFormat, "format", "", "csv, points, png or pdf (overrides the extension)")
	cmd.Flags().Float64Var(&renderMin, "min", 0, "range minimum, defaults to the config")
	cmd.Flags().Float64Var(&renderMax, "max", 0, "range maximum, defaults to the config")
	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	exporter := export.NewExporter(log.Named("export"), metrics.NewManager())

	format, out, err := renderTarget()
	if err != nil {
		return err
	}

	zones, err := exporter.Load(ctx, args[0])
	if err != nil {
		return err
	}

	// Frames are drawn explicitly below, nothing is ever flushed.
	ctrl := ui.NewController(cfg, &board.QueueScheduler{}, log, nil)
	if renderImage != "" {
		f, err := os.Open(renderImage)
		if err != nil {
			return err
		}
		err = ctrl.LoadImage(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", renderImage, err)
		}
	}
	if cmd.Flags().Changed("min") || cmd.Flags().Changed("max") {
		rng := ctrl.Session().Range()
		lo, hi := rng.Min, rng.Max
		if cmd.Flags().Changed("min") {
			lo = renderMin
		}
		if cmd.Flags().Changed("max") {
			hi = renderMax
		}
		ctrl.SetRange(lo, hi)
	}
	ctrl.ImportZones(zones)
	ctrl.Frame()

	snap := export.Snapshot{
		Zones: ctrl.Session().Zones(),
		Image: ctrl.Compositor().Snapshot(),
		Range: ctrl.Session().Range(),
	}
	if err := exporter.Save(ctx, out, format, snap); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d zones to %s\n", len(snap.Zones), out)
	return nil
}

// renderTarget settles the output path and format from --out and --format.
func renderTarget() (export.Format, string, error) {
	var (
		f   export.Format
		err error
	)
	switch {
	case renderFormat != "":
		f, err = export.ParseFormat(renderFormat)
	case renderOutput != "":
		f, err = export.FormatForPath(renderOutput)
	default:
		f = export.FormatPNG
	}
	if err != nil {
		return "", "", err
	}
	out := renderOutput
	if out == "" {
		out = f.DefaultFileName()
	}
	return f, out, nil
}

func newZonesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zones [zones.csv]",
		Short: "list the zones of an export, or the mirrors on the network",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runZones,
	}
	cmd.Flags().BoolVar(&discover, "discover", false, "browse the local network for shared boards")
	cmd.Flags().DurationVar(&discoverTimeout, "timeout", boardnet.DefaultBrowseTimeout, "how long to browse")
	return cmd
}

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	headStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	nameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

func runZones(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	if discover {
		return discoverBoards(ctx, w, log)
	}
	if len(args) == 0 {
		return fmt.Errorf("zones: a csv file or --discover is required")
	}

	zones, err := export.NewExporter(log.Named("export"), nil).Load(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s: %d zones", args[0], len(zones))))
	fmt.Fprint(w, zoneTable(zones, cfg.Range()))
	return nil
}

var zoneColumns = []struct {
	title string
	width int
}{
	{"", 2},
	{"Zone", 22},
	{"°C", 9},
	{"°F", 9},
	{"Centroid", 14},
	{"Points", 7},
	{"Brush", 6},
}

// zoneTable lays the zones out in fixed columns with a swatch of the ramp
// color for each temperature.
func zoneTable(zones []state.Zone, rng state.TempRange) string {
	var b strings.Builder
	cell := func(i int, s string, st lipgloss.Style) string {
		return st.Width(zoneColumns[i].width).MaxWidth(zoneColumns[i].width).Render(s)
	}

	head := make([]string, len(zoneColumns))
	for i, c := range zoneColumns {
		head[i] = cell(i, c.title, headStyle)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, head...))
	b.WriteByte('\n')

	for _, z := range zones {
		c := heatmap.RampAt(rng.Normalize(z.Temperature))
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)))
		ct := z.Centroid()
		row := []string{
			cell(0, "██", swatch),
			cell(1, z.Name, nameStyle),
			cell(2, fmt.Sprintf("%.1f", z.Temperature), swatch),
			cell(3, fmt.Sprintf("%.1f", z.Fahrenheit()), dimStyle),
			cell(4, fmt.Sprintf("(%.0f, %.0f)", ct.X, ct.Y), dimStyle),
			cell(5, fmt.Sprint(len(z.Points)), dimStyle),
			cell(6, fmt.Sprintf("%.0f", z.BrushSize), dimStyle),
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
		b.WriteByte('\n')
	}
	return b.String()
}

func discoverBoards(ctx context.Context, w io.Writer, log logger.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, discoverTimeout)
	defer cancel()

	fmt.Fprintln(w, titleStyle.Render("Shared boards"))
	n := 0
	err := boardnet.Browse(ctx, func(b boardnet.Board) {
		n++
		fmt.Fprintf(w, "%s  %s\n", nameStyle.Render("http://"+b.Addr+"/"), dimStyle.Render(b.Instance))
	})
	if err != nil {
		log.Warn(ctx, "browse failed", logger.Error(err))
		return err
	}
	if n == 0 {
		fmt.Fprintln(w, dimStyle.Render("none found"))
	}
	return nil
}

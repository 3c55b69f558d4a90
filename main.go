package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"ThermalBoard/internal/config"
	"ThermalBoard/internal/logger"
	"ThermalBoard/internal/metrics"
	boardnet "ThermalBoard/internal/net"
	"ThermalBoard/internal/ui"

	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string
	shareAddr  string
	advertise  bool
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "thermalboard",
		Short:         "paint and annotate thermal zones over an image",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runBoard,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml), defaults to $THERMAL_CONFIG")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	rootCmd.Flags().StringVar(&shareAddr, "share", "", "serve a read-only mirror on this address, e.g. :8470")
	rootCmd.Flags().BoolVar(&advertise, "advertise", false, "announce the mirror over mDNS")

	rootCmd.AddCommand(newRenderCmd(), newZonesCmd())
	return rootCmd
}

func main() {
	rootCmd := newRootCmd()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// setup loads the configuration, applies the persistent flags and brings up
// the global logger.
func setup(cmd *cobra.Command) (*config.Config, logger.Logger, error) {
	ctx := cmd.Context()
	if err := logger.Init(); err != nil {
		return nil, nil, err
	}

	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFile(ctx, configFile)
	} else {
		cfg, err = config.Load(ctx)
	}
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Lookup("share") != nil && flags.Changed("share") {
		cfg.ShareAddr = shareAddr
	}
	if flags.Lookup("advertise") != nil && flags.Changed("advertise") {
		cfg.Advertise = advertise
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return nil, nil, err
	}
	return cfg, logger.Get(), nil
}

func runBoard(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	m := metrics.NewManager()

	opts := ui.Options{Config: cfg, Log: log, Metrics: m}
	if cfg.ShareAddr != "" {
		stopShare, err := startMirror(ctx, cfg, log, m, &opts)
		if err != nil {
			return err
		}
		defer stopShare()
	}

	ui.RunApp(ctx, opts)
	return nil
}

// startMirror listens on the share address and fills in the mirror and the
// link shown in the status bar. The returned func stops serving.
func startMirror(ctx context.Context, cfg *config.Config, log logger.Logger, m *metrics.Manager, opts *ui.Options) (func(), error) {
	ln, err := net.Listen("tcp", cfg.ShareAddr)
	if err != nil {
		return nil, fmt.Errorf("share on %s: %w", cfg.ShareAddr, err)
	}
	port := boardnet.Port(ln)
	mirrorLog := log.Named("mirror")
	mirror := boardnet.NewMirror(mirrorLog, m)

	serveCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := mirror.Serve(serveCtx, ln); err != nil && !errors.Is(err, context.Canceled) {
			mirrorLog.Error(serveCtx, "mirror stopped", logger.Error(err))
		}
	}()

	var stopAdvert func()
	if cfg.Advertise {
		srv, err := boardnet.Advertise(port, "ThermalBoard mirror")
		if err != nil {
			mirrorLog.Warn(ctx, "mdns advertise failed", logger.Error(err))
		} else {
			stopAdvert = func() { _ = srv.Shutdown() }
		}
	}

	opts.Mirror = mirror
	opts.ShareURL = boardnet.ShareURL(port)
	mirrorLog.Info(ctx, "mirror serving", logger.String("url", opts.ShareURL))

	return func() {
		if stopAdvert != nil {
			stopAdvert()
		}
		cancel()
		<-done
	}, nil
}

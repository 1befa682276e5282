// cmd/overlay/main.go
//go:build linux

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/hashicorp/go-hclog"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tamzrod/telemetry-overlay/internal/config"
	"github.com/tamzrod/telemetry-overlay/internal/metrics"
	"github.com/tamzrod/telemetry-overlay/internal/overlay"
	"github.com/tamzrod/telemetry-overlay/internal/pool"
	"github.com/tamzrod/telemetry-overlay/internal/present"
	"github.com/tamzrod/telemetry-overlay/internal/sampler"
	"github.com/tamzrod/telemetry-overlay/internal/scheduler"
	"github.com/tamzrod/telemetry-overlay/internal/status"
	"github.com/tamzrod/telemetry-overlay/internal/writer"
)

var CLI struct {
	Config   string `short:"c" help:"Configuration file path" default:"overlay.yaml" type:"path"`
	LogLevel string `help:"Log level (trace, debug, info, warn, error)" default:"info" enum:"trace,debug,info,warn,error"`
	LogJSON  bool   `name:"log-json" help:"Emit JSON log lines"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("overlay"),
		kong.Description("Real-time telemetry overlay for camera preview."),
	)

	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "overlay",
		Level:      hclog.LevelFromString(CLI.LogLevel),
		JSONFormat: CLI.LogJSON,
		Output:     os.Stderr,
	})

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger hclog.Logger) error {
	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Samplers
	// --------------------

	camera, closeCamera, err := sampler.BuildCamera(cfg.Device, logger.Named("camera"))
	if err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	defer closeCamera()

	health, err := sampler.BuildHealth(cfg.Health, logger.Named("health"))
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}

	// --------------------
	// Compositor
	// --------------------

	comp, err := overlay.New(overlay.Config{
		Width:         cfg.Overlay.CanvasWidth,
		Height:        cfg.Overlay.CanvasHeight,
		TelemetrySize: cfg.Overlay.TelemetryFontSize,
		VersionSize:   cfg.Overlay.VersionFontSize,
		VersionText:   cfg.Overlay.VersionText,
		Layout:        overlay.DefaultLayout,
	})
	if err != nil {
		return err
	}
	defer comp.Close()

	// --------------------
	// Presentation: sink + pool + pipeline
	// --------------------

	var rec metrics.Recorder = metrics.NoopRecorder{}
	var prec *metrics.PrometheusRecorder
	if cfg.Metrics.Listen != "" {
		reg := prom.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		prec = metrics.NewPrometheusRecorder(reg)
		rec = prec
	}

	count := cfg.Presentation.Buffers
	if count == 0 {
		count = present.FramebufferBuffers
	}

	sink, err := present.OpenFramebuffer(cfg.Presentation.Framebuffer, comp.Stride(), count, logger.Named("framebuffer"))
	if err != nil {
		return err
	}
	bufs, err := pool.New(count, comp.FrameSize())
	if err != nil {
		_ = sink.Close()
		return err
	}

	// teardown order: disable the sink, then close the pool
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Warn("sink close failed", "error", err)
		}
		bufs.Close()
	}()

	pipeline, err := present.NewPipeline(bufs, sink, comp.FrameSize(), rec)
	if err != nil {
		return err
	}
	prec.WatchPool(bufs.Free)

	// --------------------
	// Optional mirror
	// --------------------

	var opts []scheduler.Option
	if cfg.Mirror != nil {
		mw, closeMirror, err := writer.Build(*cfg.Mirror)
		if err != nil {
			// the mirror is auxiliary: the overlay runs without it
			logger.Error("mirror disabled", "error", err)
		} else {
			defer closeMirror()
			mailbox := make(chan status.Snapshot, 1)
			go writer.Run(ctx, mw, mailbox, logger.Named("mirror"))
			opts = append(opts, scheduler.WithMirror(mailbox))
			logger.Info("mirror enabled",
				"transport", cfg.Mirror.Transport,
				"endpoint", cfg.Mirror.Endpoint,
				"base_slot", cfg.Mirror.BaseSlot,
			)
		}
	}

	// --------------------
	// Optional metrics listener
	// --------------------

	if prec != nil {
		srv := &http.Server{
			Addr:              cfg.Metrics.Listen,
			Handler:           prec.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics listener failed", "error", err)
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
		logger.Info("metrics enabled", "listen", cfg.Metrics.Listen)
	}

	// --------------------
	// Scheduler
	// --------------------

	opts = append(opts,
		scheduler.WithRecorder(rec),
		scheduler.WithLogger(logger.Named("scheduler")),
	)

	var state status.LoopState
	sched, err := scheduler.New(
		scheduler.Config{
			Tick:           time.Duration(cfg.Loop.TickMs) * time.Millisecond,
			RedrawInterval: time.Duration(cfg.Loop.RedrawIntervalMs) * time.Millisecond,
		},
		&state, camera, health, comp, pipeline, opts...,
	)
	if err != nil {
		return err
	}

	logger.Info("overlay running",
		"device", cfg.Device.Path,
		"framebuffer", cfg.Presentation.Framebuffer,
		"canvas", fmt.Sprintf("%dx%d", cfg.Overlay.CanvasWidth, cfg.Overlay.CanvasHeight),
		"buffers", count,
	)

	err = sched.Run(ctx)
	logger.Info("overlay stopped", "redraws", state.Redraws)
	return err
}

// rendersim drives the render engine against a simulated tracker: a
// ticker stands in for the display vsync, an orbiting anchor stands in
// for platform tracking, and per-frame results plus periodic stats go
// to the structured log. Useful for eyeballing cadence and cache
// behavior without a device.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/e7canasta/aura-rendersync/config"
	"github.com/e7canasta/aura-rendersync/coordinator"
	"github.com/e7canasta/aura-rendersync/frameclock"
	"github.com/e7canasta/aura-rendersync/session"
	"github.com/e7canasta/aura-rendersync/transform"
)

const statsInterval = 2 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to configuration file (defaults apply when empty)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	duration := flag.Duration("duration", 10*time.Second, "How long to run the simulation")
	dropRate := flag.Float64("drop", 0.1, "Fraction of tracker samples to drop [0..1]")
	warmup := flag.Duration("warmup", 2*time.Second, "Simulated tracker warmup before it reports ready")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.InstanceID == "" {
		cfg.InstanceID = "rendersim-" + uuid.NewString()[:8]
	}

	slog.Info("starting render simulation",
		"instance_id", cfg.InstanceID,
		"target_hz", cfg.Clock.TargetHz,
		"viewport", cfg.Viewport,
		"duration", *duration,
		"drop_rate", *dropRate,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	pulse := frameclock.NewTickerPulse(cfg.ClockInterval())
	defer pulse.Stop()
	clock := frameclock.New(pulse, cfg.ClockInterval())

	aspect := float32(cfg.Viewport.Width) / float32(cfg.Viewport.Height)
	tracker := newMockTracker(aspect, *dropRate, *warmup)

	coord, err := coordinator.New(clock, tracker, cfg.CoordinatorConfig())
	if err != nil {
		slog.Error("failed to create coordinator", "error", err)
		os.Exit(1)
	}

	life, err := session.New(clock, coord, tracker, simProvider{}, cfg.LifecycleConfig())
	if err != nil {
		slog.Error("failed to create session", "error", err)
		os.Exit(1)
	}

	if err := life.Start(ctx); err != nil {
		slog.Error("session initialization failed", "error", err, "state", life.State().String())
		os.Exit(1)
	}

	var visible atomic.Uint64
	if err := life.Track(func(res transform.Result, ft frameclock.FrameTime) {
		if res.Visible {
			visible.Add(1)
		}
		slog.Debug("frame",
			"index", ft.FrameIndex,
			"delta_ms", float64(ft.DeltaNanos)/1e6,
			"visible", res.Visible,
			"x", res.ScreenX, "y", res.ScreenY,
			"scale", res.Scale,
		)
	}); err != nil {
		slog.Error("failed to begin tracking", "error", err)
		os.Exit(1)
	}

	statsTicker := time.NewTicker(statsInterval)
	defer statsTicker.Stop()
	deadline := time.After(*duration)

run:
	for {
		select {
		case sig := <-sigChan:
			slog.Info("received shutdown signal", "signal", sig.String())
			break run
		case <-deadline:
			slog.Info("simulation duration elapsed")
			break run
		case <-statsTicker.C:
			logStats(clock, coord, visible.Load())
		}
	}

	logStats(clock, coord, visible.Load())

	if err := life.Dispose(); err != nil {
		slog.Error("dispose failed", "error", err)
		os.Exit(1)
	}
	slog.Info("render simulation stopped", "instance_id", cfg.InstanceID)
}

// loadConfig reads the file when given, otherwise synthesizes a
// default phone-portrait setup.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg := &config.Config{
		Viewport: config.ViewportConfig{Width: 1080, Height: 1920},
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func logStats(clock frameclock.Clock, coord coordinator.Coordinator, visible uint64) {
	cs := clock.Stats()
	xs := coord.Stats()
	slog.Info("engine stats",
		"ticks", cs.TicksDelivered,
		"late_ticks", cs.LateTicks,
		"measured_hz", cs.MeasuredHz,
		"frames", xs.FramesDelivered,
		"visible_frames", visible,
		"cache_served", xs.CacheServed,
		"solver_faults", xs.SolverFaults,
		"stale_blanks", xs.StaleBlanks,
	)
}

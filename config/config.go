// Package config loads and validates the engine's YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/e7canasta/aura-rendersync/coordinator"
	"github.com/e7canasta/aura-rendersync/session"
	"github.com/e7canasta/aura-rendersync/transform"
)

// Config represents the complete render engine configuration
type Config struct {
	InstanceID  string            `yaml:"instance_id"`
	Clock       ClockConfig       `yaml:"clock"`
	Viewport    ViewportConfig    `yaml:"viewport"`
	Solver      SolverConfig      `yaml:"solver"`
	Coordinator CoordinatorConfig `yaml:"coordinator"`
	Session     SessionConfig     `yaml:"session"`
}

// ClockConfig contains frame clock settings
type ClockConfig struct {
	TargetHz int `yaml:"target_hz"` // nominal refresh rate (default: 60)
}

// ViewportConfig contains initial screen dimensions
type ViewportConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// SolverConfig contains transform pipeline tuning
type SolverConfig struct {
	MinScale       float32 `yaml:"min_scale"`       // overlay scale floor
	MaxScale       float32 `yaml:"max_scale"`       // overlay scale ceiling
	ReferenceDepth float32 `yaml:"reference_depth"` // depth (m) at which scale == 1
	EdgeMargin     float32 `yaml:"edge_margin"`     // NDC tolerance beyond the frustum edge
	MaxDepth       float32 `yaml:"max_depth"`       // far cull distance (m)
	BaseWidth      float32 `yaml:"base_width"`      // overlay quad width (px) at scale 1
	BaseHeight     float32 `yaml:"base_height"`     // overlay quad height (px) at scale 1
}

// CoordinatorConfig contains tick-bridging settings
type CoordinatorConfig struct {
	StaleFrameLimit int `yaml:"stale_frame_limit"` // missed ticks before the overlay is hidden
}

// SessionConfig contains lifecycle settings
type SessionConfig struct {
	InitAttempts    int `yaml:"init_attempts"`     // tracker probe budget (default: 10)
	InitRetryDelayS int `yaml:"init_retry_delay_s"` // delay between probes in seconds (default: 1)
}

// Load reads and parses a YAML configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// ClockInterval returns the nominal tick interval for the configured
// refresh rate.
func (c *Config) ClockInterval() time.Duration {
	return time.Duration(float64(time.Second) / float64(c.Clock.TargetHz))
}

// TransformConfig converts the solver section into the solver's own
// config type.
func (c *Config) TransformConfig() transform.Config {
	return transform.Config{
		MinScale:       c.Solver.MinScale,
		MaxScale:       c.Solver.MaxScale,
		ReferenceDepth: c.Solver.ReferenceDepth,
		EdgeMargin:     c.Solver.EdgeMargin,
		MaxDepth:       c.Solver.MaxDepth,
		BaseWidth:      c.Solver.BaseWidth,
		BaseHeight:     c.Solver.BaseHeight,
	}
}

// CoordinatorConfig converts the coordinator and viewport sections
// into the coordinator's own config type.
func (c *Config) CoordinatorConfig() coordinator.Config {
	return coordinator.Config{
		Viewport:        transform.Viewport{Width: c.Viewport.Width, Height: c.Viewport.Height},
		Solver:          c.TransformConfig(),
		StaleFrameLimit: c.Coordinator.StaleFrameLimit,
	}
}

// LifecycleConfig converts the session section into the lifecycle's
// own config type.
func (c *Config) LifecycleConfig() session.Config {
	return session.Config{
		InitAttempts:   c.Session.InitAttempts,
		InitRetryDelay: time.Duration(c.Session.InitRetryDelayS) * time.Second,
	}
}

package config

import (
	"fmt"
	"regexp"
)

var instanceIDPattern = regexp.MustCompile(`^[a-z0-9\-]+$`)

// Validate checks if the configuration is valid and fills in defaults
// for optional fields
func Validate(cfg *Config) error {
	// Validate instance_id (optional; generated at startup when empty)
	if cfg.InstanceID != "" && !instanceIDPattern.MatchString(cfg.InstanceID) {
		return fmt.Errorf("instance_id must match pattern [a-z0-9-]+")
	}

	// Validate clock config
	if cfg.Clock.TargetHz == 0 {
		cfg.Clock.TargetHz = 60 // default
	}
	if cfg.Clock.TargetHz < 0 || cfg.Clock.TargetHz > 240 {
		return fmt.Errorf("clock.target_hz must be in 1..240, got %d", cfg.Clock.TargetHz)
	}

	// Validate viewport
	if cfg.Viewport.Width <= 0 || cfg.Viewport.Height <= 0 {
		return fmt.Errorf("viewport.width and viewport.height must be > 0, got %dx%d",
			cfg.Viewport.Width, cfg.Viewport.Height)
	}

	// Validate solver config
	if err := validateSolver(&cfg.Solver); err != nil {
		return fmt.Errorf("solver validation failed: %w", err)
	}

	// Set coordinator defaults
	if cfg.Coordinator.StaleFrameLimit == 0 {
		cfg.Coordinator.StaleFrameLimit = 30 // ~0.5s at 60 Hz
	}
	if cfg.Coordinator.StaleFrameLimit < 0 {
		return fmt.Errorf("coordinator.stale_frame_limit must be > 0, got %d",
			cfg.Coordinator.StaleFrameLimit)
	}

	// Set session defaults
	if cfg.Session.InitAttempts == 0 {
		cfg.Session.InitAttempts = 10 // default
	}
	if cfg.Session.InitAttempts < 0 {
		return fmt.Errorf("session.init_attempts must be > 0, got %d", cfg.Session.InitAttempts)
	}
	if cfg.Session.InitRetryDelayS == 0 {
		cfg.Session.InitRetryDelayS = 1 // default
	}
	if cfg.Session.InitRetryDelayS < 0 {
		return fmt.Errorf("session.init_retry_delay_s must be > 0, got %d",
			cfg.Session.InitRetryDelayS)
	}

	return nil
}

// validateSolver validates the transform section, filling defaults for
// zero-valued fields so a minimal config file stays minimal
func validateSolver(s *SolverConfig) error {
	if s.MinScale == 0 {
		s.MinScale = 0.25
	}
	if s.MaxScale == 0 {
		s.MaxScale = 4.0
	}
	if s.ReferenceDepth == 0 {
		s.ReferenceDepth = 1.0
	}
	if s.EdgeMargin == 0 {
		s.EdgeMargin = 0.1
	}
	if s.MaxDepth == 0 {
		s.MaxDepth = 30.0
	}
	if s.BaseWidth == 0 {
		s.BaseWidth = 512
	}
	if s.BaseHeight == 0 {
		s.BaseHeight = 288
	}

	if s.MinScale < 0 || s.MaxScale < s.MinScale {
		return fmt.Errorf("scale bounds invalid: min=%.3f max=%.3f", s.MinScale, s.MaxScale)
	}
	if s.ReferenceDepth <= 0 {
		return fmt.Errorf("reference_depth must be > 0, got %.3f", s.ReferenceDepth)
	}
	if s.EdgeMargin < 0 {
		return fmt.Errorf("edge_margin must be >= 0, got %.3f", s.EdgeMargin)
	}
	if s.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be > 0, got %.3f", s.MaxDepth)
	}
	if s.BaseWidth <= 0 || s.BaseHeight <= 0 {
		return fmt.Errorf("base overlay size must be > 0, got %.0fx%.0f", s.BaseWidth, s.BaseHeight)
	}

	return nil
}

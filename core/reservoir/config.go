package reservoir

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// WindowConfig defines configuration for a windowed reservoir.
type WindowConfig struct {
	// Capacity is the max number of items each window's sample may hold
	Capacity int `mapstructure:"capacity"`

	// WindowDuration is the duration of each sampling window
	WindowDuration time.Duration `mapstructure:"window_duration"`

	// RolloverScheduleCron optionally drives rollover checks on a cron
	// schedule, so idle windows still close without waiting for the next
	// ingested item
	RolloverScheduleCron string `mapstructure:"rollover_schedule_cron"`
}

// Validate checks if the windowed reservoir configuration is valid
func (cfg *WindowConfig) Validate() error {
	if cfg.Capacity < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidCapacity, cfg.Capacity)
	}

	if cfg.WindowDuration <= 0 {
		return fmt.Errorf("window_duration must be positive, got %s", cfg.WindowDuration)
	}

	if cfg.RolloverScheduleCron != "" {
		if _, err := cron.ParseStandard(cfg.RolloverScheduleCron); err != nil {
			return fmt.Errorf("invalid rollover_schedule_cron: %w", err)
		}
	}

	return nil
}

// DefaultWindowConfig returns the default windowed reservoir configuration.
func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Capacity:       5000,
		WindowDuration: 60 * time.Second,
	}
}

package config

import (
	"fmt"

	"github.com/mcoot/lanterngame/internal/logger"
)

// Validate checks the merged configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Server.Port)
	}

	switch c.Storage.Type {
	case StorageMemory:
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("%w: redis url required for redis storage", ErrInvalidConfig)
		}
	case StoragePostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("%w: postgres dsn required for postgres storage", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage type %q", ErrInvalidConfig, c.Storage.Type)
	}

	if err := c.Game.Validate(); err != nil {
		return err
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Validate checks the game constants
func (g Game) Validate() error {
	if g.HackingTriesAmount < 1 {
		return fmt.Errorf("%w: hacking tries amount must be positive", ErrInvalidConfig)
	}
	if g.HackingDecoyAmount < 0 {
		return fmt.Errorf("%w: hacking decoy amount must not be negative", ErrInvalidConfig)
	}
	if g.CalibrationRewardAmount < 0 {
		return fmt.Errorf("%w: calibration reward amount must not be negative", ErrInvalidConfig)
	}
	if g.CalibrationCodeLength < 1 {
		return fmt.Errorf("%w: calibration code length must be positive", ErrInvalidConfig)
	}
	if g.CaptureSignalIncrement < 0 {
		return fmt.Errorf("%w: capture signal increment must not be negative", ErrInvalidConfig)
	}
	return nil
}

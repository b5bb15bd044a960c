// Package config loads server configuration from environment variables and
// command-line flags. Flag values win over environment values; environment
// defaults fill whatever neither source sets.
package config

import (
	"time"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config is the top-level server configuration
type Config struct {
	Server  Server  `envPrefix:"LANTERN_SERVER_"`
	Storage Storage `envPrefix:"LANTERN_STORAGE_"`
	Game    Game    `envPrefix:"LANTERN_GAME_"`
	Auth    Auth    `envPrefix:"LANTERN_AUTH_"`

	// LogLevel is a zerolog level name
	// Env: LANTERN_LOG_LEVEL
	LogLevel string `env:"LANTERN_LOG_LEVEL" envDefault:"info"`
}

// Server holds HTTP listener settings
type Server struct {
	Host            string        `env:"HOST"`
	Port            int           `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// Storage selects and configures the persistence backend
type Storage struct {
	// Type is one of memory, redis or postgres
	// Env: LANTERN_STORAGE_TYPE
	Type string `env:"TYPE" envDefault:"memory"`

	RedisURL      string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	RedisPoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`

	PostgresDSN     string `env:"POSTGRES_DSN"`
	PostgresMigrate bool   `env:"POSTGRES_MIGRATE" envDefault:"true"`
}

// Game holds the process-wide game balance constants
type Game struct {
	// HackingTriesAmount is the initial try budget of a hack session
	HackingTriesAmount int `env:"HACKING_TRIES_AMOUNT" envDefault:"3"`
	// HackingDecoyAmount is how many decoy entries accompany the real one
	HackingDecoyAmount int `env:"HACKING_DECOY_AMOUNT" envDefault:"3"`
	// CalibrationRewardAmount is the reward given to stations created without one
	CalibrationRewardAmount int `env:"CALIBRATION_REWARD_AMOUNT" envDefault:"10"`
	CalibrationCodeLength   int `env:"CALIBRATION_CODE_LENGTH" envDefault:"6"`
	// CaptureSignalIncrement is added to a station's signal on every capture
	CaptureSignalIncrement int `env:"CAPTURE_SIGNAL_INCREMENT" envDefault:"1"`
}

// Auth holds identity and admin settings
type Auth struct {
	// AdminToken grants admin access through the X-Admin-Token header.
	// Empty disables admin routes.
	AdminToken      string        `env:"ADMIN_TOKEN"`
	SessionDuration time.Duration `env:"SESSION_DURATION" envDefault:"24h"`
}

// DefaultGame returns the game constants used when nothing is configured
func DefaultGame() Game {
	return Game{
		HackingTriesAmount:      3,
		HackingDecoyAmount:      3,
		CalibrationRewardAmount: 10,
		CalibrationCodeLength:   6,
		CaptureSignalIncrement:  1,
	}
}

// Load builds the configuration from flag values (may be nil) and the environment
func Load(flags *Flags) (*Config, error) {
	return newConfigBuilder().
		withFlags(flags).
		withEnv().
		build()
}

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the server settings read from the environment.
type Config struct {
	Port          string `env:"PORT" envDefault:"8080"`
	DBType        string `env:"DB_TYPE" envDefault:"json"`
	DatabaseURL   string `env:"DATABASE_URL" envDefault:"host=localhost user=blast password=blast dbname=blast_arena sslmode=disable"`
	DBFile        string `env:"DB_FILE" envDefault:"db.json"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"blast-arena.db"`
	TickRate      int    `env:"TICK_RATE" envDefault:"60"`
	StageName     string `env:"STAGE_NAME" envDefault:"classic"`
	SnapshotEvery int    `env:"SNAPSHOT_EVERY" envDefault:"60"`
	MaxPlayers    int    `env:"MAX_PLAYERS" envDefault:"4"`
	BombRange     int    `env:"BOMB_RANGE" envDefault:"2"`
	ResumeMatches bool   `env:"RESUME_MATCHES" envDefault:"false"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the match loop cannot run with.
func (c Config) Validate() error {
	switch c.DBType {
	case "json", "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown DB_TYPE %q", c.DBType)
	}
	if c.TickRate <= 0 {
		return errors.New("TICK_RATE must be positive")
	}
	if c.MaxPlayers <= 0 || c.MaxPlayers > 4 {
		return errors.New("MAX_PLAYERS must be between 1 and 4")
	}
	if c.BombRange <= 0 {
		return errors.New("BOMB_RANGE must be positive")
	}
	if c.SnapshotEvery < 0 {
		return errors.New("SNAPSHOT_EVERY must not be negative")
	}
	return nil
}

// TickInterval is the wall-clock duration of one simulation tick.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

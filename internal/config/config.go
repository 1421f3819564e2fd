package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime settings of the Coup module.
type Config struct {
	MinPlayers int `env:"COUP_MIN_PLAYERS" envDefault:"2"`
	MaxPlayers int `env:"COUP_MAX_PLAYERS" envDefault:"6"`

	BotsEnabled bool `env:"COUP_BOTS_ENABLED" envDefault:"true"`
	// BotMinDelaySeconds and BotMaxDelaySeconds bound the thinking delay of a bot turn.
	BotMinDelaySeconds int `env:"COUP_BOT_MIN_DELAY_SEC" envDefault:"1"`
	BotMaxDelaySeconds int `env:"COUP_BOT_MAX_DELAY_SEC" envDefault:"3"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before adding a bot to a solo human lobby.
	BotAutoFillDelaySeconds int    `env:"COUP_BOT_AUTO_FILL_DELAY_SEC" envDefault:"15"`
	BotIdentitiesPath       string `env:"COUP_BOT_IDENTITIES_PATH" envDefault:"data/bot_identities.json"`

	SeatGrantSecret string        `env:"COUP_SEAT_GRANT_SECRET"`
	SeatGrantIssuer string        `env:"COUP_SEAT_GRANT_ISSUER" envDefault:"coup"`
	SeatGrantTTL    time.Duration `env:"COUP_SEAT_GRANT_TTL" envDefault:"10m"`
}

// Load parses the configuration from the given environment, typically the
// Nakama runtime env map, and validates it.
func Load(environment map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects inconsistent settings.
func (c *Config) Validate() error {
	if c.MinPlayers < 2 {
		return fmt.Errorf("COUP_MIN_PLAYERS must be at least 2, got %d", c.MinPlayers)
	}
	if c.MaxPlayers < c.MinPlayers {
		return fmt.Errorf("COUP_MAX_PLAYERS (%d) is below COUP_MIN_PLAYERS (%d)", c.MaxPlayers, c.MinPlayers)
	}
	if c.BotMinDelaySeconds < 0 || c.BotMaxDelaySeconds < c.BotMinDelaySeconds {
		return fmt.Errorf("invalid bot delay range %d..%d", c.BotMinDelaySeconds, c.BotMaxDelaySeconds)
	}
	if c.BotAutoFillDelaySeconds < 0 {
		return fmt.Errorf("COUP_BOT_AUTO_FILL_DELAY_SEC must not be negative")
	}
	if c.SeatGrantSecret != "" && c.SeatGrantTTL <= 0 {
		return fmt.Errorf("COUP_SEAT_GRANT_TTL must be positive, got %s", c.SeatGrantTTL)
	}
	return nil
}

// SeatGrantsEnabled reports whether joins must present a signed seat grant.
func (c *Config) SeatGrantsEnabled() bool {
	return c.SeatGrantSecret != ""
}

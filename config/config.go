package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string
	DiscordGuildID string

	// Database configuration
	DatabaseURL string

	// Market policy. These are caller policy knobs, not engine invariants:
	// the stores only require stake > 0 and balance >= 0.
	StartingBalance   decimal.Decimal // balance granted on account creation
	BasePrize         decimal.Decimal // house-funded amount added to every pot
	MinStakeRatio     decimal.Decimal // minimum stake as a fraction of BasePrize
	MaxLockinDuration time.Duration   // cap applied when parsing lock-in durations
	LockCheckInterval time.Duration   // scheduler tick for locking expired polls

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// MinStake returns the smallest stake the bet policy accepts
func (c *Config) MinStake() decimal.Decimal {
	return c.BasePrize.Mul(c.MinStakeRatio)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	config := &Config{
		// Discord
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),

		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Policy defaults
		StartingBalance:   decimal.NewFromInt(1000),
		BasePrize:         decimal.NewFromInt(100),
		MinStakeRatio:     decimal.NewFromFloat(0.25),
		MaxLockinDuration: 14 * 24 * time.Hour,
		LockCheckInterval: time.Minute,

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsed, err := decimal.NewFromString(balance); err == nil {
			config.StartingBalance = parsed
		}
	}
	if prize := os.Getenv("BASE_PRIZE"); prize != "" {
		if parsed, err := decimal.NewFromString(prize); err == nil {
			config.BasePrize = parsed
		}
	}
	if ratio := os.Getenv("MIN_STAKE_RATIO"); ratio != "" {
		if parsed, err := decimal.NewFromString(ratio); err == nil {
			config.MinStakeRatio = parsed
		}
	}
	if maxLockin := os.Getenv("MAX_LOCKIN_DURATION"); maxLockin != "" {
		if parsed, err := time.ParseDuration(maxLockin); err == nil {
			config.MaxLockinDuration = parsed
		}
	}
	if interval := os.Getenv("LOCK_CHECK_INTERVAL"); interval != "" {
		if seconds, err := strconv.Atoi(interval); err == nil && seconds > 0 {
			config.LockCheckInterval = time.Duration(seconds) * time.Second
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}

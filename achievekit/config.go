package achievekit

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/klauspost/compress/gzip"
)

// Config tunes the persistence cycle. Every field can be overridden from the
// environment.
type Config struct {
	// SaveIntervalMin and SaveIntervalMax bound the jittered delay between
	// periodic uploads.
	SaveIntervalMin time.Duration `env:"GAGFORGE_SAVE_INTERVAL_MIN" envDefault:"20m"`
	SaveIntervalMax time.Duration `env:"GAGFORGE_SAVE_INTERVAL_MAX" envDefault:"30m"`

	// SaveCronexpr replaces the jittered interval with a fixed CRON schedule.
	SaveCronexpr string `env:"GAGFORGE_SAVE_CRONEXPR"`

	// CountPushDelay is how long a completed-count push waits for further
	// completions before it is sent.
	CountPushDelay time.Duration `env:"GAGFORGE_COUNT_PUSH_DELAY" envDefault:"5s"`

	// ResetInterval and ResetBurst throttle ResetAchievementData.
	ResetInterval time.Duration `env:"GAGFORGE_RESET_INTERVAL" envDefault:"1m"`
	ResetBurst    int           `env:"GAGFORGE_RESET_BURST" envDefault:"1"`

	CompressionLevel int `env:"GAGFORGE_COMPRESSION_LEVEL" envDefault:"6"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		SaveIntervalMin:  20 * time.Minute,
		SaveIntervalMax:  30 * time.Minute,
		CountPushDelay:   5 * time.Second,
		ResetInterval:    time.Minute,
		ResetBurst:       1,
		CompressionLevel: 6,
	}
}

// ParseConfig loads the configuration from environment variables.
func ParseConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.SaveIntervalMin <= 0 || c.SaveIntervalMax < c.SaveIntervalMin {
		return fmt.Errorf("invalid save interval [%s, %s]", c.SaveIntervalMin, c.SaveIntervalMax)
	}
	if c.CountPushDelay < 0 {
		return fmt.Errorf("count push delay must not be negative, got %s", c.CountPushDelay)
	}
	if c.ResetInterval <= 0 || c.ResetBurst < 1 {
		return fmt.Errorf("invalid reset throttle %s/%d", c.ResetInterval, c.ResetBurst)
	}
	if c.CompressionLevel < gzip.HuffmanOnly || c.CompressionLevel > gzip.BestCompression {
		return fmt.Errorf("compression level must be %d-%d, got %d", gzip.HuffmanOnly, gzip.BestCompression, c.CompressionLevel)
	}
	return nil
}

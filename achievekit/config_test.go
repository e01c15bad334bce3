package achievekit

import (
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseConfig_FromEnv(t *testing.T) {
	t.Setenv("GAGFORGE_SAVE_INTERVAL_MIN", "1m")
	t.Setenv("GAGFORGE_SAVE_INTERVAL_MAX", "2m")
	t.Setenv("GAGFORGE_SAVE_CRONEXPR", "*/5 * * * *")
	t.Setenv("GAGFORGE_COUNT_PUSH_DELAY", "250ms")
	t.Setenv("GAGFORGE_RESET_BURST", "3")
	t.Setenv("GAGFORGE_COMPRESSION_LEVEL", "9")

	cfg, err := ParseConfig()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.SaveIntervalMin)
	assert.Equal(t, 2*time.Minute, cfg.SaveIntervalMax)
	assert.Equal(t, "*/5 * * * *", cfg.SaveCronexpr)
	assert.Equal(t, 250*time.Millisecond, cfg.CountPushDelay)
	assert.Equal(t, 3, cfg.ResetBurst)
	assert.Equal(t, gzip.BestCompression, cfg.CompressionLevel)
}

func TestParseConfig_Invalid(t *testing.T) {
	t.Setenv("GAGFORGE_COUNT_PUSH_DELAY", "soon")
	_, err := ParseConfig()
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero min interval", func(c *Config) { c.SaveIntervalMin = 0 }},
		{"max below min", func(c *Config) { c.SaveIntervalMax = c.SaveIntervalMin - time.Second }},
		{"negative push delay", func(c *Config) { c.CountPushDelay = -time.Second }},
		{"zero reset interval", func(c *Config) { c.ResetInterval = 0 }},
		{"zero reset burst", func(c *Config) { c.ResetBurst = 0 }},
		{"compression too high", func(c *Config) { c.CompressionLevel = 10 }},
		{"compression too low", func(c *Config) { c.CompressionLevel = -3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, DefaultConfig().Validate())
}

func TestJitterSchedule_StaysInBounds(t *testing.T) {
	s := jitterSchedule{min: 20 * time.Minute, max: 30 * time.Minute}
	for i := 0; i < 200; i++ {
		d := s.Next(testEpoch).Sub(testEpoch)
		require.GreaterOrEqual(t, d, 20*time.Minute)
		require.LessOrEqual(t, d, 30*time.Minute)
	}
}

func TestJitterSchedule_FixedInterval(t *testing.T) {
	s := jitterSchedule{min: time.Minute, max: time.Minute}
	assert.Equal(t, testEpoch.Add(time.Minute), s.Next(testEpoch))
}

func TestNewSaveSchedule(t *testing.T) {
	cfg := DefaultConfig()
	s, err := newSaveSchedule(cfg)
	require.NoError(t, err)
	assert.IsType(t, jitterSchedule{}, s)

	cfg.SaveCronexpr = "0 * * * *"
	s, err = newSaveSchedule(cfg)
	require.NoError(t, err)
	assert.Equal(t, testEpoch.Add(time.Hour), s.Next(testEpoch))

	cfg.SaveCronexpr = "every tuesday"
	_, err = newSaveSchedule(cfg)
	assert.Error(t, err)
}

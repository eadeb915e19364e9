package config

import (
	"errors"
	"fmt"

	"github.com/mgpai22/recite/internal/player"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePlayback(); err != nil {
		return err
	}
	if err := c.validateTranslate(); err != nil {
		return err
	}
	return nil
}

// RepeatTarget parses playback.repeat.
func (c *Config) RepeatTarget() (player.RepeatTarget, error) {
	return player.ParseRepeatTarget(c.Playback.Repeat)
}

func (c *Config) validatePlayback() error {
	if _, err := c.RepeatTarget(); err != nil {
		return fmt.Errorf("playback.repeat: %w", err)
	}
	if c.Playback.Rate <= 0 || c.Playback.Rate > 4 {
		return errors.New("playback.rate must be in (0, 4]")
	}
	if c.Playback.TickIntervalMS < 10 || c.Playback.TickIntervalMS > 1000 {
		return errors.New("playback.tick_interval_ms must be between 10 and 1000")
	}
	if c.Playback.SkipSeconds <= 0 {
		return errors.New("playback.skip_seconds must be positive")
	}
	return nil
}

func (c *Config) validateTranslate() error {
	switch c.Translate.Provider {
	case "gemini", "openai", "anthropic":
	default:
		return fmt.Errorf("translate.provider %q is not one of gemini, openai, anthropic", c.Translate.Provider)
	}
	if c.Translate.BatchSize < 1 {
		return errors.New("translate.batch_size must be at least 1")
	}
	if c.Translate.Concurrency < 1 {
		return errors.New("translate.concurrency must be at least 1")
	}
	if c.Translate.RequestsPerMinute < 0 {
		return errors.New("translate.requests_per_minute must not be negative")
	}
	return nil
}

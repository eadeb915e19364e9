package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePlayback()
	c.normalizeTranslate()
	c.normalizeTranscribe()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.StateFile) == "" {
		c.Paths.StateFile = defaultStateFile()
	}
	var err error
	if c.Paths.StateFile, err = expandPath(c.Paths.StateFile); err != nil {
		return fmt.Errorf("paths.state_file: %w", err)
	}
	return nil
}

func (c *Config) normalizePlayback() {
	c.Playback.Repeat = strings.ToLower(strings.TrimSpace(c.Playback.Repeat))
	if c.Playback.Repeat == "" {
		c.Playback.Repeat = defaultRepeat
	}
	if c.Playback.TickIntervalMS == 0 {
		c.Playback.TickIntervalMS = defaultTickIntervalMS
	}
	if c.Playback.Rate == 0 {
		c.Playback.Rate = defaultRate
	}
}

func (c *Config) normalizeTranslate() {
	c.Translate.Provider = strings.ToLower(strings.TrimSpace(c.Translate.Provider))
	if c.Translate.Provider == "" {
		c.Translate.Provider = defaultTranslateProvider
	}
	c.Translate.Model = strings.TrimSpace(c.Translate.Model)
	if c.Translate.TargetLanguage != "" {
		c.Translate.TargetLanguage = NormalizeLanguage(c.Translate.TargetLanguage)
	}
	if c.Translate.BatchSize == 0 {
		c.Translate.BatchSize = defaultBatchSize
	}
	if c.Translate.Concurrency == 0 {
		c.Translate.Concurrency = defaultConcurrency
	}

	lookupKey(&c.Translate.GeminiAPIKey, "GEMINI_API_KEY")
	lookupKey(&c.Translate.OpenAIAPIKey, "OPENAI_API_KEY")
	lookupKey(&c.Translate.AnthropicAPIKey, "ANTHROPIC_API_KEY")
}

func (c *Config) normalizeTranscribe() {
	c.Transcribe.Model = strings.TrimSpace(c.Transcribe.Model)
	if c.Transcribe.Model == "" {
		c.Transcribe.Model = defaultTranscribeModel
	}
	if c.Transcribe.Language != "" {
		c.Transcribe.Language = NormalizeLanguage(c.Transcribe.Language)
	}
}

// env wins only when the file leaves the key empty
func lookupKey(dst *string, env string) {
	if strings.TrimSpace(*dst) != "" {
		return
	}
	if value, ok := os.LookupEnv(env); ok {
		*dst = strings.TrimSpace(value)
	}
}

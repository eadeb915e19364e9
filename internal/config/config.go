package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Playback holds the defaults for the play command.
type Playback struct {
	// positive integer or "infinite"
	Repeat         string  `toml:"repeat"`
	Rate           float64 `toml:"rate"`
	TickIntervalMS int     `toml:"tick_interval_ms"`
	SkipSeconds    float64 `toml:"skip_seconds"`
}

// Translate holds translation provider settings.
type Translate struct {
	Provider          string `toml:"provider"`
	Model             string `toml:"model"`
	TargetLanguage    string `toml:"target_language"`
	BatchSize         int    `toml:"batch_size"`
	Concurrency       int    `toml:"concurrency"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
	GeminiAPIKey      string `toml:"gemini_api_key"`
	OpenAIAPIKey      string `toml:"openai_api_key"`
	AnthropicAPIKey   string `toml:"anthropic_api_key"`
}

// Transcribe holds transcription settings.
type Transcribe struct {
	Model    string `toml:"model"`
	Language string `toml:"language"`
}

// Paths holds file locations.
type Paths struct {
	StateFile string `toml:"state_file"`
}

// Config is the full recite configuration file.
type Config struct {
	Playback   Playback   `toml:"playback"`
	Translate  Translate  `toml:"translate"`
	Transcribe Transcribe `toml:"transcribe"`
	Paths      Paths      `toml:"paths"`
}

// DefaultConfigPath returns the config location under XDG_CONFIG_HOME,
// falling back to ~/.config.
func DefaultConfigPath() (string, error) {
	if base, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && strings.TrimSpace(base) != "" {
		return expandPath(filepath.Join(base, "recite", "config.toml"))
	}
	return expandPath("~/.config/recite/config.toml")
}

// Load reads path, or the default location when path is empty. A missing
// file is not an error; defaults apply. It returns the resolved path and
// whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// SampleConfig returns a commented configuration file with the defaults.
func SampleConfig() string {
	return sampleConfig
}

// WriteSample writes the sample config to path, refusing to overwrite.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// APIKey returns the configured key for a translation provider.
func (c *Config) APIKey(provider string) string {
	switch strings.ToLower(provider) {
	case "gemini":
		return c.Translate.GeminiAPIKey
	case "openai":
		return c.Translate.OpenAIAPIKey
	case "anthropic":
		return c.Translate.AnthropicAPIKey
	}
	return ""
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return "", false, err
		}
	}

	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path is a directory: %s", expanded)
	}
	return expanded, true, nil
}

func defaultStateFile() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "recite", "state.toml")
	}
	return "~/.local/state/recite/state.toml"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

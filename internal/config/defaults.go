package config

const (
	defaultRepeat            = "1"
	defaultRate              = 1.0
	defaultTickIntervalMS    = 50
	defaultSkipSeconds       = 5.0
	defaultTranslateProvider = "gemini"
	defaultBatchSize         = 50
	defaultConcurrency       = 3
	defaultTranscribeModel   = "gemini-2.5-flash"
)

// Default returns a Config populated with the built-in defaults.
func Default() Config {
	return Config{
		Playback: Playback{
			Repeat:         defaultRepeat,
			Rate:           defaultRate,
			TickIntervalMS: defaultTickIntervalMS,
			SkipSeconds:    defaultSkipSeconds,
		},
		Translate: Translate{
			Provider:    defaultTranslateProvider,
			BatchSize:   defaultBatchSize,
			Concurrency: defaultConcurrency,
		},
		Transcribe: Transcribe{
			Model: defaultTranscribeModel,
		},
		Paths: Paths{
			StateFile: defaultStateFile(),
		},
	}
}

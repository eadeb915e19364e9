package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mgpai22/recite/internal/config"
	"github.com/mgpai22/recite/internal/logging"
	"github.com/mgpai22/recite/internal/prefs"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "recite",
	Short: "Sentence-repetition drills over subtitled media",
	Long: `Recite plays a video or audio file against its subtitles and replays
each cue a chosen number of times before moving on.

It can also translate subtitles into a second language for bilingual
drills, transcribe media that has no subtitles, and keep a list of
video libraries to pick lessons from.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)

		loaded, path, exists, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		logger.Debugw("Loaded config", "path", path, "exists", exists)
		return nil
	},
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file path (default $XDG_CONFIG_HOME/recite/config.toml)")
}

func openStore() *prefs.Store {
	return prefs.NewStore(cfg.Paths.StateFile)
}

func fileExists(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", path)
	}
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("expected a file, got directory: %s", path)
	}
	return nil
}

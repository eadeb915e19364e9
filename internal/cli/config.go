package cli

import (
	"fmt"

	"github.com/mgpai22/recite/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			var err error
			if path, err = config.DefaultConfigPath(); err != nil {
				return err
			}
		}
		if err := config.WriteSample(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample config: %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rows := [][]string{
			{"playback.repeat", cfg.Playback.Repeat},
			{"playback.rate", fmt.Sprintf("%g", cfg.Playback.Rate)},
			{"playback.tick_interval_ms", fmt.Sprintf("%d", cfg.Playback.TickIntervalMS)},
			{"playback.skip_seconds", fmt.Sprintf("%g", cfg.Playback.SkipSeconds)},
			{"translate.provider", cfg.Translate.Provider},
			{"translate.model", cfg.Translate.Model},
			{"translate.target_language", cfg.Translate.TargetLanguage},
			{"translate.batch_size", fmt.Sprintf("%d", cfg.Translate.BatchSize)},
			{"translate.concurrency", fmt.Sprintf("%d", cfg.Translate.Concurrency)},
			{"translate.requests_per_minute", fmt.Sprintf("%d", cfg.Translate.RequestsPerMinute)},
			{"transcribe.model", cfg.Transcribe.Model},
			{"transcribe.language", cfg.Transcribe.Language},
			{"paths.state_file", cfg.Paths.StateFile},
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Key", "Value"}, rows, nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd)
}

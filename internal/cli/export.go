package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mgpai22/recite/internal/subtitle"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [subtitle_file]",
	Short: "Export cues with their translations to SRT, VTT or ASS",
	Long: `Write the cues of an SRT file to another subtitle format. Each cue's
translation is included, with your own translations taking precedence
over machine ones.

Use --set to record your own translation for a cue by its number; it can
be given several times.

Examples:
  recite export lesson.srt --format vtt
  recite export lesson.srt -f ass -o lesson.ass
  recite export lesson.srt --set "3=Good morning" --set "4=See you"`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().
		StringP("format", "f", "", "Output subtitle format (srt, vtt, ass; default from --output extension)")
	exportCmd.Flags().
		StringP("output", "o", "", "Output file path")
	exportCmd.Flags().
		StringArray("set", nil, "User translation for a cue as NUMBER=TEXT")
}

func runExport(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]

	formatStr, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	sets, _ := cmd.Flags().GetStringArray("set")

	if err := fileExists(subtitlePath); err != nil {
		return err
	}

	var format subtitle.Format
	if formatStr == "" {
		if outputPath == "" {
			return fmt.Errorf("either --format or --output is required")
		}
		format = subtitle.GetFormatFromExtension(outputPath)
	} else {
		f, err := parseFormat(formatStr)
		if err != nil {
			return err
		}
		format = f
	}

	if outputPath == "" {
		base := strings.TrimSuffix(subtitlePath, filepath.Ext(subtitlePath))
		outputPath = base + ".export" + subtitle.GetExtensionForFormat(format)
	}

	cues, err := subtitle.ParseFile(subtitlePath)
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}
	if len(cues) == 0 {
		return fmt.Errorf("subtitle file contains no cues")
	}

	if err := applyUserTranslations(cues, sets); err != nil {
		return err
	}

	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return fmt.Errorf("failed to create subtitle writer: %w", err)
	}
	if err := writer.Write(cues, outputPath); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}

	logger.Infow("Exported subtitles",
		"input", subtitlePath,
		"output", outputPath,
		"format", format,
		"cues", len(cues),
		"user_translations", len(sets),
	)

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles exported successfully: %s\n", absOutput)
	return nil
}

// applyUserTranslations parses NUMBER=TEXT pairs and stores each as the
// user translation of the first cue declaring that number.
func applyUserTranslations(cues []subtitle.Cue, sets []string) error {
	for _, set := range sets {
		numStr, text, ok := strings.Cut(set, "=")
		if !ok {
			return fmt.Errorf("invalid --set %q: expected NUMBER=TEXT", set)
		}
		num, err := strconv.Atoi(strings.TrimSpace(numStr))
		if err != nil {
			return fmt.Errorf("invalid cue number in --set %q", set)
		}

		found := false
		for i := range cues {
			if cues[i].Index == num {
				cues[i].UserTranslation = strings.TrimSpace(text)
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("no cue numbered %d", num)
		}
	}
	return nil
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/recite/internal/config"
	"github.com/mgpai22/recite/internal/subtitle"
	"github.com/mgpai22/recite/internal/translate"
	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:   "translate [subtitle_file]",
	Short: "Add a translation paragraph to every cue using AI",
	Long: `Translate an SRT file into a second language and write a bilingual
SRT where each cue's translation follows its text after a blank line.
This is the layout 'recite play' shows as the cue translation.

Cues that already carry a translation are left alone unless --overwrite
is given.

Examples:
  recite translate lesson.srt --target-language en
  recite translate lesson.srt -t japanese --provider anthropic
  recite translate lesson.srt -t es -l fr --in-place`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		StringP("target-language", "t", "", "Target language for translation (default from config)")
	translateCmd.Flags().
		StringP("language", "l", "", "Language of the subtitle text")
	translateCmd.Flags().
		StringP("output", "o", "", "Output file path")
	translateCmd.Flags().
		Bool("in-place", false, "Write the translations back into the input file")
	translateCmd.Flags().
		Bool("overwrite", false, "Retranslate cues that already have a translation")
	translateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY)")
	translateCmd.Flags().
		String("model", "", "Model to use for translation (provider-specific, uses sensible defaults)")
	translateCmd.Flags().
		Bool("model-override", false, "Allow any custom model, bypassing provider model validation")
	translateCmd.Flags().
		String("provider", "", "Translation provider (gemini, openai, anthropic)")
	translateCmd.Flags().
		Int("concurrency", 0, "Number of parallel translation workers")
	translateCmd.Flags().
		Int("batch-size", 0, "Number of cues per API request")
	translateCmd.Flags().
		Int("rpm", -1, "Maximum API requests per minute, 0 for no limit (default from config)")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	ctx := cmd.Context()

	targetLang, _ := cmd.Flags().GetString("target-language")
	inputLang, _ := cmd.Flags().GetString("language")
	outputPath, _ := cmd.Flags().GetString("output")
	inPlace, _ := cmd.Flags().GetBool("in-place")
	overwrite, _ := cmd.Flags().GetBool("overwrite")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	modelOverride, _ := cmd.Flags().GetBool("model-override")
	providerStr, _ := cmd.Flags().GetString("provider")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	rpm, _ := cmd.Flags().GetInt("rpm")

	if err := fileExists(subtitlePath); err != nil {
		return err
	}
	if ext := strings.ToLower(filepath.Ext(subtitlePath)); ext != ".srt" {
		return fmt.Errorf("unsupported subtitle format %q: only .srt can be translated", ext)
	}

	settings := cfg.Translate
	if targetLang == "" {
		targetLang = settings.TargetLanguage
	}
	targetLang = config.NormalizeLanguage(targetLang)
	inputLang = config.NormalizeLanguage(inputLang)
	if targetLang == "" {
		return fmt.Errorf("target language is required: use --target-language or set translate.target_language")
	}
	if config.SameLanguage(inputLang, targetLang) {
		return fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			inputLang,
			targetLang,
		)
	}

	if providerStr == "" {
		providerStr = settings.Provider
	}
	provider := translate.Provider(strings.ToLower(providerStr))
	if model == "" {
		model = settings.Model
	}
	if concurrency == 0 {
		concurrency = settings.Concurrency
	}
	if batchSize == 0 {
		batchSize = settings.BatchSize
	}
	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}
	if rpm < 0 {
		rpm = settings.RequestsPerMinute
	}

	if !modelOverride {
		if err := translate.ValidateModel(provider, model); err != nil {
			return err
		}
	}

	if apiKey == "" {
		apiKey = cfg.APIKey(string(provider))
	}
	if apiKey == "" {
		return fmt.Errorf(
			"API key is required: use --api-key flag or set %s_API_KEY environment variable",
			strings.ToUpper(string(provider)),
		)
	}

	if inPlace {
		outputPath = subtitlePath
	}
	if outputPath == "" {
		outputPath = translatedPath(subtitlePath, targetLang)
	}

	logger.Infow("Starting subtitle translation",
		"input", subtitlePath,
		"output", outputPath,
		"target_language", config.LanguageName(targetLang),
		"input_language", inputLang,
		"provider", provider,
		"model", model,
	)

	cues, err := subtitle.ParseFile(subtitlePath)
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}
	if len(cues) == 0 {
		return fmt.Errorf("subtitle file contains no cues")
	}

	items := translate.ItemsFromCues(cues, overwrite)
	logger.Infow("Parsed subtitle file",
		"cues", len(cues),
		"to_translate", len(items),
	)

	if len(items) > 0 {
		translator, err := translate.Factory(ctx, provider, apiKey, translate.Options{
			InputLanguage:     inputLang,
			TargetLanguage:    config.LanguageName(targetLang),
			Model:             model,
			BatchSize:         batchSize,
			RequestsPerMinute: rpm,
		})
		if err != nil {
			return fmt.Errorf("failed to create translator: %w", err)
		}

		results, err := translate.Run(ctx, translator, items, concurrency)
		if err != nil {
			return fmt.Errorf("translation failed: %w", err)
		}

		applied := translate.Apply(cues, results)
		logger.Infow("Translation complete", "translated", applied)
	}

	if err := os.WriteFile(outputPath, []byte(subtitle.Serialize(cues)), 0o644); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles translated successfully: %s\n", absOutput)
	fmt.Printf("  Cues: %d\n", len(cues))
	fmt.Printf("  Translated: %d\n", countTranslated(cues))

	return nil
}

// lesson.srt -> lesson.en.srt
func translatedPath(path, lang string) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	return fmt.Sprintf("%s.%s%s", base, strings.ToLower(lang), filepath.Ext(path))
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mgpai22/recite/internal/media"
	"github.com/mgpai22/recite/internal/subtitle"
	"github.com/mgpai22/recite/internal/transcribe"
	"github.com/spf13/cobra"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe [media_file]",
	Short: "Create subtitles for media that has none",
	Long: `Transcribe an audio or video file into short cues suitable for
repetition drills.

The audio is extracted with ffmpeg, split into chunks (default 1 minute)
and transcribed in parallel. By default the subtitle is written next to
the media with the same base name, where 'recite play' and 'recite scan'
pick it up.

Examples:
  recite transcribe lesson.mp4
  recite transcribe podcast.mp3 -l japanese --format vtt
  recite transcribe lesson.mp4 --provider openai --transcript-language english`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)

	transcribeCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY env var)")
	transcribeCmd.Flags().
		String("provider", "gemini", "Transcription provider (gemini, openai)")
	transcribeCmd.Flags().
		IntP("chunk-duration", "d", 1, "Chunk duration in minutes for splitting audio")
	transcribeCmd.Flags().
		StringP("format", "f", "srt", "Output subtitle format (srt, vtt, ass)")
	transcribeCmd.Flags().
		StringP("output", "o", "", "Output file path")
	transcribeCmd.Flags().
		StringP("language", "l", "", "Language spoken in the media")
	transcribeCmd.Flags().
		Int("concurrency", 3, "Number of parallel transcription workers")
	transcribeCmd.Flags().
		String("model", "", "Model to use for transcription (default from config)")
	transcribeCmd.Flags().
		String("transcript-language", "native", "Output language for transcript (e.g., 'english', or 'native' for original language)")
	transcribeCmd.Flags().
		Bool("force", false, "Overwrite an existing subtitle file")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	mediaPath := args[0]
	ctx := cmd.Context()

	if err := fileExists(mediaPath); err != nil {
		return err
	}
	if !media.IsMediaFile(mediaPath) {
		return fmt.Errorf("unsupported file type: %s (expected audio or video file)", filepath.Ext(mediaPath))
	}

	apiKey, _ := cmd.Flags().GetString("api-key")
	providerStr, _ := cmd.Flags().GetString("provider")
	chunkDuration, _ := cmd.Flags().GetInt("chunk-duration")
	formatStr, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	language, _ := cmd.Flags().GetString("language")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	model, _ := cmd.Flags().GetString("model")
	transcriptLang, _ := cmd.Flags().GetString("transcript-language")
	force, _ := cmd.Flags().GetBool("force")

	provider := transcribe.Provider(strings.ToLower(providerStr))
	switch provider {
	case transcribe.ProviderGemini:
		if model == "" {
			model = cfg.Transcribe.Model
		}
	case transcribe.ProviderOpenAI:
		if !isValidOpenAITranscriptLanguage(transcriptLang) {
			return fmt.Errorf("openai can only transcribe natively or into english, got %q", transcriptLang)
		}
	default:
		return fmt.Errorf("unsupported provider %q: use gemini or openai", providerStr)
	}
	if language == "" {
		language = cfg.Transcribe.Language
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
	if chunkDuration <= 0 {
		return fmt.Errorf("chunk-duration must be positive, got %d", chunkDuration)
	}
	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}

	format, err := parseFormat(formatStr)
	if err != nil {
		return err
	}
	outputPath, err = transcriptOutputPath(mediaPath, outputPath, format, force)
	if err != nil {
		return err
	}

	logger.Infow("Starting transcription",
		"input", mediaPath,
		"output", outputPath,
		"provider", provider,
		"format", formatStr,
		"chunk_duration", chunkDuration,
		"concurrency", concurrency,
	)

	tempDir, err := os.MkdirTemp("", "recite-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	logger.Infow("Extracting audio")
	audioPath := filepath.Join(tempDir, "audio.mp3")
	if err := media.ExtractAudio(ctx, mediaPath, audioPath, media.DefaultExtractOptions()); err != nil {
		return fmt.Errorf("failed to extract audio: %w", err)
	}

	chunkDur := time.Duration(chunkDuration) * time.Minute
	chunks, err := media.ChunkAudio(ctx, audioPath, chunkDur, filepath.Join(tempDir, "chunks"), concurrency)
	if err != nil {
		return fmt.Errorf("failed to split audio: %w", err)
	}
	logger.Infow("Created audio chunks", "count", len(chunks))

	transcriber, err := transcribe.Factory(ctx, provider, apiKey, transcribe.Options{
		Language:           language,
		TranscriptLanguage: transcriptLang,
		Model:              model,
	})
	if err != nil {
		return fmt.Errorf("failed to create transcriber: %w", err)
	}

	concurrent, ok := transcriber.(transcribe.ConcurrentTranscriber)
	if !ok {
		return fmt.Errorf("%s transcriber does not support chunked audio", provider)
	}

	logger.Infow("Transcribing audio", "concurrency", concurrency)
	result, err := concurrent.TranscribeWithChunks(ctx, chunks, concurrency)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	cues, err := result.Cues(nil)
	if err != nil {
		return fmt.Errorf("failed to build cues: %w", err)
	}
	if len(cues) == 0 {
		return fmt.Errorf("transcription produced no cues")
	}

	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return fmt.Errorf("failed to create subtitle writer: %w", err)
	}
	if err := writer.Write(cues, outputPath); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles generated successfully: %s\n", absOutput)
	fmt.Printf("  Cues: %d\n", len(cues))
	fmt.Printf("  Duration: %s\n", result.Duration.Round(time.Second))

	return nil
}

func parseFormat(s string) (subtitle.Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "srt":
		return subtitle.FormatSRT, nil
	case "vtt":
		return subtitle.FormatVTT, nil
	case "ass":
		return subtitle.FormatASS, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use srt, vtt, or ass", s)
	}
}

// defaults to the media path with the format's extension and refuses to
// replace an existing file unless forced
func transcriptOutputPath(mediaPath, outputPath string, format subtitle.Format, force bool) (string, error) {
	if outputPath == "" {
		base := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))
		outputPath = base + subtitle.GetExtensionForFormat(format)
	}
	if _, err := os.Stat(outputPath); err == nil && !force {
		return "", fmt.Errorf("subtitle already exists: %s (use --force to overwrite)", outputPath)
	}
	return outputPath, nil
}

// whisper can only transcribe in the spoken language or into english
func isValidOpenAITranscriptLanguage(lang string) bool {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "", "native", "english", "en":
		return true
	}
	return false
}

package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mgpai22/recite/internal/media"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract [video_file]",
	Short: "Extract the audio track of a video for listening drills",
	Long: `Extract the audio track from a video file and save it as a separate
audio file, for example to drill a lesson on a device without video.

Supports multiple output formats: mp3, wav, aac, flac.

Examples:
  recite extract lesson.mp4
  recite extract lesson.mp4 -o lesson.wav -f wav
  recite extract lesson.mp4 --format flac --sample-rate 44100 --channels 2`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

var audioFormats = map[string]bool{
	"mp3":  true,
	"wav":  true,
	"aac":  true,
	"flac": true,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().
		StringP("format", "f", "mp3", "Output audio format (mp3, wav, aac, flac)")
	extractCmd.Flags().
		StringP("output", "o", "", "Output file path")
	extractCmd.Flags().
		IntP("sample-rate", "r", 44100, "Sample rate in Hz (e.g., 16000, 44100, 48000)")
	extractCmd.Flags().
		IntP("channels", "c", 2, "Number of audio channels (1=mono, 2=stereo)")
	extractCmd.Flags().
		StringP("bitrate", "b", "192k", "Bitrate for lossy formats (e.g., 128k, 320k)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	videoPath := args[0]

	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	sampleRate, _ := cmd.Flags().GetInt("sample-rate")
	channels, _ := cmd.Flags().GetInt("channels")
	bitrate, _ := cmd.Flags().GetString("bitrate")

	if err := fileExists(videoPath); err != nil {
		return err
	}
	if !media.IsVideoFile(videoPath) {
		return fmt.Errorf("unsupported file type: %s (expected a video file)", filepath.Ext(videoPath))
	}

	format = strings.ToLower(format)
	if !audioFormats[format] {
		return fmt.Errorf(
			"invalid format %q: supported formats are mp3, wav, aac, flac",
			format,
		)
	}
	if outputPath == "" {
		outputPath = strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + "." + format
	}

	logger.Infow("Extracting audio",
		"video", videoPath,
		"output", outputPath,
		"format", format,
		"sample_rate", sampleRate,
		"channels", channels,
	)

	opts := media.ExtractOptions{
		Format:     format,
		SampleRate: sampleRate,
		Channels:   channels,
		Bitrate:    bitrate,
	}
	if err := media.ExtractAudio(cmd.Context(), videoPath, outputPath, opts); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Audio extracted successfully: %s\n", absOutput)
	return nil
}

package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/recite/internal/ffmpeg"
)

// holds options for audio extraction
type ExtractOptions struct {
	Format     string // mp3, aac, flac or wav
	SampleRate int    // Hz
	Channels   int    // 1 = mono, 2 = stereo
	Bitrate    string // lossy formats only, e.g. "64k"
}

// small mono mp3, enough for speech transcription uploads
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		Format:     "mp3",
		SampleRate: 16000,
		Channels:   1,
		Bitrate:    "64k",
	}
}

func audioKwargs(opts ExtractOptions) ffmpeg.KwArgs {
	kwargs := ffmpeg.KwArgs{
		"vn": "",
		"ar": opts.SampleRate,
		"ac": opts.Channels,
	}

	switch opts.Format {
	case "aac":
		kwargs["acodec"] = "aac"
	case "flac":
		kwargs["acodec"] = "flac"
	case "wav":
		kwargs["acodec"] = "pcm_s16le"
	default:
		kwargs["acodec"] = "libmp3lame"
	}
	if opts.Bitrate != "" && (opts.Format == "mp3" || opts.Format == "aac" || opts.Format == "") {
		kwargs["b:a"] = opts.Bitrate
	}
	return kwargs
}

func audioStream(ffmpegPath, inputPath, outputPath string, opts ExtractOptions) *ffmpeg.Stream {
	return ffmpeg.Input(inputPath).
		Output(outputPath, audioKwargs(opts)).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath)
}

// ExtractAudio writes the audio track of inputPath to outputPath. The
// ffmpeg process is killed when ctx is canceled.
func ExtractAudio(
	ctx context.Context,
	inputPath, outputPath string,
	opts ExtractOptions,
) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	if err := runStream(ctx, audioStream(ffmpegPath, inputPath, outputPath, opts)); err != nil {
		return fmt.Errorf("audio extraction failed: %w", err)
	}
	return nil
}

func runStream(ctx context.Context, stream *ffmpeg.Stream) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cmd := stream.Compile()
	if err := cmd.Start(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return ctx.Err()
	case err := <-done:
		return err
	}
}

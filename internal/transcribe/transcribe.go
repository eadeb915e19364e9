package transcribe

import (
	"context"
	"fmt"
	"time"

	"github.com/mgpai22/recite/internal/media"
	"github.com/mgpai22/recite/internal/subtitle"
	"github.com/mgpai22/recite/internal/workpool"
)

// transcription result
type Result struct {
	Segments []subtitle.Segment
	Language string
	Duration time.Duration
}

// Cues turns the segments into numbered cues with gen.
func (r *Result) Cues(gen subtitle.Generator) ([]subtitle.Cue, error) {
	if gen == nil {
		gen = subtitle.NewDefaultGenerator()
	}
	return gen.Generate(r.Segments)
}

// interface for audio transcription
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}

type ConcurrentTranscriber interface {
	Transcriber
	TranscribeWithChunks(
		ctx context.Context,
		chunks []media.ChunkInfo,
		concurrency int,
	) (*Result, error)
}

// transcription service provider
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// transcription options
type Options struct {
	Language           string // Source language of audio
	TranscriptLanguage string // Output language for transcript (default: "native")
	Model              string
	Prompt             string
}

// creates transcriber based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Transcriber, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiTranscriber(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITranscriber(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// transcribeChunks runs fn over chunks in parallel, shifts each chunk's
// segments by its offset and merges them in chunk order.
func transcribeChunks(
	ctx context.Context,
	chunks []media.ChunkInfo,
	concurrency int,
	language string,
	fn func(ctx context.Context, audioPath string) (*Result, error),
) (*Result, error) {
	if len(chunks) == 0 {
		return &Result{}, nil
	}

	perChunk, err := workpool.Run(ctx, chunks, concurrency,
		func(ctx context.Context, _ int, chunk media.ChunkInfo) ([]subtitle.Segment, error) {
			result, err := fn(ctx, chunk.Path)
			if err != nil {
				return nil, fmt.Errorf("chunk %d failed: %w", chunk.Index, err)
			}
			return offsetSegments(result.Segments, chunk.StartTime), nil
		})
	if err != nil {
		return nil, err
	}

	var all []subtitle.Segment
	for _, segments := range perChunk {
		all = append(all, segments...)
	}

	return &Result{
		Segments: all,
		Language: language,
		Duration: chunks[len(chunks)-1].EndTime,
	}, nil
}

func offsetSegments(segments []subtitle.Segment, offset time.Duration) []subtitle.Segment {
	shifted := make([]subtitle.Segment, len(segments))
	for i, seg := range segments {
		shifted[i] = subtitle.Segment{
			StartTime: seg.StartTime + offset,
			EndTime:   seg.EndTime + offset,
			Text:      seg.Text,
		}
	}
	return shifted
}

package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mgpai22/recite/internal/media"
	"github.com/mgpai22/recite/internal/subtitle"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Transcriber interface using OpenAI Audio API
type OpenAITranscriber struct {
	client  openai.Client
	model   string
	options Options
}

// verbose_json response structure from Whisper
type whisperVerboseResponse struct {
	Text     string              `json:"text"`
	Segments []transcriptSegment `json:"segments"`
	Language string              `json:"language"`
	Duration float64             `json:"duration"`
}

func NewOpenAITranscriber(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = "whisper-1"
	}

	return &OpenAITranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// transcribes single audio file
func (t *OpenAITranscriber) Transcribe(
	ctx context.Context,
	audioPath string,
) (*Result, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	duration, _ := media.Duration(ctx, audioPath)

	var (
		rawJSON, text string
		language      = t.options.Language
	)
	if t.shouldUseTranslation() {
		params := openai.AudioTranslationNewParams{
			File:           file,
			Model:          openai.AudioModel(t.model),
			ResponseFormat: openai.AudioTranslationNewParamsResponseFormatVerboseJSON,
		}
		if t.options.Prompt != "" {
			params.Prompt = openai.String(t.options.Prompt)
		}

		resp, err := t.client.Audio.Translations.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("translation failed: %w", err)
		}
		rawJSON, text, language = resp.RawJSON(), resp.Text, "en"
	} else {
		params := openai.AudioTranscriptionNewParams{
			File:                   file,
			Model:                  openai.AudioModel(t.model),
			ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
			TimestampGranularities: []string{"segment"},
		}
		if t.options.Language != "" {
			params.Language = openai.String(t.options.Language)
		}
		if t.options.Prompt != "" {
			params.Prompt = openai.String(t.options.Prompt)
		}

		resp, err := t.client.Audio.Transcriptions.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("transcription failed: %w", err)
		}
		rawJSON, text = resp.RawJSON(), resp.Text
	}

	segments, err := t.parseVerboseJSONResponse(rawJSON, duration)
	if err != nil {
		segments = []subtitle.Segment{{
			StartTime: 0,
			EndTime:   duration,
			Text:      strings.TrimSpace(text),
		}}
	}

	return &Result{
		Segments: segments,
		Language: language,
		Duration: duration,
	}, nil
}

// whisper only translates into English
func (t *OpenAITranscriber) shouldUseTranslation() bool {
	lang := strings.ToLower(strings.TrimSpace(t.options.TranscriptLanguage))
	return lang == "english" || lang == "en"
}

func (t *OpenAITranscriber) parseVerboseJSONResponse(
	rawJSON string,
	fallbackDuration time.Duration,
) ([]subtitle.Segment, error) {
	if rawJSON == "" {
		return nil, fmt.Errorf("empty response")
	}

	var verboseResp whisperVerboseResponse
	if err := json.Unmarshal([]byte(rawJSON), &verboseResp); err != nil {
		return nil, fmt.Errorf("failed to parse verbose_json response: %w", err)
	}

	if len(verboseResp.Segments) == 0 {
		if verboseResp.Text == "" {
			return nil, fmt.Errorf("no segments or text in response")
		}
		dur := fallbackDuration
		if verboseResp.Duration > 0 {
			dur = secondsToDuration(verboseResp.Duration)
		}
		return []subtitle.Segment{{
			StartTime: 0,
			EndTime:   dur,
			Text:      strings.TrimSpace(verboseResp.Text),
		}}, nil
	}

	segments := toSegments(verboseResp.Segments)
	kept := segments[:0]
	for _, seg := range segments {
		if seg.Text != "" {
			kept = append(kept, seg)
		}
	}
	return kept, nil
}

// transcribes chunks in parallel
func (t *OpenAITranscriber) TranscribeWithChunks(
	ctx context.Context,
	chunks []media.ChunkInfo,
	concurrency int,
) (*Result, error) {
	return transcribeChunks(ctx, chunks, concurrency, t.options.Language, t.Transcribe)
}

func (t *OpenAITranscriber) Close() error {
	return nil
}

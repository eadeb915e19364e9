package transcribe

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mgpai22/recite/internal/media"
	"google.golang.org/genai"
)

// implements Transcriber interface using Google Gemini
type GeminiTranscriber struct {
	client  *genai.Client
	model   string
	options Options
}

func NewGeminiTranscriber(ctx context.Context, apiKey string, opts Options) (*GeminiTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiTranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// transcribes single audio file
func (t *GeminiTranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	uploadedFile, err := t.client.Files.UploadFromPath(ctx, audioPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upload audio file: %w", err)
	}
	defer func() {
		_, _ = t.client.Files.Delete(context.WithoutCancel(ctx), uploadedFile.Name, nil)
	}()

	parts := []*genai.Part{
		genai.NewPartFromText(buildPrompt(t.options)),
		genai.NewPartFromURI(uploadedFile.URI, uploadedFile.MIMEType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := t.client.Models.GenerateContent(ctx, t.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	if result == nil {
		return nil, fmt.Errorf("empty response from Gemini")
	}
	text := cleanJSONResponse(result.Text())
	if text == "" {
		return nil, fmt.Errorf("no text in Gemini response")
	}

	raw, err := extractTranscriptSegments(text)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse transcription: %w (response: %s)",
			err,
			truncateString(text, 200),
		)
	}

	duration, _ := media.Duration(ctx, audioPath)

	return &Result{
		Segments: toSegments(raw),
		Language: t.options.Language,
		Duration: duration,
	}, nil
}

// transcribes chunks in parallel
func (t *GeminiTranscriber) TranscribeWithChunks(ctx context.Context, chunks []media.ChunkInfo, concurrency int) (*Result, error) {
	return transcribeChunks(ctx, chunks, concurrency, t.options.Language, t.Transcribe)
}

// creates the prompt for transcription
func buildPrompt(opts Options) string {
	var sb strings.Builder

	sb.WriteString("Generate a detailed transcript of this audio. ")
	sb.WriteString("Split it into short sentences or phrases a language learner can repeat one at a time. ")
	sb.WriteString("For each phrase, provide the start timestamp, end timestamp, and the exact text spoken. ")
	sb.WriteString("Format your response as a JSON array with objects containing 'start', 'end', and 'text' fields, ")
	sb.WriteString("where 'start' and 'end' are timestamps in seconds (as numbers). ")

	if opts.Language != "" {
		sb.WriteString(fmt.Sprintf("The audio is in %s. ", opts.Language))
	}

	if opts.TranscriptLanguage != "" && !strings.EqualFold(opts.TranscriptLanguage, "native") {
		sb.WriteString(fmt.Sprintf("Output the transcript in %s. ", opts.TranscriptLanguage))
	}

	if opts.Prompt != "" {
		sb.WriteString(opts.Prompt)
		sb.WriteString(" ")
	}

	sb.WriteString("Return ONLY the JSON array, no other text or markdown formatting.")

	return sb.String()
}

func (t *GeminiTranscriber) Close() error {
	return nil
}

package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mgpai22/recite/internal/subtitle"
	"github.com/mgpai22/recite/internal/workpool"
	"golang.org/x/time/rate"
)

const (
	DefaultBatchSize   = 50
	DefaultConcurrency = 3
)

// single text item to translate, Index is the cue's position in the list
type TranslationItem struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// translated text item
type TranslationResult struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// interface for text translation
type Translator interface {
	Translate(
		ctx context.Context,
		items []TranslationItem,
	) ([]TranslationResult, error)
}

// translators that can send batches in parallel
type ConcurrentTranslator interface {
	Translator
	TranslateWithConcurrency(
		ctx context.Context,
		items []TranslationItem,
		concurrency int,
	) ([]TranslationResult, error)
}

// translation service provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

type Options struct {
	InputLanguage  string
	TargetLanguage string
	Model          string
	Prompt         string
	BatchSize      int // items per API request (default 50)

	// API requests allowed per minute across all workers, 0 for no limit
	RequestsPerMinute int
}

func (o Options) batchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return DefaultBatchSize
}

func (o Options) limiter() *rate.Limiter {
	if o.RequestsPerMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(o.RequestsPerMinute)), 1)
}

// creates Translator based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Translator, error) {
	if opts.TargetLanguage == "" {
		return nil, fmt.Errorf("target language is required")
	}

	switch provider {
	case ProviderGemini:
		return NewGeminiTranslator(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITranslator(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicTranslator(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
}

// Run translates with the translator's parallel path when it has one.
func Run(
	ctx context.Context,
	t Translator,
	items []TranslationItem,
	concurrency int,
) ([]TranslationResult, error) {
	if ct, ok := t.(ConcurrentTranslator); ok {
		return ct.TranslateWithConcurrency(ctx, items, concurrency)
	}
	return t.Translate(ctx, items)
}

// ItemsFromCues builds one item per cue that has text. Cues that already
// carry a translation are skipped unless overwrite is set.
func ItemsFromCues(cues []subtitle.Cue, overwrite bool) []TranslationItem {
	items := make([]TranslationItem, 0, len(cues))
	for i, cue := range cues {
		if strings.TrimSpace(cue.Text) == "" {
			continue
		}
		if !overwrite && cue.Translation != "" {
			continue
		}
		items = append(items, TranslationItem{Index: i, Text: cue.Text})
	}
	return items
}

// Apply stores each result as the machine translation of the cue at its
// index and returns how many cues were updated.
func Apply(cues []subtitle.Cue, results []TranslationResult) int {
	applied := 0
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(cues) {
			continue
		}
		text := cleanTranslation(r.Text)
		if text == "" {
			continue
		}
		cues[r.Index].Translation = text
		applied++
	}
	return applied
}

// a translation is written after a blank line in SRT, so it must not
// contain blank lines of its own
func cleanTranslation(s string) string {
	s = strings.ReplaceAll(s, `\N`, "\n")
	s = strings.ReplaceAll(s, "\r\n", "\n")

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

type batchFunc func(
	ctx context.Context,
	items []TranslationItem,
) ([]TranslationResult, error)

// paced waits on limiter before each call to fn, nil means unpaced
func paced(limiter *rate.Limiter, fn batchFunc) batchFunc {
	if limiter == nil {
		return fn
	}
	return func(ctx context.Context, items []TranslationItem) ([]TranslationResult, error) {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return fn(ctx, items)
	}
}

// translateBatches splits items into batches of size and runs fn on up to
// concurrency of them at once. Results come back sorted by index.
func translateBatches(
	ctx context.Context,
	items []TranslationItem,
	size int,
	concurrency int,
	fn batchFunc,
) ([]TranslationResult, error) {
	if len(items) == 0 {
		return []TranslationResult{}, nil
	}

	batches := workpool.Chunk(items, size)
	perBatch, err := workpool.Run(ctx, batches, concurrency,
		func(ctx context.Context, i int, batch []TranslationItem) ([]TranslationResult, error) {
			results, err := fn(ctx, batch)
			if err != nil {
				return nil, fmt.Errorf("batch %d failed: %w", i, err)
			}
			matched, err := matchResults(batch, results)
			if err != nil {
				return nil, fmt.Errorf("batch %d failed: %w", i, err)
			}
			return matched, nil
		})
	if err != nil {
		return nil, err
	}

	all := make([]TranslationResult, 0, len(items))
	for _, results := range perBatch {
		all = append(all, results...)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Index < all[j].Index
	})
	return all, nil
}

// matchResults pairs results with the batch by index. Every item must come
// back; extra indices are dropped.
func matchResults(
	batch []TranslationItem,
	results []TranslationResult,
) ([]TranslationResult, error) {
	byIndex := make(map[int]string, len(results))
	for _, r := range results {
		byIndex[r.Index] = r.Text
	}

	matched := make([]TranslationResult, 0, len(batch))
	var missing []int
	for _, item := range batch {
		text, ok := byIndex[item.Index]
		if !ok {
			missing = append(missing, item.Index)
			continue
		}
		matched = append(matched, TranslationResult{Index: item.Index, Text: text})
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf(
			"expected %d results, missing indices %v",
			len(batch),
			missing,
		)
	}
	return matched, nil
}

// BuildPrompt creates the translation prompt for LLM providers
func BuildPrompt(opts Options, items []TranslationItem) string {
	var sb strings.Builder

	if opts.InputLanguage != "" {
		sb.WriteString(fmt.Sprintf(
			"Translate the following %s subtitle lines to %s.\n\n",
			opts.InputLanguage,
			opts.TargetLanguage,
		))
	} else {
		sb.WriteString(fmt.Sprintf(
			"Translate the following subtitle lines to %s.\n\n",
			opts.TargetLanguage,
		))
	}

	sb.WriteString("The translations are shown under the original line to a language learner.\n")
	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString("1. Translate each line on its own, keeping its meaning and register.\n")
	sb.WriteString("2. Keep line breaks where the original has them.\n")
	sb.WriteString("3. Never leave an empty line inside a translation.\n")
	sb.WriteString("4. Return ONLY a JSON array with the same structure.\n")
	sb.WriteString("5. Each object must have 'index' and 'text' fields.\n")
	sb.WriteString("6. The 'index' values must match the input indices exactly.\n")
	sb.WriteString("7. Do not add any explanation or markdown formatting.\n\n")

	if opts.Prompt != "" {
		sb.WriteString(fmt.Sprintf("Additional instructions: %s\n\n", opts.Prompt))
	}

	sb.WriteString("Input JSON:\n")

	inputJSON, _ := json.MarshalIndent(items, "", "  ")
	sb.Write(inputJSON)

	sb.WriteString("\n\nOutput the translated JSON array only:")

	return sb.String()
}

package translate

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mgpai22/recite/internal/subtitle"
)

func TestFactoryReturnsProviderTranslators(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		provider Provider
		check    func(Translator) bool
	}{
		{ProviderGemini, func(tr Translator) bool { _, ok := tr.(*GeminiTranslator); return ok }},
		{ProviderOpenAI, func(tr Translator) bool { _, ok := tr.(*OpenAITranslator); return ok }},
		{ProviderAnthropic, func(tr Translator) bool { _, ok := tr.(*AnthropicTranslator); return ok }},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			translator, err := Factory(ctx, tt.provider, "fake-key", Options{TargetLanguage: "Japanese"})
			if err != nil {
				t.Fatalf("Factory(%s) returned error: %v", tt.provider, err)
			}
			if !tt.check(translator) {
				t.Errorf("unexpected translator type %T", translator)
			}
			if _, ok := translator.(ConcurrentTranslator); !ok {
				t.Errorf("%T should implement ConcurrentTranslator", translator)
			}
		})
	}
}

func TestFactoryRequiresTargetLanguage(t *testing.T) {
	_, err := Factory(context.Background(), ProviderGemini, "fake-key", Options{})
	if err == nil {
		t.Error("expected error for missing target language")
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	_, err := Factory(context.Background(), Provider("unknown"), "fake-key", Options{TargetLanguage: "French"})
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestFactoryRequiresAPIKey(t *testing.T) {
	for _, p := range []Provider{ProviderGemini, ProviderOpenAI, ProviderAnthropic} {
		if _, err := Factory(context.Background(), p, "", Options{TargetLanguage: "French"}); err == nil {
			t.Errorf("%s: expected error for missing API key", p)
		}
	}
}

func TestItemsFromCues(t *testing.T) {
	cues := []subtitle.Cue{
		{Index: 1, Text: "Hello"},
		{Index: 2, Text: "  "},
		{Index: 3, Text: "Already done", Translation: "Ya hecho"},
		{Index: 4, Text: "Line one\nLine two"},
	}

	items := ItemsFromCues(cues, false)
	if len(items) != 2 || items[0].Index != 0 || items[1].Index != 3 {
		t.Fatalf("unexpected items %+v", items)
	}
	if items[1].Text != "Line one\nLine two" {
		t.Errorf("multi-line text changed: %q", items[1].Text)
	}

	if all := ItemsFromCues(cues, true); len(all) != 3 {
		t.Errorf("overwrite should include translated cues, got %d items", len(all))
	}
}

func TestApply(t *testing.T) {
	cues := []subtitle.Cue{
		{Text: "Hello"},
		{Text: "World"},
		{Text: "Again"},
	}

	n := Apply(cues, []TranslationResult{
		{Index: 0, Text: " Hola "},
		{Index: 1, Text: "Mundo\\Nentero\n\n"},
		{Index: 2, Text: "   "},
		{Index: 9, Text: "out of range"},
	})
	if n != 2 {
		t.Errorf("expected 2 applied, got %d", n)
	}
	if cues[0].Translation != "Hola" {
		t.Errorf("cue 0 translation = %q", cues[0].Translation)
	}
	if cues[1].Translation != "Mundo\nentero" {
		t.Errorf("cue 1 translation = %q", cues[1].Translation)
	}
	if cues[2].Translation != "" {
		t.Errorf("blank result should not be applied, got %q", cues[2].Translation)
	}

	// applied translations survive a write and re-parse
	parsed := subtitle.Parse(subtitle.Serialize([]subtitle.Cue{
		{Index: 1, Start: 1, End: 2, Text: cues[1].Text, Translation: cues[1].Translation},
	}))
	if len(parsed) != 1 || parsed[0].Translation != "Mundo\nentero" {
		t.Errorf("translation did not round-trip: %+v", parsed)
	}
}

func TestTranslateBatchesSplitsAndSorts(t *testing.T) {
	items := make([]TranslationItem, 7)
	for i := range items {
		items[i] = TranslationItem{Index: i * 2, Text: strings.Repeat("a", i+1)}
	}

	var (
		mu    sync.Mutex
		sizes []int
	)
	fn := func(ctx context.Context, batch []TranslationItem) ([]TranslationResult, error) {
		mu.Lock()
		sizes = append(sizes, len(batch))
		mu.Unlock()

		out := make([]TranslationResult, 0, len(batch)+1)
		// reversed, with one stray index
		for i := len(batch) - 1; i >= 0; i-- {
			out = append(out, TranslationResult{Index: batch[i].Index, Text: strings.ToUpper(batch[i].Text)})
		}
		out = append(out, TranslationResult{Index: 999, Text: "stray"})
		return out, nil
	}

	results, err := translateBatches(context.Background(), items, 3, 2, fn)
	if err != nil {
		t.Fatalf("translateBatches failed: %v", err)
	}
	if len(sizes) != 3 {
		t.Errorf("expected 3 batches, got %v", sizes)
	}
	if len(results) != len(items) {
		t.Fatalf("expected %d results, got %d", len(items), len(results))
	}
	for i, r := range results {
		if r.Index != i*2 || r.Text != strings.Repeat("A", i+1) {
			t.Errorf("results[%d] = %+v", i, r)
		}
	}
}

func TestTranslateBatchesMissingIndex(t *testing.T) {
	items := []TranslationItem{{Index: 0, Text: "a"}, {Index: 1, Text: "b"}}
	fn := func(ctx context.Context, batch []TranslationItem) ([]TranslationResult, error) {
		return []TranslationResult{{Index: 0, Text: "A"}}, nil
	}

	_, err := translateBatches(context.Background(), items, 10, 1, fn)
	if err == nil || !strings.Contains(err.Error(), "missing indices [1]") {
		t.Errorf("expected missing index error, got %v", err)
	}
}

func TestTranslateBatchesPropagatesError(t *testing.T) {
	boom := errors.New("quota exceeded")
	items := make([]TranslationItem, 10)
	for i := range items {
		items[i] = TranslationItem{Index: i, Text: "x"}
	}
	fn := func(ctx context.Context, batch []TranslationItem) ([]TranslationResult, error) {
		return nil, boom
	}

	_, err := translateBatches(context.Background(), items, 2, 3, fn)
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped provider error, got %v", err)
	}
}

func TestTranslateBatchesEmpty(t *testing.T) {
	results, err := translateBatches(context.Background(), nil, 5, 2,
		func(ctx context.Context, batch []TranslationItem) ([]TranslationResult, error) {
			t.Fatal("no batch expected")
			return nil, nil
		})
	if err != nil || results == nil || len(results) != 0 {
		t.Errorf("expected empty results, got %v, %v", results, err)
	}
}

type sequentialOnly struct{ calls int }

func (s *sequentialOnly) Translate(ctx context.Context, items []TranslationItem) ([]TranslationResult, error) {
	s.calls++
	return []TranslationResult{}, nil
}

func TestRunFallsBackToTranslate(t *testing.T) {
	tr := &sequentialOnly{}
	if _, err := Run(context.Background(), tr, nil, 4); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if tr.calls != 1 {
		t.Errorf("expected Translate to be called once, got %d", tr.calls)
	}
}

func TestValidateModel(t *testing.T) {
	tests := []struct {
		provider Provider
		model    string
		wantErr  bool
	}{
		{ProviderGemini, "", false},
		{ProviderGemini, "gemini-2.5-flash", false},
		{ProviderGemini, "gpt-5", true},
		{ProviderOpenAI, "gpt-5-mini", false},
		{ProviderAnthropic, "claude-haiku-4-5", false},
		{ProviderAnthropic, "claude-2", true},
		{Provider("deepl"), "any", true},
	}

	for _, tt := range tests {
		err := ValidateModel(tt.provider, tt.model)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateModel(%s, %q) error = %v, wantErr %v", tt.provider, tt.model, err, tt.wantErr)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	opts := Options{InputLanguage: "English", TargetLanguage: "Japanese", Prompt: "Use polite forms."}
	items := []TranslationItem{
		{Index: 0, Text: "Hello world"},
		{Index: 1, Text: "Goodbye"},
	}

	prompt := BuildPrompt(opts, items)

	for _, want := range []string{
		"English subtitle lines",
		"to Japanese",
		"Hello world",
		`"index": 0`,
		"Additional instructions: Use polite forms.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt should contain %q", want)
		}
	}
}

func TestBuildPromptWithoutInputLanguage(t *testing.T) {
	prompt := BuildPrompt(Options{TargetLanguage: "Spanish"}, []TranslationItem{{Index: 0, Text: "Hello"}})

	if strings.Contains(prompt, "English") {
		t.Error("prompt should not contain input language when not specified")
	}
	if !strings.Contains(prompt, "to Spanish") {
		t.Error("prompt should contain target language")
	}
}

func TestOptionsLimiter(t *testing.T) {
	if (Options{}).limiter() != nil {
		t.Error("zero requests per minute should not limit")
	}

	l := Options{RequestsPerMinute: 120}.limiter()
	if l == nil {
		t.Fatal("expected a limiter")
	}
	if got := l.Limit(); got != 2 {
		t.Errorf("limit = %v per second, want 2", got)
	}
}

func TestPacedHonorsContext(t *testing.T) {
	called := 0
	fn := paced(Options{RequestsPerMinute: 1}.limiter(),
		func(ctx context.Context, items []TranslationItem) ([]TranslationResult, error) {
			called++
			return nil, nil
		})

	if _, err := fn(context.Background(), nil); err != nil {
		t.Fatalf("first call should use the burst token: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := fn(ctx, nil); err == nil {
		t.Error("second call within the minute should fail on the deadline")
	}
	if called != 1 {
		t.Errorf("expected 1 call, got %d", called)
	}
}

// Integration test: only runs if OPENAI_API_KEY is set
func TestOpenAITranslatorIntegration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY not set; skipping integration test")
	}

	ctx := context.Background()
	translator, err := NewOpenAITranslator(ctx, apiKey, Options{TargetLanguage: "Spanish"})
	if err != nil {
		t.Fatalf("NewOpenAITranslator error: %v", err)
	}

	results, err := translator.Translate(ctx, []TranslationItem{
		{Index: 0, Text: "Hello"},
		{Index: 1, Text: "Goodbye"},
	})
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Text == "" {
			t.Errorf("result index %d has empty text", r.Index)
		}
	}
}

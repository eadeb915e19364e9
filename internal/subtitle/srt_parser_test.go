package subtitle

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseConcreteScenario(t *testing.T) {
	input := "1\n00:00:01,000 --> 00:00:03,000\nHello\n\n2\n00:00:03,500 --> 00:00:05,000\nWorld\n\n"

	cues := Parse(input)
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}

	want := []Cue{
		{Index: 1, Start: 1.0, End: 3.0, Text: "Hello"},
		{Index: 2, Start: 3.5, End: 5.0, Text: "World"},
	}
	for i := range want {
		if cues[i] != want[i] {
			t.Errorf("cue %d: got %+v, want %+v", i, cues[i], want[i])
		}
	}
}

func TestParseMultilineAndTranslation(t *testing.T) {
	input := `1
00:00:01,000 --> 00:00:04,000
This is a test.
With multiple lines.

这是一个测试。

2
00:00:05,500 --> 00:00:08,200
Second line.

第二行。

第三段。

3
00:00:10,000 --> 00:00:12,500
Final subtitle.
`
	cues := Parse(input)
	if len(cues) != 3 {
		t.Fatalf("expected 3 cues, got %d", len(cues))
	}

	if cues[0].Text != "This is a test.\nWith multiple lines." {
		t.Errorf("cue 0 text: got %q", cues[0].Text)
	}
	if cues[0].Translation != "这是一个测试。" {
		t.Errorf("cue 0 translation: got %q", cues[0].Translation)
	}
	if cues[1].Translation != "第二行。\n\n第三段。" {
		t.Errorf("cue 1 translation: got %q", cues[1].Translation)
	}
	if cues[2].Translation != "" {
		t.Errorf("cue 2 translation: expected empty, got %q", cues[2].Translation)
	}
	if cues[1].Start != 5.5 || cues[1].End != 8.2 {
		t.Errorf("cue 1 times: got %v --> %v", cues[1].Start, cues[1].End)
	}
}

func TestParseTranslationBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Cue
	}{
		{
			name:  "next block without separator",
			input: "1\n00:00:01,000 --> 00:00:03,000\nHello\n\n你好\n2\n00:00:03,500 --> 00:00:05,000\nWorld\n",
			want: []Cue{
				{Index: 1, Start: 1.0, End: 3.0, Text: "Hello", Translation: "你好"},
				{Index: 2, Start: 3.5, End: 5.0, Text: "World"},
			},
		},
		{
			name:  "number as translation",
			input: "1\n00:00:01,000 --> 00:00:03,000\nHow many?\n\n42\n\n2\n00:00:03,500 --> 00:00:05,000\nWorld\n",
			want: []Cue{
				{Index: 1, Start: 1.0, End: 3.0, Text: "How many?", Translation: "42"},
				{Index: 2, Start: 3.5, End: 5.0, Text: "World"},
			},
		},
		{
			name:  "number as last translation",
			input: "1\n00:00:01,000 --> 00:00:03,000\nHow many?\n\n7\n",
			want: []Cue{
				{Index: 1, Start: 1.0, End: 3.0, Text: "How many?", Translation: "7"},
			},
		},
		{
			name:  "number inside translation paragraph",
			input: "1\n00:00:01,000 --> 00:00:03,000\nCount\n\n一\n2\n三\n",
			want: []Cue{
				{Index: 1, Start: 1.0, End: 3.0, Text: "Count", Translation: "一\n2\n三"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cues := Parse(tt.input)
			if len(cues) != len(tt.want) {
				t.Fatalf("expected %d cues, got %d (%+v)", len(tt.want), len(cues), cues)
			}
			for i := range tt.want {
				if cues[i] != tt.want[i] {
					t.Errorf("cue %d: got %+v, want %+v", i, cues[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseSkipsMalformedBlocks(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantTexts []string
	}{
		{
			name:      "non-numeric index line",
			input:     "abc\n00:00:01,000 --> 00:00:02,000\nNoise\n\n2\n00:00:03,000 --> 00:00:04,000\nKept\n",
			wantTexts: []string{"Kept"},
		},
		{
			name:      "bad timestamp first",
			input:     "1\n00:00:01.000 --> 00:00:02.000\nDropped\n\n2\n00:00:03,000 --> 00:00:04,000\nKept\n",
			wantTexts: []string{"Kept"},
		},
		{
			name:      "bad timestamp after a good block",
			input:     "1\n00:00:01,000 --> 00:00:02,000\nFirst\n\n2\n0:00:03,000 --> 00:00:04,000\nDropped\n\n3\n00:00:05,000 --> 00:00:06,000\nThird\n",
			wantTexts: []string{"First", "Third"},
		},
		{
			name:      "trailing index with no timestamp",
			input:     "1\n00:00:01,000 --> 00:00:02,000\nOnly\n\n2",
			wantTexts: []string{"Only"},
		},
		{
			name:      "timestamp with trailing garbage",
			input:     "1\n00:00:01,000 --> 00:00:02,000 X:10\nDropped\n",
			wantTexts: nil,
		},
		{
			name:      "empty input",
			input:     "",
			wantTexts: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cues := Parse(tt.input)
			if len(cues) != len(tt.wantTexts) {
				t.Fatalf("expected %d cues, got %d (%+v)", len(tt.wantTexts), len(cues), cues)
			}
			for i, text := range tt.wantTexts {
				if cues[i].Text != text {
					t.Errorf("cue %d: got %q, want %q", i, cues[i].Text, text)
				}
				if cues[i].Translation != "" {
					t.Errorf("cue %d: unexpected translation %q", i, cues[i].Translation)
				}
			}
		})
	}
}

func TestParseKeepsSourceOrderAndIndices(t *testing.T) {
	input := "7\n00:00:10,000 --> 00:00:12,000\nLater\n\n3\n00:00:01,000 --> 00:00:02,000\nEarlier\n"
	cues := Parse(input)
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[0].Index != 7 || cues[0].Text != "Later" {
		t.Errorf("cue 0: got %+v", cues[0])
	}
	if cues[1].Index != 3 || cues[1].Text != "Earlier" {
		t.Errorf("cue 1: got %+v", cues[1])
	}
}

func TestParseAcceptsInvertedRange(t *testing.T) {
	cues := Parse("1\n00:00:05,000 --> 00:00:02,000\nBackwards\n")
	if len(cues) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(cues))
	}
	if cues[0].Start != 5 || cues[0].End != 2 {
		t.Errorf("got %v --> %v", cues[0].Start, cues[0].End)
	}
}

func TestParseBOMAndCRLF(t *testing.T) {
	input := "\ufeff1\r\n01:02:03,456 --> 01:02:04,000\r\nHello\r\n\r\nBonjour\r\n"
	cues := Parse(input)
	if len(cues) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(cues))
	}
	if math.Abs(cues[0].Start-3723.456) > 1e-9 {
		t.Errorf("start: got %v, want 3723.456", cues[0].Start)
	}
	if cues[0].Text != "Hello" || cues[0].Translation != "Bonjour" {
		t.Errorf("got text %q translation %q", cues[0].Text, cues[0].Translation)
	}
}

func TestParseRoundTrip(t *testing.T) {
	var cues []Cue
	for i := 0; i < 50; i++ {
		startMs := i * 2750
		endMs := startMs + 1999
		cue := Cue{
			Index: i + 1,
			Start: float64(startMs/1000) + float64(startMs%1000)/1000,
			End:   float64(endMs/1000) + float64(endMs%1000)/1000,
			Text:  fmt.Sprintf("line %d\nsecond %d", i, i),
		}
		if i%3 == 0 {
			cue.Translation = fmt.Sprintf("traduction %d", i)
		}
		cues = append(cues, cue)
	}

	got := Parse(Serialize(cues))
	if len(got) != len(cues) {
		t.Fatalf("expected %d cues, got %d", len(cues), len(got))
	}
	for i := range cues {
		if got[i] != cues[i] {
			t.Errorf("cue %d: got %+v, want %+v", i, got[i], cues[i])
		}
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.srt")
	content := "1\n00:00:01,000 --> 00:00:03,000\nHello\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	cues, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if len(cues) != 1 || cues[0].Text != "Hello" {
		t.Errorf("unexpected cues: %+v", cues)
	}

	_, err = ParseFile(filepath.Join(dir, "missing.srt"))
	if err == nil || !strings.Contains(err.Error(), "failed to read") {
		t.Errorf("expected read error, got %v", err)
	}
}

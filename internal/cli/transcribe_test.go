package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mgpai22/recite/internal/subtitle"
)

func TestIsValidOpenAITranscriptLanguage(t *testing.T) {
	valid := []string{"", "native", " Native ", "english", "ENGLISH", "en", " en "}
	for _, lang := range valid {
		if !isValidOpenAITranscriptLanguage(lang) {
			t.Errorf("%q should be accepted", lang)
		}
	}

	invalid := []string{"spanish", "japanese", "ja", "zh", "eng", "native english"}
	for _, lang := range invalid {
		if isValidOpenAITranscriptLanguage(lang) {
			t.Errorf("%q should be rejected", lang)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    subtitle.Format
		wantErr bool
	}{
		{"srt", subtitle.FormatSRT, false},
		{"VTT", subtitle.FormatVTT, false},
		{" ass ", subtitle.FormatASS, false},
		{"sub", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := parseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTranscriptOutputPath(t *testing.T) {
	dir := t.TempDir()
	mediaPath := filepath.Join(dir, "lesson.mkv")

	got, err := transcriptOutputPath(mediaPath, "", subtitle.FormatVTT, false)
	if err != nil {
		t.Fatalf("transcriptOutputPath failed: %v", err)
	}
	if want := filepath.Join(dir, "lesson.vtt"); got != want {
		t.Errorf("default path = %q, want %q", got, want)
	}

	existing := filepath.Join(dir, "lesson.srt")
	if err := os.WriteFile(existing, []byte("1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := transcriptOutputPath(mediaPath, "", subtitle.FormatSRT, false); err == nil {
		t.Error("expected an error for an existing subtitle without force")
	}
	if got, err := transcriptOutputPath(mediaPath, "", subtitle.FormatSRT, true); err != nil || got != existing {
		t.Errorf("force should reuse %q, got %q, %v", existing, got, err)
	}

	explicit := filepath.Join(dir, "out", "custom.ass")
	if got, err := transcriptOutputPath(mediaPath, explicit, subtitle.FormatASS, false); err != nil || got != explicit {
		t.Errorf("explicit output = %q, %v", got, err)
	}
}

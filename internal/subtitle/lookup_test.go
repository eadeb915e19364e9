package subtitle

import "testing"

func sequentialCues() []Cue {
	return []Cue{
		{Index: 1, Start: 1.0, End: 3.0, Text: "Hello"},
		{Index: 2, Start: 3.5, End: 5.0, Text: "World"},
		{Index: 3, Start: 6.0, End: 8.0, Text: "Again"},
	}
}

func TestFindActiveCue(t *testing.T) {
	cues := sequentialCues()
	tests := []struct {
		time float64
		want int
	}{
		{0.5, -1},
		{1.0, 0},
		{2.0, 0},
		{3.0, 0},
		{3.2, -1},
		{3.5, 1},
		{5.0, 1},
		{7.9, 2},
		{8.01, -1},
	}

	for _, tt := range tests {
		got := FindActiveCue(cues, tt.time)
		if got != tt.want {
			t.Errorf("FindActiveCue(%v) = %d, want %d", tt.time, got, tt.want)
		}
		if again := FindActiveCue(cues, tt.time); again != got {
			t.Errorf("FindActiveCue(%v) not idempotent: %d then %d", tt.time, got, again)
		}
	}
}

func TestFindActiveCueOverlapPrefersFirstDeclared(t *testing.T) {
	cues := []Cue{
		{Index: 1, Start: 0, End: 10, Text: "A"},
		{Index: 2, Start: 4, End: 6, Text: "B"},
	}
	for _, tm := range []float64{4, 5, 6} {
		if got := FindActiveCue(cues, tm); got != 0 {
			t.Errorf("FindActiveCue(%v) = %d, want 0", tm, got)
		}
	}
}

func TestFindActiveCueInvertedNeverMatches(t *testing.T) {
	cues := []Cue{{Index: 1, Start: 5, End: 2}}
	for _, tm := range []float64{1, 2, 3.5, 5, 6} {
		if got := FindActiveCue(cues, tm); got != -1 {
			t.Errorf("FindActiveCue(%v) = %d, want -1", tm, got)
		}
	}
}

func TestFindActiveCueEmpty(t *testing.T) {
	if got := FindActiveCue(nil, 1); got != -1 {
		t.Errorf("expected -1 for empty list, got %d", got)
	}
	if got := FindNextCueAfter(nil, 1); got != -1 {
		t.Errorf("expected -1 for empty list, got %d", got)
	}
}

func TestFindNextCueAfter(t *testing.T) {
	cues := sequentialCues()
	tests := []struct {
		time float64
		want int
	}{
		{0, 0},
		{1.0, 1},
		{3.2, 1},
		{3.5, 2},
		{5.5, 2},
		{6.0, -1},
		{100, -1},
	}
	for _, tt := range tests {
		if got := FindNextCueAfter(cues, tt.time); got != tt.want {
			t.Errorf("FindNextCueAfter(%v) = %d, want %d", tt.time, got, tt.want)
		}
	}
}

package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mgpai22/recite/internal/clock"
	"github.com/mgpai22/recite/internal/logging"
	"github.com/mgpai22/recite/internal/player"
	"github.com/mgpai22/recite/internal/subtitle"
)

const lessonSRT = `1
00:00:00,000 --> 00:00:02,000
Hola

Hello

2
00:00:03,000 --> 00:00:05,000
Adiós
`

func writeLesson(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lesson.srt")
	if err := os.WriteFile(path, []byte(lessonSRT), 0o644); err != nil {
		t.Fatalf("write lesson: %v", err)
	}
	return path
}

func TestRunPlaybackRepeatsEachCue(t *testing.T) {
	var out bytes.Buffer
	summary, err := runPlayback(context.Background(), playOptions{
		SubtitlePath: writeLesson(t),
		Repeat:       2,
		Tick:         50 * time.Millisecond,
		Rate:         1,
	}, &out, logging.NewNop())
	if err != nil {
		t.Fatalf("runPlayback failed: %v", err)
	}

	if summary.Cues != 2 {
		t.Errorf("expected 2 cue activations, got %d", summary.Cues)
	}
	if summary.Repeats != 2 {
		t.Errorf("expected 2 repeats, got %d", summary.Repeats)
	}
	if !summary.Ended {
		t.Error("expected playback to reach the end")
	}

	text := out.String()
	for _, want := range []string{"#1 Hola", "    Hello", "#2 Adiós", "play 2 of 2"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "\x1b[") {
		t.Error("non-terminal output should not be colorized")
	}
}

func TestRunPlaybackHiddenStillRepeats(t *testing.T) {
	var out bytes.Buffer
	summary, err := runPlayback(context.Background(), playOptions{
		SubtitlePath: writeLesson(t),
		Repeat:       3,
		Tick:         50 * time.Millisecond,
		Hidden:       true,
	}, &out, logging.NewNop())
	if err != nil {
		t.Fatalf("runPlayback failed: %v", err)
	}
	if summary.Cues != 0 {
		t.Errorf("hidden playback should print no cues, got %d", summary.Cues)
	}
	if summary.Repeats != 4 {
		t.Errorf("expected 2 repeats per cue, got %d", summary.Repeats)
	}
	if strings.Contains(out.String(), "Hola") {
		t.Error("cue text leaked while hidden")
	}
}

func TestRunPlaybackStartCue(t *testing.T) {
	var out bytes.Buffer
	summary, err := runPlayback(context.Background(), playOptions{
		SubtitlePath: writeLesson(t),
		Repeat:       1,
		StartCue:     2,
	}, &out, logging.NewNop())
	if err != nil {
		t.Fatalf("runPlayback failed: %v", err)
	}
	if strings.Contains(out.String(), "Hola") {
		t.Error("playback should start at cue 2")
	}
	if summary.Cues != 1 {
		t.Errorf("expected 1 cue activation, got %d", summary.Cues)
	}

	_, err = runPlayback(context.Background(), playOptions{
		SubtitlePath: writeLesson(t),
		Repeat:       1,
		StartCue:     9,
	}, &out, logging.NewNop())
	if err == nil {
		t.Error("expected error for out of range start cue")
	}
}

func TestRunPlaybackErrors(t *testing.T) {
	ctx := context.Background()

	empty := filepath.Join(t.TempDir(), "empty.srt")
	if err := os.WriteFile(empty, []byte("not a subtitle\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runPlayback(ctx, playOptions{SubtitlePath: empty, Repeat: 1}, &bytes.Buffer{}, logging.NewNop()); err == nil {
		t.Error("expected error for file without cues")
	}

	_, err := runPlayback(ctx, playOptions{
		SubtitlePath: writeLesson(t),
		Repeat:       player.Infinite,
	}, &bytes.Buffer{}, logging.NewNop())
	if err == nil || !strings.Contains(err.Error(), "infinite") {
		t.Errorf("expected infinite repeat error, got %v", err)
	}

	summary, err := runPlayback(ctx, playOptions{
		SubtitlePath: writeLesson(t),
		Repeat:       player.Infinite,
		MaxSteps:     200,
	}, &bytes.Buffer{}, logging.NewNop())
	if err != nil {
		t.Fatalf("bounded infinite playback failed: %v", err)
	}
	if summary.Ended || summary.Position > 2 {
		t.Errorf("infinite repeat should stay on the first cue, got %+v", summary)
	}
}

func TestRunPlaybackSavesUserTranslations(t *testing.T) {
	path := writeLesson(t)

	_, err := runPlayback(context.Background(), playOptions{
		SubtitlePath: path,
		Repeat:       1,
		SaveTo:       path,
	}, &bytes.Buffer{}, logging.NewNop())
	if err != nil {
		t.Fatalf("runPlayback failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != lessonSRT {
		t.Error("file rewritten without user translations")
	}
}

func newTestController(t *testing.T) (*clock.Sim, *player.Controller) {
	t.Helper()
	sim := clock.NewSim(clock.WithDuration(10), clock.WithSyncSeekTicks(true))
	ctrl, err := player.New(sim)
	if err != nil {
		t.Fatalf("player.New: %v", err)
	}
	sim.OnTick(ctrl.Tick)
	ctrl.Load(subtitle.Parse(lessonSRT))
	return sim, ctrl
}

func TestApplyCommand(t *testing.T) {
	sim, ctrl := newTestController(t)
	var out bytes.Buffer

	applyCommand(ctrl, "", 5, &out)
	if !ctrl.Playing() || sim.Paused() {
		t.Fatal("enter should start playback")
	}

	applyCommand(ctrl, "g 2", 5, &out)
	if got := ctrl.State().ActiveCueIndex; got != 1 {
		t.Errorf("g 2: active cue = %d, want 1", got)
	}
	if sim.CurrentTime() != 3 {
		t.Errorf("g 2: time = %v, want 3", sim.CurrentTime())
	}

	applyCommand(ctrl, "p", 5, &out)
	if got := ctrl.State().ActiveCueIndex; got != 0 {
		t.Errorf("p: active cue = %d, want 0", got)
	}

	applyCommand(ctrl, "r inf", 5, &out)
	if !ctrl.State().RepeatTarget.IsInfinite() {
		t.Error("r inf should set infinite repeat")
	}

	applyCommand(ctrl, "t Hi there", 5, &out)
	if got := ctrl.Cues()[0].UserTranslation; got != "Hi there" {
		t.Errorf("t: user translation = %q", got)
	}

	applyCommand(ctrl, "f", 5, &out)
	if sim.CurrentTime() < 5 {
		t.Errorf("f: expected skip forward, time = %v", sim.CurrentTime())
	}

	applyCommand(ctrl, "h", 5, &out)
	if ctrl.State().Visible {
		t.Error("h should hide subtitles")
	}

	applyCommand(ctrl, "g 7", 5, &out)
	if !strings.Contains(out.String(), "no cue") {
		t.Error("g 7 should report a missing cue")
	}

	if applyCommand(ctrl, "zz", 5, &out) {
		t.Error("unknown command should not quit")
	}
	if !applyCommand(ctrl, "q", 5, &out) {
		t.Error("q should quit")
	}
}

func TestDriveInteractiveQuits(t *testing.T) {
	sim, ctrl := newTestController(t)
	var out bytes.Buffer

	ctrl.TogglePlayPause()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := driveInteractive(ctx, sim, ctrl, playOptions{
		Tick: 10 * time.Millisecond,
		In:   strings.NewReader("n\nq\n"),
	}, &out)
	if err != nil {
		t.Fatalf("driveInteractive failed: %v", err)
	}
	if ctx.Err() != nil {
		t.Error("q should stop before the timeout")
	}
}

func TestReadLinesStopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	lines := readLines(ctx, pr)

	// the write returns once the scanner holds the line, the pipe stays open
	if _, err := pw.Write([]byte("n\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	cancel()

	done := make(chan struct{})
	go func() {
		for range lines {
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reader goroutine still running after cancel")
	}
}

func TestStepBudget(t *testing.T) {
	if got := stepBudget(5, 2, 50*time.Millisecond, 1); got != 300 {
		t.Errorf("stepBudget = %d, want 300", got)
	}
	if got := stepBudget(5, 1, 50*time.Millisecond, 2); got != 150 {
		t.Errorf("stepBudget at 2x = %d, want 150", got)
	}
}

package clock

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/mgpai22/recite/internal/player"
	"github.com/mgpai22/recite/internal/subtitle"
)

var _ player.Clock = (*Sim)(nil)

func TestAdvanceScalesByRate(t *testing.T) {
	s := NewSim(WithRate(2))
	if s.Advance(1) {
		t.Fatal("a paused clock must not advance")
	}

	s.Play()
	var ticks []float64
	s.OnTick(func(t float64) { ticks = append(ticks, t) })

	s.Advance(0.5)
	s.Advance(0.25)
	if math.Abs(s.CurrentTime()-1.5) > 1e-9 {
		t.Errorf("expected 1.5, got %v", s.CurrentTime())
	}
	if len(ticks) != 2 {
		t.Errorf("expected 2 ticks, got %d", len(ticks))
	}
}

func TestAdvanceStopsAtDuration(t *testing.T) {
	s := NewSim(WithDuration(2))
	ended := false
	s.OnEnded(func() { ended = true })
	s.Play()

	for s.Advance(0.75) {
	}
	if !ended || !s.Ended() || !s.Paused() {
		t.Errorf("expected ended and paused, ended=%v paused=%v", ended, s.Paused())
	}
	if s.CurrentTime() != 2 {
		t.Errorf("expected clamp to 2, got %v", s.CurrentTime())
	}

	s.Play()
	if s.CurrentTime() != 0 || s.Ended() {
		t.Errorf("play after end restarts, got %v", s.CurrentTime())
	}
}

func TestSeekClampsAndTicksWhenSync(t *testing.T) {
	s := NewSim(WithDuration(10), WithSyncSeekTicks(true))
	var ticks []float64
	s.OnTick(func(t float64) { ticks = append(ticks, t) })

	s.Seek(-3)
	s.Seek(42)
	if len(ticks) != 2 || ticks[0] != 0 || ticks[1] != 10 {
		t.Errorf("unexpected ticks %v", ticks)
	}
}

func TestSetRate(t *testing.T) {
	s := NewSim()
	if err := s.SetRate(0); err == nil {
		t.Error("expected error for zero rate")
	}
	if err := s.SetRate(0.75); err != nil || s.Rate() != 0.75 {
		t.Errorf("SetRate(0.75): err=%v rate=%v", err, s.Rate())
	}
}

func TestRunStepsDrivesControllerThroughRepeats(t *testing.T) {
	cues := subtitle.Parse("1\n00:00:01,000 --> 00:00:03,000\nHello\n\n2\n00:00:03,500 --> 00:00:05,000\nWorld\n\n")

	s := NewSim(WithDuration(6), WithSyncSeekTicks(true))
	var seen []string
	c, err := player.New(s,
		player.WithRepeatTarget(2),
		player.WithListener(player.ListenerFuncs{
			OnActiveCue: func(cue *subtitle.Cue) {
				if cue != nil {
					seen = append(seen, cue.Text)
				}
			},
		}),
	)
	if err != nil {
		t.Fatalf("player.New failed: %v", err)
	}
	c.Load(cues)
	s.OnTick(c.Tick)
	s.Play()

	steps, err := s.RunSteps(context.Background(), 50*time.Millisecond, 10000)
	if err != nil {
		t.Fatalf("RunSteps failed: %v", err)
	}
	if !s.Ended() {
		t.Fatalf("expected media to end after %d steps", steps)
	}

	// 120 steps of media plus a replay of each cue from start+eps to its
	// near-end point, 38 and 28 steps
	if steps < 183 || steps > 189 {
		t.Errorf("unexpected step count %d", steps)
	}
	if len(seen) != 2 || seen[0] != "Hello" || seen[1] != "World" {
		t.Errorf("unexpected cue sequence %v", seen)
	}
}

func TestRunStopsOnContext(t *testing.T) {
	s := NewSim()
	s.Play()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if err := s.Run(ctx, 5*time.Millisecond); err != context.DeadlineExceeded {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if s.CurrentTime() <= 0 {
		t.Error("expected time to advance")
	}
}

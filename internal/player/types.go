package player

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mgpai22/recite/internal/subtitle"
)

const (
	// distance before a cue's end at which the repeat decision is made
	NearEndWindow = 0.1
	// offset past a cue's start used for repeat seeks, so the next lookup
	// lands inside the same cue
	SeekEpsilon = 0.01
)

// host media element as seen by the controller
type Clock interface {
	CurrentTime() float64
	// fire-and-forget; some hosts tick synchronously from inside Seek
	Seek(seconds float64)
	Play()
	Pause()
	Paused() bool
}

// UI side of the controller
type Listener interface {
	// nil when no cue is active or cues are hidden
	ActiveCueChanged(cue *subtitle.Cue)
	RepeatStateChanged(state RepeatState)
}

// adapts plain functions to Listener, nil fields are skipped
type ListenerFuncs struct {
	OnActiveCue   func(cue *subtitle.Cue)
	OnRepeatState func(state RepeatState)
}

func (f ListenerFuncs) ActiveCueChanged(cue *subtitle.Cue) {
	if f.OnActiveCue != nil {
		f.OnActiveCue(cue)
	}
}

func (f ListenerFuncs) RepeatStateChanged(state RepeatState) {
	if f.OnRepeatState != nil {
		f.OnRepeatState(state)
	}
}

// RepeatTarget is the total number of plays per cue, or Infinite.
type RepeatTarget int

const Infinite RepeatTarget = -1

func (r RepeatTarget) IsInfinite() bool {
	return r == Infinite
}

func (r RepeatTarget) Valid() bool {
	return r == Infinite || r >= 1
}

func (r RepeatTarget) String() string {
	if r.IsInfinite() {
		return "infinite"
	}
	return strconv.Itoa(int(r))
}

// accepts a positive count or "infinite"/"inf"/"loop"
func ParseRepeatTarget(s string) (RepeatTarget, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "infinite", "inf", "loop", "∞":
		return Infinite, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid repeat target %q: use a positive number or \"infinite\"", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("repeat target must be at least 1, got %d", n)
	}
	return RepeatTarget(n), nil
}

// controller phase
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseTracking
	PhaseRepeating
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseTracking:
		return "Tracking"
	case PhaseRepeating:
		return "Repeating"
	default:
		return "Unknown"
	}
}

// payload of RepeatStateChanged
type RepeatState struct {
	RepeatsSoFar int
	RepeatTarget RepeatTarget
}

// snapshot of the controller's playback state
type State struct {
	ActiveCueIndex int
	RepeatTarget   RepeatTarget
	RepeatsSoFar   int
	Visible        bool
	Phase          Phase
}

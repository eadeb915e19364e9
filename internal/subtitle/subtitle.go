package subtitle

import (
	"time"
)

// single timed subtitle record, times in seconds
type Cue struct {
	// sequence number as declared in the source, not validated
	Index int
	Start float64
	End   float64
	Text  string
	// secondary-language paragraph(s), empty when absent
	Translation string
	// set by the manual-entry editing flow, empty when absent
	UserTranslation string
}

// translation to show or export, the user's own entry wins
func (c Cue) DisplayTranslation() string {
	if c.UserTranslation != "" {
		return c.UserTranslation
	}
	return c.Translation
}

// cue length in seconds, negative for inverted ranges
func (c Cue) Duration() float64 {
	return c.End - c.Start
}

// represents supported export formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
)

// represents transcribed audio segment
type Segment struct {
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// interface for turning transcription segments into cues
type Generator interface {
	Generate(segments []Segment) ([]Cue, error)
}

// interface for writing cues to files
type Writer interface {
	Write(cues []Cue, path string) error
}

func seconds(d time.Duration) float64 {
	return d.Seconds()
}

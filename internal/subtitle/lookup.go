package subtitle

// FindActiveCue returns the index of the first cue whose [Start, End] range
// contains t, or -1. On overlap the earliest-declared cue wins.
func FindActiveCue(cues []Cue, t float64) int {
	for i := range cues {
		if t >= cues[i].Start && t <= cues[i].End {
			return i
		}
	}
	return -1
}

// FindNextCueAfter returns the index of the first cue starting strictly
// after t, or -1 when there is none.
func FindNextCueAfter(cues []Cue, t float64) int {
	for i := range cues {
		if cues[i].Start > t {
			return i
		}
	}
	return -1
}

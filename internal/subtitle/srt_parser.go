package subtitle

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var timestampRegex = regexp.MustCompile(
	`^(\d{2}):(\d{2}):(\d{2}),(\d{3}) --> (\d{2}):(\d{2}):(\d{2}),(\d{3})$`,
)

// Parse converts SubRip text into cues in encounter order.
//
// Blocks with a non-numeric index line or a malformed timestamp line are
// skipped without error. Paragraphs that follow the text after a blank line
// and do not open a new block are the cue's translation. A translation ends
// early at an index line directly followed by a timestamp line.
func Parse(text string) []Cue {
	text = strings.TrimPrefix(text, "\ufeff")
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	cues := []Cue{}
	i := 0
	for i < len(lines) {
		line := lines[i]
		i++
		if line == "" {
			continue
		}

		index, err := strconv.Atoi(line)
		if err != nil {
			continue
		}

		if i >= len(lines) {
			break
		}
		start, end, ok := parseTimestampLine(lines[i])
		i++
		if !ok {
			continue
		}

		var textLines []string
		for i < len(lines) && lines[i] != "" {
			textLines = append(textLines, lines[i])
			i++
		}

		cue := Cue{
			Index: index,
			Start: start,
			End:   end,
			Text:  strings.Join(textLines, "\n"),
		}

		if len(textLines) > 0 {
			var paragraphs []string
			paragraphs, i = collectTranslation(lines, i)
			cue.Translation = strings.Join(paragraphs, "\n\n")
		}

		cues = append(cues, cue)
	}

	return cues
}

// reads blank-line separated paragraphs until the next block or EOF
func collectTranslation(lines []string, i int) ([]string, int) {
	var paragraphs []string
	for {
		j := i
		for j < len(lines) && lines[j] == "" {
			j++
		}
		if j >= len(lines) || opensBlock(lines, j) {
			return paragraphs, i
		}

		var para []string
		for j < len(lines) && lines[j] != "" {
			if len(para) > 0 && timedBlockAt(lines, j) {
				break
			}
			para = append(para, lines[j])
			j++
		}
		paragraphs = append(paragraphs, strings.Join(para, "\n"))
		i = j
		if j < len(lines) && lines[j] != "" {
			return paragraphs, i
		}
	}
}

// an integer line with more lines under it starts a block, even one whose
// timestamp turns out malformed, and so does a truncated block at EOF; a
// number alone in its paragraph is translation text
func opensBlock(lines []string, j int) bool {
	if !isIndexLine(lines[j]) {
		return false
	}
	return j+1 >= len(lines) || lines[j+1] != ""
}

// an integer line directly followed by a valid timestamp line
func timedBlockAt(lines []string, j int) bool {
	if !isIndexLine(lines[j]) || j+1 >= len(lines) {
		return false
	}
	_, _, ok := parseTimestampLine(lines[j+1])
	return ok
}

func isIndexLine(line string) bool {
	_, err := strconv.Atoi(line)
	return err == nil
}

func parseTimestampLine(line string) (float64, float64, bool) {
	matches := timestampRegex.FindStringSubmatch(line)
	if len(matches) != 9 {
		return 0, 0, false
	}
	start, err := parseSRTTimestamp(matches[1], matches[2], matches[3], matches[4])
	if err != nil {
		return 0, 0, false
	}
	end, err := parseSRTTimestamp(matches[5], matches[6], matches[7], matches[8])
	if err != nil {
		return 0, 0, false
	}
	return start, end, true
}

// H*3600 + M*60 + S + mmm/1000 from integer components
func parseSRTTimestamp(
	hours, minutes, secs, millis string,
) (float64, error) {
	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, err
	}
	s, err := strconv.Atoi(secs)
	if err != nil {
		return 0, err
	}
	ms, err := strconv.Atoi(millis)
	if err != nil {
		return 0, err
	}

	return float64(h*3600+m*60+s) + float64(ms)/1000, nil
}

// reads and parses an SRT file, only I/O failures are errors
func ParseFile(path string) ([]Cue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read subtitle file: %w", err)
	}
	return Parse(string(data)), nil
}

package transcribe

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mgpai22/recite/internal/subtitle"
)

// segment from a model's JSON transcript
type transcriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

var codeFence = regexp.MustCompile("```(?:json)?\\s*")

// removes markdown formatting from the response
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = codeFence.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// extractTranscriptSegments finds the first JSON value in text that holds
// transcript segments, bare or wrapped in (possibly nested) objects.
func extractTranscriptSegments(text string) ([]transcriptSegment, error) {
	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		decoder := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			continue
		}
		if segments, ok := tryExtractSegments(raw, 0); ok {
			return segments, nil
		}
	}
	return nil, fmt.Errorf("no valid transcript JSON found in response")
}

var wrapperKeys = []string{"segments", "transcript", "data", "results"}

const maxWrapperDepth = 3

func tryExtractSegments(raw json.RawMessage, depth int) ([]transcriptSegment, bool) {
	var segments []transcriptSegment
	if err := json.Unmarshal(raw, &segments); err == nil && validateSegments(segments) {
		return segments, true
	}
	if depth >= maxWrapperDepth {
		return nil, false
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, false
	}

	for _, key := range wrapperKeys {
		if fieldRaw, ok := wrapper[key]; ok {
			if segments, ok := tryExtractSegments(fieldRaw, depth+1); ok {
				return segments, true
			}
		}
	}
	for _, fieldRaw := range wrapper {
		if segments, ok := tryExtractSegments(fieldRaw, depth+1); ok {
			return segments, true
		}
	}
	return nil, false
}

// at least one segment carries a timestamp or text
func validateSegments(segments []transcriptSegment) bool {
	for _, s := range segments {
		if s.Text != "" || s.Start != 0 || s.End != 0 {
			return true
		}
	}
	return false
}

func toSegments(in []transcriptSegment) []subtitle.Segment {
	segments := make([]subtitle.Segment, 0, len(in))
	for _, ts := range in {
		segments = append(segments, subtitle.Segment{
			StartTime: secondsToDuration(ts.Start),
			EndTime:   secondsToDuration(ts.End),
			Text:      strings.TrimSpace(ts.Text),
		})
	}
	return segments
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

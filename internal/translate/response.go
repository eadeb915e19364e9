package translate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var codeFence = regexp.MustCompile("```(?:json)?\\s*")

func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = codeFence.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// parseResponseText turns raw model output into results
func parseResponseText(provider, text string) ([]TranslationResult, error) {
	if text == "" {
		return nil, fmt.Errorf("no text in %s response", provider)
	}

	text = cleanJSONResponse(text)
	results, err := extractTranslationResults(text)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse JSON response: %w (response: %s)",
			err,
			truncateString(text, 200),
		)
	}
	return results, nil
}

// escapes backslashes that are not valid JSON escapes, such as the \N
// line break of ASS text
func fixInvalidEscapes(s string) string {
	var result strings.Builder
	result.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			result.WriteByte(s[i])
			continue
		}
		switch next := s[i+1]; next {
		case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
			result.WriteByte('\\')
			result.WriteByte(next)
		default:
			result.WriteString(`\\`)
			result.WriteByte(next)
		}
		i++
	}

	return result.String()
}

// extractTranslationResults finds the first JSON value in text that holds
// translation results, either a bare array or an object wrapping one.
func extractTranslationResults(text string) ([]TranslationResult, error) {
	text = fixInvalidEscapes(text)

	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		decoder := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			continue
		}
		if results, ok := tryExtractResults(raw); ok {
			return results, nil
		}
	}
	return nil, fmt.Errorf("no valid translation JSON found in response")
}

var wrapperKeys = []string{"results", "translations", "data", "items"}

func tryExtractResults(raw json.RawMessage) ([]TranslationResult, bool) {
	var results []TranslationResult
	if err := json.Unmarshal(raw, &results); err == nil && validateResults(results) {
		return results, true
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, false
	}

	for _, key := range wrapperKeys {
		if fieldRaw, ok := wrapper[key]; ok {
			if err := json.Unmarshal(fieldRaw, &results); err == nil && validateResults(results) {
				return results, true
			}
		}
	}

	for _, fieldRaw := range wrapper {
		if err := json.Unmarshal(fieldRaw, &results); err == nil && validateResults(results) {
			return results, true
		}
	}

	return nil, false
}

// at least one non-empty text
func validateResults(results []TranslationResult) bool {
	for _, r := range results {
		if r.Text != "" {
			return true
		}
	}
	return false
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

package config

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// NormalizeLanguage canonicalises a BCP 47 tag ("pt_br" becomes "pt-BR").
// Free-form names such as "japanese" are title-cased and kept, since the
// translation providers accept either.
func NormalizeLanguage(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	tag, err := language.Parse(strings.ReplaceAll(value, "_", "-"))
	if err != nil {
		return cases.Title(language.English).String(strings.ToLower(value))
	}
	return tag.String()
}

// LanguageName returns the English display name for a tag, or value itself
// when it is not a tag.
func LanguageName(value string) string {
	tag, err := language.Parse(value)
	if err != nil {
		return value
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return value
}

// SameLanguage reports whether two user-supplied languages name the same
// base language.
func SameLanguage(a, b string) bool {
	a, b = NormalizeLanguage(a), NormalizeLanguage(b)
	if a == "" || b == "" {
		return false
	}
	if strings.EqualFold(a, b) {
		return true
	}
	ta, errA := language.Parse(a)
	tb, errB := language.Parse(b)
	if errA != nil || errB != nil {
		return strings.EqualFold(LanguageName(a), LanguageName(b))
	}
	baseA, _ := ta.Base()
	baseB, _ := tb.Base()
	return baseA == baseB
}

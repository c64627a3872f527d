package sanitizer

import (
	"strings"
	"unicode"
)

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(TrimAndNormalize(email))
}

func NormalizeLabel(label string) string {
	normalized := TrimAndNormalize(label)
	return strings.ToLower(normalized)
}

// NormalizeTailNumber strips whitespace and hyphens and uppercases the
// registration, so "n-123ab" and "N123AB" refer to the same airframe.
func NormalizeTailNumber(tail string) string {
	p := Pipeline{
		TrimAndNormalize,
		func(s string) string { return strings.ReplaceAll(s, " ", "") },
		func(s string) string { return strings.ReplaceAll(s, "-", "") },
		strings.ToUpper,
	}
	return p.Apply(tail)
}

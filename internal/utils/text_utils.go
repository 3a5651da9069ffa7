package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

var (
	digitRunRe = regexp.MustCompile(`\d+`)
	spaceRunRe = regexp.MustCompile(`\s+`)
)

// NormalizeLot canonicalizes a lot code so that spreadsheet and database
// spellings compare equal: whitespace dropped, case folded, and leading zeros
// removed from every run of digits ("00123" and "123" both give "123")
func NormalizeLot(value string) string {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)
	if s == "" {
		return ""
	}
	s = cases.Fold().String(s)
	return digitRunRe.ReplaceAllStringFunc(s, func(run string) string {
		trimmed := strings.TrimLeft(run, "0")
		if trimmed == "" {
			return "0"
		}
		return trimmed
	})
}

// NormalizeLots normalizes and de-duplicates lot codes, keeping first-seen
// order and dropping blanks
func NormalizeLots(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		n := NormalizeLot(v)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// CollapseSpaces trims s and squeezes internal whitespace runs to one space
func CollapseSpaces(s string) string {
	return spaceRunRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

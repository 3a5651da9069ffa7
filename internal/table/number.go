package table

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber reads a spreadsheet number written with either locale's
// separators. With both '.' and ',' present the right-most one is the decimal
// separator. With only one kind present, groups of exactly three digits after a
// numeric leading group are thousands ("1.234" is 1234, "1,5" is 1.5).
// Anything unparsable is 0
func ParseNumber(value string) float64 {
	s := strings.ReplaceAll(strings.TrimSpace(value), " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if s == "" {
		return 0
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		decimal, thousands := ".", ","
		if lastComma > lastDot {
			decimal, thousands = ",", "."
		}
		s = strings.ReplaceAll(s, thousands, "")
		s = strings.Replace(s, decimal, ".", 1)
	case lastComma >= 0:
		s = singleSeparator(s, ",")
	case lastDot >= 0:
		s = singleSeparator(s, ".")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func singleSeparator(s, sep string) string {
	groups := strings.Split(s, sep)
	if isInteger(groups[0]) && len(groups) > 1 {
		grouped := true
		for _, g := range groups[1:] {
			if len(g) != 3 || !isDigits(g) {
				grouped = false
				break
			}
		}
		if grouped {
			return strings.Join(groups, "")
		}
	}
	if len(groups) == 2 {
		return groups[0] + "." + groups[1]
	}
	return s
}

func isInteger(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return isDigits(s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

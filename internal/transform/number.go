// Package transform converts raw spreadsheet cells into display-ready values.
// Every function here is total: malformed input maps to a documented fallback.
package transform

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var leadingFloatPattern = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?`)

// Decimal formats value with exactly two decimals. The first comma is read as
// the decimal separator. Empty or unparsable input returns def unchanged.
func Decimal(value, def string) string {
	s := strings.TrimSpace(strings.Replace(value, ",", ".", 1))
	n, ok := parseStrict(s)
	if !ok {
		return def
	}
	return strconv.FormatFloat(n, 'f', 2, 64)
}

// IntegerRounded rounds value to the nearest integer (halves round up).
// Blank input counts as zero; anything else unparsable is returned trimmed.
func IntegerRounded(value string) string {
	s := strings.TrimSpace(value)
	if s == "" {
		return "0"
	}
	n, ok := parseStrict(s)
	if !ok {
		return s
	}
	return strconv.FormatFloat(math.Floor(n+0.5), 'f', 0, 64)
}

// parseStrict parses the whole string as a finite float.
func parseStrict(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// leadingFloat parses the longest numeric prefix of s, ignoring leading
// whitespace and any trailing text ("95 %" -> 95).
func leadingFloat(s string) (float64, bool) {
	m := leadingFloatPattern.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// leadingInt parses the leading run of digits (with optional sign) of s.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

package transform

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dateCleaner    = strings.NewReplacer("\r", "", "\n", "", `"`, "")
)

// CalendarDate parses an ISO "YYYY-MM-DD" or day-first "DD/MM/YYYY" date.
// Anything else, including slash dates with more or fewer than three parts,
// reports false. Out-of-range day or month values roll over like time.Date.
func CalendarDate(value string) (time.Time, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, false
	}

	if isoDatePattern.MatchString(s) {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	day, ok := leadingInt(parts[0])
	if !ok {
		return time.Time{}, false
	}
	month, ok := leadingInt(parts[1])
	if !ok {
		return time.Time{}, false
	}
	year, ok := leadingInt(parts[2])
	if !ok {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// DateLabel renders a parseable date the way the es-ES locale prints short
// dates ("5/3/2024"). Unparsable values are returned as-is.
func DateLabel(value string) string {
	t, ok := CalendarDate(value)
	if !ok {
		return value
	}
	return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year())
}

// CleanDate strips quotes and line breaks from a date cell and collapses
// internal whitespace.
func CleanDate(value string) string {
	return strings.Join(strings.Fields(dateCleaner.Replace(value)), " ")
}

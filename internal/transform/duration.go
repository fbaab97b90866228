package transform

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ZeroDuration is returned for cells that cannot be read as a duration.
const ZeroDuration = "00:00:00"

var (
	hmsPattern         = regexp.MustCompile(`^\d{1,2}:\d{2}:\d{2}$`)
	hmPattern          = regexp.MustCompile(`^\d{1,2}:\d{1,2}$`)
	dayFractionPattern = regexp.MustCompile(`^\d+\.\d+$`)
)

// Duration normalizes a time cell to "HH:MM:SS". Accepted shapes, in order:
// "H:MM:SS" (unchanged), "H:MM" (padded), a decimal fraction of a day as
// exported by spreadsheets ("0.5" -> 12h), and a plain number of hours.
func Duration(value string) string {
	s := strings.TrimSpace(value)
	if s == "" {
		return ZeroDuration
	}

	if hmsPattern.MatchString(s) {
		return s
	}

	if hmPattern.MatchString(s) {
		parts := strings.SplitN(s, ":", 2)
		h, _ := strconv.Atoi(parts[0])
		m, _ := strconv.Atoi(parts[1])
		return fmt.Sprintf("%02d:%02d:00", h, m)
	}

	if dayFractionPattern.MatchString(s) {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return hoursToClock(n * 24)
		}
	}

	if n, ok := leadingFloat(s); ok && n >= 0 {
		return hoursToClock(n)
	}

	return ZeroDuration
}

// hoursToClock splits fractional hours into "HH:MM:00", carrying a rounded
// 60th minute into the hour.
func hoursToClock(hours float64) string {
	h := math.Floor(hours)
	m := math.Round((hours - h) * 60)
	if m >= 60 {
		h++
		m = 0
	}
	return fmt.Sprintf("%02d:%02d:00", int64(h), int64(m))
}

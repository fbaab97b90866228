package transform

import (
	"strconv"
	"strings"
)

// NoPercent is shown when a KPI cell is empty or unparsable.
const NoPercent = "--%"

// Percent formats a KPI cell as "NN.NN%". Values in (0, 1] are read as
// fractions and scaled by 100; anything above 100 is clamped to 100.
func Percent(value string) string {
	s := strings.TrimSpace(value)
	if s == "" {
		return NoPercent
	}
	s = strings.Replace(s, "%", "", 1)
	s = strings.Replace(s, ",", ".", 1)

	n, ok := leadingFloat(s)
	if !ok {
		return NoPercent
	}
	if n > 0 && n <= 1 {
		n *= 100
	}
	if n > 100 {
		n = 100
	}
	return strconv.FormatFloat(n, 'f', 2, 64) + "%"
}

package feed

import (
	"slices"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/plant-dashboard/internal/transform"
)

// Selector picks a row: Latest, or an exact cleaned date string.
type Selector string

// Latest selects the structurally last data row.
const Latest Selector = "latest"

// ParseSelector normalizes user input. Empty input and "latest" select the
// last row; anything else is cleaned like a date cell.
func ParseSelector(s string) Selector {
	s = transform.CleanDate(s)
	if s == "" || strings.EqualFold(s, string(Latest)) {
		return Latest
	}
	return Selector(s)
}

// IsLatest reports whether s selects the last row.
func (s Selector) IsLatest() bool {
	return s == "" || s == Latest
}

// Select returns the row matching sel. An exact selector matches the first
// row whose cleaned date cell equals it byte for byte; differently formatted
// spellings of the same day do not match.
func Select(ds *Dataset, sel Selector) (Row, error) {
	if len(ds.Rows) == 0 {
		return nil, eris.Wrapf(ErrInsufficientRows, "feed %s", ds.Feed)
	}
	if sel.IsLatest() {
		return ds.Rows[len(ds.Rows)-1], nil
	}

	want := string(sel)
	for _, row := range ds.Rows {
		if ds.DateOf(row) == want {
			return row, nil
		}
	}
	return nil, eris.Wrapf(ErrRowNotFound, "feed %s: date %q", ds.Feed, want)
}

// DateOption is one entry of the date picker.
type DateOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// DateOptions lists the distinct non-empty dates of ds, newest first.
// Duplicates keep their first occurrence. Dates that do not parse are placed
// after the parseable ones in the order they were first seen.
func DateOptions(ds *Dataset) []DateOption {
	type dated struct {
		opt DateOption
		at  time.Time
		ok  bool
	}

	seen := make(map[string]bool)
	var all []dated
	for _, row := range ds.Rows {
		v := ds.DateOf(row)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		at, ok := transform.CalendarDate(v)
		all = append(all, dated{
			opt: DateOption{Value: v, Label: transform.DateLabel(v)},
			at:  at,
			ok:  ok,
		})
	}

	slices.SortStableFunc(all, func(a, b dated) int {
		switch {
		case a.ok && b.ok:
			return b.at.Compare(a.at)
		case a.ok:
			return -1
		case b.ok:
			return 1
		default:
			return 0
		}
	})

	out := make([]DateOption, len(all))
	for i, d := range all {
		out[i] = d.opt
	}
	return out
}

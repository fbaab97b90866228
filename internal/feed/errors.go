package feed

import (
	"github.com/rotisserie/eris"
)

// Failure classes surfaced to callers. Match with errors.Is.
var (
	ErrFetch            = eris.New("feed: fetch failed")
	ErrEmptyPayload     = eris.New("feed: empty payload")
	ErrInsufficientRows = eris.New("feed: no data rows after header")
	ErrRowNotFound      = eris.New("feed: no row for selector")
	ErrUnknownFeed      = eris.New("feed: unknown feed")
)

// FetchError reports a failed download for a feed. It matches ErrFetch and
// unwraps to the transport error.
type FetchError struct {
	Feed string
	Err  error
}

func (e *FetchError) Error() string {
	return "feed " + e.Feed + ": fetch failed: " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is reports whether target is ErrFetch.
func (e *FetchError) Is(target error) bool { return target == ErrFetch }

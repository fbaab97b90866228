// Package fetcher downloads published spreadsheet exports and splits CSV text into rows.
package fetcher

import (
	"context"
	"fmt"
	"io"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body. Any non-2xx
	// response is reported as a *StatusError.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

type feedKey struct{}

// WithFeed labels ctx with the feed a download belongs to, for logging.
func WithFeed(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, feedKey{}, name)
}

// FeedFromContext returns the feed label set by WithFeed, or "".
func FeedFromContext(ctx context.Context) string {
	name, _ := ctx.Value(feedKey{}).(string)
	return name
}

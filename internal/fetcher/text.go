package fetcher

import (
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// maxPayloadBytes bounds how much of a response body ReadText will consume.
const maxPayloadBytes = 32 << 20

// ErrPayloadTooLarge is returned when a body exceeds maxPayloadBytes.
var ErrPayloadTooLarge = eris.New("fetcher: payload too large")

// ReadText reads a CSV payload as UTF-8 text. A leading byte-order mark is
// consumed (UTF-16 payloads with a BOM are transcoded). Bodies larger than
// maxPayloadBytes fail rather than being cut short.
func ReadText(r io.Reader) (string, error) {
	return readText(r, maxPayloadBytes)
}

func readText(r io.Reader, limit int64) (string, error) {
	lr := &io.LimitedReader{R: r, N: limit + 1}
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	b, err := io.ReadAll(transform.NewReader(lr, dec))
	if err != nil {
		return "", eris.Wrap(err, "fetcher: read body")
	}
	if lr.N <= 0 {
		return "", eris.Wrapf(ErrPayloadTooLarge, "fetcher: body exceeds %d bytes", limit)
	}
	return string(b), nil
}

// CacheBust sets param on rawURL to now in Unix milliseconds so that
// intermediate caches never serve a stale export. An empty param leaves the
// URL unchanged.
func CacheBust(rawURL, param string, now time.Time) (string, error) {
	if param == "" {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", eris.Wrapf(err, "fetcher: parse url %q", rawURL)
	}
	q := u.Query()
	q.Set(param, strconv.FormatInt(now.UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

package dashboard

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/plant-dashboard/internal/feed"
)

// Loader fetches and parses one feed.
type Loader interface {
	Load(ctx context.Context, src feed.Source) (*feed.Dataset, error)
}

// Cache holds the most recently committed Dataset for each feed. Datasets are
// replaced wholesale; a failed refresh leaves the previous one in place.
//
// Each refresh of a feed takes a generation token when it starts and only
// commits if no newer refresh of that feed has started since, so a slow
// earlier response never overwrites a newer one.
type Cache struct {
	loader  Loader
	sources map[string]feed.Source
	order   []string

	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	issued    uint64
	committed *feed.Dataset
	lastErr   error
	lastTry   time.Time
}

// Status describes the cache state of one feed.
type Status struct {
	Feed       string
	Loaded     bool
	Rows       int
	Generation uint64
	FetchedAt  time.Time
	LastTry    time.Time
	LastErr    error
}

// NewCache creates a cache for the given sources. Feed order follows the
// order of sources.
func NewCache(loader Loader, sources ...feed.Source) *Cache {
	c := &Cache{
		loader:  loader,
		sources: make(map[string]feed.Source, len(sources)),
		entries: make(map[string]*entry, len(sources)),
	}
	for _, src := range sources {
		if _, dup := c.sources[src.Name]; !dup {
			c.order = append(c.order, src.Name)
		}
		c.sources[src.Name] = src
		c.entries[src.Name] = &entry{}
	}
	return c
}

// Feeds returns the configured feed names in order.
func (c *Cache) Feeds() []string {
	return append([]string(nil), c.order...)
}

// RefreshResult summarizes one combined refresh.
type RefreshResult struct {
	ID        string
	Committed []string
	Stale     []string
	Errors    map[string]error
}

// Err returns nil when every feed refreshed, otherwise an error naming the
// failed feeds.
func (r RefreshResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	names := slices.Sorted(maps.Keys(r.Errors))
	first := r.Errors[names[0]]
	return eris.Wrapf(first, "refresh %s: %d feed(s) failed %v", r.ID, len(names), names)
}

// Refresh reloads every feed concurrently. A failure in one feed does not
// prevent the others from committing.
func (c *Cache) Refresh(ctx context.Context) RefreshResult {
	res := RefreshResult{
		ID:     uuid.NewString(),
		Errors: make(map[string]error),
	}
	log := zap.L().With(zap.String("refresh_id", res.ID))
	log.Info("refresh started", zap.Strings("feeds", c.order))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range c.order {
		g.Go(func() error {
			committed, err := c.refreshFeed(gctx, name, log)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				res.Errors[name] = err
			case committed:
				res.Committed = append(res.Committed, name)
			default:
				res.Stale = append(res.Stale, name)
			}
			// Errors stay per feed and must not cancel gctx.
			return nil
		})
	}
	_ = g.Wait()

	log.Info("refresh finished",
		zap.Strings("committed", res.Committed),
		zap.Strings("stale", res.Stale),
		zap.Int("failed", len(res.Errors)),
	)
	return res
}

// RefreshFeed reloads a single feed. It reports false with a nil error when
// the result was superseded by a newer refresh.
func (c *Cache) RefreshFeed(ctx context.Context, name string) (bool, error) {
	if _, ok := c.sources[name]; !ok {
		return false, eris.Wrapf(feed.ErrUnknownFeed, "refresh %q", name)
	}
	log := zap.L().With(zap.String("refresh_id", uuid.NewString()))
	return c.refreshFeed(ctx, name, log)
}

func (c *Cache) refreshFeed(ctx context.Context, name string, log *zap.Logger) (bool, error) {
	log = log.With(zap.String("feed", name))
	token := c.begin(name)

	ds, err := c.loader.Load(ctx, c.sources[name])
	if err != nil {
		c.fail(name, token, err)
		log.Warn("feed refresh failed, keeping previous data", zap.Uint64("generation", token), zap.Error(err))
		return false, err
	}

	if !c.commit(name, token, ds) {
		log.Info("discarding superseded feed result", zap.Uint64("generation", token))
		return false, nil
	}
	log.Debug("feed committed", zap.Uint64("generation", token), zap.Int("rows", ds.Len()))
	return true, nil
}

func (c *Cache) begin(name string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entries[name]
	e.issued++
	e.lastTry = time.Now()
	return e.issued
}

func (c *Cache) commit(name string, token uint64, ds *feed.Dataset) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entries[name]
	if token != e.issued {
		return false
	}
	ds.Generation = token
	e.committed = ds
	e.lastErr = nil
	return true
}

func (c *Cache) fail(name string, token uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entries[name]
	if token == e.issued {
		e.lastErr = err
	}
}

// Dataset returns the committed dataset for a feed. A feed that has never
// loaded successfully reports an error matching feed.ErrFetch.
func (c *Cache) Dataset(name string) (*feed.Dataset, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[name]
	if !ok {
		return nil, eris.Wrapf(feed.ErrUnknownFeed, "dataset %q", name)
	}
	if e.committed == nil {
		if errors.Is(e.lastErr, feed.ErrFetch) {
			return nil, e.lastErr
		}
		if e.lastErr != nil {
			return nil, &feed.FetchError{Feed: name, Err: e.lastErr}
		}
		return nil, eris.Wrapf(feed.ErrFetch, "feed %s has not been loaded", name)
	}
	return e.committed, nil
}

// View builds the view for a feed from its committed dataset.
func (c *Cache) View(name string, sel feed.Selector) (View, error) {
	ds, err := c.Dataset(name)
	if err != nil {
		return View{}, err
	}
	return Build(ds, sel)
}

// DateOptions lists the selectable dates of a feed, newest first.
func (c *Cache) DateOptions(name string) ([]feed.DateOption, error) {
	ds, err := c.Dataset(name)
	if err != nil {
		return nil, err
	}
	return feed.DateOptions(ds), nil
}

// Status reports the cache state of a feed.
func (c *Cache) Status(name string) (Status, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[name]
	if !ok {
		return Status{}, eris.Wrapf(feed.ErrUnknownFeed, "status %q", name)
	}
	st := Status{Feed: name, LastTry: e.lastTry, LastErr: e.lastErr}
	if e.committed != nil {
		st.Loaded = true
		st.Rows = e.committed.Len()
		st.Generation = e.committed.Generation
		st.FetchedAt = e.committed.FetchedAt
	}
	return st, nil
}

package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sells-group/plant-dashboard/internal/feed"
	"github.com/sells-group/plant-dashboard/internal/fetcher"
)

type loadFunc func(ctx context.Context, src feed.Source, call int) (*feed.Dataset, error)

type fakeLoader struct {
	mu    sync.Mutex
	calls map[string]int
	fn    loadFunc
}

func newFakeLoader(fn loadFunc) *fakeLoader {
	return &fakeLoader{calls: make(map[string]int), fn: fn}
}

func (f *fakeLoader) Load(ctx context.Context, src feed.Source) (*feed.Dataset, error) {
	f.mu.Lock()
	f.calls[src.Name]++
	call := f.calls[src.Name]
	f.mu.Unlock()
	return f.fn(ctx, src, call)
}

func sources() []feed.Source {
	return []feed.Source{
		{Name: feed.Main, URL: "https://example.com/main.csv", Schema: feed.MainSchema()},
		{Name: feed.Metrics, URL: "https://example.com/metrics.csv", Schema: feed.MetricsSchema()},
	}
}

func build(name, csv string) (*feed.Dataset, error) {
	schema, err := feed.DefaultSchema(name)
	if err != nil {
		return nil, err
	}
	return feed.NewDataset(name, fetcher.ParseCSV(csv), schema, time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC))
}

func fixtures() loadFunc {
	return func(_ context.Context, src feed.Source, _ int) (*feed.Dataset, error) {
		if src.Name == feed.Main {
			return build(feed.Main, mainCSV)
		}
		return build(feed.Metrics, metricsCSV)
	}
}

func TestCache_Refresh(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := NewCache(newFakeLoader(fixtures()), sources()...)
	res := c.Refresh(context.Background())

	require.NoError(t, res.Err())
	assert.NotEmpty(t, res.ID)
	assert.ElementsMatch(t, []string{feed.Main, feed.Metrics}, res.Committed)
	assert.Empty(t, res.Stale)

	v, err := c.View(feed.Main, feed.Latest)
	require.NoError(t, err)
	assert.Equal(t, "1250.50", v.Slot(SlotTotalQss))

	v, err = c.View(feed.Metrics, feed.Selector("04/03/2024"))
	require.NoError(t, err)
	assert.Equal(t, "95.50%", v.Slot(SlotKPIDisponibilidad))

	opts, err := c.DateOptions(feed.Metrics)
	require.NoError(t, err)
	assert.Equal(t, []feed.DateOption{
		{Value: "05/03/2024", Label: "5/3/2024"},
		{Value: "04/03/2024", Label: "4/3/2024"},
	}, opts)

	st, err := c.Status(feed.Main)
	require.NoError(t, err)
	assert.True(t, st.Loaded)
	assert.Equal(t, 2, st.Rows)
	assert.Equal(t, uint64(1), st.Generation)
	assert.NoError(t, st.LastErr)
}

func TestCache_PartialFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	ok := fixtures()
	loader := newFakeLoader(func(ctx context.Context, src feed.Source, call int) (*feed.Dataset, error) {
		if src.Name == feed.Metrics {
			return nil, &feed.FetchError{Feed: src.Name, Err: errors.New("unexpected status 500")}
		}
		return ok(ctx, src, call)
	})

	c := NewCache(loader, sources()...)
	res := c.Refresh(context.Background())

	assert.Equal(t, []string{feed.Main}, res.Committed)
	require.Contains(t, res.Errors, feed.Metrics)
	err := res.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, feed.ErrFetch))
	assert.Contains(t, err.Error(), "metrics")

	_, err = c.View(feed.Main, feed.Latest)
	require.NoError(t, err)

	_, err = c.View(feed.Metrics, feed.Latest)
	require.Error(t, err)
	assert.True(t, errors.Is(err, feed.ErrFetch))
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func TestCache_FailedRefreshKeepsPreviousData(t *testing.T) {
	defer goleak.VerifyNone(t)

	ok := fixtures()
	loader := newFakeLoader(func(ctx context.Context, src feed.Source, call int) (*feed.Dataset, error) {
		if call > 1 {
			return nil, &feed.FetchError{Feed: src.Name, Err: errors.New("timeout")}
		}
		return ok(ctx, src, call)
	})

	c := NewCache(loader, sources()...)
	require.NoError(t, c.Refresh(context.Background()).Err())
	before, err := c.Dataset(feed.Main)
	require.NoError(t, err)

	res := c.Refresh(context.Background())
	assert.Len(t, res.Errors, 2)

	after, err := c.Dataset(feed.Main)
	require.NoError(t, err)
	assert.Same(t, before, after)

	st, err := c.Status(feed.Main)
	require.NoError(t, err)
	assert.True(t, st.Loaded)
	assert.Error(t, st.LastErr)
	assert.Equal(t, uint64(1), st.Generation)
}

func TestCache_SupersededRefreshIsDiscarded(t *testing.T) {
	defer goleak.VerifyNone(t)

	started := make(chan struct{})
	release := make(chan struct{})
	older := dataset(t, feed.Main, "Fecha,Total QQs\n01/03/2024,1\n")
	newer := dataset(t, feed.Main, "Fecha,Total QQs\n02/03/2024,2\n")

	loader := newFakeLoader(func(_ context.Context, _ feed.Source, call int) (*feed.Dataset, error) {
		if call == 1 {
			close(started)
			<-release
			return older, nil
		}
		return newer, nil
	})
	c := NewCache(loader, sources()...)

	type result struct {
		committed bool
		err       error
	}
	slow := make(chan result, 1)
	go func() {
		committed, err := c.RefreshFeed(context.Background(), feed.Main)
		slow <- result{committed, err}
	}()
	<-started

	committed, err := c.RefreshFeed(context.Background(), feed.Main)
	require.NoError(t, err)
	assert.True(t, committed)

	close(release)
	r := <-slow
	require.NoError(t, r.err)
	assert.False(t, r.committed)

	ds, err := c.Dataset(feed.Main)
	require.NoError(t, err)
	assert.Same(t, newer, ds)
	assert.Equal(t, uint64(2), ds.Generation)

	v, err := c.View(feed.Main, feed.Latest)
	require.NoError(t, err)
	assert.Equal(t, "2.00", v.Slot(SlotTotalQss))
}

func TestCache_SupersededFailureDoesNotOverwriteError(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	loader := newFakeLoader(func(_ context.Context, _ feed.Source, call int) (*feed.Dataset, error) {
		if call == 1 {
			close(started)
			<-release
			return nil, errors.New("old failure")
		}
		return build(feed.Main, mainCSV)
	})
	c := NewCache(loader, sources()...)

	done := make(chan error, 1)
	go func() {
		_, err := c.RefreshFeed(context.Background(), feed.Main)
		done <- err
	}()
	<-started

	_, err := c.RefreshFeed(context.Background(), feed.Main)
	require.NoError(t, err)
	close(release)
	require.Error(t, <-done)

	st, err := c.Status(feed.Main)
	require.NoError(t, err)
	assert.NoError(t, st.LastErr)
	assert.True(t, st.Loaded)
}

func TestCache_NotLoaded(t *testing.T) {
	c := NewCache(newFakeLoader(fixtures()), sources()...)

	_, err := c.Dataset(feed.Main)
	require.Error(t, err)
	assert.True(t, errors.Is(err, feed.ErrFetch))

	_, err = c.DateOptions(feed.Metrics)
	assert.True(t, errors.Is(err, feed.ErrFetch))

	st, err := c.Status(feed.Metrics)
	require.NoError(t, err)
	assert.False(t, st.Loaded)
}

func TestCache_UnknownFeed(t *testing.T) {
	c := NewCache(newFakeLoader(fixtures()), sources()...)

	_, err := c.View("inventory", feed.Latest)
	assert.True(t, errors.Is(err, feed.ErrUnknownFeed))

	_, err = c.RefreshFeed(context.Background(), "inventory")
	assert.True(t, errors.Is(err, feed.ErrUnknownFeed))

	_, err = c.Status("inventory")
	assert.True(t, errors.Is(err, feed.ErrUnknownFeed))
}

func TestCache_RowNotFound(t *testing.T) {
	c := NewCache(newFakeLoader(fixtures()), sources()...)
	require.NoError(t, c.Refresh(context.Background()).Err())

	_, err := c.View(feed.Main, feed.Selector("31/12/1999"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, feed.ErrRowNotFound))
}

func TestCache_Feeds(t *testing.T) {
	c := NewCache(newFakeLoader(fixtures()), sources()...)
	assert.Equal(t, []string{feed.Main, feed.Metrics}, c.Feeds())
}

func TestCache_ConcurrentReaders(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := NewCache(newFakeLoader(fixtures()), sources()...)
	require.NoError(t, c.Refresh(context.Background()).Err())

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range 20 {
				_, _ = c.View(feed.Main, feed.Latest)
				_, _ = c.DateOptions(feed.Metrics)
			}
		}()
		go func() {
			defer wg.Done()
			_ = c.Refresh(context.Background())
		}()
	}
	wg.Wait()

	st, err := c.Status(feed.Main)
	require.NoError(t, err)
	assert.True(t, st.Loaded)
}

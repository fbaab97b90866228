package main

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/plant-dashboard/internal/config"
	"github.com/sells-group/plant-dashboard/internal/dashboard"
	"github.com/sells-group/plant-dashboard/internal/feed"
	"github.com/sells-group/plant-dashboard/internal/fetcher"
	"github.com/sells-group/plant-dashboard/internal/resilience"
)

// initCache wires the fetcher, loader and dataset cache from configuration.
func initCache(c *config.Config) (*dashboard.Cache, error) {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  c.Fetch.UserAgent,
		Timeout:    time.Duration(c.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: c.Fetch.MaxRetries,
		RatePerSec: c.Fetch.RatePerSec,
		Retry:      resilience.FromBackoffConfig(c.Fetch.InitialBackoffMs, c.Fetch.MaxBackoffMs),
	})
	loader := feed.NewLoader(f, resilience.FromCircuitConfig(c.Circuit.FailureThreshold, c.Circuit.ResetTimeoutSecs))

	feeds := []struct {
		name string
		cfg  config.FeedConfig
	}{
		{feed.Main, c.Feeds.Main},
		{feed.Metrics, c.Feeds.Metrics},
	}

	sources := make([]feed.Source, 0, len(feeds))
	for _, fc := range feeds {
		schema, err := feed.LoadSchema(fc.name, fc.cfg.SchemaPath)
		if err != nil {
			return nil, eris.Wrapf(err, "init %s feed", fc.name)
		}
		sources = append(sources, feed.Source{
			Name:           fc.name,
			URL:            fc.cfg.URL,
			CacheBustParam: fc.cfg.CacheBustParam,
			Schema:         schema,
		})
	}

	return dashboard.NewCache(loader, sources...), nil
}

// feedNames expands a --feed flag value. "all" selects every configured feed.
func feedNames(c *dashboard.Cache, flag string) ([]string, error) {
	if flag == "" || flag == "all" {
		return c.Feeds(), nil
	}
	for _, name := range c.Feeds() {
		if name == flag {
			return []string{name}, nil
		}
	}
	return nil, eris.Wrapf(feed.ErrUnknownFeed, "--feed %q", flag)
}

package client

import (
	"time"

	"github.com/dmitrijs2005/iamclient/internal/logging"
)

type Option func(*Coordinator)

func WithLogger(l logging.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// WithRefreshPath sets the refresh endpoint, relative to the transport's
// base URL. Defaults to common.PathRefresh.
func WithRefreshPath(p string) Option {
	return func(c *Coordinator) { c.refreshPath = p }
}

// WithRefreshTimeout bounds a refresh cycle. Defaults to
// common.DefaultRequestTimeout.
func WithRefreshTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.refreshTimeout = d }
}

// WithRefreshThreshold enables proactive refresh: a JWT access token that
// expires within d is refreshed before the request goes out. Zero disables.
func WithRefreshThreshold(d time.Duration) Option {
	return func(c *Coordinator) { c.threshold = d }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

func withClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

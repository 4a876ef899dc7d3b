package event

import (
	"github.com/sirupsen/logrus"

	"github.com/dhollis/lattice/event/payload"
)

// Option configures a Bus.
type Option func(*busConfig)

// busConfig contains configuration for the event bus.
type busConfig struct {
	logger         *logrus.Logger
	catalog        *payload.Catalog
	namespace      string
	asyncQueueSize int
	asyncWorkers   int
}

func defaultBusConfig() busConfig {
	return busConfig{
		logger:         logrus.StandardLogger(),
		asyncQueueSize: 1024,
		asyncWorkers:   4,
	}
}

// WithLogger sets the logger used for handler failures and registry
// activity.
func WithLogger(l *logrus.Logger) Option {
	return func(c *busConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCatalog replaces the default payload catalog.
func WithCatalog(cat *payload.Catalog) Option {
	return func(c *busConfig) {
		if cat != nil {
			c.catalog = cat
		}
	}
}

// WithNamespace sets the initial namespace applied by the scoped
// subscribe/publish helpers and by declarative bindings.
func WithNamespace(ns string) Option {
	return func(c *busConfig) {
		c.namespace = ns
	}
}

// WithAsyncQueueSize sets the worker pool queue size.
func WithAsyncQueueSize(size int) Option {
	return func(c *busConfig) {
		if size > 0 {
			c.asyncQueueSize = size
		}
	}
}

// WithAsyncWorkers sets the number of worker goroutines.
func WithAsyncWorkers(count int) Option {
	return func(c *busConfig) {
		if count > 0 {
			c.asyncWorkers = count
		}
	}
}

// SubscribeOption configures a single subscription.
type SubscribeOption func(*subConfig)

type subConfig struct {
	priority Priority
	async    bool
	key      string
}

func defaultSubConfig() subConfig {
	return subConfig{priority: PriorityNormal}
}

// WithPriority sets the subscription priority. Higher values dispatch
// earlier.
func WithPriority(p Priority) SubscribeOption {
	return func(c *subConfig) {
		c.priority = p
	}
}

// WithAsync marks the subscription for worker-pool delivery. Publish
// enqueues such handlers when the pool is running and degrades to
// inline execution when it is not; PublishSync always runs them inline.
func WithAsync() SubscribeOption {
	return func(c *subConfig) {
		c.async = true
	}
}

// WithKey overrides the handler identity used for idempotent subscribe
// and targeted unsubscribe.
func WithKey(key string) SubscribeOption {
	return func(c *subConfig) {
		c.key = key
	}
}

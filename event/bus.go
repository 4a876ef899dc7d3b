package event

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/dhollis/lattice/event/payload"
	"github.com/dhollis/lattice/event/topic"
)

// Bus is the in-process publish/subscribe mediator. It decouples UI
// callbacks, I/O goroutines, and application components: producers
// publish named events and the bus walks the subscription registry in a
// fixed order, isolating every handler failure from the publisher.
//
// All dispatch runs on the calling goroutine except subscriptions marked
// WithAsync, which are handed to a bounded worker pool when it is
// running. The bus owns no goroutines until Start is called.
type Bus struct {
	registry *Registry
	catalog  *payload.Catalog
	pool     *asyncPool
	log      *logrus.Logger

	nsMu      sync.RWMutex
	namespace string

	published     atomic.Uint64
	delivered     atomic.Uint64
	enqueued      atomic.Uint64
	dropped       atomic.Uint64
	handlerErrors atomic.Uint64
	handlerPanics atomic.Uint64
}

// New creates an event bus with the built-in payload catalog.
func New(opts ...Option) *Bus {
	cfg := defaultBusConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.catalog == nil {
		cfg.catalog = payload.NewCatalog()
	}

	b := &Bus{
		registry:  NewRegistry(cfg.logger),
		catalog:   cfg.catalog,
		log:       cfg.logger,
		namespace: cfg.namespace,
	}
	b.pool = newAsyncPool(cfg.asyncQueueSize, cfg.asyncWorkers, b.invokeAsync)
	return b
}

// Start launches the worker pool for async-marked subscriptions.
// Publishing works without Start; async handlers then degrade to inline
// execution on the calling goroutine.
func (b *Bus) Start() error {
	return b.pool.start()
}

// Stop drains the worker pool, waiting until queued handlers finish or
// the context is cancelled.
func (b *Bus) Stop(ctx context.Context) error {
	return b.pool.stop(ctx)
}

// Subscribe adds an exact subscription for the concrete event name.
// Subscribing the same (name, handler) pair twice is a no-op.
func (b *Bus) Subscribe(name topic.Topic, h Handler, opts ...SubscribeOption) error {
	return b.registry.Subscribe(name, h, opts...)
}

// SubscribeFunc is a convenience wrapper for function handlers.
func (b *Bus) SubscribeFunc(name topic.Topic, fn HandlerFunc, opts ...SubscribeOption) error {
	if fn == nil {
		return ErrNilHandler
	}
	return b.registry.Subscribe(name, fn, opts...)
}

// SubscribePattern subscribes a handler to every event whose name
// matches the glob pattern. Pattern handlers receive only the event name
// and named fields, never the payload or positional values.
func (b *Bus) SubscribePattern(pattern topic.Topic, h Handler, opts ...SubscribeOption) error {
	return b.registry.SubscribePattern(pattern, h, opts...)
}

// SubscribeWildcard subscribes a handler to every published event.
func (b *Bus) SubscribeWildcard(h Handler, opts ...SubscribeOption) error {
	return b.registry.SubscribeWildcard(h, opts...)
}

// SubscribeOnce subscribes a handler consumed by its first delivery.
func (b *Bus) SubscribeOnce(name topic.Topic, h Handler, opts ...SubscribeOption) error {
	return b.registry.SubscribeOnce(name, h, opts...)
}

// Unsubscribe removes subscriptions for the name. A nil handler removes
// every exact and once subscriber for the name.
func (b *Bus) Unsubscribe(name topic.Topic, h Handler) {
	b.registry.Unsubscribe(name, h)
}

// HasSubscribers returns true if the name has exact subscribers.
func (b *Bus) HasSubscribers(name topic.Topic) bool {
	return b.registry.HasSubscribers(name)
}

// SubscriberCount returns the number of exact subscribers for the name.
func (b *Bus) SubscriberCount(name topic.Topic) int {
	return b.registry.SubscriberCount(name)
}

// Clear drops subscriptions; see Registry.Clear for namespace semantics.
func (b *Bus) Clear(namespace string) {
	b.registry.Clear(namespace)
}

// RegisterPayload binds a payload constructor to an event name.
func (b *Bus) RegisterPayload(name topic.Topic, ctor payload.Constructor) {
	b.catalog.Register(name, ctor)
	b.log.WithField("event", name).Info("registered payload class")
}

// Registry exposes the subscription registry.
func (b *Bus) Registry() *Registry {
	return b.registry
}

// SetNamespace sets the namespace applied by the scoped helpers and by
// declarative bindings. Raw Subscribe/Publish calls are never namespaced.
func (b *Bus) SetNamespace(ns string) {
	b.nsMu.Lock()
	b.namespace = ns
	b.nsMu.Unlock()
	b.log.WithField("namespace", ns).Info("event namespace set")
}

// Namespace returns the current namespace.
func (b *Bus) Namespace() string {
	b.nsMu.RLock()
	defer b.nsMu.RUnlock()
	return b.namespace
}

// Qualify prefixes the name with the current namespace unless it already
// carries the prefix.
func (b *Bus) Qualify(name topic.Topic) topic.Topic {
	return name.Qualified(b.Namespace())
}

// SubscribeScoped is Subscribe with the name qualified by the current
// namespace.
func (b *Bus) SubscribeScoped(name topic.Topic, h Handler, opts ...SubscribeOption) error {
	return b.registry.Subscribe(b.Qualify(name), h, opts...)
}

// SubscribeOnceScoped is SubscribeOnce with the name qualified by the
// current namespace.
func (b *Bus) SubscribeOnceScoped(name topic.Topic, h Handler, opts ...SubscribeOption) error {
	return b.registry.SubscribeOnce(b.Qualify(name), h, opts...)
}

// PublishScoped is Publish with the name qualified by the current
// namespace.
func (b *Bus) PublishScoped(ctx context.Context, name topic.Topic, args ...any) *Result {
	return b.Publish(ctx, b.Qualify(name), args...)
}

// Stats returns current bus counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Published:     b.published.Load(),
		Delivered:     b.delivered.Load(),
		Enqueued:      b.enqueued.Load(),
		Dropped:       b.dropped.Load(),
		HandlerErrors: b.handlerErrors.Load(),
		HandlerPanics: b.handlerPanics.Load(),
		QueueDepth:    b.pool.depth(),
		Subscriptions: b.registry.Count(),
	}
}

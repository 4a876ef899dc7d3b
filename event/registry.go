package event

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dhollis/lattice/event/topic"
)

// subscription is one live registry entry.
type subscription struct {
	name     topic.Topic // concrete name, or pattern for pattern entries
	handler  Handler
	key      string
	priority Priority
	async    bool
}

// Registry stores, per event name, the ordered subscriber lists the
// dispatcher walks. It holds three tables: exact subscriptions grouped
// by priority, pattern subscriptions evaluated against every publish,
// and once subscriptions consumed on first delivery.
//
// All mutation and lookup goes through a single mutex; lookups return
// snapshots so a handler that subscribes or unsubscribes during its own
// invocation cannot corrupt an in-flight dispatch.
type Registry struct {
	mu sync.Mutex

	// exact subscribers, sorted priority-descending, registration order
	// within a priority band.
	exact map[topic.Topic][]*subscription

	// pattern subscribers per pattern, sorted priority-descending on
	// every insert. patternOrder preserves pattern registration order
	// for deterministic iteration.
	pattern      map[topic.Topic][]*subscription
	patternOrder []topic.Topic

	// once subscribers in registration order, no priority.
	once map[topic.Topic][]*subscription

	log *logrus.Logger
}

// NewRegistry creates an empty subscription registry.
func NewRegistry(log *logrus.Logger) *Registry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Registry{
		exact:   make(map[topic.Topic][]*subscription),
		pattern: make(map[topic.Topic][]*subscription),
		once:    make(map[topic.Topic][]*subscription),
		log:     log,
	}
}

// Subscribe adds an exact subscription. Subscribing the same
// (name, handler) pair twice is a no-op, regardless of priority.
func (r *Registry) Subscribe(name topic.Topic, h Handler, opts ...SubscribeOption) error {
	if h == nil {
		return ErrNilHandler
	}
	if name == "" {
		return ErrEmptyTopic
	}
	cfg := defaultSubConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	key := handlerKey(h, cfg.key)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sub := range r.exact[name] {
		if sub.key == key {
			return nil
		}
	}

	subs := append(r.exact[name], &subscription{
		name:     name,
		handler:  h,
		key:      key,
		priority: cfg.priority,
		async:    cfg.async,
	})
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].priority > subs[j].priority
	})
	r.exact[name] = subs

	r.log.WithFields(logrus.Fields{
		"event":    name,
		"handler":  key,
		"priority": cfg.priority,
	}).Debug("subscribed")
	return nil
}

// SubscribePattern adds a pattern subscription. The same
// (pattern, handler, priority) triple is only registered once.
func (r *Registry) SubscribePattern(pattern topic.Topic, h Handler, opts ...SubscribeOption) error {
	if h == nil {
		return ErrNilHandler
	}
	if pattern == "" {
		return ErrEmptyTopic
	}
	cfg := defaultSubConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	key := handlerKey(h, cfg.key)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sub := range r.pattern[pattern] {
		if sub.key == key && sub.priority == cfg.priority {
			return nil
		}
	}

	if _, seen := r.pattern[pattern]; !seen {
		r.patternOrder = append(r.patternOrder, pattern)
	}
	subs := append(r.pattern[pattern], &subscription{
		name:     pattern,
		handler:  h,
		key:      key,
		priority: cfg.priority,
	})
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].priority > subs[j].priority
	})
	r.pattern[pattern] = subs

	r.log.WithFields(logrus.Fields{
		"pattern":  pattern,
		"handler":  key,
		"priority": cfg.priority,
	}).Debug("subscribed pattern")
	return nil
}

// SubscribeWildcard subscribes a handler to every published event.
func (r *Registry) SubscribeWildcard(h Handler, opts ...SubscribeOption) error {
	return r.SubscribePattern(topic.WildcardAll, h, opts...)
}

// SubscribeOnce adds a subscription consumed by its first delivery.
// Once subscribers fire after all exact and pattern handlers, in
// registration order; priority options are ignored.
func (r *Registry) SubscribeOnce(name topic.Topic, h Handler, opts ...SubscribeOption) error {
	if h == nil {
		return ErrNilHandler
	}
	if name == "" {
		return ErrEmptyTopic
	}
	cfg := defaultSubConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	key := handlerKey(h, cfg.key)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sub := range r.once[name] {
		if sub.key == key {
			return nil
		}
	}
	r.once[name] = append(r.once[name], &subscription{
		name:    name,
		handler: h,
		key:     key,
	})

	r.log.WithFields(logrus.Fields{"event": name, "handler": key}).Debug("subscribed once")
	return nil
}

// Unsubscribe removes subscriptions for the event name. A nil handler
// drops every exact and once subscriber for the name; otherwise only the
// matching handler is removed from the exact and once tables. Pattern
// subscriptions are not addressable by this call.
func (r *Registry) Unsubscribe(name topic.Topic, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h == nil {
		delete(r.exact, name)
		delete(r.once, name)
		r.log.WithField("event", name).Debug("unsubscribed all")
		return
	}

	key := handlerKey(h, "")
	r.exact[name] = removeByKey(r.exact[name], key)
	if len(r.exact[name]) == 0 {
		delete(r.exact, name)
	}
	r.once[name] = removeByKey(r.once[name], key)
	if len(r.once[name]) == 0 {
		delete(r.once, name)
	}
	r.log.WithFields(logrus.Fields{"event": name, "handler": key}).Debug("unsubscribed")
}

func removeByKey(subs []*subscription, key string) []*subscription {
	out := subs[:0]
	for _, sub := range subs {
		if sub.key != key {
			out = append(out, sub)
		}
	}
	return out
}

// OrderedHandlers returns the exact-table handlers for the name in
// dispatch order: priority descending, registration order within a
// priority band. The returned slice is a snapshot.
func (r *Registry) OrderedHandlers(name topic.Topic) []Handler {
	entries := r.entries(name)
	handlers := make([]Handler, len(entries))
	for i, sub := range entries {
		handlers[i] = sub.handler
	}
	return handlers
}

// entries returns a snapshot of the exact subscriptions for the name.
func (r *Registry) entries(name topic.Topic) []*subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs := r.exact[name]
	if len(subs) == 0 {
		return nil
	}
	out := make([]*subscription, len(subs))
	copy(out, subs)
	return out
}

// matching returns a snapshot of every pattern subscription whose
// pattern matches the name. Patterns iterate in registration order;
// within one pattern, subscribers are already priority-sorted.
func (r *Registry) matching(name topic.Topic) []*subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*subscription
	for _, pattern := range r.patternOrder {
		if !topic.Match(pattern.String(), name.String()) {
			continue
		}
		out = append(out, r.pattern[pattern]...)
	}
	return out
}

// takeOnce atomically removes and returns the once subscribers for the
// name, so a concurrent publish cannot re-invoke a consumed handler.
func (r *Registry) takeOnce(name topic.Topic) []*subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs := r.once[name]
	if len(subs) == 0 {
		return nil
	}
	delete(r.once, name)
	return subs
}

// HasSubscribers returns true if the name has exact subscribers.
func (r *Registry) HasSubscribers(name topic.Topic) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.exact[name]) > 0
}

// SubscriberCount returns the number of exact subscribers for the name.
func (r *Registry) SubscriberCount(name topic.Topic) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.exact[name])
}

// Count returns the total number of exact subscriptions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, subs := range r.exact {
		n += len(subs)
	}
	return n
}

// Patterns returns the registered patterns in registration order.
func (r *Registry) Patterns() []topic.Topic {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]topic.Topic, len(r.patternOrder))
	copy(out, r.patternOrder)
	return out
}

// Clear drops subscriptions. With an empty namespace every table is
// emptied. With a namespace, only exact and once entries under
// "<namespace>." are dropped. The pattern table is always cleared in
// full, since patterns are not attributable to a namespace.
func (r *Registry) Clear(namespace string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if namespace == "" {
		r.exact = make(map[topic.Topic][]*subscription)
		r.once = make(map[topic.Topic][]*subscription)
	} else {
		for name := range r.exact {
			if name.InNamespace(namespace) {
				delete(r.exact, name)
			}
		}
		for name := range r.once {
			if name.InNamespace(namespace) {
				delete(r.once, name)
			}
		}
	}
	r.pattern = make(map[topic.Topic][]*subscription)
	r.patternOrder = nil

	r.log.WithField("namespace", namespace).Debug("registry cleared")
}

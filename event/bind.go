package event

import (
	"context"
	"fmt"
	"reflect"

	"github.com/dhollis/lattice/event/topic"
)

// BoundFunc is a handler method declared on a component type. The
// receiver is supplied later, when the declaration is bound to a live
// instance. Method expressions have this shape:
//
//	event.NewBindings[*Calculator]().
//		On("calc.requested", (*Calculator).onRequested)
type BoundFunc[T any] func(recv T, ctx context.Context, ev Event) (any, error)

// binding is one inert declaration; nothing is subscribed until Bind.
type binding[T any] struct {
	name     topic.Topic
	pattern  bool
	once     bool
	priority Priority
	async    bool
	fn       BoundFunc[T]
}

// Bindings is a declaration set for a component type: which methods
// handle which events, at what priority, once or via pattern. A Bindings
// value is pure data and holds no reference to any bus. Declare it once
// at package level and call Bind from the component constructor; every
// instance that binds gets its own live subscriptions.
type Bindings[T any] struct {
	items []binding[T]
}

// NewBindings creates an empty declaration set for a component type.
func NewBindings[T any]() *Bindings[T] {
	return &Bindings[T]{}
}

// On declares that the method handles the named event. The name is
// qualified with the bus namespace at bind time.
func (b *Bindings[T]) On(name topic.Topic, fn BoundFunc[T], opts ...SubscribeOption) *Bindings[T] {
	return b.add(binding[T]{name: name, fn: fn}, opts)
}

// Once declares a handler consumed by its first delivery.
func (b *Bindings[T]) Once(name topic.Topic, fn BoundFunc[T], opts ...SubscribeOption) *Bindings[T] {
	return b.add(binding[T]{name: name, once: true, fn: fn}, opts)
}

// OnPattern declares a handler for every event matching the glob
// pattern. Patterns are never namespace-qualified.
func (b *Bindings[T]) OnPattern(pattern topic.Topic, fn BoundFunc[T], opts ...SubscribeOption) *Bindings[T] {
	return b.add(binding[T]{name: pattern, pattern: true, fn: fn}, opts)
}

// OnAny declares a handler for every published event.
func (b *Bindings[T]) OnAny(fn BoundFunc[T], opts ...SubscribeOption) *Bindings[T] {
	return b.OnPattern(topic.WildcardAll, fn, opts...)
}

func (b *Bindings[T]) add(item binding[T], opts []SubscribeOption) *Bindings[T] {
	cfg := defaultSubConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	item.priority = cfg.priority
	item.async = cfg.async
	b.items = append(b.items, item)
	return b
}

// Len returns the number of declarations.
func (b *Bindings[T]) Len() int {
	return len(b.items)
}

// Bind materializes every declaration against the live bus, scoped to
// the given component instance. Call it once from the instance's
// constructor. Binding the same instance twice is a no-op: each live
// subscription is keyed by (declaration, instance), so the registry's
// idempotent subscribe absorbs the repeat. Binding a second instance
// multiplies live subscriptions, since each instance gets its own bound
// handlers. There is no automatic unbinding; discarded instances must
// Unsubscribe or rely on Clear at teardown.
func (b *Bindings[T]) Bind(bus *Bus, inst T) error {
	for i, item := range b.items {
		if item.fn == nil {
			return ErrNilHandler
		}

		fn := item.fn
		handler := HandlerFunc(func(ctx context.Context, ev Event) (any, error) {
			return fn(inst, ctx, ev)
		})
		key := fmt.Sprintf("%T#%d@%s", inst, i, instanceKey(inst))

		var err error
		switch {
		case item.pattern:
			err = bus.SubscribePattern(item.name, handler,
				WithPriority(item.priority), WithKey(key))
		case item.once:
			err = bus.SubscribeOnce(bus.Qualify(item.name), handler, WithKey(key))
		case item.async:
			err = bus.Subscribe(bus.Qualify(item.name), handler,
				WithPriority(item.priority), WithAsync(), WithKey(key))
		default:
			err = bus.Subscribe(bus.Qualify(item.name), handler,
				WithPriority(item.priority), WithKey(key))
		}
		if err != nil {
			return fmt.Errorf("bind %q: %w", item.name, err)
		}
	}
	return nil
}

// instanceKey derives a stable identity for a component instance.
// Components are expected to be pointers; value types fall back to their
// printed form and are only identity-stable if that form is.
func instanceKey(inst any) string {
	v := reflect.ValueOf(inst)
	switch v.Kind() {
	case reflect.Pointer, reflect.Chan, reflect.Map, reflect.Func, reflect.UnsafePointer:
		return fmt.Sprintf("%x", v.Pointer())
	default:
		return fmt.Sprintf("%v", inst)
	}
}

package event

import (
	"context"
	"fmt"
	"reflect"

	"github.com/dhollis/lattice/event/payload"
	"github.com/dhollis/lattice/event/topic"
)

// Priority determines handler execution order within one event's
// subscriber list. Higher values dispatch earlier; ties preserve
// registration order. Any integer is legal, the named bands are
// conventions.
type Priority int

const (
	// PriorityLowest runs after everything else.
	PriorityLowest Priority = 0

	// PriorityLow is for logging and bookkeeping handlers.
	PriorityLow Priority = 100

	// PriorityNormal is the default priority.
	PriorityNormal Priority = 500

	// PriorityHigh is for handlers other handlers depend on.
	PriorityHigh Priority = 1000

	// PriorityHighest runs before everything else.
	PriorityHighest Priority = 10000
)

// String returns a human-readable priority name.
func (p Priority) String() string {
	switch {
	case p >= PriorityHighest:
		return "highest"
	case p >= PriorityHigh:
		return "high"
	case p >= PriorityNormal:
		return "normal"
	case p >= PriorityLow:
		return "low"
	default:
		return "lowest"
	}
}

// Fields carries the named arguments of a publish call.
type Fields = payload.Fields

// Event is what handlers receive. Exact and once handlers get the full
// event; pattern handlers get only Name and Fields (no payload, no
// positional values).
type Event struct {
	// Name is the concrete event name that was published.
	Name topic.Topic

	// Payload is the structured payload built from the catalog, or nil
	// when no payload class is registered or construction failed.
	Payload payload.Payload

	// Values are the raw positional arguments of the publish call.
	Values []any

	// Fields are the raw named arguments of the publish call.
	Fields Fields
}

// Handler processes one event. The returned value becomes the
// dispatcher's tentative result when the handler is an exact subscriber.
type Handler interface {
	Handle(ctx context.Context, ev Event) (any, error)
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, ev Event) (any, error)

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, ev Event) (any, error) {
	return f(ctx, ev)
}

// Keyer lets a handler supply its own identity for idempotent
// subscription. Without it, function handlers are identified by their
// code pointer, which means closures created from the same function
// literal share an identity; use WithKey or implement Keyer to
// distinguish them.
type Keyer interface {
	HandlerKey() string
}

// handlerKey derives the identity used for idempotent subscribe and for
// targeted unsubscribe.
func handlerKey(h Handler, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if k, ok := h.(Keyer); ok {
		return k.HandlerKey()
	}
	v := reflect.ValueOf(h)
	switch v.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Chan, reflect.Map, reflect.UnsafePointer:
		return fmt.Sprintf("%T@%x", h, v.Pointer())
	default:
		return fmt.Sprintf("%T:%v", h, h)
	}
}

// Stats contains event bus counters.
type Stats struct {
	// Published is the total number of publish calls.
	Published uint64

	// Delivered is the number of successful handler invocations.
	Delivered uint64

	// Enqueued is the number of handler invocations sent to the worker pool.
	Enqueued uint64

	// Dropped is the number of async invocations dropped (queue full).
	Dropped uint64

	// HandlerErrors is the number of handlers that returned errors.
	HandlerErrors uint64

	// HandlerPanics is the number of handlers that panicked.
	HandlerPanics uint64

	// QueueDepth is the current async queue depth.
	QueueDepth int

	// Subscriptions is the current number of exact subscriptions.
	Subscriptions int
}

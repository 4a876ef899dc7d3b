package payload

import (
	"fmt"
	"sync"

	"github.com/dhollis/lattice/event/topic"
)

// Fields carries the named arguments of a publish call.
type Fields map[string]any

// Args is the untyped form of a publish call: ordered positional values
// plus named fields. Constructors read from either.
type Args struct {
	Values []any
	Fields Fields
}

// String returns the named field as a string, falling back to the
// positional value at idx. The second return is false if neither is
// present or the value is not a string.
func (a Args) String(key string, idx int) (string, bool) {
	if v, ok := a.Fields[key]; ok {
		s, ok := v.(string)
		return s, ok
	}
	if idx >= 0 && idx < len(a.Values) {
		s, ok := a.Values[idx].(string)
		return s, ok
	}
	return "", false
}

// Bool returns the named field as a bool, defaulting to false when absent.
func (a Args) Bool(key string) bool {
	v, ok := a.Fields[key].(bool)
	return ok && v
}

// Payload is implemented by every structured payload kind.
type Payload interface {
	// EventName returns the event name the payload belongs to.
	EventName() topic.Topic
}

// Constructor builds a payload from raw publish arguments.
type Constructor func(Args) (Payload, error)

// Catalog maps event names to payload constructors.
// It is safe for concurrent use.
type Catalog struct {
	mu    sync.RWMutex
	ctors map[topic.Topic]Constructor
}

// NewCatalog creates a catalog with the built-in payload kinds registered.
func NewCatalog() *Catalog {
	c := &Catalog{ctors: make(map[topic.Topic]Constructor)}
	registerBuiltins(c)
	return c
}

// Register binds a constructor to an event name, replacing any previous
// binding for that name.
func (c *Catalog) Register(name topic.Topic, ctor Constructor) {
	if name == "" || ctor == nil {
		return
	}
	c.mu.Lock()
	c.ctors[name] = ctor
	c.mu.Unlock()
}

// Lookup returns the constructor for an event name.
func (c *Catalog) Lookup(name topic.Topic) (Constructor, bool) {
	c.mu.RLock()
	ctor, ok := c.ctors[name]
	c.mu.RUnlock()
	return ctor, ok
}

// Build constructs a payload for the event name from the given arguments.
//
// If the sole positional value is already a Payload it is passed through
// unchanged, so producers may publish pre-built payload objects. Returns
// (nil, nil) when no constructor is registered for the name.
func (c *Catalog) Build(name topic.Topic, args Args) (Payload, error) {
	ctor, ok := c.Lookup(name)
	if !ok {
		return nil, nil
	}

	if len(args.Values) == 1 && len(args.Fields) == 0 {
		if p, ok := args.Values[0].(Payload); ok {
			return p, nil
		}
	}

	p, err := ctor(args)
	if err != nil {
		return nil, fmt.Errorf("build payload for %q: %w", name, err)
	}
	return p, nil
}

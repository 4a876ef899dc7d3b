// Package di is a small service locator: register a singleton or a
// factory under a string key, resolve it later. The shell uses it to
// hand the event bus and other process-wide services to components
// without import cycles; nothing here is global, the container itself is
// passed by reference.
package di

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrNotRegistered is returned when no service exists under a key.
var ErrNotRegistered = errors.New("service not registered")

// Factory creates a service instance on demand.
type Factory func(c *Container) (any, error)

type entry struct {
	instance  any
	factory   Factory
	singleton bool
}

// Container is a thread-safe registry of services keyed by name.
type Container struct {
	mu       sync.RWMutex
	services map[string]*entry
	log      *logrus.Logger
}

// New creates an empty container.
func New(log *logrus.Logger) *Container {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Container{
		services: make(map[string]*entry),
		log:      log,
	}
}

// Register stores a ready instance as a singleton under the key.
func (c *Container) Register(key string, instance any) {
	c.mu.Lock()
	c.services[key] = &entry{instance: instance, singleton: true}
	c.mu.Unlock()
	c.log.WithField("service", key).Info("registered service")
}

// RegisterFactory stores a factory under the key. When singleton is
// true the factory runs at most once and its result is cached.
func (c *Container) RegisterFactory(key string, factory Factory, singleton bool) {
	c.mu.Lock()
	c.services[key] = &entry{factory: factory, singleton: singleton}
	c.mu.Unlock()
	c.log.WithField("service", key).Info("registered factory")
}

// Resolve returns the service registered under the key, running its
// factory if needed. Factories run outside the container lock so they
// may resolve their own dependencies.
func (c *Container) Resolve(key string) (any, error) {
	c.mu.RLock()
	e, ok := c.services[key]
	var cached any
	if ok {
		cached = e.instance
	}
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, key)
	}
	if cached != nil {
		return cached, nil
	}
	if e.factory == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, key)
	}

	instance, err := e.factory(c)
	if err != nil {
		return nil, fmt.Errorf("create service %s: %w", key, err)
	}

	if e.singleton {
		c.mu.Lock()
		if e.instance == nil {
			e.instance = instance
		}
		instance = e.instance
		c.mu.Unlock()
	}
	return instance, nil
}

// MustResolve is Resolve that panics on failure. Use only during
// startup wiring.
func (c *Container) MustResolve(key string) any {
	v, err := c.Resolve(key)
	if err != nil {
		panic(err)
	}
	return v
}

// As resolves a service and asserts its type.
func As[T any](c *Container, key string) (T, error) {
	var zero T
	v, err := c.Resolve(key)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("service %s is %T, not %T", key, v, zero)
	}
	return t, nil
}

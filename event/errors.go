package event

import (
	"errors"
	"fmt"

	"github.com/dhollis/lattice/event/topic"
)

// Sentinel errors for the event bus.
var (
	// ErrNilHandler is returned when a nil handler is subscribed.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrEmptyTopic is returned when an event name or pattern is empty.
	ErrEmptyTopic = errors.New("event name cannot be empty")

	// ErrHandlerPanic marks errors produced by a panicking handler.
	ErrHandlerPanic = errors.New("handler panicked")

	// ErrQueueFull is returned when the async queue cannot accept more work.
	ErrQueueFull = errors.New("async queue is full")

	// ErrAlreadyRunning is returned when Start is called on a running pool.
	ErrAlreadyRunning = errors.New("worker pool is already running")

	// ErrNotRunning is returned when Stop is called on a stopped pool.
	ErrNotRunning = errors.New("worker pool is not running")
)

// HandlerError records one isolated handler failure during a publish.
type HandlerError struct {
	// Topic is the concrete event name being dispatched.
	Topic topic.Topic

	// Key is the identity of the failed handler.
	Key string

	// Err is the underlying error. For panics it wraps ErrHandlerPanic.
	Err error

	// Stack is the stack trace captured at panic time, nil otherwise.
	Stack []byte
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %s failed for event %q: %v", e.Key, e.Topic, e.Err)
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

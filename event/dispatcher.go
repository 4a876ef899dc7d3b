package event

import (
	"context"
	"runtime/debug"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dhollis/lattice/event/payload"
	"github.com/dhollis/lattice/event/topic"
)

// Publish dispatches one event to completion on the calling goroutine:
//
//  1. If a payload class is registered for the name, build the payload;
//     construction failure is logged and handlers receive raw arguments.
//  2. Exact subscribers run by descending priority, registration order
//     within a band. Async-marked subscribers go to the worker pool when
//     it is running, otherwise they run inline.
//  3. Every registered pattern matching the name fires, patterns in
//     registration order, subscribers priority-descending per pattern.
//     Pattern handlers receive only the name and named fields.
//  4. Once subscribers are atomically claimed and run in registration
//     order, then stay removed even if they fail.
//
// Arguments may be positional values and at most one Fields map.
// Handler failures never propagate and never stop later handlers; they
// are logged and collected in the Result.
func (b *Bus) Publish(ctx context.Context, name topic.Topic, args ...any) *Result {
	return b.publish(ctx, name, args, false)
}

// PublishSync dispatches like Publish but runs every matched handler
// inline, including async-marked ones, so all delivery has completed
// when it returns.
func (b *Bus) PublishSync(ctx context.Context, name topic.Topic, args ...any) *Result {
	return b.publish(ctx, name, args, true)
}

func (b *Bus) publish(ctx context.Context, name topic.Topic, args []any, inlineAll bool) *Result {
	res := &Result{}
	if name == "" {
		b.log.Warn("publish with empty event name dropped")
		return res
	}
	b.published.Add(1)

	values, fields := splitArgs(args)

	var pl payload.Payload
	built, err := b.catalog.Build(name, payload.Args{Values: values, Fields: fields})
	if err != nil {
		b.log.WithField("event", name).WithError(err).
			Warn("payload construction failed, delivering raw arguments")
	} else {
		pl = built
	}

	ev := Event{Name: name, Payload: pl, Values: values, Fields: fields}

	// Exact subscribers, priority order.
	for _, sub := range b.registry.entries(name) {
		if sub.async && !inlineAll {
			if b.pool.isRunning() {
				if err := b.pool.enqueue(ctx, ev, sub); err != nil {
					b.dropped.Add(1)
					res.Errors = append(res.Errors, &HandlerError{
						Topic: name, Key: sub.key, Err: err,
					})
				} else {
					b.enqueued.Add(1)
					res.Enqueued++
				}
				continue
			}
			// No pool running: degrade to inline execution.
		}
		val, herr := b.invoke(ctx, sub, ev)
		res.Handled++
		if herr != nil {
			res.Errors = append(res.Errors, herr)
		} else {
			res.Value = val
		}
	}

	// Pattern subscribers fire on every publish, independent of exact
	// matches. They never see the payload or positional values.
	pev := Event{Name: name, Fields: fields}
	for _, sub := range b.registry.matching(name) {
		_, herr := b.invoke(ctx, sub, pev)
		res.Handled++
		if herr != nil {
			res.Errors = append(res.Errors, herr)
		}
	}

	// Once subscribers are claimed before invocation so a concurrent
	// publish cannot deliver to them twice.
	for _, sub := range b.registry.takeOnce(name) {
		_, herr := b.invoke(ctx, sub, ev)
		res.Handled++
		if herr != nil {
			res.Errors = append(res.Errors, herr)
		}
	}

	return res
}

// invoke runs one handler with panic isolation. Failures are logged with
// a stack trace and returned, never thrown.
func (b *Bus) invoke(ctx context.Context, sub *subscription, ev Event) (val any, herr *HandlerError) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			b.handlerPanics.Add(1)
			herr = &HandlerError{
				Topic: ev.Name,
				Key:   sub.key,
				Err:   pkgerrors.Wrapf(ErrHandlerPanic, "%v", r),
				Stack: stack,
			}
			b.log.WithFields(logrus.Fields{
				"event":   ev.Name,
				"handler": sub.key,
			}).Errorf("handler panic: %v\n%s", r, stack)
			val = nil
		}
	}()

	v, err := sub.handler.Handle(ctx, ev)
	if err != nil {
		b.handlerErrors.Add(1)
		wrapped := pkgerrors.WithStack(err)
		b.log.WithFields(logrus.Fields{
			"event":   ev.Name,
			"handler": sub.key,
		}).Errorf("handler failed: %+v", wrapped)
		return nil, &HandlerError{Topic: ev.Name, Key: sub.key, Err: wrapped}
	}

	b.delivered.Add(1)
	return v, nil
}

// invokeAsync is the worker pool entry point. The publisher has already
// returned, so failures are only logged and counted.
func (b *Bus) invokeAsync(task asyncTask) {
	_, _ = b.invoke(task.ctx, task.sub, task.ev)
}

// splitArgs separates publish arguments into positional values and named
// fields. At most one Fields (or plain map[string]any) argument is
// recognized; additional maps merge into the same field set.
func splitArgs(args []any) ([]any, Fields) {
	var values []any
	var fields Fields
	for _, arg := range args {
		var m map[string]any
		switch v := arg.(type) {
		case Fields:
			m = v
		case map[string]any:
			m = v
		default:
			values = append(values, arg)
			continue
		}
		if fields == nil {
			fields = make(Fields, len(m))
		}
		for k, val := range m {
			fields[k] = val
		}
	}
	return values, fields
}

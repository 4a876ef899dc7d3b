// Package event provides the in-process publish/subscribe bus for the
// lattice shell.
//
// The bus is the shell's communication backbone: UI callbacks
// (navigation, dialogs, script-bridge queries), hardware I/O goroutines
// (serial read loop, HTTP/SSE server), and application components
// (calculator, title bar, window lifecycle) talk through named events
// instead of calling each other directly.
//
// # Architecture
//
// Three cooperating pieces:
//
//   - Registry: per-name ordered subscriber lists (exact, pattern, once)
//     behind a single mutex; lookups return snapshots.
//   - Dispatcher: Publish/PublishSync walk the registry in a fixed phase
//     order and isolate every handler failure.
//   - Payload catalog (event/payload): builds typed payload objects from
//     raw publish arguments for well-known event names.
//
// # Dispatch order
//
// For one publish call the order is deterministic: exact handlers by
// descending priority (registration order within a band), then every
// matching pattern's handlers (patterns in registration order, priority
// descending per pattern), then once handlers in registration order.
// Pattern handlers receive only the event name and named fields. The
// Result's Value is the last exact handler's return value.
//
// # Basic usage
//
//	bus := event.New()
//
//	bus.SubscribeFunc("calc.completed", func(ctx context.Context, ev event.Event) (any, error) {
//		res := ev.Payload.(payload.CalcResult)
//		log.Printf("%s = %s", res.Expression, res.Result)
//		return nil, nil
//	}, event.WithPriority(event.PriorityHigh))
//
//	bus.Publish(ctx, "calc.completed", event.Fields{
//		"expression": "1+1",
//		"result":     "2",
//	})
//
// # Declarative registration
//
// Components declare handlers as pure data on their type and bind them
// to each live instance from the constructor:
//
//	var calcBindings = event.NewBindings[*Calculator]().
//		On("calc.requested", (*Calculator).onRequested, event.WithPriority(event.PriorityHigh)).
//		OnPattern("calc.*", (*Calculator).onAnyCalc)
//
//	func NewCalculator(bus *event.Bus) (*Calculator, error) {
//		c := &Calculator{}
//		return c, calcBindings.Bind(bus, c)
//	}
//
// # Failure isolation
//
// Nothing a handler does propagates to the publisher. Errors and panics
// are logged with a stack trace, counted, collected into the returned
// Result, and dispatch continues with the next handler.
package event

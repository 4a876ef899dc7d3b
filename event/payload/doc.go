// Package payload turns raw publish arguments into typed payload objects.
//
// A Catalog maps well-known event names to constructors. When an event is
// published with one of those names, the bus asks the catalog to build a
// structured payload from the positional values and named fields of the
// publish call; handlers then receive the typed object instead of raw
// arguments. Construction failures are non-fatal: the bus logs them and
// delivers the raw arguments unchanged.
//
// The built-in kinds mirror the events of the shell this bus serves:
// navigation, alerts, script-bridge queries (correlation ID plus a reply
// channel back to the page), window fade-out, button clicks, calculator
// results, and system commands.
package payload

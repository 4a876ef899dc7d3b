// Package topic defines event names and glob-style pattern matching for
// the lattice event bus.
//
// Topics are opaque dot-segmented strings ("calc.requested",
// "serial.data_sent"). Exact subscriptions compare topics by string
// equality. Pattern subscriptions compare the published topic against a
// glob where "*" matches any run of characters (including dots) and "?"
// matches a single character:
//
//	calc.*       matches calc.requested, calc.completed
//	*.closed     matches serial.closed, window.closed
//	*            matches every topic
//
// The package also provides namespace qualification: a subsystem-level
// prefix applied to declaratively registered names so "requested" becomes
// "calc.requested" without repeating the prefix at every declaration.
package topic

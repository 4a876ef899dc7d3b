package topic

import "strings"

// Topic is an event name or subscription pattern using dot notation.
// Examples: "calc.requested", "browser.query", "titlebar.*"
type Topic string

// Wildcard characters recognized in patterns.
const (
	// WildcardAll matches every topic.
	WildcardAll = "*"

	// Separator separates topic segments.
	Separator = "."
)

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// Segments returns the topic split by the separator.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// Base returns the last segment of the topic.
//
// Example: "serial.data_sent" -> "data_sent"
func (t Topic) Base() string {
	s := string(t)
	idx := strings.LastIndex(s, Separator)
	if idx < 0 {
		return s
	}
	return s[idx+1:]
}

// IsPattern returns true if the topic contains wildcard characters and
// should be treated as a subscription pattern rather than a concrete name.
func (t Topic) IsPattern() bool {
	return strings.ContainsAny(string(t), "*?")
}

// IsValid returns true if the topic is a well-formed name or pattern.
// A valid topic is non-empty, does not start or end with a separator,
// and has no empty segments.
func (t Topic) IsValid() bool {
	s := string(t)
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, Separator) || strings.HasSuffix(s, Separator) {
		return false
	}
	return !strings.Contains(s, Separator+Separator)
}

// Qualified returns the topic prefixed with the given namespace, unless
// the namespace is empty or the topic already carries the prefix.
//
// Example: Topic("requested").Qualified("calc") -> "calc.requested"
func (t Topic) Qualified(namespace string) Topic {
	if namespace == "" {
		return t
	}
	prefix := namespace + Separator
	if strings.HasPrefix(string(t), prefix) {
		return t
	}
	return Topic(prefix + string(t))
}

// InNamespace returns true if the topic lives under the given namespace,
// matching whole segments only ("calc.requested" is in "calc", but
// "calculator.on" is not).
func (t Topic) InNamespace(namespace string) bool {
	if namespace == "" {
		return true
	}
	return strings.HasPrefix(string(t), namespace+Separator)
}

// Join joins segments into a topic.
func Join(segments ...string) Topic {
	return Topic(strings.Join(segments, Separator))
}

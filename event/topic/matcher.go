package topic

import (
	"path"
	"regexp"
	"strings"
	"sync"
)

// Matches returns true if the topic matches the given pattern.
//
// Matching rules, in order:
//   - the pattern "*" matches every topic
//   - glob matching where "*" is any run of characters (dots included)
//     and "?" is exactly one character; all other characters are literal
//   - if the glob is malformed, a regex translation of "*" and "?" is
//     tried as a fallback
func (t Topic) Matches(pattern Topic) bool {
	return Match(string(pattern), string(t))
}

// Match reports whether name matches the glob pattern.
func Match(pattern, name string) bool {
	if pattern == WildcardAll {
		return true
	}
	if pattern == name {
		return true
	}

	ok, err := path.Match(pattern, name)
	if err == nil {
		return ok
	}

	// Malformed glob (e.g. an unclosed character class). Fall back to a
	// literal regex translation of * and ?.
	re, rerr := translate(pattern)
	if rerr != nil {
		return false
	}
	return re.MatchString(name)
}

var (
	translateMu    sync.Mutex
	translateCache = map[string]*regexp.Regexp{}
)

// translate converts a glob pattern into an anchored regular expression,
// treating every character except * and ? as a literal.
func translate(pattern string) (*regexp.Regexp, error) {
	translateMu.Lock()
	defer translateMu.Unlock()

	if re, ok := translateCache[pattern]; ok {
		return re, nil
	}

	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, err
	}
	translateCache[pattern] = re
	return re, nil
}

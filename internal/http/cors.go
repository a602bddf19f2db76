package http

import (
	"net/http"
	"strings"
)

// NewOriginChecker builds the CORS origin predicate: a fixed whitelist
// plus one wildcard pattern for preview deployments, e.g.
// "https://hotel-frontend-*.vercel.app". The single '*' matches one
// run of [a-zA-Z0-9-].
func NewOriginChecker(trusted []string, wildcard string) func(r *http.Request, origin string) bool {
	allowed := make(map[string]bool, len(trusted))
	for _, origin := range trusted {
		allowed[origin] = true
	}

	var prefix, suffix string
	hasWildcard := false
	if idx := strings.Index(wildcard, "*"); idx != -1 {
		prefix = wildcard[:idx]
		suffix = wildcard[idx+1:]
		hasWildcard = true
	}

	return func(r *http.Request, origin string) bool {
		if allowed[origin] {
			return true
		}
		if !hasWildcard {
			return false
		}
		return matchWildcard(origin, prefix, suffix)
	}
}

func matchWildcard(origin, prefix, suffix string) bool {
	if len(origin) < len(prefix)+len(suffix) {
		return false
	}
	if !strings.HasPrefix(origin, prefix) || !strings.HasSuffix(origin, suffix) {
		return false
	}
	middle := origin[len(prefix) : len(origin)-len(suffix)]
	if middle == "" {
		return false
	}
	for _, c := range middle {
		if !isOriginLabelChar(c) {
			return false
		}
	}
	return true
}

func isOriginLabelChar(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '-':
		return true
	}
	return false
}

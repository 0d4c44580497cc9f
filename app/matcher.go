package app

import (
	"strings"

	"github.com/saiset-co/sai-dispatch/types"
)

// PathMatcher resolves request paths against the registered path keys:
// exact key equality first, then the longest registered prefix whose route
// set is prefix-capable.
type PathMatcher struct{}

// NormalizePath strips trailing slashes and collapses the root to "/".
// Registration and lookup run through the same normalization, so a route
// registered at "/a/b/" and a request for "/a/b" meet at the same key.
func NormalizePath(path string) string {
	for len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	if path == "" {
		return "/"
	}
	return path
}

// Match returns the winning path key for the normalized request path, or
// ErrRouteNotFound. A key is a prefix candidate only when the request path
// extends it with a "/"-delimited continuation and at least one route stored
// at the key was registered as a prefix route. Ties go to the longest key.
func (m *PathMatcher) Match(path string, entries map[string]map[string]*types.Route) (string, error) {
	path = NormalizePath(path)

	if _, ok := entries[path]; ok {
		return path, nil
	}

	best := ""
	for key, methods := range entries {
		if !isDirPrefix(key, path) {
			continue
		}
		if !hasPrefixRoute(methods) {
			continue
		}
		if len(key) > len(best) {
			best = key
		}
	}

	if best == "" {
		return "", types.ErrRouteNotFound
	}
	return best, nil
}

// isDirPrefix reports whether key + "/" is a prefix of path. The root key
// "/" prefixes every path.
func isDirPrefix(key, path string) bool {
	if key == "/" {
		return len(path) > 1
	}
	return strings.HasPrefix(path, key+"/")
}

func hasPrefixRoute(methods map[string]*types.Route) bool {
	for _, route := range methods {
		if route.IsPrefix {
			return true
		}
	}
	return false
}

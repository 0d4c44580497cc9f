package app

import (
	"strings"

	"go.uber.org/zap"

	"github.com/saiset-co/sai-dispatch/types"
)

// RouteTable owns the (normalized path, method) -> Route mapping. At most
// one route exists per pair at any instant; re-registration replaces the
// prior route wholesale and logs a warning instead of failing.
//
// The table is read-mostly: all registration happens during setup, strictly
// before serving begins. Concurrent mutation during live dispatch is
// undefined.
type RouteTable struct {
	logger  types.Logger
	matcher *PathMatcher
	entries map[string]map[string]*types.Route
}

func NewRouteTable(logger types.Logger) *RouteTable {
	return &RouteTable{
		logger:  logger,
		matcher: &PathMatcher{},
		entries: make(map[string]map[string]*types.Route),
	}
}

func (t *RouteTable) Register(route *types.Route) error {
	if route == nil || route.Handler == nil {
		return types.ErrHandlerIsNil
	}
	if !strings.HasPrefix(route.Path, "/") {
		return types.Errorf(types.ErrPathInvalid, "path: %q", route.Path)
	}
	if !types.MethodSupported(route.Method) {
		return types.Errorf(types.ErrMethodInvalid, "method: %q", route.Method)
	}

	route.Path = NormalizePath(route.Path)

	methods, ok := t.entries[route.Path]
	if !ok {
		methods = make(map[string]*types.Route)
		t.entries[route.Path] = methods
	}

	if _, exists := methods[route.Method]; exists {
		t.logger.Warn("Route overwritten",
			zap.String("method", route.Method),
			zap.String("path", route.Path))
	}

	methods[route.Method] = route
	return nil
}

// Lookup resolves path through the matcher and selects the route for
// method at the winning key. ErrRouteNotFound means no key resolved at all;
// ErrMethodNotAllowed means a key resolved but carries no usable route for
// this method.
func (t *RouteTable) Lookup(path, method string) (*types.Route, error) {
	key, err := t.matcher.Match(path, t.entries)
	if err != nil {
		return nil, err
	}

	route, ok := t.entries[key][method]
	if !ok {
		return nil, types.Errorf(types.ErrMethodNotAllowed, "%s %s", method, key)
	}

	// A prefix win only satisfies routes registered as prefix routes.
	// The method may still be served at this key as an exact route.
	if key != NormalizePath(path) && !route.IsPrefix {
		return nil, types.Errorf(types.ErrMethodNotAllowed, "%s %s", method, key)
	}

	return route, nil
}

// Routes returns a copy of the table keyed "METHOD:path", for offline
// collaborators. Mutating the returned map does not affect dispatch.
func (t *RouteTable) Routes() map[string]*types.Route {
	routes := make(map[string]*types.Route)
	for path, methods := range t.entries {
		for method, route := range methods {
			routes[method+":"+path] = route
		}
	}
	return routes
}

func (t *RouteTable) Len() int {
	n := 0
	for _, methods := range t.entries {
		n += len(methods)
	}
	return n
}

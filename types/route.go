package types

import "reflect"

var methodIndex = map[string]uint8{
	"GET":     0,
	"HEAD":    1,
	"POST":    2,
	"PUT":     3,
	"DELETE":  4,
	"OPTIONS": 5,
	"PATCH":   6,
}

// MethodSupported reports whether the verb belongs to the fixed set the
// route table accepts.
func MethodSupported(method string) bool {
	_, ok := methodIndex[method]
	return ok
}

// Route is the unit of registration: one handler bound to one
// (normalized path, method) pair. IsPrefix marks the route as serving the
// whole "/"-delimited subtree under its path.
type Route struct {
	Method   string
	Path     string
	Handler  Handler
	IsPrefix bool
	Config   *RouteConfig
}

type RouteConfig struct {
	Doc *DocConfig
}

type DocConfig struct {
	Path            string
	Method          string
	DocTitle        string
	DocDescription  string
	DocTag          string
	DocRequestType  reflect.Type
	DocResponseType reflect.Type
}

// RouteSource exposes a consistent snapshot of the registered routes to
// offline collaborators such as the documentation generator. The snapshot
// is a copy; mutating it does not affect dispatch.
type RouteSource interface {
	Routes() map[string]*Route
}

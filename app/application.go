package app

import (
	"go.uber.org/zap"

	"github.com/saiset-co/sai-dispatch/types"
)

// Application is the façade over the route table, middleware chain and
// request pipeline. The transport engine holds an explicit reference to it
// and calls Dispatch once per inbound request; there is no process-wide
// "current application".
//
// Registration (Register, GET, POST, Static, Use) is a setup-time concern.
// Once serving begins the Application is read-only; hot reload means
// building a new Application and swapping the reference atomically.
type Application struct {
	logger   types.Logger
	table    *RouteTable
	chain    *MiddlewareChain
	barrier  *FaultBarrier
	pipeline *RequestPipeline
}

func New(logger types.Logger) *Application {
	barrier := NewFaultBarrier(logger)
	table := NewRouteTable(logger)
	chain := NewMiddlewareChain(logger, barrier)

	return &Application{
		logger:   logger,
		table:    table,
		chain:    chain,
		barrier:  barrier,
		pipeline: NewRequestPipeline(logger, table, chain, barrier),
	}
}

// Register binds handler to (method, path). Validation failures surface
// synchronously and wrap types.ErrValidation; they never occur during
// request processing.
func (a *Application) Register(method, path string, handler types.Handler) error {
	return a.Route(method, path, handler).Register()
}

// Route starts a route registration that can carry extra configuration
// before being committed with Register.
func (a *Application) Route(method, path string, handler types.Handler) *RouteBuilder {
	return &RouteBuilder{
		app:     a,
		method:  method,
		path:    path,
		handler: handler,
		addHead: method == "GET",
		config:  &types.RouteConfig{},
	}
}

// GET registers handler for GET and, mirroring it, HEAD. Use
// Route("GET", ...).WithoutHead() to opt out of the HEAD registration.
func (a *Application) GET(path string, handler types.Handler) error {
	return a.Route("GET", path, handler).Register()
}

func (a *Application) POST(path string, handler types.Handler) error {
	return a.Route("POST", path, handler).Register()
}

// Use appends m to the middleware chain and returns the new chain length,
// which is the 1-based id of m.
func (a *Application) Use(m types.Middleware) int {
	return a.chain.Append(m)
}

// UseFunc is shorthand for Use with two plain hook functions.
func (a *Application) UseFunc(name string, pre, post types.Handler) int {
	return a.chain.Append(types.NewMiddleware(name, pre, post))
}

// Dispatch is the sole entry point the transport collaborator calls. It
// never raises to its caller.
func (a *Application) Dispatch(req *types.Request) *types.Response {
	return a.pipeline.Process(req)
}

// Routes returns a snapshot of all registered routes keyed "METHOD:path".
func (a *Application) Routes() map[string]*types.Route {
	return a.table.Routes()
}

func (a *Application) Logger() types.Logger {
	return a.logger
}

func (a *Application) register(route *types.Route) error {
	if err := a.table.Register(route); err != nil {
		return err
	}

	a.logger.Debug("Route registered",
		zap.String("method", route.Method),
		zap.String("path", route.Path),
		zap.Bool("prefix", route.IsPrefix))

	return nil
}

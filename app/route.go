package app

import (
	"reflect"

	"github.com/saiset-co/sai-dispatch/types"
)

// RouteBuilder accumulates route configuration and commits it with
// Register. Nothing is stored in the table until Register is called.
type RouteBuilder struct {
	app     *Application
	method  string
	path    string
	handler types.Handler
	prefix  bool
	addHead bool
	config  *types.RouteConfig
}

// WithPrefix marks the route as serving the whole "/"-delimited subtree
// under its path.
func (rb *RouteBuilder) WithPrefix() *RouteBuilder {
	rb.prefix = true
	return rb
}

// WithoutHead suppresses the mirrored HEAD registration a GET route gets by
// default. No effect on other methods.
func (rb *RouteBuilder) WithoutHead() *RouteBuilder {
	rb.addHead = false
	return rb
}

// WithDoc attaches documentation metadata consumed by the offline OpenAPI
// generator. It has no effect on dispatch.
func (rb *RouteBuilder) WithDoc(title, description, tag string, requestType, responseType interface{}) *RouteBuilder {
	rb.config.Doc = &types.DocConfig{
		DocTitle:        title,
		DocDescription:  description,
		DocTag:          tag,
		DocRequestType:  reflect.TypeOf(requestType),
		DocResponseType: reflect.TypeOf(responseType),
	}
	return rb
}

func (rb *RouteBuilder) Register() error {
	if rb.config.Doc != nil {
		rb.config.Doc.Method = rb.method
		rb.config.Doc.Path = NormalizePath(rb.path)
	}

	route := &types.Route{
		Method:   rb.method,
		Path:     rb.path,
		Handler:  rb.handler,
		IsPrefix: rb.prefix,
		Config:   rb.config,
	}

	if err := rb.app.register(route); err != nil {
		return err
	}

	if rb.method == "GET" && rb.addHead {
		head := &types.Route{
			Method:   "HEAD",
			Path:     rb.path,
			Handler:  rb.handler,
			IsPrefix: rb.prefix,
			Config:   rb.config,
		}
		return rb.app.register(head)
	}

	return nil
}

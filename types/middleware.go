package types

// Middleware exposes a pre-request and a post-request hook around dispatch.
// Both hooks share the handler signature. The pre hook may return Interrupt
// to short-circuit the pipeline; the post hook of every middleware whose pre
// hook ran is guaranteed to run, in reverse order.
type Middleware interface {
	Name() string
	PreRequest(req *Request, resp *Response) ControlSignal
	PostRequest(req *Request, resp *Response) ControlSignal
}

type middlewareFunc struct {
	name string
	pre  Handler
	post Handler
}

// NewMiddleware adapts two plain handler functions into a Middleware.
// Either hook may be nil, in which case it forwards unconditionally.
func NewMiddleware(name string, pre, post Handler) Middleware {
	return &middlewareFunc{name: name, pre: pre, post: post}
}

func (m *middlewareFunc) Name() string { return m.name }

func (m *middlewareFunc) PreRequest(req *Request, resp *Response) ControlSignal {
	if m.pre == nil {
		return Forward
	}
	return m.pre(req, resp)
}

func (m *middlewareFunc) PostRequest(req *Request, resp *Response) ControlSignal {
	if m.post == nil {
		return Forward
	}
	return m.post(req, resp)
}

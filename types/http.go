package types

// Handler processes one request. Middleware hooks share the same signature.
type Handler func(req *Request, resp *Response) ControlSignal

// Dispatcher is the single entry point the transport engine calls, once per
// inbound request. It never returns an error; every failure is encoded into
// the returned Response.
type Dispatcher interface {
	Dispatch(req *Request) *Response
}

// Request is exclusively owned by one pipeline run. The transport engine
// builds a fresh value per inbound request; the core never shares it across
// concurrent dispatches.
type Request struct {
	Method        string
	Path          string
	Query         map[string]string
	Headers       map[string]string
	Body          []byte
	CorrelationID string
}

func (r *Request) Header(name string) string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers[name]
}

// Response carries the outcome of one dispatch. Fault is populated only when
// user code panicked or returned an invalid signal; it is for the logging
// side of the house and is never written to the wire.
type Response struct {
	StatusCode  int
	Headers     map[string]string
	ContentType string
	Body        []byte
	Fault       *Fault
}

func NewResponse() *Response {
	return &Response{
		StatusCode: 200,
		Headers:    make(map[string]string),
	}
}

func (r *Response) SetHeader(name, value string) {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[name] = value
}

// Fault is the captured diagnostic of a handler or middleware failure.
type Fault struct {
	Message string
	Stack   string
}

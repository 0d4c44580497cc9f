package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saiset-co/sai-dispatch/types"
)

func echoHandler(body string) types.Handler {
	return func(req *types.Request, resp *types.Response) types.ControlSignal {
		resp.StatusCode = 200
		resp.Body = []byte(body)
		return types.Forward
	}
}

func TestApplicationDispatchExactAndPrefix(t *testing.T) {
	t.Parallel()

	lg, _ := newTestLogger()
	a := New(lg)

	require.NoError(t, a.GET("/files/readme", echoHandler("exact")))
	require.NoError(t, a.Route("GET", "/files", echoHandler("subtree")).WithPrefix().Register())
	require.NoError(t, a.Route("GET", "/files/archive", echoHandler("archive")).WithPrefix().Register())

	tests := []struct {
		name     string
		path     string
		wantBody string
	}{
		{name: "exact_beats_prefix", path: "/files/readme", wantBody: "exact"},
		{name: "longest_prefix_wins", path: "/files/archive/2024/report", wantBody: "archive"},
		{name: "shorter_prefix_serves_rest", path: "/files/misc/note", wantBody: "subtree"},
		{name: "trailing_slash_equivalent", path: "/files/readme/", wantBody: "exact"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp := a.Dispatch(newTestRequest("GET", tt.path))
			assert.Equal(t, 200, resp.StatusCode)
			assert.Equal(t, tt.wantBody, string(resp.Body))
		})
	}
}

func TestApplicationDispatchNotFound(t *testing.T) {
	t.Parallel()

	lg, logs := newTestLogger()
	a := New(lg)

	require.NoError(t, a.GET("/known", echoHandler("ok")))

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{name: "unknown_path", method: "GET", path: "/unknown"},
		{name: "method_mismatch_same_status", method: "POST", path: "/known"},
		{name: "non_slash_continuation", method: "GET", path: "/knownx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := a.Dispatch(newTestRequest(tt.method, tt.path))
			assert.Equal(t, 404, resp.StatusCode)
			assert.JSONEq(t,
				`{"error":"Not Found","message":"The requested resource was not found"}`,
				string(resp.Body))
		})
	}

	// The two miss reasons stay distinguishable in the debug log.
	reasons := logs.FilterMessage("No route matched").All()
	require.NotEmpty(t, reasons)
}

func TestApplicationGETRegistersHEAD(t *testing.T) {
	t.Parallel()

	lg, _ := newTestLogger()
	a := New(lg)

	require.NoError(t, a.GET("/page", echoHandler("page")))

	resp := a.Dispatch(newTestRequest("HEAD", "/page"))
	assert.Equal(t, 200, resp.StatusCode)

	routes := a.Routes()
	assert.Contains(t, routes, "GET:/page")
	assert.Contains(t, routes, "HEAD:/page")
}

func TestApplicationWithoutHead(t *testing.T) {
	t.Parallel()

	lg, _ := newTestLogger()
	a := New(lg)

	require.NoError(t, a.Route("GET", "/metrics", echoHandler("m")).WithoutHead().Register())

	resp := a.Dispatch(newTestRequest("HEAD", "/metrics"))
	assert.Equal(t, 404, resp.StatusCode)
	assert.NotContains(t, a.Routes(), "HEAD:/metrics")
}

func TestApplicationReRegistrationLastWins(t *testing.T) {
	t.Parallel()

	lg, logs := newTestLogger()
	a := New(lg)

	require.NoError(t, a.GET("/dup", echoHandler("first")))
	require.NoError(t, a.GET("/dup", echoHandler("second")))

	resp := a.Dispatch(newTestRequest("GET", "/dup"))
	assert.Equal(t, "second", string(resp.Body))

	// GET and its mirrored HEAD are each overwritten once.
	assert.Equal(t, 2, logs.FilterMessage("Route overwritten").Len())
}

func TestApplicationFaultIsolation(t *testing.T) {
	t.Parallel()

	lg, _ := newTestLogger()
	a := New(lg)

	require.NoError(t, a.GET("/boom", func(req *types.Request, resp *types.Response) types.ControlSignal {
		panic("handler exploded")
	}))
	require.NoError(t, a.GET("/fine", echoHandler("fine")))

	failed := a.Dispatch(newTestRequest("GET", "/boom"))
	assert.Equal(t, 500, failed.StatusCode)
	require.NotNil(t, failed.Fault)
	assert.Equal(t, "handler exploded", failed.Fault.Message)

	// The next, unrelated request is untouched by the prior fault.
	ok := a.Dispatch(newTestRequest("GET", "/fine"))
	assert.Equal(t, 200, ok.StatusCode)
	assert.Equal(t, "fine", string(ok.Body))
	assert.Nil(t, ok.Fault)
}

func TestApplicationDispatchIdempotent(t *testing.T) {
	t.Parallel()

	lg, _ := newTestLogger()
	a := New(lg)

	require.NoError(t, a.GET("/stable", echoHandler("same")))

	first := a.Dispatch(newTestRequest("GET", "/stable"))
	second := a.Dispatch(newTestRequest("GET", "/stable"))

	assert.Equal(t, first.StatusCode, second.StatusCode)
	assert.Equal(t, first.Body, second.Body)
	assert.NotSame(t, first, second)
}

func TestApplicationMiddlewareAroundDispatch(t *testing.T) {
	t.Parallel()

	lg, _ := newTestLogger()
	a := New(lg)

	trace := []string{}
	a.UseFunc("outer",
		func(req *types.Request, resp *types.Response) types.ControlSignal {
			trace = append(trace, "pre:outer")
			return types.Forward
		},
		func(req *types.Request, resp *types.Response) types.ControlSignal {
			trace = append(trace, "post:outer")
			return types.Forward
		})
	a.UseFunc("gate",
		func(req *types.Request, resp *types.Response) types.ControlSignal {
			if req.Header("X-Blocked") != "" {
				trace = append(trace, "pre:gate(block)")
				resp.StatusCode = 403
				return types.Interrupt
			}
			trace = append(trace, "pre:gate")
			return types.Forward
		},
		func(req *types.Request, resp *types.Response) types.ControlSignal {
			trace = append(trace, "post:gate")
			return types.Forward
		})

	require.NoError(t, a.GET("/guarded", func(req *types.Request, resp *types.Response) types.ControlSignal {
		trace = append(trace, "handler")
		resp.Body = []byte("guarded")
		return types.Forward
	}))

	resp := a.Dispatch(newTestRequest("GET", "/guarded"))
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t,
		[]string{"pre:outer", "pre:gate", "handler", "post:gate", "post:outer"},
		trace)

	trace = trace[:0]
	blocked := newTestRequest("GET", "/guarded")
	blocked.Headers["X-Blocked"] = "1"

	resp = a.Dispatch(blocked)
	assert.Equal(t, 403, resp.StatusCode)
	assert.Empty(t, resp.Body)
	// The handler is skipped and only the executed middleware unwind.
	assert.Equal(t,
		[]string{"pre:outer", "pre:gate(block)", "post:gate", "post:outer"},
		trace)
}

func TestApplicationPostRunsAfterMiss(t *testing.T) {
	t.Parallel()

	lg, _ := newTestLogger()
	a := New(lg)

	var sawStatus int
	a.UseFunc("observer", nil,
		func(req *types.Request, resp *types.Response) types.ControlSignal {
			sawStatus = resp.StatusCode
			return types.Forward
		})

	resp := a.Dispatch(newTestRequest("GET", "/nowhere"))
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, 404, sawStatus)
}

func TestApplicationRegisterValidation(t *testing.T) {
	t.Parallel()

	lg, _ := newTestLogger()
	a := New(lg)

	err := a.Register("GET", "bad", forwardHandler)
	require.ErrorIs(t, err, types.ErrValidation)

	err = a.Register("TRACE", "/x", forwardHandler)
	require.ErrorIs(t, err, types.ErrMethodInvalid)

	err = a.Register("GET", "/x", nil)
	require.ErrorIs(t, err, types.ErrHandlerIsNil)
}

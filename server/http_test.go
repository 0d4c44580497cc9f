package server

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/saiset-co/sai-dispatch/logger"
	"github.com/saiset-co/sai-dispatch/types"
)

type stubDispatcher struct {
	lastReq *types.Request
	resp    *types.Response
}

func (s *stubDispatcher) Dispatch(req *types.Request) *types.Response {
	s.lastReq = req
	if s.resp != nil {
		return s.resp
	}
	return types.NewResponse()
}

func newTestLogger() types.Logger {
	core, _ := observer.New(zapcore.DebugLevel)
	return logger.NewZapWrapper(zap.New(core))
}

func newTestServer(t *testing.T, d types.Dispatcher) *FastHTTPServer {
	t.Helper()

	srv, err := NewHTTPServer(context.Background(), newTestLogger(), &types.HTTPConfig{
		Host: "localhost",
		Port: 8080,
	}, d, nil)
	require.NoError(t, err)
	return srv
}

func newRequestCtx(method, uri string, headers map[string]string, body []byte) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	for name, value := range headers {
		req.Header.Set(name, value)
	}
	if body != nil {
		req.SetBody(body)
	}

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	return ctx
}

func TestNewHTTPServerRequiresDispatcher(t *testing.T) {
	t.Parallel()

	_, err := NewHTTPServer(context.Background(), newTestLogger(), &types.HTTPConfig{}, nil, nil)
	assert.ErrorIs(t, err, types.ErrHandlerIsNil)
}

func TestBuildRequest(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubDispatcher{})

	ctx := newRequestCtx("POST", "/orders?page=2&sort=desc", map[string]string{
		"X-Request-ID": "corr-9",
		"Content-Type": "application/json",
	}, []byte(`{"item":"book"}`))

	req := srv.buildRequest(ctx)

	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "/orders", req.Path)
	assert.Equal(t, "2", req.Query["page"])
	assert.Equal(t, "desc", req.Query["sort"])
	assert.Equal(t, "corr-9", req.CorrelationID)
	assert.Equal(t, "application/json", req.Headers["Content-Type"])
	assert.Equal(t, `{"item":"book"}`, string(req.Body))
}

func TestBuildRequestGeneratesCorrelationID(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubDispatcher{})
	req := srv.buildRequest(newRequestCtx("GET", "/a", nil, nil))

	require.NotEmpty(t, req.CorrelationID)
	_, err := uuid.Parse(req.CorrelationID)
	assert.NoError(t, err)
}

func TestWriteResponse(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubDispatcher{})

	resp := types.NewResponse()
	resp.StatusCode = 201
	resp.ContentType = "application/json"
	resp.Body = []byte(`{"ok":true}`)
	resp.SetHeader("X-Request-ID", "corr-9")

	ctx := newRequestCtx("POST", "/orders", nil, nil)
	srv.writeResponse(ctx, &types.Request{Method: "POST"}, resp)

	assert.Equal(t, 201, ctx.Response.StatusCode())
	assert.Equal(t, "application/json", string(ctx.Response.Header.ContentType()))
	assert.Equal(t, "corr-9", string(ctx.Response.Header.Peek("X-Request-ID")))
	assert.Equal(t, `{"ok":true}`, string(ctx.Response.Body()))
}

func TestWriteResponseOmitsBodyForHEAD(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubDispatcher{})

	resp := types.NewResponse()
	resp.Body = []byte("payload")

	ctx := newRequestCtx("HEAD", "/a", nil, nil)
	srv.writeResponse(ctx, &types.Request{Method: "HEAD"}, resp)

	assert.Empty(t, ctx.Response.Body())
}

func TestMainHandlerRoundTrip(t *testing.T) {
	t.Parallel()

	d := &stubDispatcher{resp: &types.Response{
		StatusCode:  200,
		Headers:     map[string]string{},
		ContentType: "text/plain",
		Body:        []byte("pong"),
	}}
	srv := newTestServer(t, d)

	ctx := newRequestCtx("GET", "/ping", nil, nil)
	srv.mainHandler(ctx)

	require.NotNil(t, d.lastReq)
	assert.Equal(t, "/ping", d.lastReq.Path)
	assert.Equal(t, "pong", string(ctx.Response.Body()))
}

func TestServerStateTransitions(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubDispatcher{})

	assert.False(t, srv.IsRunning())
	assert.ErrorIs(t, srv.Stop(), types.ErrServerNotRunning)
}

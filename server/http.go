package server

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/saiset-co/sai-dispatch/types"
)

type State int32

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
)

const correlationHeader = "X-Request-ID"

// FastHTTPServer owns the wire: accept, parse, keep-alive. It receives the
// dispatcher by explicit injection and calls it once per inbound request;
// it never consults any process-wide application registry. Concurrency
// across connections is fasthttp's; each request gets its own
// Request/Response pair, so the dispatcher sees no sharing.
type FastHTTPServer struct {
	ctx             context.Context
	cancel          context.CancelFunc
	logger          types.Logger
	dispatcher      types.Dispatcher
	metrics         types.MetricsManager
	httpConfig      *types.HTTPConfig
	server          *fasthttp.Server
	listener        net.Listener
	state           atomic.Value
	shutdownTimeout time.Duration
}

func NewHTTPServer(
	ctx context.Context,
	logger types.Logger,
	httpConfig *types.HTTPConfig,
	dispatcher types.Dispatcher,
	metrics types.MetricsManager,
) (*FastHTTPServer, error) {
	if dispatcher == nil {
		return nil, types.ErrHandlerIsNil
	}

	serverCtx, cancel := context.WithCancel(ctx)

	shutdownTimeout := 5 * time.Second
	if httpConfig.ShutdownTimeout > 0 {
		shutdownTimeout = time.Duration(httpConfig.ShutdownTimeout) * time.Second
	}

	server := &FastHTTPServer{
		ctx:             serverCtx,
		cancel:          cancel,
		logger:          logger,
		dispatcher:      dispatcher,
		metrics:         metrics,
		httpConfig:      httpConfig,
		shutdownTimeout: shutdownTimeout,
	}

	server.state.Store(StateStopped)

	return server, nil
}

func (h *FastHTTPServer) Start() error {
	if !h.transitionState(StateStopped, StateStarting) {
		return types.ErrServerAlreadyRunning
	}

	defer func() {
		if h.getState() == StateStarting {
			h.setState(StateRunning)
		}
	}()

	h.server = &fasthttp.Server{
		Handler:         h.mainHandler,
		ReadTimeout:     time.Duration(h.httpConfig.ReadTimeout) * time.Second,
		WriteTimeout:    time.Duration(h.httpConfig.WriteTimeout) * time.Second,
		IdleTimeout:     time.Duration(h.httpConfig.IdleTimeout) * time.Second,
		TCPKeepalive:    true,
		CloseOnShutdown: true,
	}

	addr := fmt.Sprintf("%s:%d", h.httpConfig.Host, h.httpConfig.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		h.setState(StateStopped)
		return types.WrapError(err, "failed to bind "+addr)
	}
	h.listener = listener

	go func() {
		if err := h.server.Serve(h.listener); err != nil {
			h.logger.Error("HTTP server failed", zap.Error(err))
			h.setState(StateStopped)
		}
	}()

	h.logger.Info("HTTP server started", zap.String("address", addr))

	return nil
}

func (h *FastHTTPServer) Stop() error {
	if !h.transitionState(StateRunning, StateStopping) {
		return types.ErrServerNotRunning
	}

	defer func() {
		h.setState(StateStopped)
		h.cancel()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if h.server != nil {
			return h.server.ShutdownWithContext(gCtx)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		h.logger.Warn("Server stop timeout, some connections may have been dropped", zap.Error(err))
	} else {
		h.logger.Info("HTTP server stopped gracefully")
	}

	return nil
}

func (h *FastHTTPServer) IsRunning() bool {
	return h.getState() == StateRunning
}

// mainHandler converts one fasthttp request into the dispatcher's Request
// shape, runs the pipeline, and writes the finalized Response to the wire.
func (h *FastHTTPServer) mainHandler(ctx *fasthttp.RequestCtx) {
	start := time.Now()

	req := h.buildRequest(ctx)
	resp := h.dispatcher.Dispatch(req)

	h.writeResponse(ctx, req, resp)

	if h.metrics != nil {
		h.metrics.ObserveRequest(req.Method, resp.StatusCode, time.Since(start))
		if resp.Fault != nil {
			h.metrics.ObserveFault("dispatch")
		}
	}
}

// buildRequest copies everything out of the fasthttp buffers: the Request
// outlives this frame only inside the pipeline, but user handlers are free
// to retain what they were given.
func (h *FastHTTPServer) buildRequest(ctx *fasthttp.RequestCtx) *types.Request {
	query := make(map[string]string)
	ctx.QueryArgs().VisitAll(func(key, value []byte) {
		query[string(key)] = string(value)
	})

	headers := make(map[string]string)
	ctx.Request.Header.VisitAll(func(key, value []byte) {
		headers[string(key)] = string(value)
	})

	correlationID := headers[correlationHeader]
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	var body []byte
	if b := ctx.PostBody(); len(b) > 0 {
		body = append([]byte(nil), b...)
	}

	return &types.Request{
		Method:        string(ctx.Method()),
		Path:          string(ctx.Path()),
		Query:         query,
		Headers:       headers,
		Body:          body,
		CorrelationID: correlationID,
	}
}

func (h *FastHTTPServer) writeResponse(ctx *fasthttp.RequestCtx, req *types.Request, resp *types.Response) {
	ctx.SetStatusCode(resp.StatusCode)

	for name, value := range resp.Headers {
		ctx.Response.Header.Set(name, value)
	}

	if resp.ContentType != "" {
		ctx.SetContentType(resp.ContentType)
	}

	// HEAD responses carry headers only.
	if req.Method != "HEAD" && len(resp.Body) > 0 {
		ctx.SetBody(resp.Body)
	}
}

func (h *FastHTTPServer) getState() State {
	return h.state.Load().(State)
}

func (h *FastHTTPServer) setState(newState State) bool {
	currentState := h.getState()
	return h.state.CompareAndSwap(currentState, newState)
}

func (h *FastHTTPServer) transitionState(from, to State) bool {
	return h.state.CompareAndSwap(from, to)
}

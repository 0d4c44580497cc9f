package app

import (
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/saiset-co/sai-dispatch/types"
	"github.com/saiset-co/sai-dispatch/utils"
)

const (
	faultKindHandler    = "handler"
	faultKindMiddleware = "middleware"
)

// FaultBarrier executes one handler or middleware hook under isolation. No
// fault from user-supplied code ever escapes it: a panic or a malformed
// return value becomes a logged diagnostic, a 500 response and a terminal
// Interrupt signal.
//
// The barrier holds no per-request state, so a single instance is safe to
// invoke concurrently for independent requests.
type FaultBarrier struct {
	logger       types.Logger
	stackBufPool sync.Pool
}

func NewFaultBarrier(logger types.Logger) *FaultBarrier {
	return &FaultBarrier{
		logger: logger,
		stackBufPool: sync.Pool{
			New: func() interface{} {
				buf := make([]byte, 4096)
				return &buf
			},
		},
	}
}

// Execute invokes fn(req, resp) and normalizes its outcome. Forward and
// Interrupt propagate untouched; anything else resolves to Interrupt with
// resp rewritten to the fixed generic 500 body and the diagnostic attached
// to resp.Fault.
func (b *FaultBarrier) Execute(kind string, fn types.Handler, req *types.Request, resp *types.Response) (sig types.ControlSignal) {
	defer func() {
		if rec := recover(); rec != nil {
			b.fail(kind, req, resp, &types.Fault{
				Message: fmt.Sprintf("%v", rec),
				Stack:   b.captureStack(),
			})
			sig = types.Interrupt
		}
	}()

	sig = fn(req, resp)

	if !sig.Valid() {
		b.fail(kind, req, resp, &types.Fault{
			Message: types.ErrInvalidSignal.Error(),
		})
		sig = types.Interrupt
	}

	return sig
}

func (b *FaultBarrier) fail(kind string, req *types.Request, resp *types.Response, fault *types.Fault) {
	fields := []zap.Field{
		zap.String("correlation_id", req.CorrelationID),
		zap.String("kind", kind),
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.String("error", fault.Message),
	}
	if fault.Stack != "" {
		fields = append(fields, zap.String("stack", fault.Stack))
	}
	b.logger.Error("Recovered from fault", fields...)

	utils.WriteInternalError(resp)
	resp.Fault = fault
}

func (b *FaultBarrier) captureStack() string {
	buf := b.stackBufPool.Get().(*[]byte)
	defer b.stackBufPool.Put(buf)

	n := runtime.Stack(*buf, false)
	if n == len(*buf) {
		big := make([]byte, 65536)
		n = runtime.Stack(big, false)
		return string(big[:n])
	}

	return string((*buf)[:n])
}

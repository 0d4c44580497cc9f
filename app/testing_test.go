package app

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/saiset-co/sai-dispatch/logger"
	"github.com/saiset-co/sai-dispatch/types"
)

// newTestLogger returns a Logger backed by an in-memory observer so tests
// can assert on emitted entries.
func newTestLogger() (types.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logger.NewZapWrapper(zap.New(core)), logs
}

func newTestRequest(method, path string) *types.Request {
	return &types.Request{
		Method:        method,
		Path:          path,
		Headers:       map[string]string{},
		CorrelationID: "test-correlation",
	}
}

func forwardHandler(req *types.Request, resp *types.Response) types.ControlSignal {
	return types.Forward
}

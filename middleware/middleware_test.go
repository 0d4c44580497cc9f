package middleware

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/saiset-co/sai-dispatch/logger"
	"github.com/saiset-co/sai-dispatch/types"
)

func newTestLogger() (types.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logger.NewZapWrapper(zap.New(core)), logs
}

func newTestRequest(method, path string) *types.Request {
	return &types.Request{
		Method:  method,
		Path:    path,
		Headers: map[string]string{},
	}
}

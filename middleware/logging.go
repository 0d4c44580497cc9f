package middleware

import (
	"time"

	"go.uber.org/zap"

	"github.com/saiset-co/sai-dispatch/types"
	"github.com/saiset-co/sai-dispatch/utils"
)

// LoggingMiddleware logs the start of each request in its pre hook and the
// outcome in its post hook. The start time travels between the hooks on the
// request itself; the middleware value stays stateless and safe for
// concurrent dispatches.
type LoggingMiddleware struct {
	logger        types.Logger
	loggingConfig *LoggingConfig
}

type LoggingConfig struct {
	LogQuery bool `json:"log_query"`
	LogBody  bool `json:"log_body"`
}

func NewLoggingMiddleware(logger types.Logger, params map[string]interface{}) *LoggingMiddleware {
	var loggingConfig = &LoggingConfig{
		LogQuery: true,
		LogBody:  false,
	}

	if params != nil {
		err := utils.UnmarshalConfig(params, loggingConfig)
		if err != nil {
			logger.Error("Failed to unmarshal Logging middleware config", zap.Error(err))
		}
	}

	return &LoggingMiddleware{
		logger:        logger,
		loggingConfig: loggingConfig,
	}
}

func (l *LoggingMiddleware) Name() string { return "logging" }

func (l *LoggingMiddleware) PreRequest(req *types.Request, resp *types.Response) types.ControlSignal {
	fields := []zap.Field{
		zap.String("correlation_id", req.CorrelationID),
		zap.String("method", req.Method),
		zap.String("path", req.Path),
	}

	if l.loggingConfig.LogQuery && len(req.Query) > 0 {
		fields = append(fields, zap.Any("query", req.Query))
	}

	l.logger.Info("Request started", fields...)
	l.markStart(req)

	return types.Forward
}

func (l *LoggingMiddleware) PostRequest(req *types.Request, resp *types.Response) types.ControlSignal {
	fields := []zap.Field{
		zap.String("correlation_id", req.CorrelationID),
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
	}

	if start := l.startOf(req); !start.IsZero() {
		fields = append(fields, zap.Duration("duration", time.Since(start)))
	}

	if l.loggingConfig.LogBody && len(resp.Body) > 0 {
		body := resp.Body
		if len(body) > 1000 {
			fields = append(fields,
				zap.ByteString("response", body[:1000]),
				zap.Int("response_truncated_from", len(body)))
		} else {
			fields = append(fields, zap.ByteString("response", body))
		}
	}

	switch {
	case resp.StatusCode >= 500:
		l.logger.Error("Request completed", fields...)
	case resp.StatusCode >= 400:
		l.logger.Warn("Request completed", fields...)
	default:
		l.logger.Info("Request completed", fields...)
	}

	return types.Forward
}

const startedAtHeader = "X-Dispatch-Started-At"

func (l *LoggingMiddleware) markStart(req *types.Request) {
	if req.Headers == nil {
		req.Headers = make(map[string]string)
	}
	req.Headers[startedAtHeader] = time.Now().Format(time.RFC3339Nano)
}

func (l *LoggingMiddleware) startOf(req *types.Request) time.Time {
	start, err := time.Parse(time.RFC3339Nano, req.Header(startedAtHeader))
	if err != nil {
		return time.Time{}
	}
	return start
}

package middleware

import (
	"bytes"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"go.uber.org/zap"

	"github.com/saiset-co/sai-dispatch/types"
	"github.com/saiset-co/sai-dispatch/utils"
)

const (
	DefaultLevel     = 6
	DefaultThreshold = 1024
)

// CompressionMiddleware brotli-compresses response bodies in its post hook,
// after the handler and every later middleware have finished shaping the
// body. Responses below the threshold, without an accepting client, or of a
// non-compressible content type pass through untouched.
type CompressionMiddleware struct {
	logger            types.Logger
	compressionConfig *CompressionConfig
	writerPool        sync.Pool
}

type CompressionConfig struct {
	Level        int      `json:"level"`
	Threshold    int      `json:"threshold"`
	AllowedTypes []string `json:"allowed_types"`
}

func NewCompressionMiddleware(logger types.Logger, params map[string]interface{}) *CompressionMiddleware {
	var compressionConfig = &CompressionConfig{
		Level:     DefaultLevel,
		Threshold: DefaultThreshold,
		AllowedTypes: []string{
			"application/json",
			"text/html",
			"text/plain",
			"text/css",
			"text/javascript",
			"image/svg+xml",
		},
	}

	if params != nil {
		err := utils.UnmarshalConfig(params, compressionConfig)
		if err != nil {
			logger.Error("Failed to unmarshal Compression middleware config", zap.Error(err))
		}
	}

	m := &CompressionMiddleware{
		logger:            logger,
		compressionConfig: compressionConfig,
	}

	m.writerPool = sync.Pool{
		New: func() interface{} {
			return brotli.NewWriterLevel(nil, compressionConfig.Level)
		},
	}

	return m
}

func (c *CompressionMiddleware) Name() string { return "compression" }

func (c *CompressionMiddleware) PreRequest(req *types.Request, resp *types.Response) types.ControlSignal {
	return types.Forward
}

func (c *CompressionMiddleware) PostRequest(req *types.Request, resp *types.Response) types.ControlSignal {
	if len(resp.Body) < c.compressionConfig.Threshold {
		return types.Forward
	}

	if !strings.Contains(req.Header("Accept-Encoding"), "br") {
		return types.Forward
	}

	if !c.typeAllowed(resp.ContentType) {
		return types.Forward
	}

	compressed, err := c.compress(resp.Body)
	if err != nil {
		c.logger.Warn("Compression failed",
			zap.String("correlation_id", req.CorrelationID),
			zap.Error(err))
		return types.Forward
	}

	if len(compressed) >= len(resp.Body) {
		return types.Forward
	}

	resp.Body = compressed
	resp.SetHeader("Content-Encoding", "br")
	resp.SetHeader("Vary", "Accept-Encoding")

	return types.Forward
}

func (c *CompressionMiddleware) typeAllowed(contentType string) bool {
	if contentType == "" {
		return false
	}
	for _, allowed := range c.compressionConfig.AllowedTypes {
		if strings.HasPrefix(contentType, allowed) {
			return true
		}
	}
	return false
}

func (c *CompressionMiddleware) compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w := c.writerPool.Get().(*brotli.Writer)
	defer c.writerPool.Put(w)

	w.Reset(&buf)

	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

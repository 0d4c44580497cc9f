package middleware

import (
	"go.uber.org/zap"

	"github.com/google/uuid"

	"github.com/saiset-co/sai-dispatch/types"
	"github.com/saiset-co/sai-dispatch/utils"
)

// MetadataMiddleware makes sure every request carries a correlation id and
// echoes it back on the response, so all log records produced while
// processing a request can be grouped.
type MetadataMiddleware struct {
	logger         types.Logger
	metadataConfig *MetadataConfig
}

type MetadataConfig struct {
	GenerateCorrelationID bool   `json:"generate_correlation_id"`
	Header                string `json:"header"`
}

func NewMetadataMiddleware(logger types.Logger, params map[string]interface{}) *MetadataMiddleware {
	var metadataConfig = &MetadataConfig{
		GenerateCorrelationID: true,
		Header:                "X-Request-ID",
	}

	if params != nil {
		err := utils.UnmarshalConfig(params, metadataConfig)
		if err != nil {
			logger.Error("Failed to unmarshal Metadata middleware config", zap.Error(err))
		}
	}

	return &MetadataMiddleware{
		logger:         logger,
		metadataConfig: metadataConfig,
	}
}

func (m *MetadataMiddleware) Name() string { return "metadata" }

func (m *MetadataMiddleware) PreRequest(req *types.Request, resp *types.Response) types.ControlSignal {
	if req.CorrelationID == "" {
		req.CorrelationID = req.Header(m.metadataConfig.Header)
	}

	if req.CorrelationID == "" && m.metadataConfig.GenerateCorrelationID {
		req.CorrelationID = uuid.NewString()
		m.logger.Debug("Correlation id generated",
			zap.String("correlation_id", req.CorrelationID))
	}

	return types.Forward
}

func (m *MetadataMiddleware) PostRequest(req *types.Request, resp *types.Response) types.ControlSignal {
	if req.CorrelationID != "" {
		resp.SetHeader(m.metadataConfig.Header, req.CorrelationID)
	}
	return types.Forward
}

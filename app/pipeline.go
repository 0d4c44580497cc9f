package app

import (
	"go.uber.org/zap"

	"github.com/saiset-co/sai-dispatch/types"
	"github.com/saiset-co/sai-dispatch/utils"
)

// RequestPipeline walks one request through PreMiddleware -> Dispatch ->
// PostMiddleware -> Done. No loops, no retries, no cross-request state:
// each call gets a fresh Response and one linear pass.
type RequestPipeline struct {
	logger  types.Logger
	table   *RouteTable
	chain   *MiddlewareChain
	barrier *FaultBarrier
}

func NewRequestPipeline(logger types.Logger, table *RouteTable, chain *MiddlewareChain, barrier *FaultBarrier) *RequestPipeline {
	return &RequestPipeline{
		logger:  logger,
		table:   table,
		chain:   chain,
		barrier: barrier,
	}
}

// Process never returns an error and never panics outward; every failure is
// encoded into the returned Response.
func (p *RequestPipeline) Process(req *types.Request) *types.Response {
	resp := types.NewResponse()

	signal, executed := p.chain.RunPre(req, resp, p.chain.IDs())

	if signal == types.Forward {
		p.dispatch(req, resp)
	}

	// Post phase runs over the executed subset whether pre ended in
	// Forward or Interrupt.
	p.chain.RunPost(req, resp, executed)

	return resp
}

func (p *RequestPipeline) dispatch(req *types.Request, resp *types.Response) {
	route, err := p.table.Lookup(req.Path, req.Method)
	if err != nil {
		// Both no-match and method-mismatch collapse to 404; the
		// distinction stays observable in logs only.
		p.logger.Debug("No route matched",
			zap.String("correlation_id", req.CorrelationID),
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.String("reason", err.Error()))
		utils.WriteNotFound(resp)
		return
	}

	// The handler outcome does not branch: faults become a 500 inside the
	// barrier, and the pipeline proceeds to post-middleware either way.
	p.barrier.Execute(faultKindHandler, route.Handler, req, resp)
}

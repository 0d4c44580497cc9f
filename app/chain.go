package app

import (
	"go.uber.org/zap"

	"github.com/saiset-co/sai-dispatch/types"
)

// MiddlewareChain is the ordered list of registered middleware. Identity is
// the 1-based registration position, stable for the life of the
// Application. Like the route table, the chain is mutated only during
// setup.
type MiddlewareChain struct {
	logger  types.Logger
	barrier *FaultBarrier
	entries []types.Middleware
}

func NewMiddlewareChain(logger types.Logger, barrier *FaultBarrier) *MiddlewareChain {
	return &MiddlewareChain{
		logger:  logger,
		barrier: barrier,
	}
}

// Append adds m to the end of the chain and returns the new count, which is
// also the id of the appended middleware.
func (c *MiddlewareChain) Append(m types.Middleware) int {
	c.entries = append(c.entries, m)
	c.logger.Debug("Middleware appended",
		zap.String("name", m.Name()),
		zap.Int("id", len(c.entries)))
	return len(c.entries)
}

func (c *MiddlewareChain) Len() int {
	return len(c.entries)
}

// IDs returns all middleware ids in registration order.
func (c *MiddlewareChain) IDs() []int {
	ids := make([]int, len(c.entries))
	for i := range c.entries {
		ids[i] = i + 1
	}
	return ids
}

// RunPre executes the pre hooks for ids in registration order, each through
// the fault barrier. The first Interrupt, explicit or fault-derived, stops
// iteration; later middleware never run and are excluded from the matching
// post phase. Returns the final signal and the ids that actually executed.
func (c *MiddlewareChain) RunPre(req *types.Request, resp *types.Response, ids []int) (types.ControlSignal, []int) {
	signal := types.Forward
	executed := make([]int, 0, len(ids))

	for _, id := range ids {
		m := c.entries[id-1]
		executed = append(executed, id)

		signal = c.barrier.Execute(faultKindMiddleware, m.PreRequest, req, resp)
		if signal == types.Interrupt {
			break
		}
	}

	return signal, executed
}

// RunPost executes the post hooks for exactly the ids recorded by the pre
// phase, in reverse order. It always runs them all: every middleware whose
// pre hook ran receives its matching post call, even when the pre phase was
// interrupted or the handler faulted. Signals returned by post hooks do not
// shorten the walk; a faulting post hook still yields a 500 response via
// the barrier.
func (c *MiddlewareChain) RunPost(req *types.Request, resp *types.Response, executed []int) {
	for i := len(executed) - 1; i >= 0; i-- {
		m := c.entries[executed[i]-1]
		c.barrier.Execute(faultKindMiddleware, m.PostRequest, req, resp)
	}
}

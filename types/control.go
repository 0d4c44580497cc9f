package types

// ControlSignal is the value every handler and middleware hook must return.
// The zero value is deliberately invalid so that a forgotten return is
// caught at the fault barrier instead of being treated as success.
type ControlSignal uint8

const (
	// Forward means the stage succeeded and the pipeline continues.
	Forward ControlSignal = iota + 1
	// Interrupt halts further middleware/handler execution; the current
	// response is final.
	Interrupt
)

func (s ControlSignal) Valid() bool {
	return s == Forward || s == Interrupt
}

func (s ControlSignal) String() string {
	switch s {
	case Forward:
		return "forward"
	case Interrupt:
		return "interrupt"
	default:
		return "invalid"
	}
}

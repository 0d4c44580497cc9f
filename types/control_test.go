package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestControlSignalValid(t *testing.T) {
	t.Parallel()

	assert.True(t, Forward.Valid())
	assert.True(t, Interrupt.Valid())
	assert.False(t, ControlSignal(0).Valid())
	assert.False(t, ControlSignal(3).Valid())
}

func TestControlSignalZeroValueInvalid(t *testing.T) {
	t.Parallel()

	// A handler that forgets to return explicitly yields the zero value,
	// which must never pass as success.
	var s ControlSignal
	assert.False(t, s.Valid())
	assert.Equal(t, "invalid", s.String())
}

func TestControlSignalString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "forward", Forward.String())
	assert.Equal(t, "interrupt", Interrupt.String())
}

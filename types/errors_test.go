package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationSentinelsWrapErrValidation(t *testing.T) {
	t.Parallel()

	for _, err := range []error{ErrPathInvalid, ErrMethodInvalid, ErrHandlerIsNil} {
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := Errorf(ErrPathInvalid, "path: %q", "no-slash")
	require.ErrorIs(t, err, ErrPathInvalid)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), `"no-slash"`)
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	assert.Nil(t, WrapError(nil, "context"))

	base := errors.New("base")
	wrapped := WrapError(base, "while doing a thing")
	require.ErrorIs(t, wrapped, base)
	assert.Equal(t, "while doing a thing: base", wrapped.Error())
}

func TestMethodSupported(t *testing.T) {
	t.Parallel()

	for _, m := range []string{"GET", "HEAD", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"} {
		assert.True(t, MethodSupported(m), m)
	}
	assert.False(t, MethodSupported("TRACE"))
	assert.False(t, MethodSupported("get"))
	assert.False(t, MethodSupported(""))
}

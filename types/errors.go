package types

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrPathInvalid      = fmt.Errorf("%w: path must start with /", ErrValidation)
	ErrMethodInvalid    = fmt.Errorf("%w: method not supported", ErrValidation)
	ErrHandlerIsNil     = fmt.Errorf("%w: handler is nil", ErrValidation)
	ErrRouteNotFound    = errors.New("route not found")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

var (
	ErrHandlerFault    = errors.New("handler fault")
	ErrMiddlewareFault = errors.New("middleware fault")
	ErrInvalidSignal   = errors.New("invalid control signal returned")
)

var (
	ErrConfigNotFound       = errors.New("config not found")
	ErrConfigInvalidPath    = errors.New("config invalid path")
	ErrConfigParseFailed    = errors.New("config parse failed")
	ErrConfigValidateFailed = errors.New("config validate failed")
)

var (
	ErrServerNotRunning     = errors.New("server not running")
	ErrServerAlreadyRunning = errors.New("server already running")
	ErrStaticRootInvalid    = errors.New("static root invalid")
)

var (
	ErrLogFileIsEmpty      = errors.New("log file is empty")
	ErrLogFileWrongFormat  = errors.New("log file wrong format")
	ErrLoggerConfigInvalid = errors.New("logger config invalid")
)

var (
	ErrMetricsIsDisabled = errors.New("metrics manager is disabled")
	ErrDocsIsDisabled    = errors.New("documentation manager is disabled")
)

func Errorf(baseErr error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", baseErr, fmt.Sprintf(format, args...))
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

func NewErrorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

func IsError(err, target error) bool {
	return errors.Is(err, target)
}

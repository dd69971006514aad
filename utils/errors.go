package utils

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// The fault classes every drivecore component reports. Use errors.Is to classify a returned error.
var (
	// ErrConfiguration is an unknown drive type or a shape the chosen strategy cannot run on.
	// It is fatal to initialization.
	ErrConfiguration = errors.New("configuration error")
	// ErrSensorUnavailable is a failed or malformed input or orientation read. It is recoverable
	// per tick.
	ErrSensorUnavailable = errors.New("sensor unavailable")
	// ErrActuatorFault is a command set the sink rejected. It is recoverable per tick.
	ErrActuatorFault = errors.New("actuator fault")
)

type classifiedError struct {
	class error
	cause error
}

func (e *classifiedError) Error() string {
	return e.class.Error() + ": " + e.cause.Error()
}

func (e *classifiedError) Is(target error) bool {
	return target == e.class
}

func (e *classifiedError) Unwrap() error {
	return e.cause
}

func classify(class error, format string, args ...interface{}) error {
	return &classifiedError{class: class, cause: pkgerrors.Errorf(format, args...)}
}

func classifyWrap(class, cause error, format string, args ...interface{}) error {
	if cause == nil {
		return classify(class, format, args...)
	}
	return &classifiedError{class: class, cause: pkgerrors.Wrapf(cause, format, args...)}
}

// NewConfigurationError returns an ErrConfiguration with a formatted cause.
func NewConfigurationError(format string, args ...interface{}) error {
	return classify(ErrConfiguration, format, args...)
}

// WrapConfigurationError classifies cause as ErrConfiguration.
func WrapConfigurationError(cause error, format string, args ...interface{}) error {
	return classifyWrap(ErrConfiguration, cause, format, args...)
}

// NewSensorUnavailableError wraps a read failure as ErrSensorUnavailable. cause may be nil.
func NewSensorUnavailableError(cause error, format string, args ...interface{}) error {
	return classifyWrap(ErrSensorUnavailable, cause, format, args...)
}

// NewActuatorFaultError wraps a sink failure as ErrActuatorFault. cause may be nil.
func NewActuatorFaultError(cause error, format string, args ...interface{}) error {
	return classifyWrap(ErrActuatorFault, cause, format, args...)
}

// IsConfigurationError reports whether err (or anything it wraps or combines) is ErrConfiguration.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsSensorUnavailable reports whether err (or anything it wraps or combines) is ErrSensorUnavailable.
func IsSensorUnavailable(err error) bool {
	return errors.Is(err, ErrSensorUnavailable)
}

// IsActuatorFault reports whether err (or anything it wraps or combines) is ErrActuatorFault.
func IsActuatorFault(err error) bool {
	return errors.Is(err, ErrActuatorFault)
}

package fx

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a Factory matches exactly one of
// these with errors.Is.
var (
	// ErrInvalidArgument is returned when a required name is empty or a
	// required collaborator is missing.
	ErrInvalidArgument = errors.New("fx: invalid argument")

	// ErrIO is returned when a shader file cannot be read completely.
	ErrIO = errors.New("fx: io error")

	// ErrLoader is returned when the texture loader fails to create a texture.
	ErrLoader = errors.New("fx: loader error")

	// ErrDevice is returned when the device rejects object creation.
	ErrDevice = errors.New("fx: device error")

	// ErrClosed is returned by a Factory that was closed or moved from.
	ErrClosed = errors.New("fx: factory closed")
)

// ResourceError describes a failed resource operation.
type ResourceError struct {
	// Op is the operation that failed, e.g. "create texture".
	Op string

	// Name of the resource, usually a file path.
	Name string

	// Kind is one of the Err* sentinels of this package.
	Kind error

	// Err is the underlying cause, may be nil.
	Err error
}

func (e *ResourceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %q: %s", e.Op, e.Name, e.Kind)
	}

	return fmt.Sprintf("%s %q: %s: %s", e.Op, e.Name, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *ResourceError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

func newResourceError(op, name string, kind, err error) error {
	return &ResourceError{Op: op, Name: name, Kind: kind, Err: err}
}

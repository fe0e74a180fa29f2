// Package errors defines the error taxonomy shared by every olsfit package.
//
// Typed errors (NotFittedError, DimensionError, ValueError, ModelError,
// ValidationError) carry the failing operation so callers can inspect them
// with errors.As, and sentinel errors classify the underlying cause for
// errors.Is. Stack traces and wrapping come from github.com/cockroachdb/errors;
// the helpers below re-export the pieces the rest of the module uses so that
// callers only import one errors package.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

const prefix = "olsfit"

// Sentinel errors.
var (
	ErrNotImplemented = errors.New("not implemented")
	ErrEmptyData      = errors.New("empty data")
	ErrSingularMatrix = errors.New("singular matrix")
	ErrColumnNotFound = errors.New("column not found")
	ErrMalformedData  = errors.New("malformed data")
)

// NotFittedError is returned when a model is used before Fit.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("%s: %s: this %s instance is not fitted yet, call Fit before %s",
		prefix, e.ModelName, e.ModelName, e.Method)
}

// NewNotFittedError creates a NotFittedError for modelName.method.
func NewNotFittedError(modelName, method string) error {
	return &NotFittedError{ModelName: modelName, Method: method}
}

// DimensionError reports a shape mismatch along Axis (0 = rows, 1 = columns).
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

func (e *DimensionError) Error() string {
	axis := "rows"
	if e.Axis == 1 {
		axis = "columns"
	}
	return fmt.Sprintf("%s: %s: dimension mismatch in %s: expected %d, got %d",
		prefix, e.Op, axis, e.Expected, e.Got)
}

// NewDimensionError creates a DimensionError.
func NewDimensionError(op string, expected, got, axis int) error {
	return &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
}

// ValueError reports an invalid argument value. Err is optional and is
// exposed through Unwrap so sentinel checks keep working.
type ValueError struct {
	Op      string
	Message string
	Err     error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: %s: %s", prefix, e.Op, e.Message)
}

func (e *ValueError) Unwrap() error { return e.Err }

// NewValueError creates a ValueError.
func NewValueError(op, message string) error {
	return &ValueError{Op: op, Message: message}
}

// NewValueErrorWrap creates a ValueError classified by cause.
func NewValueErrorWrap(op, message string, cause error) error {
	return &ValueError{Op: op, Message: message, Err: cause}
}

// ModelError reports a failure inside a model operation.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s: %s", prefix, e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s: %v", prefix, e.Op, e.Kind, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// NewModelError creates a ModelError.
func NewModelError(op, kind string, err error) error {
	return &ModelError{Op: op, Kind: kind, Err: err}
}

// ValidationError reports an invalid configuration parameter.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid %s (%v): %s", prefix, e.ParamName, e.Value, e.Reason)
}

// NewValidationError creates a ValidationError.
func NewValidationError(paramName, reason string, value interface{}) error {
	return &ValidationError{ParamName: paramName, Reason: reason, Value: value}
}

// Recover converts a panic in the calling function into an error stored in
// *err. gonum signals shape problems by panicking, so every exported model
// method defers Recover.
//
//	func (lr *LinearRegression) Fit(X, y mat.Matrix) (err error) {
//		defer errors.Recover(&err, "LinearRegression.Fit")
//		...
//	}
func Recover(err *error, op string) {
	if r := recover(); r != nil {
		if e, ok := r.(error); ok {
			*err = errors.Wrapf(e, "%s: %s: recovered panic", prefix, op)
			return
		}
		*err = errors.Newf("%s: %s: recovered panic: %v", prefix, op, r)
	}
}

// New creates an error with a stack trace.
func New(msg string) error { return errors.New(msg) }

// Newf creates a formatted error with a stack trace.
func Newf(format string, args ...interface{}) error { return errors.Newf(format, args...) }

// Wrap annotates err with msg. It returns nil if err is nil.
func Wrap(err error, msg string) error { return errors.Wrap(err, msg) }

// Wrapf annotates err with a formatted message. It returns nil if err is nil.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// Mark makes err match reference under Is while keeping err's message and
// chain.
func Mark(err, reference error) error { return errors.Mark(err, reference) }

// WithStack attaches a stack trace to err.
func WithStack(err error) error { return errors.WithStack(err) }

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool { return errors.As(err, target) }

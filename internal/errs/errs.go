package errs

import "errors"

var (
	ErrReturnNotFound     = errors.New("return not found")
	ErrStoreNotConfigured = errors.New("data store not configured")
)

// ValidationError is returned for input rejected before any database access.
// Msg is safe to show to the caller.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Invalid(msg string) error { return &ValidationError{Msg: msg} }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

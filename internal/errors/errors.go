package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// User-facing error kinds. Services wrap them with fmt.Errorf("%w: ...") to add detail.
var (
	InvalidInput    = errors.New("invalid input")
	NotFound        = errors.New("not found")
	NoActiveSession = errors.New("no active edit session")
)

// Is reports whether err is an instance of T for custom error types.
func Is[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

// PersistWarning reports that a mutation was applied in memory but could not be written
// to storage. It is non-fatal: the returned result of the operation is still valid.
type PersistWarning struct {
	Key string
	Err error
}

func (e *PersistWarning) Error() string {
	return fmt.Sprintf("changes kept in memory but not saved (%s): %v", e.Key, e.Err)
}

func (e *PersistWarning) Unwrap() error {
	return e.Err
}

// IsWarning reports whether err only carries a persistence warning.
func IsWarning(err error) bool {
	return Is[*PersistWarning](err)
}

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// StatusCode maps an error to the HTTP status a handler should answer with.
func StatusCode(err error) int {
	var withCode *ErrorWithStatusCode
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &withCode):
		return withCode.StatusCode
	case errors.Is(err, InvalidInput), errors.Is(err, NoActiveSession):
		return http.StatusBadRequest
	case errors.Is(err, NotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

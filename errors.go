package recommender

import (
	"errors"
	"fmt"
)

// ErrorKind classifies facade errors for the HTTP boundary.
type ErrorKind string

const (
	// KindValidation marks caller mistakes such as a blank specimen name.
	KindValidation ErrorKind = "validation"
	// KindUpstream marks failures of the graph store, vector store,
	// embedding or generation backends, including unparseable output.
	KindUpstream ErrorKind = "upstream"
)

var (
	// ErrMissingSpecimenName is returned for a blank specimen name.
	ErrMissingSpecimenName = errors.New("specimen name is required")
	// ErrMissingQuery is returned for a blank semantic query.
	ErrMissingQuery = errors.New("query is required")
)

// Error is returned by every facade operation.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationError(op string, err error) error {
	return &Error{Kind: KindValidation, Op: op, Err: err}
}

func upstreamError(op string, err error) error {
	return &Error{Kind: KindUpstream, Op: op, Err: err}
}

// KindOf reports the kind of err. Errors not produced by this package are
// treated as upstream failures.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return err != nil && KindOf(err) == KindValidation
}

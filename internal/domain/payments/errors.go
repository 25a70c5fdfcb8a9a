package payments

import (
	"errors"
	"fmt"
)

// Kind classifies payment failures so handlers can map them to status codes
// without string matching.
type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindUpstreamAuthError   Kind = "upstream_auth_error"
	KindUpstreamRejected    Kind = "upstream_rejected"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindAlreadyResolved     Kind = "already_resolved"
	KindMalformedCallback   Kind = "malformed_callback"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind of err, or "" when err is not a payments error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

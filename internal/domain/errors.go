package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrAuth       = errors.New("unauthenticated")
	ErrUpstream   = errors.New("upstream failure")
)

// Error is the structured outcome returned by services: a sentinel kind plus
// a message that is safe to show to the caller. Cause, when set, is the
// collaborator failure behind an ErrUpstream and is only ever logged.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// NewError builds an Error of the given kind.
func NewError(kind error, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// Upstream wraps a collaborator failure. msg is what the caller sees.
func Upstream(msg string, cause error) error {
	return &Error{Kind: ErrUpstream, Message: msg, Cause: cause}
}

// KindOf returns the sentinel kind carried by err, or ErrUpstream for
// anything unclassified. A structured Error decides by its own Kind, so an
// upstream failure is never reclassified by what its Cause wraps.
func KindOf(err error) error {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	for _, k := range []error{ErrValidation, ErrConflict, ErrNotFound, ErrAuth, ErrUpstream} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrUpstream
}

package errs

import (
	"errors"
	"strings"
)

// Kind classifies a failure returned at the service boundary.
type Kind int

const (
	// KindUnknown is reported for errors that are not *Error.
	KindUnknown Kind = iota
	// KindTransport covers connectivity, timeout, non-envelope and decoding failures.
	KindTransport
	// KindRejected is a server response with success=false.
	KindRejected
	// KindEmptyPayload is a server response with success=true but no data.
	KindEmptyPayload
	// KindValidation is a client-side rejection before any network call.
	KindValidation
	// KindNoSession means the operation needs a signed-in user.
	KindNoSession
	// KindStorage is a Local Store failure.
	KindStorage
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRejected:
		return "rejected"
	case KindEmptyPayload:
		return "empty_payload"
	case KindValidation:
		return "validation"
	case KindNoSession:
		return "no_session"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Fallback messages.
const (
	MsgNetwork   = "Network error"
	MsgNoData    = "No data returned"
	MsgNoSession = "No active session"
)

// Error is a failure with a display message and a machine-readable kind.
type Error struct {
	Kind    Kind
	Message string
	Err     error // cause, may be nil
}

// Error returns the display message.
func (e *Error) Error() string { return e.Message }

// Unwrap returns the cause.
func (e *Error) Unwrap() error { return e.Err }

// Transport wraps a transport fault; the message is the cause text or "Network error".
func Transport(err error) *Error {
	msg := ""
	if err != nil {
		msg = strings.TrimSpace(err.Error())
	}
	if msg == "" {
		msg = MsgNetwork
	}
	return &Error{Kind: KindTransport, Message: msg, Err: err}
}

// Rejected builds a server rejection; the first non-empty of message, detail, fallback wins.
func Rejected(message, detail, fallback string) *Error {
	msg := message
	if msg == "" {
		msg = detail
	}
	if msg == "" {
		msg = fallback
	}
	return &Error{Kind: KindRejected, Message: msg}
}

// EmptyPayload is returned when success=true carries no data.
func EmptyPayload() *Error {
	return &Error{Kind: KindEmptyPayload, Message: MsgNoData}
}

// Validation builds a client-side validation error.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NoSession is returned by operations that need a signed-in user.
func NoSession() *Error {
	return &Error{Kind: KindNoSession, Message: MsgNoSession, Err: ErrNoSession}
}

// Storage wraps a Local Store failure.
func Storage(err error) *Error {
	msg := "Local storage error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

// KindOf reports the kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

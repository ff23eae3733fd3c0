package syslog

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the failures surfaced by the package.
type ErrorKind int

const (
	// KindInvalidIdentifier reports an SD-ID or PARAM-NAME rule violation.
	KindInvalidIdentifier ErrorKind = iota + 1

	// KindUnknownEnumValue reports a bad facility or severity code or label.
	KindUnknownEnumValue

	// KindConnectFailure reports a failure to dial the syslog server.
	KindConnectFailure

	// KindSendFailure reports a failure to write or flush a message.
	KindSendFailure

	// KindCacheRefreshFailure reports a TTLCache factory failure.
	KindCacheRefreshFailure

	// KindClosed reports use of a sender after Close.
	KindClosed
)

var kindNames = map[ErrorKind]string{
	KindInvalidIdentifier:   "invalid identifier",
	KindUnknownEnumValue:    "unknown enum value",
	KindConnectFailure:      "connect failure",
	KindSendFailure:         "send failure",
	KindCacheRefreshFailure: "cache refresh failure",
	KindClosed:              "sender closed",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Sentinels for use with errors.Is. An *Error matches the sentinel of its
// Kind.
var (
	ErrInvalidIdentifier   = &Error{Kind: KindInvalidIdentifier}
	ErrUnknownEnumValue    = &Error{Kind: KindUnknownEnumValue}
	ErrConnectFailure      = &Error{Kind: KindConnectFailure, Retryable: true}
	ErrSendFailure         = &Error{Kind: KindSendFailure, Retryable: true}
	ErrCacheRefreshFailure = &Error{Kind: KindCacheRefreshFailure}
	ErrClosed              = &Error{Kind: KindClosed}
)

// Error is the single tagged error type returned by the package. Retryable
// tells the senders whether another attempt may succeed; validation errors
// are never retryable.
type Error struct {
	Kind      ErrorKind
	Op        string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so the package sentinels can be
// used with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// IsRetryable reports whether err, or any error it wraps, is an *Error
// flagged as retryable.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

func invalidIdentifier(op, format string, args ...any) error {
	return &Error{Kind: KindInvalidIdentifier, Op: op, Err: fmt.Errorf(format, args...)}
}

func unknownEnumValue(op, format string, args ...any) error {
	return &Error{Kind: KindUnknownEnumValue, Op: op, Err: fmt.Errorf(format, args...)}
}

package duckdb

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the failures raised at the native boundary.
type ErrorKind int

const (
	ErrorKindCreation ErrorKind = iota + 1
	ErrorKindAppend
	ErrorKindRowCompletion
	ErrorKindFlush
	ErrorKindBind
	ErrorKindExecution
	ErrorKindUnsupportedType
	ErrorKindBigNumberUnsupported
	ErrorKindInvalidTime
	ErrorKindPlatformUnsupported
	ErrorKindLibraryMissing
	ErrorKindVersionMismatch
	ErrorKindConnection
	ErrorKindClosed
)

var errorKindNames = map[ErrorKind]string{
	ErrorKindCreation:             "creation failure",
	ErrorKindAppend:               "append failure",
	ErrorKindRowCompletion:        "row completion failure",
	ErrorKindFlush:                "flush failure",
	ErrorKindBind:                 "bind failure",
	ErrorKindExecution:            "execution failure",
	ErrorKindUnsupportedType:      "unsupported type",
	ErrorKindBigNumberUnsupported: "big number unsupported",
	ErrorKindInvalidTime:          "invalid time",
	ErrorKindPlatformUnsupported:  "platform unsupported",
	ErrorKindLibraryMissing:       "library missing",
	ErrorKindVersionMismatch:      "version mismatch",
	ErrorKindConnection:           "connection failure",
	ErrorKindClosed:               "use of closed handle",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Sentinels usable with errors.Is. Every *Error matches the sentinel of its kind.
var (
	ErrCreation             = &Error{Kind: ErrorKindCreation}
	ErrAppend               = &Error{Kind: ErrorKindAppend}
	ErrRowCompletion        = &Error{Kind: ErrorKindRowCompletion}
	ErrFlush                = &Error{Kind: ErrorKindFlush}
	ErrBind                 = &Error{Kind: ErrorKindBind}
	ErrExecution            = &Error{Kind: ErrorKindExecution}
	ErrUnsupportedType      = &Error{Kind: ErrorKindUnsupportedType}
	ErrBigNumberUnsupported = &Error{Kind: ErrorKindBigNumberUnsupported}
	ErrInvalidTime          = &Error{Kind: ErrorKindInvalidTime}
	ErrPlatformUnsupported  = &Error{Kind: ErrorKindPlatformUnsupported}
	ErrLibraryMissing       = &Error{Kind: ErrorKindLibraryMissing}
	ErrVersionMismatch      = &Error{Kind: ErrorKindVersionMismatch}
	ErrConnection           = &Error{Kind: ErrorKindConnection}
	ErrClosed               = &Error{Kind: ErrorKindClosed}
)

// Error is returned by every operation that crosses the native boundary.
// Native holds the engine's own diagnostic text, if it reported one.
type Error struct {
	Kind   ErrorKind
	Msg    string
	Native string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	s := fmt.Sprintf("%s: %s", errPrefix, msg)
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	if e.Native != "" {
		s += ": " + e.Native
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports kind equality, so that errors.Is(err, ErrFlush) holds for any flush failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

// IsKind reports whether any error in err's chain is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func newErrorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// nativeError attaches the engine's text. An empty text falls back to the generic message.
func nativeError(kind ErrorKind, msg string, native string) *Error {
	return &Error{Kind: kind, Msg: msg, Native: native}
}

func wrapError(kind ErrorKind, msg string, err error) *Error {
	if err == nil {
		return newError(kind, msg)
	}
	var e *Error
	if errors.As(err, &e) && e.Kind == kind && msg == "" {
		return e
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func getError(errDriver error, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", errPrefix, errDriver)
	}
	return fmt.Errorf("%s: %w: %s", errPrefix, errDriver, err.Error())
}

func castError(actual string, expected string) error {
	return newErrorf(ErrorKindUnsupportedType, "%s: cannot convert %s to %s", castErrMsg, actual, expected)
}

func columnError(err error, colIdx int) error {
	return fmt.Errorf("%w: %s: %d", err, columnErrMsg, colIdx)
}

func unsupportedTypeError(name string) error {
	return newErrorf(ErrorKindUnsupportedType, "%s: %s", unsupportedTypeErrMsg, name)
}

func bigNumberError(what string) error {
	return newErrorf(ErrorKindBigNumberUnsupported, "%s exceeds the int64 range and no big integer math is configured", what)
}

const (
	errPrefix             = "duckdb"
	castErrMsg            = "cast error"
	columnErrMsg          = "column index"
	unsupportedTypeErrMsg = "unsupported data type"
	genericExecErrMsg     = "execution failed"
)

var (
	errParseDSN  = errors.New("could not parse DSN for database")
	errOpen      = errors.New("could not open database")
	errSetConfig = errors.New("could not set invalid or local option for global database config")
	errConnect   = errors.New("could not connect to database")

	errCreateConfig = errors.New("could not create config for database")
	errClosedConn   = errors.New("connection is closed")

	errAppenderClosed        = newError(ErrorKindClosed, "appender is closed")
	errAppenderInvalidCon    = newError(ErrorKindCreation, "could not create appender: not a marshalling driver connection")
	errAppenderTooManyValues = newError(ErrorKindAppend, "row already holds a value for every column")

	errStmtClosed    = newError(ErrorKindClosed, "prepared statement is closed")
	errPendingClosed = newError(ErrorKindClosed, "pending result is closed")
	errResultClosed  = newError(ErrorKindClosed, "result set is closed")
)

package duckdb

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testErrorInternal(t *testing.T, actual error, contains []string) {
	require.Error(t, actual)
	for _, msg := range contains {
		require.Contains(t, actual.Error(), msg)
	}

	levels := strings.Count(actual.Error(), errPrefix+":")
	require.Equal(t, 1, levels)
}

func testError(t *testing.T, actual error, contains ...string) {
	testErrorInternal(t, actual, contains)
}

func TestErrorKinds(t *testing.T) {
	err := newErrorf(ErrorKindFlush, "could not flush %d rows", 3)
	require.ErrorIs(t, err, ErrFlush)
	require.NotErrorIs(t, err, ErrAppend)
	require.True(t, IsKind(err, ErrorKindFlush))
	require.Equal(t, "duckdb: could not flush 3 rows", err.Error())

	wrapped := columnError(err, 2)
	require.ErrorIs(t, wrapped, ErrFlush)
	require.True(t, IsKind(wrapped, ErrorKindFlush))
	testError(t, wrapped, "could not flush", columnErrMsg)

	require.False(t, IsKind(errors.New("plain"), ErrorKindFlush))
	require.Equal(t, "ErrorKind(99)", ErrorKind(99).String())
}

func TestErrorText(t *testing.T) {
	t.Run("kind name fallback", func(t *testing.T) {
		require.Equal(t, "duckdb: use of closed handle", (&Error{Kind: ErrorKindClosed}).Error())
	})

	t.Run("native text", func(t *testing.T) {
		err := nativeError(ErrorKindExecution, genericExecErrMsg, "Catalog Error: Table with name x does not exist!")
		testError(t, err, genericExecErrMsg, "Catalog Error")
		require.ErrorIs(t, err, ErrExecution)
	})

	t.Run("wrapped cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := wrapError(ErrorKindBind, "could not bind", cause)
		require.ErrorIs(t, err, cause)
		require.Equal(t, "duckdb: could not bind: boom", err.Error())
	})

	t.Run("wrap keeps same kind", func(t *testing.T) {
		inner := newError(ErrorKindAppend, "inner")
		require.Same(t, inner, wrapError(ErrorKindAppend, "", inner))
		require.NotSame(t, inner, wrapError(ErrorKindFlush, "", inner))
	})

	t.Run("message match", func(t *testing.T) {
		require.ErrorIs(t, errAppenderClosed, &Error{Kind: ErrorKindClosed, Msg: "appender is closed"})
		require.NotErrorIs(t, errStmtClosed, errAppenderClosed)
	})

	t.Run("driver errors", func(t *testing.T) {
		err := getError(errConnect, errors.New("IO Error"))
		testError(t, err, errConnect.Error(), "IO Error")
		require.ErrorIs(t, err, errConnect)
	})

	t.Run("big numbers", func(t *testing.T) {
		testError(t, bigNumberError("HUGEINT value"), "HUGEINT value", "no big integer math")
		testError(t, unsupportedTypeError("INTERVAL[]"), unsupportedTypeErrMsg, "INTERVAL[]")
	})
}

package uerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSyntaxErrorUnwrapsToSentinel(t *testing.T) {
	err := &SyntaxError{Kind: MismatchedParen, Line: 1, Offset: 0}
	require.True(t, errors.Is(err, ErrMismatchedParen))
	require.Contains(t, err.Error(), "REGEX_MISMATCHED_PAREN")
}

func TestRuntimeErrorUnwraps(t *testing.T) {
	err := &RuntimeError{Kind: TimeOut}
	require.True(t, errors.Is(err, ErrTimeOut))
}

func TestStateErrorUnwraps(t *testing.T) {
	err := &StateError{Kind: InvalidState, Message: "no match yet"}
	require.True(t, errors.Is(err, ErrInvalidState))
	require.Contains(t, err.Error(), "no match yet")
}

func TestKindStringIsWireName(t *testing.T) {
	require.Equal(t, "REGEX_BAD_INTERVAL", BadInterval.String())
}

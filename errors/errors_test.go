package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			assert.Equal(t, test.expected, test.class.String())
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"no connection", ErrNoConnection, true},
		{"wrapped no connection", fmt.Errorf("dial: %w", ErrNoConnection), true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"invalid data", ErrInvalidData, false},
		{"timeout in message", fmt.Errorf("read tcp: i/o timeout"), true},
		{"classified transient", &ClassifiedError{Class: ErrorTransient, Err: fmt.Errorf("x")}, true},
		{"classified fatal", &ClassifiedError{Class: ErrorFatal, Err: fmt.Errorf("x")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, IsTransient(test.err))
		})
	}
}

func TestIsFatalAndInvalid(t *testing.T) {
	assert.True(t, IsFatal(ErrInvalidConfig))
	assert.True(t, IsFatal(WrapFatal(errors.New("boom"), "cache", "New", "load top property")))
	assert.False(t, IsFatal(ErrInvalidData))
	assert.False(t, IsFatal(nil))

	assert.True(t, IsInvalid(ErrParsingFailed))
	assert.True(t, IsInvalid(WrapInvalid(errors.New("empty"), "fetcher", "GetClassEntries", "validate uris")))
	assert.False(t, IsInvalid(ErrNoConnection))
	assert.True(t, IsFatal(ErrMissingConfig))
}

func TestOuterClassificationWins(t *testing.T) {
	inner := WrapTransient(errors.New("refused"), "httpclient", "ExecuteAsk", "post query")
	outer := WrapInvalid(inner, "cache", "IsSubClassOf", "ask")
	assert.True(t, IsInvalid(outer))
	assert.False(t, IsTransient(outer))
	assert.ErrorIs(t, outer, inner)
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("socket closed")

	err := WrapTransient(cause, "httpclient", "ExecuteSelectStream", "post query")
	require.Error(t, err)
	assert.Equal(t, "httpclient.ExecuteSelectStream: post query failed: socket closed", err.Error())
	assert.ErrorIs(t, err, cause)

	var ce *ClassifiedError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "httpclient", ce.Component)
	assert.Equal(t, "ExecuteSelectStream", ce.Operation)

	assert.Nil(t, WrapTransient(nil, "a", "b", "c"))
	assert.Nil(t, WrapInvalid(nil, "a", "b", "c"))
	assert.Nil(t, WrapFatal(nil, "a", "b", "c"))
}

package helper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewError(t *testing.T) {
	t.Run("Nil error stays nil", func(t *testing.T) {
		assert.NoError(t, NewError("scan", nil))
	})

	t.Run("Trace is prepended to the message", func(t *testing.T) {
		err := NewError("scan", errors.New("no rows"))
		assert.EqualError(t, err, "scan: no rows")
	})

	t.Run("Wrapped sentinel is still detectable", func(t *testing.T) {
		sentinel := errors.New("sentinel")
		err := NewError("outer", NewError("inner", sentinel))
		assert.ErrorIs(t, err, sentinel, "Expected errors.Is to see through nested traces")

		var traced *Error
		assert.True(t, errors.As(err, &traced))
		assert.Equal(t, "outer", traced.Trace)
	})
}

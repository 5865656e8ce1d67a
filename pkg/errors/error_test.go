package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatchError(t *testing.T) {
	t.Run("ErrorFormatting", func(t *testing.T) {
		err := New(CodeMalformedURL, "missing scheme delimiter")
		assert.Equal(t, "[MALFORMED_URL] missing scheme delimiter", err.Error())

		err = err.WithDetails("input was \"growl:/host\"")
		assert.Contains(t, err.Error(), "input was")
	})

	t.Run("WrapPreservesCause", func(t *testing.T) {
		cause := fmt.Errorf("connection refused")
		err := Wrap(cause, CodeAdapterFailure, "send failed")
		assert.Equal(t, cause, stderrors.Unwrap(err))
		assert.True(t, stderrors.Is(err, New(CodeAdapterFailure, "")))
	})

	t.Run("IsMatchesByCode", func(t *testing.T) {
		a := New(CodeTimeout, "deadline exceeded")
		b := New(CodeTimeout, "different message")
		c := New(CodeAdapterFailure, "deadline exceeded")
		assert.True(t, stderrors.Is(a, b))
		assert.False(t, stderrors.Is(a, c))
	})
}

func TestCodeOf(t *testing.T) {
	t.Run("DirectDispatchError", func(t *testing.T) {
		assert.Equal(t, CodeUnsupportedScheme, CodeOf(New(CodeUnsupportedScheme, "foo")))
	})

	t.Run("WrappedDispatchError", func(t *testing.T) {
		inner := New(CodeMissingRequiredField, "no recipient")
		outer := fmt.Errorf("building request: %w", inner)
		assert.Equal(t, CodeMissingRequiredField, CodeOf(outer))
	})

	t.Run("ForeignError", func(t *testing.T) {
		assert.Equal(t, CodeAdapterFailure, CodeOf(fmt.Errorf("some transport error")))
	})
}

func TestIsParseCode(t *testing.T) {
	assert.True(t, IsParseCode(CodeMalformedURL))
	assert.True(t, IsParseCode(CodeUnsupportedScheme))
	assert.True(t, IsParseCode(CodeMissingRequiredField))
	assert.False(t, IsParseCode(CodeAdapterFailure))
	assert.False(t, IsParseCode(CodeTimeout))
}

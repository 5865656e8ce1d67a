package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseType(t *testing.T) {
	assert.Equal(t, TypeSuccess, ParseType("success"))
	assert.Equal(t, TypeFailure, ParseType(" Failure "))
	assert.Equal(t, TypeWarning, ParseType("WARNING"))
	assert.Equal(t, TypeInfo, ParseType("info"))
	assert.Equal(t, TypeInfo, ParseType("bogus"))
	assert.Equal(t, TypeInfo, ParseType(""))
}

func TestBuilder(t *testing.T) {
	m := New("Hello", "World!").
		WithType(TypeSuccess).
		WithFormat(FormatHTML).
		WithImage("https://example.com/icon.png")

	assert.Equal(t, "Hello", m.Title)
	assert.Equal(t, "World!", m.Body)
	assert.Equal(t, TypeSuccess, m.Type)
	assert.Equal(t, FormatHTML, m.Format)
	assert.Equal(t, "https://example.com/icon.png", m.ImageRef)
	assert.True(t, m.IncludeImage)
}

func TestFirstLines(t *testing.T) {
	t.Run("TruncatesAndStripsHashes", func(t *testing.T) {
		m := New("t", "## My Download ##\r\nStatus: SUCCESS\r\nExtra: ignored")
		assert.Equal(t, "My Download\r\nStatus: SUCCESS", m.FirstLines(2))
	})

	t.Run("ShortBodyUnchanged", func(t *testing.T) {
		m := New("t", "single line")
		assert.Equal(t, "single line", m.FirstLines(2))
	})

	t.Run("EmptyBody", func(t *testing.T) {
		m := New("t", "")
		assert.Equal(t, "", m.FirstLines(2))
	})
}

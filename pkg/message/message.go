// Package message provides the notification message structure shared by
// every provider adapter.
package message

import "strings"

// Type classifies a notification so providers that support theming or
// icons can decorate accordingly.
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeFailure Type = "failure"
	TypeWarning Type = "warning"
)

// String returns the string representation of the type.
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the type is one of the known notification types.
func (t Type) IsValid() bool {
	switch t {
	case TypeInfo, TypeSuccess, TypeFailure, TypeWarning:
		return true
	default:
		return false
	}
}

// ParseType maps a user-supplied token onto a Type, defaulting to
// TypeInfo for anything unrecognized.
func ParseType(s string) Type {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if t.IsValid() {
		return t
	}
	return TypeInfo
}

// Format represents the body markup of a message.
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// Message is one notification as supplied by the caller. It is read-only
// input for a dispatch call; adapters must not mutate it.
type Message struct {
	// Title may be empty; providers decide how to render an untitled
	// notification.
	Title string `json:"title"`
	// Body is the notification text.
	Body string `json:"body"`
	// Type classifies the notification (info, success, failure, warning).
	Type Type `json:"type"`
	// Format declares the markup of Body.
	Format Format `json:"format"`
	// ImageRef optionally points at an icon: an http://, https:// or
	// file:// reference.
	ImageRef string `json:"image_ref,omitempty"`
	// IncludeImage asks providers that support imagery to attach the
	// referenced (or their default) image.
	IncludeImage bool `json:"include_image"`
}

// New creates a message with the given title and body and default
// type/format.
func New(title, body string) *Message {
	return &Message{
		Title:  title,
		Body:   body,
		Type:   TypeInfo,
		Format: FormatText,
	}
}

// WithType sets the notification type.
func (m *Message) WithType(t Type) *Message {
	m.Type = t
	return m
}

// WithFormat sets the body format.
func (m *Message) WithFormat(f Format) *Message {
	m.Format = f
	return m
}

// WithImage sets the image reference and toggles image inclusion on.
func (m *Message) WithImage(ref string) *Message {
	m.ImageRef = ref
	m.IncludeImage = true
	return m
}

// FirstLines returns the first n lines of the body joined by CRLF, with
// markdown-style hash framing stripped from the first line. Providers
// with tight display limits (growl, xbmc, join) use this to avoid
// flooding an on-screen popup.
func (m *Message) FirstLines(n int) string {
	lines := splitLines(m.Body)
	if len(lines) == 0 {
		return ""
	}
	lines[0] = strings.TrimSpace(strings.Trim(strings.TrimSpace(lines[0]), "#"))
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\r\n")
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.FieldsFunc(s, func(r rune) bool {
		return r == '\r' || r == '\n'
	}) {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

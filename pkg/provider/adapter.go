package provider

import (
	"context"
	"fmt"

	"github.com/kart-io/notifycast/pkg/message"
)

// Adapter is the single extension point for notification transports.
// Each concrete provider owns its wire protocol (HTTP, SMTP, UDP, ...)
// and must map transport-level failures into returned errors rather than
// panicking across the boundary.
//
// Returning nil means the notification was delivered. Returning a
// *SkipError means the adapter deliberately declined (e.g. the recipient
// list was empty after filtering); anything else is a failure.
type Adapter interface {
	// Name returns the canonical provider name.
	Name() string

	// Send delivers one message to the target described by the request.
	// The request is immutable; adapters must treat it as read-only.
	Send(ctx context.Context, req *Request, msg *message.Message) error
}

// SkipError signals that an adapter declined to send. A skip still counts
// against the overall dispatch status, but is reported with its own
// status so callers can tell "nothing to do" apart from a delivery error.
type SkipError struct {
	Reason string
}

// Error implements the error interface.
func (e *SkipError) Error() string {
	return fmt.Sprintf("skipped: %s", e.Reason)
}

// Skip returns a SkipError with the given reason.
func Skip(format string, args ...interface{}) *SkipError {
	return &SkipError{Reason: fmt.Sprintf(format, args...)}
}

// AdapterFunc adapts a plain function into an Adapter. Handy in tests and
// for trivial providers.
type AdapterFunc struct {
	AdapterName string
	SendFunc    func(ctx context.Context, req *Request, msg *message.Message) error
}

// Name returns the adapter name.
func (f *AdapterFunc) Name() string { return f.AdapterName }

// Send invokes the wrapped function.
func (f *AdapterFunc) Send(ctx context.Context, req *Request, msg *message.Message) error {
	return f.SendFunc(ctx, req, msg)
}

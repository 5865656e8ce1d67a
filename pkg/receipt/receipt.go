// Package receipt provides the per-target outcome and aggregate report
// types produced by a dispatch call.
package receipt

import (
	"time"

	"github.com/kart-io/notifycast/pkg/errors"
)

// Status is the delivery state of one target.
type Status string

const (
	// StatusSent means the provider accepted the notification.
	StatusSent Status = "sent"
	// StatusSkipped means the provider deliberately declined (e.g. an
	// empty recipient list after filtering). Skips count against the
	// overall status but carry their own reason.
	StatusSkipped Status = "skipped"
	// StatusFailed means parsing, building or sending failed.
	StatusFailed Status = "failed"
)

// Outcome is the result for a single target, in caller-supplied order.
type Outcome struct {
	// Target is a credential-free summary of the service URL.
	Target string `json:"target"`
	// Provider is the canonical provider name, when resolution got that far.
	Provider string `json:"provider,omitempty"`
	// Status is the delivery state.
	Status Status `json:"status"`
	// Code categorizes a non-sent outcome.
	Code errors.Code `json:"code,omitempty"`
	// Error carries the failure or skip detail.
	Error string `json:"error,omitempty"`
	// Duration is the wall time spent on this target.
	Duration time.Duration `json:"duration"`
}

// Sent reports whether the target was delivered.
func (o *Outcome) Sent() bool {
	return o.Status == StatusSent
}

// Report is the ordered collection of outcomes for one dispatch call.
// Outcome order always equals the caller's URL order, regardless of the
// order sends completed in.
type Report struct {
	Outcomes   []Outcome     `json:"outcomes"`
	Successful int           `json:"successful"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	Total      int           `json:"total"`
	Duration   time.Duration `json:"duration"`
	Timestamp  time.Time     `json:"timestamp"`
}

// OK reports the overall status: true only when every target was sent.
// An empty report is a configuration error, never a vacuous success.
func (r *Report) OK() bool {
	return r.Total > 0 && r.Successful == r.Total
}

package receipt

import (
	"time"

	"github.com/kart-io/notifycast/pkg/logger"
)

// Aggregator combines per-target outcomes into a Report with derived
// counts and the overall status.
type Aggregator struct {
	logger logger.Logger
}

// NewAggregator creates an aggregator.
func NewAggregator(log logger.Logger) *Aggregator {
	if log == nil {
		log = logger.Discard
	}
	return &Aggregator{logger: log}
}

// Aggregate derives the report counts from outcomes. The outcome slice
// is taken as-is: the caller guarantees it is already in input order.
func (a *Aggregator) Aggregate(outcomes []Outcome, elapsed time.Duration) *Report {
	report := &Report{
		Outcomes:  outcomes,
		Total:     len(outcomes),
		Duration:  elapsed,
		Timestamp: time.Now(),
	}

	for _, outcome := range outcomes {
		switch outcome.Status {
		case StatusSent:
			report.Successful++
		case StatusSkipped:
			report.Skipped++
		default:
			report.Failed++
		}
	}

	a.logger.Debug("dispatch report aggregated",
		"total", report.Total,
		"sent", report.Successful,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"ok", report.OK())

	return report
}

// Package dispatch fans one message out to every supplied service URL
// and aggregates the per-target outcomes into an ordered report.
package dispatch

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	"github.com/kart-io/notifycast/pkg/descriptor"
	"github.com/kart-io/notifycast/pkg/errors"
	"github.com/kart-io/notifycast/pkg/logger"
	"github.com/kart-io/notifycast/pkg/message"
	"github.com/kart-io/notifycast/pkg/observability"
	"github.com/kart-io/notifycast/pkg/provider"
	"github.com/kart-io/notifycast/pkg/receipt"
)

const (
	// DefaultWorkers bounds how many targets are processed concurrently.
	DefaultWorkers = 4
	// DefaultSendTimeout bounds one adapter send.
	DefaultSendTimeout = 30 * time.Second
)

// Options tune a Coordinator.
type Options struct {
	// Workers bounds concurrent target processing. Values below 1 fall
	// back to DefaultWorkers; 1 yields a sequential dispatch.
	Workers int
	// SendTimeout bounds each adapter send. A timed-out send is reported
	// as a failed outcome with a timeout code, never left unresolved.
	SendTimeout time.Duration
	// Logger receives pipeline logging. Defaults to logger.Discard.
	Logger logger.Logger
	// Telemetry optionally instruments dispatches.
	Telemetry *observability.Telemetry
}

// Coordinator drives the parse → resolve → build → send pipeline for
// each target. It has no provider-specific branching: adapters are the
// single extension point.
type Coordinator struct {
	registry    *provider.Registry
	aggregator  *receipt.Aggregator
	logger      logger.Logger
	telemetry   *observability.Telemetry
	workers     int
	sendTimeout time.Duration
}

// NewCoordinator creates a coordinator over the given registry. The
// registry must be fully populated before the first Dispatch call and
// treated as read-only afterward.
func NewCoordinator(registry *provider.Registry, opts Options) *Coordinator {
	log := opts.Logger
	if log == nil {
		log = logger.Discard
	}
	workers := opts.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}
	sendTimeout := opts.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = DefaultSendTimeout
	}
	return &Coordinator{
		registry:    registry,
		aggregator:  receipt.NewAggregator(log),
		logger:      log,
		telemetry:   opts.Telemetry,
		workers:     workers,
		sendTimeout: sendTimeout,
	}
}

// Dispatch sends msg to every URL. Targets are independent: one
// failure never prevents attempting the rest, and the report preserves
// the caller-supplied URL order regardless of completion order. An empty
// URL list yields an empty report whose overall status is failure —
// nothing was sent, which is a configuration error rather than a
// vacuous success.
func (c *Coordinator) Dispatch(ctx context.Context, msg *message.Message, urls []string) *receipt.Report {
	start := time.Now()

	var report *receipt.Report
	if c.telemetry != nil {
		spanCtx, span := c.telemetry.StartDispatch(ctx, len(urls))
		defer func() {
			observability.EndSpan(span, report.OK(), "dispatch did not fully succeed")
		}()
		ctx = spanCtx
	}

	if len(urls) == 0 {
		c.logger.Warn("dispatch called with no service URLs")
		report = c.aggregator.Aggregate(nil, time.Since(start))
		return report
	}

	// Results are written into position-indexed slots, not appended in
	// completion order.
	outcomes := make([]receipt.Outcome, len(urls))

	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup
	for i, raw := range urls {
		wg.Add(1)
		go func(slot int, raw string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				outcomes[slot] = cancelledOutcome(raw)
				return
			}

			outcomes[slot] = c.processTarget(ctx, msg, raw)
		}(i, raw)
	}
	wg.Wait()

	report = c.aggregator.Aggregate(outcomes, time.Since(start))
	return report
}

// DispatchList splits a delimited URL list string and dispatches to the
// resulting targets.
func (c *Coordinator) DispatchList(ctx context.Context, msg *message.Message, urlList string) *receipt.Report {
	return c.Dispatch(ctx, msg, descriptor.SplitList(urlList))
}

// processTarget runs the full pipeline for one URL. Parse- and
// build-time errors are converted into failed outcomes here, at the
// per-target boundary; they never abort sibling targets.
func (c *Coordinator) processTarget(ctx context.Context, msg *message.Message, raw string) receipt.Outcome {
	start := time.Now()

	raw = c.normalize(raw)

	desc, err := descriptor.Parse(raw)
	if err != nil {
		c.logger.Error("could not parse service URL", "url", raw, "error", err)
		return failedOutcome(raw, "", err, time.Since(start))
	}

	binding, err := c.registry.Resolve(desc.Scheme)
	if err != nil {
		c.logger.Error("unsupported service scheme", "scheme", desc.Scheme)
		return failedOutcome(desc.Summary(), "", err, time.Since(start))
	}

	req, err := provider.Build(desc, binding)
	if err != nil {
		c.logger.Error("could not build request", "target", desc.Summary(), "error", err)
		return failedOutcome(desc.Summary(), binding.Spec.Name, err, time.Since(start))
	}

	outcome := c.send(ctx, binding.Adapter, req, msg)
	outcome.Duration = time.Since(start)

	if c.telemetry != nil {
		c.telemetry.RecordOutcome(ctx, req.Provider, outcome.Sent(), outcome.Duration)
	}
	return outcome
}

// send invokes the adapter under the per-send timeout and classifies the
// result.
func (c *Coordinator) send(ctx context.Context, adapter provider.Adapter, req *provider.Request, msg *message.Message) receipt.Outcome {
	sendCtx, cancel := context.WithTimeout(ctx, c.sendTimeout)
	defer cancel()

	err := adapter.Send(sendCtx, req, msg)
	outcome := receipt.Outcome{
		Target:   req.Summary(),
		Provider: req.Provider,
	}

	switch {
	case err == nil:
		outcome.Status = receipt.StatusSent
		c.logger.Info("notification sent", "target", outcome.Target)

	case isSkip(err):
		outcome.Status = receipt.StatusSkipped
		outcome.Error = err.Error()
		c.logger.Warn("notification skipped", "target", outcome.Target, "reason", err)

	case stderrors.Is(err, context.DeadlineExceeded):
		outcome.Status = receipt.StatusFailed
		outcome.Code = errors.CodeTimeout
		outcome.Error = "send exceeded deadline of " + c.sendTimeout.String()
		c.logger.Error("notification timed out", "target", outcome.Target)

	case stderrors.Is(err, context.Canceled):
		outcome.Status = receipt.StatusFailed
		outcome.Code = errors.CodeCancelled
		outcome.Error = "dispatch cancelled"
		c.logger.Warn("notification cancelled", "target", outcome.Target)

	default:
		outcome.Status = receipt.StatusFailed
		outcome.Code = errors.CodeOf(err)
		outcome.Error = err.Error()
		c.logger.Error("notification failed", "target", outcome.Target, "error", err)
	}
	return outcome
}

// normalize applies the spec's raw-URL fixup hook, looked up by the
// scheme token alone so dialects that are not valid generic URLs (the
// telegram bot-token colon) can be repaired before parsing.
func (c *Coordinator) normalize(raw string) string {
	idx := strings.Index(raw, "://")
	if idx < 0 {
		return raw
	}
	binding, err := c.registry.Resolve(raw[:idx])
	if err != nil || binding.Spec.Normalize == nil {
		return raw
	}
	return binding.Spec.Normalize(raw)
}

func failedOutcome(target, providerName string, err error, elapsed time.Duration) receipt.Outcome {
	return receipt.Outcome{
		Target:   target,
		Provider: providerName,
		Status:   receipt.StatusFailed,
		Code:     errors.CodeOf(err),
		Error:    err.Error(),
		Duration: elapsed,
	}
}

func cancelledOutcome(target string) receipt.Outcome {
	return receipt.Outcome{
		Target: target,
		Status: receipt.StatusFailed,
		Code:   errors.CodeCancelled,
		Error:  "dispatch cancelled before target was attempted",
	}
}

func isSkip(err error) bool {
	var skip *provider.SkipError
	return stderrors.As(err, &skip)
}

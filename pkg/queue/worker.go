package queue

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/kart-io/notifycast/pkg/dispatch"
	"github.com/kart-io/notifycast/pkg/logger"
	"github.com/kart-io/notifycast/pkg/receipt"
)

// ReportHandler observes the report of a processed job.
type ReportHandler func(job *Job, report *receipt.Report)

// Worker drains a queue and pushes each job through the dispatch
// coordinator. Fully failed reports are nacked for retry; partial
// success is acked, since re-running the job would double-send to the
// targets that already succeeded.
type Worker struct {
	queue       Queue
	coordinator *dispatch.Coordinator
	logger      logger.Logger
	onReport    ReportHandler

	wg   sync.WaitGroup
	stop context.CancelFunc
}

// NewWorker creates a worker over the queue and coordinator.
func NewWorker(q Queue, coord *dispatch.Coordinator, log logger.Logger, onReport ReportHandler) *Worker {
	if log == nil {
		log = logger.Discard
	}
	return &Worker{
		queue:       q,
		coordinator: coord,
		logger:      log,
		onReport:    onReport,
	}
}

// Start launches the drain loop. It returns immediately; call Stop to
// shut the loop down and wait for the in-flight job.
func (w *Worker) Start(ctx context.Context) {
	ctx, w.stop = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop cancels the drain loop and blocks until it exits.
func (w *Worker) Stop() {
	if w.stop != nil {
		w.stop()
	}
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if stderrors.Is(err, context.DeadlineExceeded) {
				continue // empty poll
			}
			w.logger.Error("dequeue failed", "error", err)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}
		w.process(ctx, job)
	}
}

func (w *Worker) process(ctx context.Context, job *Job) {
	w.logger.Info("processing job", "job", job.ID, "targets", len(job.URLs), "attempt", job.Attempts)

	report := w.coordinator.Dispatch(ctx, job.Message, job.URLs)
	if w.onReport != nil {
		w.onReport(job, report)
	}

	switch {
	case report.OK():
		if err := w.queue.Ack(ctx, job); err != nil {
			w.logger.Error("ack failed", "job", job.ID, "error", err)
		}
	case report.Successful > 0 || report.Skipped > 0:
		// Partial delivery: retrying would double-send.
		w.logger.Warn("job partially delivered", "job", job.ID,
			"sent", report.Successful, "failed", report.Failed)
		if err := w.queue.Ack(ctx, job); err != nil {
			w.logger.Error("ack failed", "job", job.ID, "error", err)
		}
	default:
		w.logger.Warn("job failed, scheduling retry", "job", job.ID, "attempt", job.Attempts)
		if err := w.queue.Nack(ctx, job); err != nil {
			w.logger.Error("nack failed", "job", job.ID, "error", err)
		}
	}
}

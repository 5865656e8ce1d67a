package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kart-io/notifycast/pkg/queue"
	"github.com/kart-io/notifycast/pkg/receipt"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run a queue worker draining enqueued notification jobs",
	Long: `Runs until interrupted, pulling jobs from the configured queue backend
and dispatching each one. Jobs that fail completely are retried up to
their attempt budget; partially delivered jobs are not retried.`,
	RunE: runWorker,
}

func runWorker(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	q, err := app.openQueue(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = q.Close() }()

	worker := queue.NewWorker(q, app.coordinator, app.logger, func(job *queue.Job, report *receipt.Report) {
		app.logger.Info("job finished",
			"job", job.ID,
			"sent", report.Successful,
			"skipped", report.Skipped,
			"failed", report.Failed)
	})

	fmt.Fprintf(os.Stderr, "notifycast worker draining %s queue (ctrl-c to stop)\n", app.cfg.Queue.Backend)
	worker.Start(ctx)
	<-ctx.Done()
	worker.Stop()
	return nil
}

package jobs

import (
	"context"
	"log/slog"
	"time"

	"marketplace/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// autoCompleteSchedule runs the finalization sweep at the top of every hour.
// The grace period is measured in hours, so a finer schedule buys nothing.
const autoCompleteSchedule = "0 * * * *"

// AutoCompleteJob periodically finalizes orders that were delivered but never
// completed by their seller within the grace period.
type AutoCompleteJob struct {
	handler     commands.CompleteDeliveredOrdersCommandHandler
	gracePeriod time.Duration
	cron        *cron.Cron
	logger      *slog.Logger
}

// NewAutoCompleteJob creates a job that completes stale delivered orders.
// gracePeriod is how long after delivery an order may sit before the
// platform finalizes it.
func NewAutoCompleteJob(
	handler commands.CompleteDeliveredOrdersCommandHandler,
	gracePeriod time.Duration,
	logger *slog.Logger,
) *AutoCompleteJob {
	return &AutoCompleteJob{
		handler:     handler,
		gracePeriod: gracePeriod,
		cron:        cron.New(),
		logger:      logger.With("component", "auto_complete_job"),
	}
}

// Start schedules the hourly finalization sweep.
func (j *AutoCompleteJob) Start() error {
	_, err := j.cron.AddFunc(autoCompleteSchedule, j.runOnce)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Auto-complete job started",
		"schedule", autoCompleteSchedule,
		"grace_period", j.gracePeriod.String(),
	)
	return nil
}

// Stop stops the auto-complete job.
func (j *AutoCompleteJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Auto-complete job stopped")
}

func (j *AutoCompleteJob) runOnce() {
	ctx := context.Background()

	cmd, err := commands.NewCompleteDeliveredOrdersCommand(time.Now().Add(-j.gracePeriod))
	if err != nil {
		j.logger.ErrorContext(ctx, "Auto-complete command construction failed", "error", err)
		return
	}

	completed, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Auto-complete sweep failed", "error", err)
		return
	}

	if completed > 0 {
		j.logger.InfoContext(ctx, "Auto-complete sweep finished", "orders_completed", completed)
	}
}

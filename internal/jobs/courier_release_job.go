package jobs

import (
	"context"
	"log/slog"
	"time"

	"delivery-tracker/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultReleaseSchedule runs the courier sweep every 30 seconds.
const DefaultReleaseSchedule = "*/30 * * * * *"

// CourierReleaser frees couriers whose order is finished.
type CourierReleaser interface {
	Handle(ctx context.Context, cmd commands.ReleaseCouriersCommand) (int, error)
}

// CourierReleaseJob periodically frees couriers still attached to delivered,
// cancelled or missing orders.
type CourierReleaseJob struct {
	handler  CourierReleaser
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewCourierReleaseJob creates the sweep job. An empty schedule uses DefaultReleaseSchedule.
// The schedule is a six-field cron expression (seconds first) or a descriptor such as "@every 1m".
func NewCourierReleaseJob(handler CourierReleaser, schedule string, logger *slog.Logger) *CourierReleaseJob {
	if schedule == "" {
		schedule = DefaultReleaseSchedule
	}

	return &CourierReleaseJob{
		handler:  handler,
		schedule: schedule,
		timeout:  10 * time.Second,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "courier_release_job"),
	}
}

// Start schedules the sweep.
func (j *CourierReleaseJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Courier release job started", "schedule", j.schedule)
	return nil
}

// Run performs one sweep.
func (j *CourierReleaseJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	released, err := j.handler.Handle(ctx, commands.NewReleaseCouriersCommand())
	if err != nil {
		j.logger.ErrorContext(ctx, "Courier release job failed", "error", err)
		return
	}
	if released > 0 {
		j.logger.InfoContext(ctx, "Released couriers of finished orders", "released", released)
	}
}

// Stop unschedules the sweep and waits for a running one to finish or ctx to end.
func (j *CourierReleaseJob) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
	}
	j.logger.InfoContext(ctx, "Courier release job stopped")
}

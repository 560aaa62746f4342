package jobs

import (
	"context"
	"fmt"
	"log/slog"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	courierReleaseJob *CourierReleaseJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(releaser CourierReleaser, releaseSchedule string, logger *slog.Logger) *JobManager {
	return &JobManager{
		courierReleaseJob: NewCourierReleaseJob(releaser, releaseSchedule, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.courierReleaseJob.Start(); err != nil {
		return fmt.Errorf("failed to start courier release job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs, waiting at most until ctx ends.
func (jm *JobManager) StopAll(ctx context.Context) {
	jm.courierReleaseJob.Stop(ctx)
}

// Package jobs provides scheduled background tasks for the delivery tracker.
//
// Jobs are built on github.com/robfig/cron/v3 with second-resolution schedules.
//
// # Available Jobs
//
// CourierReleaseJob sweeps couriers still attached to delivered, cancelled or
// missing orders and makes them available again. Transitions already release the
// courier of a finished order; the sweep repairs what a crash or a failed write
// left behind.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(releaseHandler, cfg.ReleaseSchedule, logger)
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll(ctx)
//
// # Scheduling
//
// A sweep still running when the next tick fires is skipped, not queued.
package jobs

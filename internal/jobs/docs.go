// Package jobs provides scheduled background tasks for the order lifecycle
// service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations the marketplace requires.
//
// # Available Jobs
//
// 1. AutoCompleteJob - Runs hourly to finalize delivered orders whose sellers
// never completed them within the grace period.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(completeDeliveredHandler, 72*time.Hour, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A sweep that loses a version race on an individual order skips it; the next
// sweep re-reads current state. Sweep-level failures are logged and retried
// on the next tick.
package jobs

// Package jobs provides scheduled background tasks for the order engine.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic maintenance the request path cannot do itself.
//
// # Available Jobs
//
// 1. ReservationSweepJob - Runs every minute to release expired stock reservations
// 2. OrderCompletionJob - Runs hourly to close out delivered orders past the dispute window
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(sweepHandler, completionHandler, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Both jobs log failures and keep their schedule; a failed run leaves the
// work for the next tick. Failed job starts will stop any already running
// jobs.
package jobs

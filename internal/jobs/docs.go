// Package jobs runs the background work of the marketplace on cron schedules.
//
// Two jobs are registered with the JobManager:
//
//   - CreditDispatchJob leases due credit tasks and credits couriers for delivered orders.
//     Failed attempts are retried with backoff until the retry policy gives up.
//   - StaleOrderSweepJob cancels pending orders that nobody accepted within the
//     configured window. When a distributed lock is configured only one replica sweeps.
//
// Every job skips a tick while its previous execution is still running and reports its
// duration and outcome to the job metrics.
//
//	manager := jobs.NewJobManager(creditDispatchJob, staleOrderSweepJob)
//	if err := manager.StartAll(); err != nil {
//		return err
//	}
//	defer manager.StopAll()
package jobs

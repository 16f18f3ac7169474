package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sankat-mitra/api/model"
)

const jobTimeout = 5 * time.Minute

// ReapEmptySessions sweeps every user's sessions and deletes the ones that
// hold zero messages, so abandoned conversations never pile up in listings.
// Each per-user pass reuses the directory's reap, which is idempotent.
func (m *CronManager) ReapEmptySessions() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	started := time.Now()
	entry := &model.CronJobLog{
		JobName:   "reap_empty_sessions",
		Status:    "started",
		StartedAt: started,
	}

	userIDs, err := m.store.ListUserIDs(ctx)
	if err != nil {
		m.completeJob(ctx, entry, started, 0, err)
		return
	}

	var swept int
	for _, userID := range userIDs {
		if err := m.directory.ReapEmpty(ctx, userID); err != nil {
			log.Printf("[Cron] Warning: reap failed for user=%s: %v", userID, err)
			continue
		}
		swept++
	}

	m.completeJob(ctx, entry, started, swept, nil)
}

// PurgeOldCronLogs removes cron job log rows older than maxAge.
func (m *CronManager) PurgeOldCronLogs(maxAge time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	started := time.Now()
	entry := &model.CronJobLog{
		JobName:   "purge_cron_logs",
		Status:    "started",
		StartedAt: started,
	}

	purged, err := m.store.PurgeCronJobLogs(ctx, time.Now().Add(-maxAge))
	m.completeJob(ctx, entry, started, int(purged), err)
}

// completeJob finalizes and persists the job log entry.
func (m *CronManager) completeJob(ctx context.Context, entry *model.CronJobLog, started time.Time, processed int, jobErr error) {
	now := time.Now()
	entry.CompletedAt = &now
	entry.Duration = int(now.Sub(started).Milliseconds())
	entry.Message = fmt.Sprintf("processed=%d", processed)

	if jobErr != nil {
		entry.Status = "failed"
		entry.ErrorMsg = jobErr.Error()
		log.Printf("[Cron] Job %s failed after %dms: %v", entry.JobName, entry.Duration, jobErr)
	} else {
		entry.Status = "completed"
		log.Printf("[Cron] Job %s completed in %dms (%s)", entry.JobName, entry.Duration, entry.Message)
	}

	if err := m.store.RecordCronJobLog(ctx, entry); err != nil {
		log.Printf("[Cron] Warning: failed to record job log for %s: %v", entry.JobName, err)
	}
}

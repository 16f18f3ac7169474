package cron

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sankat-mitra/api/database"
	"github.com/sankat-mitra/api/services"
)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron      *cron.Cron
	store     database.Storage
	directory *services.SessionDirectory
}

// NewCronManager creates a new cron manager
func NewCronManager(store database.Storage, directory *services.SessionDirectory) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron:      c,
		store:     store,
		directory: directory,
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// Hourly: reap empty chat sessions across all users
	_, err := m.cron.AddFunc("0 0 * * * *", func() {
		m.logJobStart("reap_empty_sessions")
		m.ReapEmptySessions()
	})
	if err != nil {
		return err
	}

	// Daily at 3 AM: purge cron job logs older than 30 days
	_, err = m.cron.AddFunc("0 0 3 * * *", func() {
		m.logJobStart("purge_cron_logs")
		m.PurgeOldCronLogs(30 * 24 * time.Hour)
	})
	if err != nil {
		return err
	}

	log.Println("All cron jobs registered successfully")
	return nil
}

func (m *CronManager) logJobStart(jobName string) {
	log.Printf("[Cron] Starting job: %s", jobName)
}

package scheduler

import (
	"fmt"
	"time"

	"pointsBot/scheduler/scheduler_jobs"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SetupCron starts the background jobs. db may be nil when the ledger is not SQL backed.
func SetupCron(sweeper scheduler_jobs.SessionSweeper, sweepInterval time.Duration, db *gorm.DB, log *logrus.Logger) (*cron.Cron, error) {
	cronService := cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DefaultLogger)))

	_, err := cronService.AddFunc(fmt.Sprintf("@every %s", sweepInterval), func() {
		scheduler_jobs.ExpireDrawSessions(sweeper, log)
	})
	if err != nil {
		return nil, fmt.Errorf("error scheduling draw session sweep: %w", err)
	}

	if db != nil {
		_, err = cronService.AddFunc("0 0 4 * * *", func() {
			// Every day at 4am
			if err := scheduler_jobs.PruneErrorLogs(db, time.Now(), log); err != nil {
				log.WithError(err).Error("Error log pruning failed")
			}
		})
		if err != nil {
			return nil, fmt.Errorf("error scheduling error log pruning: %w", err)
		}
	}

	cronService.Start()
	return cronService, nil
}

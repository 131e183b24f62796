package scheduler_jobs

import (
	"fmt"
	"time"

	"pointsBot/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrorLogRetention is how long rows stay in the error log table.
const ErrorLogRetention = 30 * 24 * time.Hour

func PruneErrorLogs(db *gorm.DB, now time.Time, log *logrus.Logger) error {
	result := db.Unscoped().Where("created_at < ?", now.Add(-ErrorLogRetention)).Delete(&models.ErrorLog{})
	if result.Error != nil {
		return fmt.Errorf("error pruning error logs: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.WithField("rows", result.RowsAffected).Info("Pruned old error logs")
	}
	return nil
}

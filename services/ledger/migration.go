package ledger

import (
	"fmt"
	"time"

	"pointsBot/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate brings the schema up to date and runs any one-time data migrations that have not run yet.
func Migrate(db *gorm.DB, log *logrus.Logger) error {
	err := db.AutoMigrate(&models.Player{}, &models.Role{}, &models.Award{}, &models.ErrorLog{}, &models.Migration{})
	if err != nil {
		return fmt.Errorf("error migrating database: %w", err)
	}

	return runOnce(db, log, "award_orphan_cleanup", cleanupOrphanAwards)
}

func runOnce(db *gorm.DB, log *logrus.Logger, name string, fn func(tx *gorm.DB) (int64, error)) error {
	var existing models.Migration
	result := db.Where("name = ?", name).Limit(1).Find(&existing)
	if result.Error != nil {
		return fmt.Errorf("error checking migration %s: %w", name, result.Error)
	}
	if result.RowsAffected > 0 {
		log.WithField("migration", name).Debug("Migration has already been executed. Skipping.")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		affected, err := fn(tx)
		if err != nil {
			return fmt.Errorf("error running migration %s: %w", name, err)
		}

		migration := models.Migration{
			Name:       name,
			ExecutedAt: time.Now(),
		}
		if err := tx.Create(&migration).Error; err != nil {
			return fmt.Errorf("error marking migration %s as complete: %w", name, err)
		}

		log.WithFields(logrus.Fields{"migration": name, "rows": affected}).Info("Migration completed")
		return nil
	})
}

// cleanupOrphanAwards removes awards left behind by players deleted before removals cascaded.
func cleanupOrphanAwards(tx *gorm.DB) (int64, error) {
	result := tx.Where("player_id NOT IN (?)", tx.Model(&models.Player{}).Select("id")).Delete(&models.Award{})
	return result.RowsAffected, result.Error
}

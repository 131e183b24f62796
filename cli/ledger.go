package cli

import (
	"fmt"

	"pointsBot/services"
	"pointsBot/services/ledger"

	"gorm.io/gorm"
)

// memoryDatabaseURL keeps the ledger in process memory. Everything is lost on exit, so it is only
// useful for tests and throwaway serve runs.
const memoryDatabaseURL = "memory"

// openLedger connects to the configured database. db is nil for the in-memory ledger.
func openLedger(migrate bool) (store ledger.Store, db *gorm.DB, err error) {
	if cfg.DatabaseURL == memoryDatabaseURL {
		log.Warn("Using the in-memory ledger; nothing will be saved")
		return ledger.NewMemoryStore(), nil, nil
	}

	db, err = ledger.Open(cfg.DatabaseURL, log)
	if err != nil {
		return nil, nil, err
	}
	if migrate {
		if err := ledger.Migrate(db, log); err != nil {
			return nil, nil, err
		}
	}
	return ledger.NewGormStore(db), db, nil
}

// openPersistentLedger is openLedger for commands whose writes must outlive the process.
func openPersistentLedger(command string) (ledger.Store, *gorm.DB, error) {
	if cfg.DatabaseURL == memoryDatabaseURL {
		return nil, nil, fmt.Errorf("%s needs a persistent DATABASE_URL, the in-memory ledger is discarded on exit", command)
	}
	return openLedger(cfg.AutoMigrate)
}

func closeDB(db *gorm.DB) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.WithError(err).Warn("Error closing database")
	}
}

func parseID(kind, value string) (uint64, error) {
	id, err := services.ParseSnowflake(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", kind, err)
	}
	return id, nil
}

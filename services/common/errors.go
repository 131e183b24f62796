package common

import (
	"fmt"

	"pointsBot/models"
)

// StorageError passes domain failures through untouched and marks anything else as a
// ledger failure so callers can match it with errors.Is(err, models.ErrStorage).
func StorageError(err error) error {
	if err == nil || models.IsDomainError(err) {
		return err
	}
	return fmt.Errorf("%w: %w", models.ErrStorage, err)
}

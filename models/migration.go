package models

import (
	"time"
)

type Migration struct {
	ID         uint      `gorm:"primaryKey"`
	Name       string    `gorm:"uniqueIndex; size:255"`
	ExecutedAt time.Time
}

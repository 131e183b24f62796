package models

import (
	"gorm.io/gorm"
)

// ErrorLog is a failure worth an operator's attention, kept for later inspection.
type ErrorLog struct {
	gorm.Model
	GuildID string `gorm:"size:64"`
	Command string `gorm:"size:64"`
	Message string
}

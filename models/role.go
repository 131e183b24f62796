package models

import "time"

// Role is an awardable rank tier inside one guild. IDs are Discord role snowflakes.
type Role struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement:false"`
	GuildID uint64 `gorm:"not null;index"`
}

// Award records that a player permanently received a role.
type Award struct {
	PlayerID  uint64 `gorm:"primaryKey;autoIncrement:false"`
	RoleID    uint64 `gorm:"primaryKey;autoIncrement:false"`
	Role      Role   `gorm:"foreignKey:RoleID"`
	CreatedAt time.Time
}

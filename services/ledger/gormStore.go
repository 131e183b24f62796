package ledger

import (
	"context"
	"errors"
	"fmt"

	"pointsBot/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

func (s *GormStore) LogError(ctx context.Context, guildID, command, message string) error {
	errLog := models.ErrorLog{
		GuildID: guildID,
		Command: command,
		Message: message,
	}
	return s.db.WithContext(ctx).Create(&errLog).Error
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) GetPlayer(id uint64) (models.Player, bool, error) {
	var player models.Player
	err := t.db.Where("id = ?", id).Take(&player).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Player{}, false, nil
	}
	if err != nil {
		return models.Player{}, false, fmt.Errorf("error fetching player %d: %w", id, err)
	}
	return player, true, nil
}

func (t *gormTx) CreatePlayer(player models.Player) error {
	if err := t.db.Omit(clause.Associations).Create(&player).Error; err != nil {
		return fmt.Errorf("error creating player %d: %w", player.ID, err)
	}
	return nil
}

func (t *gormTx) DeletePlayer(id uint64) error {
	if err := t.db.Where("player_id = ?", id).Delete(&models.Award{}).Error; err != nil {
		return fmt.Errorf("error deleting awards for player %d: %w", id, err)
	}
	if err := t.db.Where("id = ?", id).Delete(&models.Player{}).Error; err != nil {
		return fmt.Errorf("error deleting player %d: %w", id, err)
	}
	return nil
}

func (t *gormTx) SetPointMaster(id uint64, value bool) error {
	err := t.db.Model(&models.Player{}).Where("id = ?", id).Update("point_master", value).Error
	if err != nil {
		return fmt.Errorf("error updating point master for player %d: %w", id, err)
	}
	return nil
}

func (t *gormTx) SetAdmin(id uint64, value bool) error {
	err := t.db.Model(&models.Player{}).Where("id = ?", id).Update("admin", value).Error
	if err != nil {
		return fmt.Errorf("error updating admin for player %d: %w", id, err)
	}
	return nil
}

func (t *gormTx) AddPoints(id uint64, delta int) (int, error) {
	if delta != 0 {
		err := t.db.Model(&models.Player{}).
			Where("id = ?", id).
			UpdateColumn("points", gorm.Expr("points + ?", delta)).Error
		if err != nil {
			return 0, fmt.Errorf("error adding points to player %d: %w", id, err)
		}
	}

	var player models.Player
	if err := t.db.Select("points").Where("id = ?", id).Take(&player).Error; err != nil {
		return 0, fmt.Errorf("error reading points for player %d: %w", id, err)
	}
	return player.Points, nil
}

func (t *gormTx) TopPlayersByPoints(n int) ([]models.Player, error) {
	var players []models.Player
	if err := t.db.Order("points desc").Limit(n).Find(&players).Error; err != nil {
		return nil, fmt.Errorf("error fetching leaderboard: %w", err)
	}
	return players, nil
}

func (t *gormTx) GetRole(id uint64) (models.Role, bool, error) {
	var role models.Role
	err := t.db.Where("id = ?", id).Take(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Role{}, false, nil
	}
	if err != nil {
		return models.Role{}, false, fmt.Errorf("error fetching role %d: %w", id, err)
	}
	return role, true, nil
}

func (t *gormTx) CreateRole(role models.Role) error {
	if err := t.db.Create(&role).Error; err != nil {
		return fmt.Errorf("error creating role %d: %w", role.ID, err)
	}
	return nil
}

func (t *gormTx) RolesForGuild(guildID uint64) ([]uint64, error) {
	var ids []uint64
	err := t.db.Model(&models.Role{}).Where("guild_id = ?", guildID).Order("id").Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching roles for guild %d: %w", guildID, err)
	}
	return ids, nil
}

func (t *gormTx) AwardedRoles(playerID uint64) ([]uint64, error) {
	var ids []uint64
	err := t.db.Model(&models.Award{}).Where("player_id = ?", playerID).Order("role_id").Pluck("role_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching awards for player %d: %w", playerID, err)
	}
	return ids, nil
}

// InsertAward is idempotent: a conflicting row is left alone and reported as ErrAwardExists.
func (t *gormTx) InsertAward(playerID, roleID uint64) error {
	award := models.Award{PlayerID: playerID, RoleID: roleID}
	result := t.db.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&award)
	if result.Error != nil {
		return fmt.Errorf("error inserting award (%d, %d): %w", playerID, roleID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAwardExists
	}
	return nil
}

package models

// Player is a registered participant. IDs are Discord user snowflakes.
type Player struct {
	ID          uint64  `gorm:"primaryKey;autoIncrement:false"`
	Points      int     `gorm:"not null;index"`
	PointMaster bool    `gorm:"not null"`
	Admin       bool    `gorm:"not null"`
	Awards      []Award `gorm:"foreignKey:PlayerID;constraint:OnDelete:CASCADE"`
}

// Rank is the number of awards the player may hold at their current balance.
// Floor division, so negative balances never reach rank 1.
func (p Player) Rank() int {
	return RankFor(p.Points)
}

func RankFor(points int) int {
	q := points / 5
	if points%5 != 0 && points < 0 {
		q--
	}
	rank := q + 1
	if rank < 0 {
		return 0
	}
	return rank
}

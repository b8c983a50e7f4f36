package models

import (
	"time"
)

// GormScore is the persisted best time of a user for one difficulty
type GormScore struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserFID    int64     `gorm:"column:user_fid;not null;index:idx_scores_user_fid;uniqueIndex:idx_scores_user_difficulty,priority:1" json:"user_fid"`
	Username   string    `gorm:"type:varchar(255);not null" json:"username"`
	Difficulty string    `gorm:"type:varchar(10);not null;check:chk_scores_difficulty,difficulty IN ('easy','medium','hard');index:idx_scores_difficulty_time,priority:1;uniqueIndex:idx_scores_user_difficulty,priority:2" json:"difficulty"`
	Time       int       `gorm:"not null;index:idx_scores_difficulty_time,priority:2,sort:asc" json:"time"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GormScore
func (GormScore) TableName() string {
	return "scores"
}

// ToLeaderboardEntry converts GormScore to LeaderboardEntry
func (gs *GormScore) ToLeaderboardEntry() LeaderboardEntry {
	return LeaderboardEntry{
		UserFID:   gs.UserFID,
		Username:  gs.Username,
		Time:      gs.Time,
		CreatedAt: gs.CreatedAt,
	}
}

// File: internal/entity/battle_runtime/battle_rating.go
package battle_runtime

import (
	"time"
)

// DefaultRating 新用户的初始积分
const DefaultRating = 1000

// BattleRating 每用户一行的积分与战绩聚合，首次使用时懒创建
type BattleRating struct {
	UserID string `boil:"user_id" json:"user_id"`

	Rating int `boil:"rating" json:"rating"`

	// 不变量: wins + losses + draws = total_battles
	Wins         int `boil:"wins" json:"wins"`
	Losses       int `boil:"losses" json:"losses"`
	Draws        int `boil:"draws" json:"draws"`
	TotalBattles int `boil:"total_battles" json:"total_battles"`

	// 任何非胜利都会把 win_streak 归零
	WinStreak     int `boil:"win_streak" json:"win_streak"`
	BestWinStreak int `boil:"best_win_streak" json:"best_win_streak"`

	CreatedAt time.Time `boil:"created_at" json:"created_at"`
	UpdatedAt time.Time `boil:"updated_at" json:"updated_at"`
}

// TableName 返回表名
func (BattleRating) TableName() string {
	return "battle_runtime.battle_ratings"
}

// NewBattleRating 返回默认初始化的积分行
func NewBattleRating(userID string) *BattleRating {
	return &BattleRating{
		UserID: userID,
		Rating: DefaultRating,
	}
}

// WinRate 胜率百分比，没有对战记录时为 0
func (r *BattleRating) WinRate() float64 {
	if r.TotalBattles == 0 {
		return 0
	}
	return float64(r.Wins) / float64(r.TotalBattles) * 100
}

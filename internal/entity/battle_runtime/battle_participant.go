// File: internal/entity/battle_runtime/battle_participant.go
package battle_runtime

import (
	"time"

	"github.com/aarondl/null/v8"
)

// BattleParticipant 一名用户在一场对战中的实时与最终状态
// (battle_id, user_id) 唯一，每场对战最多两行
type BattleParticipant struct {
	BattleID string `boil:"battle_id" json:"battle_id"`
	UserID   string `boil:"user_id" json:"user_id"`

	// 首次进度上报前为空
	WPM      null.Float64 `boil:"wpm" json:"wpm,omitempty"`
	Accuracy null.Float64 `boil:"accuracy" json:"accuracy,omitempty"`

	Mistakes        int     `boil:"mistakes" json:"mistakes"`
	ProgressPercent float64 `boil:"progress_percent" json:"progress_percent"`

	// 终态后参与者数据不再可写
	IsFinished bool      `boil:"is_finished" json:"is_finished"`
	FinishedAt null.Time `boil:"finished_at" json:"finished_at,omitempty"`

	CreatedAt time.Time `boil:"created_at" json:"created_at"`
	UpdatedAt time.Time `boil:"updated_at" json:"updated_at"`
}

// TableName 返回表名
func (BattleParticipant) TableName() string {
	return "battle_runtime.battle_participants"
}

// HasMetrics 是否已有完整计分指标（积分结算的前置条件）
func (p *BattleParticipant) HasMetrics() bool {
	return p.WPM.Valid && p.Accuracy.Valid
}

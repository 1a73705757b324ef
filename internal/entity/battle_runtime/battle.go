// File: internal/entity/battle_runtime/battle.go
package battle_runtime

import (
	"time"

	"github.com/aarondl/null/v8"
)

// 对战状态
const (
	BattleStatusPending   = "pending"
	BattleStatusActive    = "active"
	BattleStatusFinished  = "finished"
	BattleStatusCancelled = "cancelled"
)

// 对战内容模式
const (
	BattleModeText = "text"
	BattleModeCode = "code"
)

// Battle 一场双人打字对战
type Battle struct {
	ID string `boil:"id" json:"id"`

	// 参与者：创建时只有 creator，opponent 在加入/匹配/受邀时绑定
	CreatorID  string      `boil:"creator_id" json:"creator_id"`
	OpponentID null.String `boil:"opponent_id" json:"opponent_id,omitempty"`

	// 状态机: pending -> active -> finished; pending -> cancelled
	Status string `boil:"status" json:"status"`

	// 内容与计分方式
	Mode       string `boil:"mode" json:"mode"`               // text / code
	BattleType string `boil:"battle_type" json:"battle_type"` // speed / accuracy / endurance / balanced

	// 挑战内容快照：创建时复制，内容轮换不影响进行中的对战
	ChallengeID   string `boil:"challenge_id" json:"challenge_id"`
	ChallengeBody string `boil:"challenge_body" json:"challenge_body"`

	// 胜者，平局或未结束时为空
	WinnerID null.String `boil:"winner_id" json:"winner_id,omitempty"`

	// 时间约束
	TimeLimitSeconds int `boil:"time_limit_seconds" json:"time_limit_seconds"`
	CountdownSeconds int `boil:"countdown_seconds" json:"countdown_seconds"`

	// 再战来源与自动匹配标记
	RematchOf   null.String `boil:"rematch_of" json:"rematch_of,omitempty"`
	IsAutoMatch bool        `boil:"is_auto_match" json:"is_auto_match"`

	// 完成奖励幂等标记：与 status=finished 同一事务内翻转
	RewardsGranted bool `boil:"rewards_granted" json:"rewards_granted"`

	CreatedAt  time.Time `boil:"created_at" json:"created_at"`
	StartedAt  null.Time `boil:"started_at" json:"started_at,omitempty"`
	FinishedAt null.Time `boil:"finished_at" json:"finished_at,omitempty"`
	UpdatedAt  time.Time `boil:"updated_at" json:"updated_at"`
}

// TableName 返回表名
func (Battle) TableName() string {
	return "battle_runtime.battles"
}

// IsPending 是否等待对手加入
func (b *Battle) IsPending() bool {
	return b.Status == BattleStatusPending
}

// IsActive 是否进行中
func (b *Battle) IsActive() bool {
	return b.Status == BattleStatusActive
}

// IsFinished 是否已结束
func (b *Battle) IsFinished() bool {
	return b.Status == BattleStatusFinished
}

// IsParticipant 检查用户是否为该对战参与者
func (b *Battle) IsParticipant(userID string) bool {
	if userID == b.CreatorID {
		return true
	}
	return b.OpponentID.Valid && b.OpponentID.String == userID
}

// OtherParticipant 返回对方参与者ID；对手未绑定时返回空字符串
func (b *Battle) OtherParticipant(userID string) string {
	if userID == b.CreatorID {
		return b.OpponentID.String
	}
	if b.OpponentID.Valid && b.OpponentID.String == userID {
		return b.CreatorID
	}
	return ""
}

// CanJoin 检查用户是否可以加入
func (b *Battle) CanJoin(userID string) bool {
	return b.Status == BattleStatusPending && !b.OpponentID.Valid && userID != b.CreatorID
}

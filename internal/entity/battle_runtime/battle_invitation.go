// File: internal/entity/battle_runtime/battle_invitation.go
package battle_runtime

import (
	"time"

	"github.com/aarondl/null/v8"
)

// 邀请状态，单向转移: pending -> {accepted, rejected, expired}
const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
	InvitationStatusRejected = "rejected"
	InvitationStatusExpired  = "expired"
)

// InvitationTTL 邀请有效期
const InvitationTTL = 5 * time.Minute

// BattleInvitation 用户对用户的限时挑战
type BattleInvitation struct {
	ID string `boil:"id" json:"id"`

	FromUserID string `boil:"from_user_id" json:"from_user_id"`
	ToUserID   string `boil:"to_user_id" json:"to_user_id"`

	// 接受后关联生成的对战
	BattleID null.String `boil:"battle_id" json:"battle_id,omitempty"`

	Status string `boil:"status" json:"status"`

	// 接受后用于创建对战的参数
	BattleMode       string `boil:"battle_mode" json:"battle_mode"`
	BattleType       string `boil:"battle_type" json:"battle_type"`
	TimeLimitSeconds int    `boil:"time_limit_seconds" json:"time_limit_seconds"`

	CreatedAt   time.Time `boil:"created_at" json:"created_at"`
	ExpiresAt   time.Time `boil:"expires_at" json:"expires_at"`
	RespondedAt null.Time `boil:"responded_at" json:"responded_at,omitempty"`
}

// TableName 返回表名
func (BattleInvitation) TableName() string {
	return "battle_runtime.battle_invitations"
}

// IsExpired 按给定时刻判断是否已过期（响应时懒检查）
func (i *BattleInvitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// IsPending 是否仍待响应
func (i *BattleInvitation) IsPending() bool {
	return i.Status == InvitationStatusPending
}

package interfaces

import (
	"context"

	"github.com/volatiletech/sqlboiler/v4/boil"
	"typeduel-self/internal/entity/battle_runtime"
)

// BattleInvitationRepository 对战邀请仓储接口
type BattleInvitationRepository interface {
	// Create 创建邀请
	Create(ctx context.Context, invitation *battle_runtime.BattleInvitation) error

	// GetByID 根据ID获取邀请
	GetByID(ctx context.Context, invitationID string) (*battle_runtime.BattleInvitation, error)

	// Update 更新邀请
	Update(ctx context.Context, execer boil.ContextExecutor, invitation *battle_runtime.BattleInvitation) error

	// ListPendingByRecipient 查询发给用户的待响应邀请
	ListPendingByRecipient(ctx context.Context, userID string) ([]*battle_runtime.BattleInvitation, error)

	// ListPendingBySender 查询用户发出的待响应邀请
	ListPendingBySender(ctx context.Context, userID string) ([]*battle_runtime.BattleInvitation, error)

	// ExpireInvitations 过期邀请处理（将过期的邀请状态更新为 expired），返回影响行数
	ExpireInvitations(ctx context.Context) (int64, error)
}

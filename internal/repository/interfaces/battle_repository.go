package interfaces

import (
	"context"

	"github.com/volatiletech/sqlboiler/v4/boil"
	"typeduel-self/internal/entity/battle_runtime"
)

// BattleRepository 对战仓储接口
type BattleRepository interface {
	// Create 创建对战
	Create(ctx context.Context, execer boil.ContextExecutor, battle *battle_runtime.Battle) error

	// GetByID 根据ID获取对战
	GetByID(ctx context.Context, battleID string) (*battle_runtime.Battle, error)

	// GetByIDForUpdate 根据ID获取对战并加行锁（必须在事务内调用）
	GetByIDForUpdate(ctx context.Context, tx boil.ContextExecutor, battleID string) (*battle_runtime.Battle, error)

	// Update 更新对战
	Update(ctx context.Context, execer boil.ContextExecutor, battle *battle_runtime.Battle) error

	// ListOpen 查询等待对手加入的开放对战（不含指定用户自己创建的）
	ListOpen(ctx context.Context, excludeUserID string, limit int) ([]*battle_runtime.Battle, error)

	// ListRecentByUser 查询用户最近参与的对战
	ListRecentByUser(ctx context.Context, userID string, limit int) ([]*battle_runtime.Battle, error)

	// DeleteStale 删除滞留超过保留期的 pending/active 对战，返回删除行数
	DeleteStale(ctx context.Context, retentionDays int) (int64, error)
}

// BattleParticipantRepository 对战参与者仓储接口
type BattleParticipantRepository interface {
	// Create 创建参与者
	Create(ctx context.Context, execer boil.ContextExecutor, participant *battle_runtime.BattleParticipant) error

	// Get 获取指定对战中指定用户的参与者行
	Get(ctx context.Context, battleID, userID string) (*battle_runtime.BattleParticipant, error)

	// GetForUpdate 获取参与者行并加行锁（必须在事务内调用）
	GetForUpdate(ctx context.Context, tx boil.ContextExecutor, battleID, userID string) (*battle_runtime.BattleParticipant, error)

	// ListByBattle 获取对战的全部参与者
	ListByBattle(ctx context.Context, execer boil.ContextExecutor, battleID string) ([]*battle_runtime.BattleParticipant, error)

	// Update 更新参与者
	Update(ctx context.Context, execer boil.ContextExecutor, participant *battle_runtime.BattleParticipant) error
}

package interfaces

import (
	"context"

	"github.com/volatiletech/sqlboiler/v4/boil"
	"typeduel-self/internal/entity/battle_runtime"
)

// BattleRatingRepository 对战积分仓储接口
type BattleRatingRepository interface {
	// GetByUser 获取用户积分行，不存在时返回 sql.ErrNoRows
	GetByUser(ctx context.Context, userID string) (*battle_runtime.BattleRating, error)

	// GetOrCreateForUpdate 获取用户积分行并加行锁，不存在时按默认值创建
	// 必须在事务内调用
	GetOrCreateForUpdate(ctx context.Context, tx boil.ContextExecutor, userID string) (*battle_runtime.BattleRating, error)

	// Update 更新积分行
	Update(ctx context.Context, execer boil.ContextExecutor, rating *battle_runtime.BattleRating) error

	// ListByUsers 批量获取指定用户的积分行（存在的才返回）
	ListByUsers(ctx context.Context, userIDs []string) ([]*battle_runtime.BattleRating, error)
}

package interfaces

import (
	"context"

	"typeduel-self/internal/entity/battle_runtime"
)

// ChallengeRepository 挑战内容仓储接口
// 内容来源对对战逻辑不透明，只在边界消费
type ChallengeRepository interface {
	// Random 随机取一条指定模式（和可选难度）的挑战内容
	// 没有匹配内容时返回 sql.ErrNoRows
	Random(ctx context.Context, mode, difficulty string) (*battle_runtime.Challenge, error)

	// GetByID 根据ID获取挑战内容
	GetByID(ctx context.Context, id string) (*battle_runtime.Challenge, error)
}

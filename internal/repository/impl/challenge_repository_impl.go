package impl

import (
	"context"
	"database/sql"

	"github.com/volatiletech/sqlboiler/v4/queries"
	"github.com/friendsofgo/errors"

	"typeduel-self/internal/entity/battle_runtime"
	"typeduel-self/internal/repository/interfaces"
)

type challengeRepositoryImpl struct {
	db *sql.DB
}

// NewChallengeRepository 创建挑战内容仓储实例
func NewChallengeRepository(db *sql.DB) interfaces.ChallengeRepository {
	return &challengeRepositoryImpl{db: db}
}

const challengeColumns = `id, mode, difficulty, body, created_at`

// Random 随机取一条指定模式的挑战内容
func (r *challengeRepositoryImpl) Random(ctx context.Context, mode, difficulty string) (*battle_runtime.Challenge, error) {
	query := `
		SELECT ` + challengeColumns + `
		FROM battle_runtime.challenges
		WHERE mode = $1`
	args := []interface{}{mode}

	if difficulty != "" {
		query += ` AND difficulty = $2`
		args = append(args, difficulty)
	}

	// 内容量级很小（题库），ORDER BY random() 足够
	query += ` ORDER BY random() LIMIT 1`

	var challenge battle_runtime.Challenge
	err := queries.Raw(query, args...).Bind(ctx, r.db, &challenge)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, errors.Wrap(err, "随机获取挑战内容失败")
	}

	return &challenge, nil
}

// GetByID 根据ID获取挑战内容
func (r *challengeRepositoryImpl) GetByID(ctx context.Context, id string) (*battle_runtime.Challenge, error) {
	var challenge battle_runtime.Challenge
	err := queries.Raw(`
		SELECT `+challengeColumns+`
		FROM battle_runtime.challenges
		WHERE id = $1`, id,
	).Bind(ctx, r.db, &challenge)

	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, errors.Wrap(err, "查询挑战内容失败")
	}

	return &challenge, nil
}

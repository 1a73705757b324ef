package impl

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/volatiletech/sqlboiler/v4/boil"
	"github.com/volatiletech/sqlboiler/v4/queries"
	"github.com/aarondl/strmangle"
	"github.com/friendsofgo/errors"

	"typeduel-self/internal/entity/battle_runtime"
	"typeduel-self/internal/repository/interfaces"
)

type battleRatingRepositoryImpl struct {
	db *sql.DB
}

// NewBattleRatingRepository 创建对战积分仓储实例
func NewBattleRatingRepository(db *sql.DB) interfaces.BattleRatingRepository {
	return &battleRatingRepositoryImpl{db: db}
}

const ratingColumns = `
	user_id, rating, wins, losses, draws, total_battles,
	win_streak, best_win_streak, created_at, updated_at`

// GetByUser 获取用户积分行
func (r *battleRatingRepositoryImpl) GetByUser(ctx context.Context, userID string) (*battle_runtime.BattleRating, error) {
	var rating battle_runtime.BattleRating
	err := queries.Raw(`
		SELECT `+ratingColumns+`
		FROM battle_runtime.battle_ratings
		WHERE user_id = $1`, userID,
	).Bind(ctx, r.db, &rating)

	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, errors.Wrap(err, "查询对战积分失败")
	}

	return &rating, nil
}

// GetOrCreateForUpdate 获取用户积分行并加行锁，不存在时按默认值创建
func (r *battleRatingRepositoryImpl) GetOrCreateForUpdate(ctx context.Context, tx boil.ContextExecutor, userID string) (*battle_runtime.BattleRating, error) {
	// 先尝试插入默认行，已存在则忽略；随后 FOR UPDATE 读取保证拿到行锁
	now := time.Now()
	_, err := tx.ExecContext(ctx, `
		INSERT INTO battle_runtime.battle_ratings (
			user_id, rating, wins, losses, draws, total_battles,
			win_streak, best_win_streak, created_at, updated_at
		) VALUES ($1,$2,0,0,0,0,0,0,$3,$3)
		ON CONFLICT (user_id) DO NOTHING`,
		userID, battle_runtime.DefaultRating, now,
	)
	if err != nil {
		return nil, errors.Wrap(err, "初始化对战积分失败")
	}

	var rating battle_runtime.BattleRating
	err = queries.Raw(`
		SELECT `+ratingColumns+`
		FROM battle_runtime.battle_ratings
		WHERE user_id = $1
		FOR UPDATE`, userID,
	).Bind(ctx, tx, &rating)
	if err != nil {
		return nil, errors.Wrap(err, "查询对战积分失败(行锁)")
	}

	return &rating, nil
}

// Update 更新积分行
func (r *battleRatingRepositoryImpl) Update(ctx context.Context, execer boil.ContextExecutor, rating *battle_runtime.BattleRating) error {
	if execer == nil {
		execer = r.db
	}

	rating.UpdatedAt = time.Now()

	_, err := execer.ExecContext(ctx, `
		UPDATE battle_runtime.battle_ratings SET
			rating = $2,
			wins = $3,
			losses = $4,
			draws = $5,
			total_battles = $6,
			win_streak = $7,
			best_win_streak = $8,
			updated_at = $9
		WHERE user_id = $1`,
		rating.UserID, rating.Rating, rating.Wins, rating.Losses, rating.Draws,
		rating.TotalBattles, rating.WinStreak, rating.BestWinStreak, rating.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "更新对战积分失败")
	}

	return nil
}

// ListByUsers 批量获取指定用户的积分行
func (r *battleRatingRepositoryImpl) ListByUsers(ctx context.Context, userIDs []string) ([]*battle_runtime.BattleRating, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT `+ratingColumns+`
		FROM battle_runtime.battle_ratings
		WHERE user_id IN (%s)`,
		strmangle.Placeholders(true, len(userIDs), 1, 1),
	)

	args := make([]interface{}, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
	}

	var ratings []*battle_runtime.BattleRating
	err := queries.Raw(query, args...).Bind(ctx, r.db, &ratings)
	if err != nil {
		return nil, errors.Wrap(err, "批量查询对战积分失败")
	}

	return ratings, nil
}

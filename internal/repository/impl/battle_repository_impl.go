package impl

import (
	"context"
	"database/sql"
	"time"

	"github.com/volatiletech/sqlboiler/v4/boil"
	"github.com/volatiletech/sqlboiler/v4/queries"
	"github.com/friendsofgo/errors"
	"github.com/google/uuid"

	"typeduel-self/internal/entity/battle_runtime"
	"typeduel-self/internal/repository/interfaces"
)

type battleRepositoryImpl struct {
	db *sql.DB
}

// NewBattleRepository 创建对战仓储实例
func NewBattleRepository(db *sql.DB) interfaces.BattleRepository {
	return &battleRepositoryImpl{db: db}
}

const battleColumns = `
	id, creator_id, opponent_id, status, mode, battle_type,
	challenge_id, challenge_body, winner_id,
	time_limit_seconds, countdown_seconds, rematch_of, is_auto_match,
	rewards_granted, created_at, started_at, finished_at, updated_at`

// Create 创建对战
func (r *battleRepositoryImpl) Create(ctx context.Context, execer boil.ContextExecutor, battle *battle_runtime.Battle) error {
	if battle.ID == "" {
		battle.ID = uuid.New().String()
	}

	now := time.Now()
	battle.CreatedAt = now
	battle.UpdatedAt = now
	if battle.Status == "" {
		battle.Status = battle_runtime.BattleStatusPending
	}

	if execer == nil {
		execer = r.db
	}

	_, err := execer.ExecContext(ctx, `
		INSERT INTO battle_runtime.battles (
			id, creator_id, opponent_id, status, mode, battle_type,
			challenge_id, challenge_body, winner_id,
			time_limit_seconds, countdown_seconds, rematch_of, is_auto_match,
			rewards_granted, created_at, started_at, finished_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		battle.ID, battle.CreatorID, battle.OpponentID, battle.Status,
		battle.Mode, battle.BattleType,
		battle.ChallengeID, battle.ChallengeBody, battle.WinnerID,
		battle.TimeLimitSeconds, battle.CountdownSeconds,
		battle.RematchOf, battle.IsAutoMatch, battle.RewardsGranted,
		battle.CreatedAt, battle.StartedAt, battle.FinishedAt, battle.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "创建对战失败")
	}

	return nil
}

// GetByID 根据ID获取对战
func (r *battleRepositoryImpl) GetByID(ctx context.Context, battleID string) (*battle_runtime.Battle, error) {
	var battle battle_runtime.Battle
	err := queries.Raw(`
		SELECT `+battleColumns+`
		FROM battle_runtime.battles
		WHERE id = $1`, battleID,
	).Bind(ctx, r.db, &battle)

	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, errors.Wrap(err, "查询对战失败")
	}

	return &battle, nil
}

// GetByIDForUpdate 根据ID获取对战并加行锁
func (r *battleRepositoryImpl) GetByIDForUpdate(ctx context.Context, tx boil.ContextExecutor, battleID string) (*battle_runtime.Battle, error) {
	var battle battle_runtime.Battle
	err := queries.Raw(`
		SELECT `+battleColumns+`
		FROM battle_runtime.battles
		WHERE id = $1
		FOR UPDATE`, battleID,
	).Bind(ctx, tx, &battle)

	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, errors.Wrap(err, "查询对战失败(行锁)")
	}

	return &battle, nil
}

// Update 更新对战
func (r *battleRepositoryImpl) Update(ctx context.Context, execer boil.ContextExecutor, battle *battle_runtime.Battle) error {
	if execer == nil {
		execer = r.db
	}

	battle.UpdatedAt = time.Now()

	_, err := execer.ExecContext(ctx, `
		UPDATE battle_runtime.battles SET
			opponent_id = $2,
			status = $3,
			winner_id = $4,
			rewards_granted = $5,
			started_at = $6,
			finished_at = $7,
			updated_at = $8
		WHERE id = $1`,
		battle.ID, battle.OpponentID, battle.Status, battle.WinnerID,
		battle.RewardsGranted, battle.StartedAt, battle.FinishedAt, battle.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "更新对战失败")
	}

	return nil
}

// ListOpen 查询等待对手加入的开放对战
func (r *battleRepositoryImpl) ListOpen(ctx context.Context, excludeUserID string, limit int) ([]*battle_runtime.Battle, error) {
	var battles []*battle_runtime.Battle
	err := queries.Raw(`
		SELECT `+battleColumns+`
		FROM battle_runtime.battles
		WHERE status = $1 AND opponent_id IS NULL AND creator_id <> $2
		ORDER BY created_at DESC
		LIMIT $3`,
		battle_runtime.BattleStatusPending, excludeUserID, limit,
	).Bind(ctx, r.db, &battles)

	if err != nil {
		return nil, errors.Wrap(err, "查询开放对战失败")
	}

	return battles, nil
}

// ListRecentByUser 查询用户最近参与的对战
func (r *battleRepositoryImpl) ListRecentByUser(ctx context.Context, userID string, limit int) ([]*battle_runtime.Battle, error) {
	var battles []*battle_runtime.Battle
	err := queries.Raw(`
		SELECT `+battleColumns+`
		FROM battle_runtime.battles
		WHERE creator_id = $1 OR opponent_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		userID, limit,
	).Bind(ctx, r.db, &battles)

	if err != nil {
		return nil, errors.Wrap(err, "查询用户对战记录失败")
	}

	return battles, nil
}

// DeleteStale 删除滞留超过保留期的 pending/active 对战
// 参与者行依赖外键级联删除
func (r *battleRepositoryImpl) DeleteStale(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	result, err := r.db.ExecContext(ctx, `
		DELETE FROM battle_runtime.battles
		WHERE status IN ($1, $2) AND created_at < $3`,
		battle_runtime.BattleStatusPending, battle_runtime.BattleStatusActive, cutoff,
	)
	if err != nil {
		return 0, errors.Wrap(err, "清理滞留对战失败")
	}

	return result.RowsAffected()
}

package impl

import (
	"context"
	"database/sql"
	"time"

	"github.com/volatiletech/sqlboiler/v4/boil"
	"github.com/volatiletech/sqlboiler/v4/queries"
	"github.com/friendsofgo/errors"

	"typeduel-self/internal/entity/battle_runtime"
	"typeduel-self/internal/repository/interfaces"
)

type battleParticipantRepositoryImpl struct {
	db *sql.DB
}

// NewBattleParticipantRepository 创建对战参与者仓储实例
func NewBattleParticipantRepository(db *sql.DB) interfaces.BattleParticipantRepository {
	return &battleParticipantRepositoryImpl{db: db}
}

const participantColumns = `
	battle_id, user_id, wpm, accuracy, mistakes, progress_percent,
	is_finished, finished_at, created_at, updated_at`

// Create 创建参与者
func (r *battleParticipantRepositoryImpl) Create(ctx context.Context, execer boil.ContextExecutor, participant *battle_runtime.BattleParticipant) error {
	if execer == nil {
		execer = r.db
	}

	now := time.Now()
	participant.CreatedAt = now
	participant.UpdatedAt = now

	_, err := execer.ExecContext(ctx, `
		INSERT INTO battle_runtime.battle_participants (
			battle_id, user_id, wpm, accuracy, mistakes, progress_percent,
			is_finished, finished_at, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		participant.BattleID, participant.UserID,
		participant.WPM, participant.Accuracy,
		participant.Mistakes, participant.ProgressPercent,
		participant.IsFinished, participant.FinishedAt,
		participant.CreatedAt, participant.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "创建对战参与者失败")
	}

	return nil
}

// Get 获取指定对战中指定用户的参与者行
func (r *battleParticipantRepositoryImpl) Get(ctx context.Context, battleID, userID string) (*battle_runtime.BattleParticipant, error) {
	var participant battle_runtime.BattleParticipant
	err := queries.Raw(`
		SELECT `+participantColumns+`
		FROM battle_runtime.battle_participants
		WHERE battle_id = $1 AND user_id = $2`,
		battleID, userID,
	).Bind(ctx, r.db, &participant)

	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, errors.Wrap(err, "查询对战参与者失败")
	}

	return &participant, nil
}

// GetForUpdate 获取参与者行并加行锁
func (r *battleParticipantRepositoryImpl) GetForUpdate(ctx context.Context, tx boil.ContextExecutor, battleID, userID string) (*battle_runtime.BattleParticipant, error) {
	var participant battle_runtime.BattleParticipant
	err := queries.Raw(`
		SELECT `+participantColumns+`
		FROM battle_runtime.battle_participants
		WHERE battle_id = $1 AND user_id = $2
		FOR UPDATE`,
		battleID, userID,
	).Bind(ctx, tx, &participant)

	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, errors.Wrap(err, "查询对战参与者失败(行锁)")
	}

	return &participant, nil
}

// ListByBattle 获取对战的全部参与者
func (r *battleParticipantRepositoryImpl) ListByBattle(ctx context.Context, execer boil.ContextExecutor, battleID string) ([]*battle_runtime.BattleParticipant, error) {
	if execer == nil {
		execer = r.db
	}

	var participants []*battle_runtime.BattleParticipant
	err := queries.Raw(`
		SELECT `+participantColumns+`
		FROM battle_runtime.battle_participants
		WHERE battle_id = $1
		ORDER BY created_at`,
		battleID,
	).Bind(ctx, execer, &participants)

	if err != nil {
		return nil, errors.Wrap(err, "查询对战参与者列表失败")
	}

	return participants, nil
}

// Update 更新参与者
func (r *battleParticipantRepositoryImpl) Update(ctx context.Context, execer boil.ContextExecutor, participant *battle_runtime.BattleParticipant) error {
	if execer == nil {
		execer = r.db
	}

	participant.UpdatedAt = time.Now()

	_, err := execer.ExecContext(ctx, `
		UPDATE battle_runtime.battle_participants SET
			wpm = $3,
			accuracy = $4,
			mistakes = $5,
			progress_percent = $6,
			is_finished = $7,
			finished_at = $8,
			updated_at = $9
		WHERE battle_id = $1 AND user_id = $2`,
		participant.BattleID, participant.UserID,
		participant.WPM, participant.Accuracy,
		participant.Mistakes, participant.ProgressPercent,
		participant.IsFinished, participant.FinishedAt, participant.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "更新对战参与者失败")
	}

	return nil
}

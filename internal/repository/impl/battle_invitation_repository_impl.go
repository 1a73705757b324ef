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

type battleInvitationRepositoryImpl struct {
	db *sql.DB
}

// NewBattleInvitationRepository 创建对战邀请仓储实例
func NewBattleInvitationRepository(db *sql.DB) interfaces.BattleInvitationRepository {
	return &battleInvitationRepositoryImpl{db: db}
}

const invitationColumns = `
	id, from_user_id, to_user_id, battle_id, status,
	battle_mode, battle_type, time_limit_seconds,
	created_at, expires_at, responded_at`

// Create 创建邀请
func (r *battleInvitationRepositoryImpl) Create(ctx context.Context, invitation *battle_runtime.BattleInvitation) error {
	if invitation.ID == "" {
		invitation.ID = uuid.New().String()
	}

	now := time.Now()
	invitation.CreatedAt = now
	if invitation.ExpiresAt.IsZero() {
		invitation.ExpiresAt = now.Add(battle_runtime.InvitationTTL)
	}
	if invitation.Status == "" {
		invitation.Status = battle_runtime.InvitationStatusPending
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO battle_runtime.battle_invitations (
			id, from_user_id, to_user_id, battle_id, status,
			battle_mode, battle_type, time_limit_seconds,
			created_at, expires_at, responded_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		invitation.ID, invitation.FromUserID, invitation.ToUserID,
		invitation.BattleID, invitation.Status,
		invitation.BattleMode, invitation.BattleType, invitation.TimeLimitSeconds,
		invitation.CreatedAt, invitation.ExpiresAt, invitation.RespondedAt,
	)
	if err != nil {
		return errors.Wrap(err, "创建对战邀请失败")
	}

	return nil
}

// GetByID 根据ID获取邀请
func (r *battleInvitationRepositoryImpl) GetByID(ctx context.Context, invitationID string) (*battle_runtime.BattleInvitation, error) {
	var invitation battle_runtime.BattleInvitation
	err := queries.Raw(`
		SELECT `+invitationColumns+`
		FROM battle_runtime.battle_invitations
		WHERE id = $1`, invitationID,
	).Bind(ctx, r.db, &invitation)

	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, errors.Wrap(err, "查询对战邀请失败")
	}

	return &invitation, nil
}

// Update 更新邀请
func (r *battleInvitationRepositoryImpl) Update(ctx context.Context, execer boil.ContextExecutor, invitation *battle_runtime.BattleInvitation) error {
	if execer == nil {
		execer = r.db
	}

	_, err := execer.ExecContext(ctx, `
		UPDATE battle_runtime.battle_invitations SET
			battle_id = $2,
			status = $3,
			responded_at = $4
		WHERE id = $1`,
		invitation.ID, invitation.BattleID, invitation.Status, invitation.RespondedAt,
	)
	if err != nil {
		return errors.Wrap(err, "更新对战邀请失败")
	}

	return nil
}

// ListPendingByRecipient 查询发给用户的待响应邀请
func (r *battleInvitationRepositoryImpl) ListPendingByRecipient(ctx context.Context, userID string) ([]*battle_runtime.BattleInvitation, error) {
	return r.listPending(ctx, "to_user_id", userID)
}

// ListPendingBySender 查询用户发出的待响应邀请
func (r *battleInvitationRepositoryImpl) ListPendingBySender(ctx context.Context, userID string) ([]*battle_runtime.BattleInvitation, error) {
	return r.listPending(ctx, "from_user_id", userID)
}

func (r *battleInvitationRepositoryImpl) listPending(ctx context.Context, column, userID string) ([]*battle_runtime.BattleInvitation, error) {
	// 列表只做展示过滤，正确性依赖响应时的懒过期检查
	var invitations []*battle_runtime.BattleInvitation
	err := queries.Raw(`
		SELECT `+invitationColumns+`
		FROM battle_runtime.battle_invitations
		WHERE `+column+` = $1 AND status = $2 AND expires_at > $3
		ORDER BY created_at DESC`,
		userID, battle_runtime.InvitationStatusPending, time.Now(),
	).Bind(ctx, r.db, &invitations)

	if err != nil {
		return nil, errors.Wrap(err, "查询待响应邀请列表失败")
	}

	return invitations, nil
}

// ExpireInvitations 过期邀请处理
func (r *battleInvitationRepositoryImpl) ExpireInvitations(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE battle_runtime.battle_invitations
		SET status = $1
		WHERE status = $2 AND expires_at < $3`,
		battle_runtime.InvitationStatusExpired,
		battle_runtime.InvitationStatusPending,
		time.Now(),
	)
	if err != nil {
		return 0, errors.Wrap(err, "过期邀请处理失败")
	}

	return result.RowsAffected()
}

// File: internal/modules/battle/service/invitation_service.go
package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aarondl/null/v8"

	"typeduel-self/internal/entity/battle_runtime"
	"typeduel-self/internal/pkg/log"
	"typeduel-self/internal/pkg/metrics"
	"typeduel-self/internal/pkg/notify"
	"typeduel-self/internal/pkg/xerrors"
	"typeduel-self/internal/repository/interfaces"
)

// InvitationService 对战邀请服务
// 有效期固定 5 分钟，过期在响应时懒判定；后台扫描只服务列表展示
type InvitationService struct {
	invitationRepo interfaces.BattleInvitationRepository
	battleService  *BattleService

	bm      *metrics.BusinessMetrics
	publish battleEventPublisher
}

// NewInvitationService 创建邀请服务
func NewInvitationService(invitationRepo interfaces.BattleInvitationRepository, battleService *BattleService) *InvitationService {
	return &InvitationService{
		invitationRepo: invitationRepo,
		battleService:  battleService,
		publish:        notify.PublishBattleEvent,
	}
}

// SetBusinessMetrics 注入业务指标采集（可选依赖）
func (s *InvitationService) SetBusinessMetrics(bm *metrics.BusinessMetrics) {
	s.bm = bm
}

// InviteInput 发起邀请参数
type InviteInput struct {
	Mode             string
	BattleType       string
	TimeLimitSeconds int
}

// invitationEvent 邀请事件载荷
type invitationEvent struct {
	InvitationID string `json:"invitation_id"`
	FromUserID   string `json:"from_user_id"`
	ToUserID     string `json:"to_user_id"`
	BattleMode   string `json:"battle_mode"`
	BattleType   string `json:"battle_type"`
	ExpiresAt    string `json:"expires_at"`
}

// Invite 向另一个用户发起限时对战邀请
func (s *InvitationService) Invite(ctx context.Context, fromID, toID string, input *InviteInput) (*battle_runtime.BattleInvitation, error) {
	if fromID == toID {
		return nil, xerrors.FromCode(xerrors.CodeSelfInvite)
	}
	if toID == "" {
		return nil, xerrors.NewInvalidArgumentError("to_user_id", "被邀请用户不能为空")
	}
	if err := validateBattleParams(input.Mode, input.BattleType); err != nil {
		return nil, err
	}

	invitation := &battle_runtime.BattleInvitation{
		FromUserID:       fromID,
		ToUserID:         toID,
		BattleMode:       input.Mode,
		BattleType:       input.BattleType,
		TimeLimitSeconds: input.TimeLimitSeconds,
	}
	if err := s.invitationRepo.Create(ctx, invitation); err != nil {
		return nil, xerrors.NewDatabaseError("insert", "battle_invitations", err)
	}

	if err := s.publish(ctx, notify.SubjectBattleInvitation, &invitationEvent{
		InvitationID: invitation.ID,
		FromUserID:   fromID,
		ToUserID:     toID,
		BattleMode:   invitation.BattleMode,
		BattleType:   invitation.BattleType,
		ExpiresAt:    invitation.ExpiresAt.Format(time.RFC3339),
	}); err != nil {
		log.WarnContext(ctx, "发布邀请事件失败",
			log.String("invitation_id", invitation.ID),
			log.Any("error", err))
	}
	return invitation, nil
}

// Respond 响应邀请
// accept=true 时基于邀请参数创建并立即开始对战，返回该对战；拒绝时返回 nil
func (s *InvitationService) Respond(ctx context.Context, invitationID, userID string, accept bool) (*battle_runtime.Battle, error) {
	invitation, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, xerrors.NewInvitationNotFoundError(invitationID)
		}
		return nil, xerrors.NewDatabaseError("select", "battle_invitations", err)
	}
	if invitation.ToUserID != userID {
		return nil, xerrors.FromCode(xerrors.CodeInvitationNotRecipient)
	}
	if !invitation.IsPending() {
		return nil, xerrors.FromCode(xerrors.CodeInvitationResponded)
	}

	now := time.Now()
	if invitation.IsExpired(now) {
		// 懒过期: 先落状态再拒绝本次响应
		invitation.Status = battle_runtime.InvitationStatusExpired
		if err := s.invitationRepo.Update(ctx, nil, invitation); err != nil {
			log.WarnContext(ctx, "落过期邀请状态失败",
				log.String("invitation_id", invitationID),
				log.Any("error", err))
		}
		s.recordInvitation("expired")
		return nil, xerrors.FromCode(xerrors.CodeInvitationExpired)
	}

	if !accept {
		invitation.Status = battle_runtime.InvitationStatusRejected
		invitation.RespondedAt = null.TimeFrom(now)
		if err := s.invitationRepo.Update(ctx, nil, invitation); err != nil {
			return nil, xerrors.NewDatabaseError("update", "battle_invitations", err)
		}
		s.recordInvitation("declined")
		return nil, nil
	}

	battle, err := s.battleService.CreateStarted(ctx, &StartedBattleInput{
		CreatorID:        invitation.FromUserID,
		OpponentID:       invitation.ToUserID,
		Mode:             invitation.BattleMode,
		BattleType:       invitation.BattleType,
		TimeLimitSeconds: invitation.TimeLimitSeconds,
	})
	if err != nil {
		return nil, err
	}

	invitation.Status = battle_runtime.InvitationStatusAccepted
	invitation.BattleID = null.StringFrom(battle.ID)
	invitation.RespondedAt = null.TimeFrom(now)
	if err := s.invitationRepo.Update(ctx, nil, invitation); err != nil {
		// 对战已开打，邀请状态落库失败只能记下来，不回滚对战
		log.ErrorContext(ctx, "接受邀请后更新邀请状态失败",
			log.String("invitation_id", invitationID),
			log.String("battle_id", battle.ID),
			log.Any("error", err))
	}
	s.recordInvitation("accepted")
	return battle, nil
}

// ListIncoming 发给用户的待响应邀请
func (s *InvitationService) ListIncoming(ctx context.Context, userID string) ([]*battle_runtime.BattleInvitation, error) {
	invitations, err := s.invitationRepo.ListPendingByRecipient(ctx, userID)
	if err != nil {
		return nil, xerrors.NewDatabaseError("select", "battle_invitations", err)
	}
	return invitations, nil
}

// ListOutgoing 用户发出的待响应邀请
func (s *InvitationService) ListOutgoing(ctx context.Context, userID string) ([]*battle_runtime.BattleInvitation, error) {
	invitations, err := s.invitationRepo.ListPendingBySender(ctx, userID)
	if err != nil {
		return nil, xerrors.NewDatabaseError("select", "battle_invitations", err)
	}
	return invitations, nil
}

// ExpirePending 批量把已过期的 pending 邀请置为 expired
// 定时任务入口，仅服务列表整洁；正确性不依赖它
func (s *InvitationService) ExpirePending(ctx context.Context) (int64, error) {
	affected, err := s.invitationRepo.ExpireInvitations(ctx)
	if err != nil {
		return 0, xerrors.NewDatabaseError("update", "battle_invitations", err)
	}
	if affected > 0 {
		log.InfoContext(ctx, "批量过期邀请完成", log.Int64("affected", affected))
	}
	return affected, nil
}

func (s *InvitationService) recordInvitation(status string) {
	if s.bm != nil {
		s.bm.RecordInvitation(status, metrics.GetServiceName())
	}
}

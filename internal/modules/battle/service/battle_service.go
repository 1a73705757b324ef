// File: internal/modules/battle/service/battle_service.go
package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aarondl/null/v8"

	"typeduel-self/internal/entity/battle_runtime"
	"typeduel-self/internal/pkg/config"
	"typeduel-self/internal/pkg/log"
	"typeduel-self/internal/pkg/metrics"
	"typeduel-self/internal/pkg/notify"
	"typeduel-self/internal/pkg/xerrors"
	"typeduel-self/internal/repository/interfaces"
)

// 指标合法范围
const (
	MaxWPM      = 1000
	MaxAccuracy = 100
	MaxProgress = 100
)

// 时间参数默认值与上限
const (
	defaultTimeLimitSeconds = 60
	maxTimeLimitSeconds     = 600
	defaultCountdownSeconds = 3
	maxCountdownSeconds     = 10
)

// BattleService 对战生命周期服务
// 状态机: pending -> active -> finished; pending -> cancelled
// 完成检测、积分结算与奖励幂等标记全部收敛在 SubmitResult 的事务里
type BattleService struct {
	db              *sql.DB
	battleRepo      interfaces.BattleRepository
	participantRepo interfaces.BattleParticipantRepository
	challengeRepo   interfaces.ChallengeRepository
	ratingService   *RatingService
	rewardsService  *RewardsService

	bm      *metrics.BusinessMetrics
	publish battleEventPublisher

	// 对手实时准确率是否对外可见（默认完赛前不可见，防止中途针对性压指标）
	liveAccuracyVisible bool
}

// NewBattleService 创建对战生命周期服务
func NewBattleService(
	db *sql.DB,
	battleRepo interfaces.BattleRepository,
	participantRepo interfaces.BattleParticipantRepository,
	challengeRepo interfaces.ChallengeRepository,
	ratingService *RatingService,
	rewardsService *RewardsService,
) *BattleService {
	return &BattleService{
		db:                  db,
		battleRepo:          battleRepo,
		participantRepo:     participantRepo,
		challengeRepo:       challengeRepo,
		ratingService:       ratingService,
		rewardsService:      rewardsService,
		publish:             notify.PublishBattleEvent,
		liveAccuracyVisible: config.GetEnvBoolOrDefault("BATTLE_LIVE_ACCURACY_VISIBLE", false),
	}
}

// SetBusinessMetrics 注入业务指标采集（可选依赖）
func (s *BattleService) SetBusinessMetrics(bm *metrics.BusinessMetrics) {
	s.bm = bm
}

// CreateBattleInput 创建对战参数
type CreateBattleInput struct {
	Mode             string
	BattleType       string
	Difficulty       string
	TimeLimitSeconds int
	CountdownSeconds int
}

// ProgressInput 进度上报参数，落库前统一裁剪到合法范围
type ProgressInput struct {
	WPM             float64
	Accuracy        float64
	Mistakes        int
	ProgressPercent float64
}

// SubmitResultOutput 成绩提交结果
type SubmitResultOutput struct {
	BattleFinished bool           `json:"battle_finished"`
	Outcome        string         `json:"outcome"`             // pending / draw / creator / opponent
	WinnerID       string         `json:"winner_id,omitempty"` // 平局或未结束时为空
	RatingChanges  []RatingChange `json:"rating_changes,omitempty"`
}

// BattleDetail 对战详情视图
type BattleDetail struct {
	Battle       *battle_runtime.Battle              `json:"battle"`
	Participants []*battle_runtime.BattleParticipant `json:"participants"`
	CanJoin      bool                                `json:"can_join"`
	CanPlay      bool                                `json:"can_play"`
}

// OpponentProgress 对手进度视图
// Accuracy 在对手完赛前默认不下发
type OpponentProgress struct {
	Joined          bool         `json:"joined"`
	UserID          string       `json:"user_id,omitempty"`
	WPM             null.Float64 `json:"wpm,omitempty"`
	Accuracy        null.Float64 `json:"accuracy,omitempty"`
	ProgressPercent float64      `json:"progress_percent"`
	IsFinished      bool         `json:"is_finished"`
}

// BattleListing 开放对战与本人最近对战
type BattleListing struct {
	Open []*battle_runtime.Battle `json:"open"`
	Mine []*battle_runtime.Battle `json:"mine"`
}

// battleStartedEvent / battleFinishedEvent 对战状态事件载荷
type battleStartedEvent struct {
	BattleID  string `json:"battle_id"`
	CreatorID string `json:"creator_id"`
	UserID    string `json:"user_id"` // 事件接收方
	Mode      string `json:"mode"`
	AutoMatch bool   `json:"auto_match"`
}

type battleFinishedEvent struct {
	BattleID string `json:"battle_id"`
	UserID   string `json:"user_id"`
	Outcome  string `json:"outcome"`
	WinnerID string `json:"winner_id,omitempty"`
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sanitize 把上报指标裁剪到合法范围
func (in *ProgressInput) sanitize() {
	in.WPM = clampFloat(in.WPM, 0, MaxWPM)
	in.Accuracy = clampFloat(in.Accuracy, 0, MaxAccuracy)
	if in.Mistakes < 0 {
		in.Mistakes = 0
	}
	in.ProgressPercent = clampFloat(in.ProgressPercent, 0, MaxProgress)
}

func validateBattleParams(mode, battleType string) error {
	if mode != battle_runtime.BattleModeText && mode != battle_runtime.BattleModeCode {
		return xerrors.NewInvalidArgumentError("mode", "对战内容模式必须是 text 或 code")
	}
	if !BattleType(battleType).IsValid() {
		return xerrors.NewInvalidArgumentError("battle_type", "未知的对战计分方式: "+battleType)
	}
	return nil
}

// Create 创建等待对手的对战，同时落创建者参与者行
// 没有匹配的挑战内容时失败，不产生半成品数据
func (s *BattleService) Create(ctx context.Context, creatorID string, input *CreateBattleInput) (*battle_runtime.Battle, error) {
	if err := validateBattleParams(input.Mode, input.BattleType); err != nil {
		return nil, err
	}
	timeLimit := input.TimeLimitSeconds
	if timeLimit <= 0 {
		timeLimit = defaultTimeLimitSeconds
	}
	timeLimit = clampInt(timeLimit, 15, maxTimeLimitSeconds)
	countdown := input.CountdownSeconds
	if countdown <= 0 {
		countdown = defaultCountdownSeconds
	}
	countdown = clampInt(countdown, 0, maxCountdownSeconds)

	challenge, err := s.challengeRepo.Random(ctx, input.Mode, input.Difficulty)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, xerrors.FromCode(xerrors.CodeNoChallengeContent)
		}
		return nil, xerrors.NewDatabaseError("select", "challenges", err)
	}

	battle := &battle_runtime.Battle{
		CreatorID:        creatorID,
		Status:           battle_runtime.BattleStatusPending,
		Mode:             input.Mode,
		BattleType:       input.BattleType,
		ChallengeID:      challenge.ID,
		ChallengeBody:    challenge.Body,
		TimeLimitSeconds: timeLimit,
		CountdownSeconds: countdown,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.CodeDatabaseError, "开启事务失败")
	}
	defer tx.Rollback()

	if err := s.battleRepo.Create(ctx, tx, battle); err != nil {
		return nil, xerrors.NewDatabaseError("insert", "battles", err)
	}
	if err := s.participantRepo.Create(ctx, tx, &battle_runtime.BattleParticipant{
		BattleID: battle.ID,
		UserID:   creatorID,
	}); err != nil {
		return nil, xerrors.NewDatabaseError("insert", "battle_participants", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, xerrors.Wrap(err, xerrors.CodeDatabaseError, "提交事务失败")
	}

	log.InfoContext(ctx, "对战已创建",
		log.String("battle_id", battle.ID),
		log.String("creator_id", creatorID),
		log.String("battle_type", battle.BattleType))
	return battle, nil
}

// Join 加入等待中的对战并立即开始
func (s *BattleService) Join(ctx context.Context, battleID, userID string) (*battle_runtime.Battle, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.CodeDatabaseError, "开启事务失败")
	}
	defer tx.Rollback()

	battle, err := s.battleRepo.GetByIDForUpdate(ctx, tx, battleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, xerrors.NewBattleNotFoundError(battleID)
		}
		return nil, xerrors.NewDatabaseError("lock", "battles", err)
	}
	if battle.OpponentID.Valid {
		return nil, xerrors.NewBattleStateError(xerrors.CodeBattleAlreadyJoined, battleID, battle.Status)
	}
	if userID == battle.CreatorID {
		return nil, xerrors.FromCode(xerrors.CodeBattleSelfJoin)
	}
	if !battle.IsPending() {
		return nil, xerrors.NewBattleStateError(xerrors.CodeBattleNotJoinable, battleID, battle.Status)
	}

	now := time.Now()
	battle.OpponentID = null.StringFrom(userID)
	battle.Status = battle_runtime.BattleStatusActive
	battle.StartedAt = null.TimeFrom(now)
	battle.UpdatedAt = now
	if err := s.battleRepo.Update(ctx, tx, battle); err != nil {
		return nil, xerrors.NewDatabaseError("update", "battles", err)
	}
	if err := s.participantRepo.Create(ctx, tx, &battle_runtime.BattleParticipant{
		BattleID: battle.ID,
		UserID:   userID,
	}); err != nil {
		return nil, xerrors.NewDatabaseError("insert", "battle_participants", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, xerrors.Wrap(err, xerrors.CodeDatabaseError, "提交事务失败")
	}

	s.notifyStarted(ctx, battle)
	return battle, nil
}

// UpdateProgress 进行中的进度上报，不改变完赛状态
func (s *BattleService) UpdateProgress(ctx context.Context, battleID, userID string, input *ProgressInput) error {
	input.sanitize()

	battle, err := s.getBattle(ctx, battleID)
	if err != nil {
		return err
	}
	if !battle.IsParticipant(userID) {
		return xerrors.NewNotParticipantError(battleID, userID)
	}
	if !battle.IsActive() {
		return xerrors.NewBattleStateError(xerrors.CodeBattleNotActive, battleID, battle.Status)
	}

	participant, err := s.participantRepo.Get(ctx, battleID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return xerrors.NewNotParticipantError(battleID, userID)
		}
		return xerrors.NewDatabaseError("select", "battle_participants", err)
	}
	if participant.IsFinished {
		// 完赛后的迟到上报直接忽略，不算错误
		return nil
	}

	participant.WPM = null.Float64From(input.WPM)
	participant.Accuracy = null.Float64From(input.Accuracy)
	participant.Mistakes = input.Mistakes
	participant.ProgressPercent = input.ProgressPercent
	participant.UpdatedAt = time.Now()
	if err := s.participantRepo.Update(ctx, nil, participant); err != nil {
		return xerrors.NewDatabaseError("update", "battle_participants", err)
	}
	return nil
}

// SubmitResult 提交最终成绩
// 整个完成检测在一个事务里: 对战行加锁 -> 写终态参与者 -> 双方完赛则
// 裁决 + 结算积分 + 翻转奖励幂等标记。事件与奖励发放在提交后尽力而为。
func (s *BattleService) SubmitResult(ctx context.Context, battleID, userID string, input *ProgressInput) (*SubmitResultOutput, error) {
	input.sanitize()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.CodeDatabaseError, "开启事务失败")
	}
	defer tx.Rollback()

	battle, err := s.battleRepo.GetByIDForUpdate(ctx, tx, battleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, xerrors.NewBattleNotFoundError(battleID)
		}
		return nil, xerrors.NewDatabaseError("lock", "battles", err)
	}
	if !battle.IsParticipant(userID) {
		return nil, xerrors.NewNotParticipantError(battleID, userID)
	}
	if !battle.IsActive() {
		return nil, xerrors.NewBattleStateError(xerrors.CodeBattleNotActive, battleID, battle.Status)
	}

	participant, err := s.participantRepo.GetForUpdate(ctx, tx, battleID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, xerrors.NewNotParticipantError(battleID, userID)
		}
		return nil, xerrors.NewDatabaseError("lock", "battle_participants", err)
	}
	if participant.IsFinished {
		return nil, xerrors.NewBattleStateError(xerrors.CodeResultAlreadySaved, battleID, battle.Status)
	}

	now := time.Now()
	participant.WPM = null.Float64From(input.WPM)
	participant.Accuracy = null.Float64From(input.Accuracy)
	participant.Mistakes = input.Mistakes
	participant.ProgressPercent = input.ProgressPercent
	participant.IsFinished = true
	participant.FinishedAt = null.TimeFrom(now)
	participant.UpdatedAt = now
	if err := s.participantRepo.Update(ctx, tx, participant); err != nil {
		return nil, xerrors.NewDatabaseError("update", "battle_participants", err)
	}

	participants, err := s.participantRepo.ListByBattle(ctx, tx, battleID)
	if err != nil {
		return nil, xerrors.NewDatabaseError("select", "battle_participants", err)
	}
	creator, opponent := splitParticipants(battle, participants)

	outcome, err := ResolveWinner(BattleType(battle.BattleType), creator, opponent)
	if err != nil {
		return nil, err
	}

	out := &SubmitResultOutput{Outcome: outcome.String()}
	var changes []RatingChange
	var settledRows []*battle_runtime.BattleRating

	if outcome.IsDecided() && !battle.RewardsGranted {
		battle.Status = battle_runtime.BattleStatusFinished
		battle.FinishedAt = null.TimeFrom(now)
		battle.RewardsGranted = true
		battle.UpdatedAt = now
		switch outcome {
		case OutcomeCreator:
			battle.WinnerID = null.StringFrom(battle.CreatorID)
		case OutcomeOpponent:
			battle.WinnerID = battle.OpponentID
		}
		if err := s.battleRepo.Update(ctx, tx, battle); err != nil {
			return nil, xerrors.NewDatabaseError("update", "battles", err)
		}

		changes, settledRows, err = s.ratingService.ApplyResult(ctx, tx, battle.CreatorID, battle.OpponentID.String, outcome)
		if err != nil {
			return nil, err
		}
		out.BattleFinished = true
		out.WinnerID = battle.WinnerID.String
		out.RatingChanges = changes
	}

	if err := tx.Commit(); err != nil {
		return nil, xerrors.Wrap(err, xerrors.CodeDatabaseError, "提交事务失败")
	}

	if out.BattleFinished {
		s.afterFinished(ctx, battle, outcome, changes, settledRows)
	}
	return out, nil
}

// afterFinished 提交成功后的副作用: 事件、奖励、指标
// 全部尽力而为，失败只记日志，绝不影响已提交的对战结果
func (s *BattleService) afterFinished(ctx context.Context, battle *battle_runtime.Battle, outcome Outcome, changes []RatingChange, ratings []*battle_runtime.BattleRating) {
	for _, uid := range []string{battle.CreatorID, battle.OpponentID.String} {
		if uid == "" {
			continue
		}
		if err := s.publish(ctx, notify.SubjectBattleFinished, &battleFinishedEvent{
			BattleID: battle.ID,
			UserID:   uid,
			Outcome:  outcome.String(),
			WinnerID: battle.WinnerID.String,
		}); err != nil {
			log.WarnContext(ctx, "发布对战结束事件失败",
				log.String("battle_id", battle.ID),
				log.Any("error", err))
		}
	}

	s.rewardsService.Grant(ctx, battle, outcome, ratings)

	if s.bm != nil {
		duration := time.Duration(0)
		if battle.StartedAt.Valid && battle.FinishedAt.Valid {
			duration = battle.FinishedAt.Time.Sub(battle.StartedAt.Time)
		}
		s.bm.RecordBattle(battle.BattleType, outcome.String(), duration, metrics.GetServiceName())
		for _, change := range changes {
			s.bm.RecordRatingDelta(change.Delta, metrics.GetServiceName())
		}
	}
}

// notifyStarted 对战开始事件，双方各发一条
func (s *BattleService) notifyStarted(ctx context.Context, battle *battle_runtime.Battle) {
	for _, uid := range []string{battle.CreatorID, battle.OpponentID.String} {
		if uid == "" {
			continue
		}
		if err := s.publish(ctx, notify.SubjectBattleStarted, &battleStartedEvent{
			BattleID:  battle.ID,
			CreatorID: battle.CreatorID,
			UserID:    uid,
			Mode:      battle.Mode,
			AutoMatch: battle.IsAutoMatch,
		}); err != nil {
			log.WarnContext(ctx, "发布对战开始事件失败",
				log.String("battle_id", battle.ID),
				log.Any("error", err))
		}
	}
}

// splitParticipants 把参与者行映射回 creator/opponent 两侧
func splitParticipants(battle *battle_runtime.Battle, participants []*battle_runtime.BattleParticipant) (creator, opponent *battle_runtime.BattleParticipant) {
	for _, p := range participants {
		switch {
		case p.UserID == battle.CreatorID:
			creator = p
		case battle.OpponentID.Valid && p.UserID == battle.OpponentID.String:
			opponent = p
		}
	}
	return creator, opponent
}

// Rematch 基于已结束的对战再来一局
// 双方已知，直接创建并开始，跳过 join 阶段；挑战内容沿用原快照
func (s *BattleService) Rematch(ctx context.Context, originalBattleID, requesterID string) (*battle_runtime.Battle, error) {
	original, err := s.getBattle(ctx, originalBattleID)
	if err != nil {
		return nil, err
	}
	if !original.IsParticipant(requesterID) {
		return nil, xerrors.NewNotParticipantError(originalBattleID, requesterID)
	}
	if !original.IsFinished() {
		return nil, xerrors.NewBattleStateError(xerrors.CodeBattleNotFinished, originalBattleID, original.Status)
	}
	otherID := original.OtherParticipant(requesterID)
	if otherID == "" {
		return nil, xerrors.NewBattleStateError(xerrors.CodeBattleStateConflict, originalBattleID, original.Status)
	}

	return s.CreateStarted(ctx, &StartedBattleInput{
		CreatorID:        requesterID,
		OpponentID:       otherID,
		Mode:             original.Mode,
		BattleType:       original.BattleType,
		ChallengeID:      original.ChallengeID,
		ChallengeBody:    original.ChallengeBody,
		TimeLimitSeconds: original.TimeLimitSeconds,
		CountdownSeconds: original.CountdownSeconds,
		RematchOf:        original.ID,
	})
}

// StartedBattleInput 双方已知、直接进入 active 的对战参数
// 用于 rematch、快速匹配和邀请接受这三条预绑定入口
type StartedBattleInput struct {
	CreatorID        string
	OpponentID       string
	Mode             string
	BattleType       string
	Difficulty       string
	ChallengeID      string
	ChallengeBody    string
	TimeLimitSeconds int
	CountdownSeconds int
	RematchOf        string
	IsAutoMatch      bool
}

// CreateStarted 创建一场双方都已绑定并立即开始的对战
// ChallengeID 为空时按 mode/difficulty 现取内容
func (s *BattleService) CreateStarted(ctx context.Context, input *StartedBattleInput) (*battle_runtime.Battle, error) {
	if err := validateBattleParams(input.Mode, input.BattleType); err != nil {
		return nil, err
	}
	if input.CreatorID == input.OpponentID {
		return nil, xerrors.FromCode(xerrors.CodeBattleSelfJoin)
	}
	if input.ChallengeID == "" {
		challenge, err := s.challengeRepo.Random(ctx, input.Mode, input.Difficulty)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, xerrors.FromCode(xerrors.CodeNoChallengeContent)
			}
			return nil, xerrors.NewDatabaseError("select", "challenges", err)
		}
		input.ChallengeID = challenge.ID
		input.ChallengeBody = challenge.Body
	}
	timeLimit := input.TimeLimitSeconds
	if timeLimit <= 0 {
		timeLimit = defaultTimeLimitSeconds
	}
	countdown := input.CountdownSeconds
	if countdown <= 0 {
		countdown = defaultCountdownSeconds
	}

	now := time.Now()
	battle := &battle_runtime.Battle{
		CreatorID:        input.CreatorID,
		OpponentID:       null.StringFrom(input.OpponentID),
		Status:           battle_runtime.BattleStatusActive,
		Mode:             input.Mode,
		BattleType:       input.BattleType,
		ChallengeID:      input.ChallengeID,
		ChallengeBody:    input.ChallengeBody,
		TimeLimitSeconds: clampInt(timeLimit, 15, maxTimeLimitSeconds),
		CountdownSeconds: clampInt(countdown, 0, maxCountdownSeconds),
		IsAutoMatch:      input.IsAutoMatch,
		StartedAt:        null.TimeFrom(now),
	}
	if input.RematchOf != "" {
		battle.RematchOf = null.StringFrom(input.RematchOf)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.CodeDatabaseError, "开启事务失败")
	}
	defer tx.Rollback()

	if err := s.battleRepo.Create(ctx, tx, battle); err != nil {
		return nil, xerrors.NewDatabaseError("insert", "battles", err)
	}
	for _, uid := range []string{input.CreatorID, input.OpponentID} {
		if err := s.participantRepo.Create(ctx, tx, &battle_runtime.BattleParticipant{
			BattleID: battle.ID,
			UserID:   uid,
		}); err != nil {
			return nil, xerrors.NewDatabaseError("insert", "battle_participants", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, xerrors.Wrap(err, xerrors.CodeDatabaseError, "提交事务失败")
	}

	s.notifyStarted(ctx, battle)
	return battle, nil
}

// Cancel 取消等待中的对战，仅创建者可操作
func (s *BattleService) Cancel(ctx context.Context, battleID, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return xerrors.Wrap(err, xerrors.CodeDatabaseError, "开启事务失败")
	}
	defer tx.Rollback()

	battle, err := s.battleRepo.GetByIDForUpdate(ctx, tx, battleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return xerrors.NewBattleNotFoundError(battleID)
		}
		return xerrors.NewDatabaseError("lock", "battles", err)
	}
	if battle.CreatorID != userID {
		return xerrors.NewNotParticipantError(battleID, userID)
	}
	if !battle.IsPending() {
		return xerrors.NewBattleStateError(xerrors.CodeBattleStateConflict, battleID, battle.Status)
	}

	battle.Status = battle_runtime.BattleStatusCancelled
	battle.UpdatedAt = time.Now()
	if err := s.battleRepo.Update(ctx, tx, battle); err != nil {
		return xerrors.NewDatabaseError("update", "battles", err)
	}
	if err := tx.Commit(); err != nil {
		return xerrors.Wrap(err, xerrors.CodeDatabaseError, "提交事务失败")
	}
	return nil
}

// Get 对战详情，包含双方参与者与请求者视角的操作标记
func (s *BattleService) Get(ctx context.Context, battleID, viewerID string) (*BattleDetail, error) {
	battle, err := s.getBattle(ctx, battleID)
	if err != nil {
		return nil, err
	}
	participants, err := s.participantRepo.ListByBattle(ctx, nil, battleID)
	if err != nil {
		return nil, xerrors.NewDatabaseError("select", "battle_participants", err)
	}
	return &BattleDetail{
		Battle:       battle,
		Participants: participants,
		CanJoin:      battle.CanJoin(viewerID),
		CanPlay:      battle.IsActive() && battle.IsParticipant(viewerID),
	}, nil
}

// ListOpen 开放对战列表 + 请求者最近参与的对战
func (s *BattleService) ListOpen(ctx context.Context, userID string, limit int) (*BattleListing, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	open, err := s.battleRepo.ListOpen(ctx, userID, limit)
	if err != nil {
		return nil, xerrors.NewDatabaseError("select", "battles", err)
	}
	mine, err := s.battleRepo.ListRecentByUser(ctx, userID, limit)
	if err != nil {
		return nil, xerrors.NewDatabaseError("select", "battles", err)
	}
	return &BattleListing{Open: open, Mine: mine}, nil
}

// GetOpponentProgress 请求者视角的对手进度
// 对手完赛前准确率默认不下发，可通过 BATTLE_LIVE_ACCURACY_VISIBLE 打开
func (s *BattleService) GetOpponentProgress(ctx context.Context, battleID, userID string) (*OpponentProgress, error) {
	battle, err := s.getBattle(ctx, battleID)
	if err != nil {
		return nil, err
	}
	if !battle.IsParticipant(userID) {
		return nil, xerrors.NewNotParticipantError(battleID, userID)
	}
	opponentID := battle.OtherParticipant(userID)
	if opponentID == "" {
		return &OpponentProgress{Joined: false}, nil
	}

	opponent, err := s.participantRepo.Get(ctx, battleID, opponentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &OpponentProgress{Joined: false}, nil
		}
		return nil, xerrors.NewDatabaseError("select", "battle_participants", err)
	}

	progress := &OpponentProgress{
		Joined:          true,
		UserID:          opponentID,
		WPM:             opponent.WPM,
		ProgressPercent: opponent.ProgressPercent,
		IsFinished:      opponent.IsFinished,
	}
	if opponent.IsFinished || s.liveAccuracyVisible {
		progress.Accuracy = opponent.Accuracy
	}
	return progress, nil
}

func (s *BattleService) getBattle(ctx context.Context, battleID string) (*battle_runtime.Battle, error) {
	battle, err := s.battleRepo.GetByID(ctx, battleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, xerrors.NewBattleNotFoundError(battleID)
		}
		return nil, xerrors.NewDatabaseError("select", "battles", err)
	}
	return battle, nil
}

// File: internal/modules/battle/service/matchmaking_service.go
package service

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"

	"typeduel-self/internal/entity/battle_runtime"
	"typeduel-self/internal/pkg/log"
	"typeduel-self/internal/pkg/metrics"
	"typeduel-self/internal/pkg/xerrors"
	"typeduel-self/internal/repository/interfaces"
)

// MatchBandWidth 优先匹配的积分带宽（±）
const MatchBandWidth = 200

// activeUserSource 在线用户来源，由 PresenceService 实现
type activeUserSource interface {
	ActiveUsers(ctx context.Context) ([]string, error)
}

// MatchmakingService 匹配服务
// 先在积分 ±200 带内随机挑对手，带内无人则在全部在线用户里随机兜底
type MatchmakingService struct {
	presence      activeUserSource
	ratingRepo    interfaces.BattleRatingRepository
	battleService *BattleService

	bm *metrics.BusinessMetrics
}

// NewMatchmakingService 创建匹配服务
func NewMatchmakingService(presence activeUserSource, ratingRepo interfaces.BattleRatingRepository, battleService *BattleService) *MatchmakingService {
	return &MatchmakingService{
		presence:      presence,
		ratingRepo:    ratingRepo,
		battleService: battleService,
	}
}

// SetBusinessMetrics 注入业务指标采集（可选依赖）
func (s *MatchmakingService) SetBusinessMetrics(bm *metrics.BusinessMetrics) {
	s.bm = bm
}

// FindOpponent 为用户找一个对手，找不到时返回空字符串（不是错误）
func (s *MatchmakingService) FindOpponent(ctx context.Context, userID string) (string, error) {
	candidates, err := s.presence.ActiveUsers(ctx)
	if err != nil {
		return "", err
	}
	candidates = removeString(candidates, userID)
	if len(candidates) == 0 {
		s.recordResult("none")
		return "", nil
	}

	myRating := battle_runtime.DefaultRating
	if row, err := s.ratingRepo.GetByUser(ctx, userID); err == nil {
		myRating = row.Rating
	} else if !errors.Is(err, sql.ErrNoRows) {
		return "", xerrors.NewDatabaseError("select", "battle_ratings", err)
	}

	inBand, err := s.inBandCandidates(ctx, candidates, myRating)
	if err != nil {
		return "", err
	}
	if len(inBand) > 0 {
		s.recordResult("matched")
		return inBand[rand.Intn(len(inBand))], nil
	}

	// 带内无人，随机兜底，宁可积分差距大也不让用户空等
	s.recordResult("fallback")
	return candidates[rand.Intn(len(candidates))], nil
}

// inBandCandidates 过滤出积分在 ±MatchBandWidth 内的候选
// 没有积分行的候选按默认积分参与过滤
func (s *MatchmakingService) inBandCandidates(ctx context.Context, candidates []string, myRating int) ([]string, error) {
	rows, err := s.ratingRepo.ListByUsers(ctx, candidates)
	if err != nil {
		return nil, xerrors.NewDatabaseError("select", "battle_ratings", err)
	}
	ratingByUser := make(map[string]int, len(rows))
	for _, row := range rows {
		ratingByUser[row.UserID] = row.Rating
	}

	var inBand []string
	for _, candidate := range candidates {
		rating, ok := ratingByUser[candidate]
		if !ok {
			rating = battle_runtime.DefaultRating
		}
		diff := rating - myRating
		if diff < 0 {
			diff = -diff
		}
		if diff <= MatchBandWidth {
			inBand = append(inBand, candidate)
		}
	}
	return inBand, nil
}

// QuickMatch 快速匹配并立即开战
// 无可用对手时返回可重试的 NoOpponentAvailable
func (s *MatchmakingService) QuickMatch(ctx context.Context, userID string, input *CreateBattleInput) (*battle_runtime.Battle, error) {
	opponentID, err := s.FindOpponent(ctx, userID)
	if err != nil {
		return nil, err
	}
	if opponentID == "" {
		return nil, xerrors.FromCode(xerrors.CodeNoOpponentAvailable)
	}

	battle, err := s.battleService.CreateStarted(ctx, &StartedBattleInput{
		CreatorID:        userID,
		OpponentID:       opponentID,
		Mode:             input.Mode,
		BattleType:       input.BattleType,
		Difficulty:       input.Difficulty,
		TimeLimitSeconds: input.TimeLimitSeconds,
		CountdownSeconds: input.CountdownSeconds,
		IsAutoMatch:      true,
	})
	if err != nil {
		return nil, err
	}

	log.InfoContext(ctx, "快速匹配成功",
		log.String("battle_id", battle.ID),
		log.String("user_id", userID),
		log.String("opponent_id", opponentID))
	return battle, nil
}

func (s *MatchmakingService) recordResult(result string) {
	if s.bm != nil {
		s.bm.RecordMatchmaking(result, metrics.GetServiceName())
	}
}

func removeString(items []string, target string) []string {
	out := items[:0]
	for _, item := range items {
		if item != target {
			out = append(out, item)
		}
	}
	return out
}

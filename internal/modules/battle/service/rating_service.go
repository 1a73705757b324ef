// File: internal/modules/battle/service/rating_service.go
package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/volatiletech/sqlboiler/v4/boil"

	"typeduel-self/internal/entity/battle_runtime"
	"typeduel-self/internal/pkg/xerrors"
	"typeduel-self/internal/repository/interfaces"
)

// EloKFactor 积分变动系数，所有用户统一
const EloKFactor = 32

// RatingService 对战积分服务，实现 Elo 结算与战绩统计
type RatingService struct {
	ratingRepo interfaces.BattleRatingRepository
}

// NewRatingService 创建积分服务
func NewRatingService(ratingRepo interfaces.BattleRatingRepository) *RatingService {
	return &RatingService{ratingRepo: ratingRepo}
}

// EloExpected 返回 a 对 b 的期望胜率
func EloExpected(ratingA, ratingB int) float64 {
	return 1 / (1 + math.Pow(10, float64(ratingB-ratingA)/400))
}

// EloDelta 返回 a 的积分变动，向零截断
// score: 胜=1 平=0.5 负=0
func EloDelta(ratingA, ratingB int, score float64) int {
	return int(EloKFactor * (score - EloExpected(ratingA, ratingB)))
}

// RatingChange 一次结算中单个用户的积分变化
type RatingChange struct {
	UserID    string `json:"user_id"`
	OldRating int    `json:"old_rating"`
	NewRating int    `json:"new_rating"`
	Delta     int    `json:"delta"`
}

// ApplyResult 在调用方事务内结算一场对战的积分与战绩
// outcome 必须是终局裁决（OutcomePending 会被拒绝）
// 两行积分按 user_id 升序加锁，避免并发结算互相死锁
// 返回积分变化和结算后的两行积分（creator 在前）
func (s *RatingService) ApplyResult(ctx context.Context, tx boil.ContextExecutor, creatorID, opponentID string, outcome Outcome) ([]RatingChange, []*battle_runtime.BattleRating, error) {
	if !outcome.IsDecided() {
		return nil, nil, xerrors.New(xerrors.CodeBattleNotFinished, "对战尚未产生终局裁决，不能结算积分")
	}

	first, second := creatorID, opponentID
	if second < first {
		first, second = second, first
	}
	firstRow, err := s.ratingRepo.GetOrCreateForUpdate(ctx, tx, first)
	if err != nil {
		return nil, nil, xerrors.NewDatabaseError("lock", "battle_ratings", err)
	}
	secondRow, err := s.ratingRepo.GetOrCreateForUpdate(ctx, tx, second)
	if err != nil {
		return nil, nil, xerrors.NewDatabaseError("lock", "battle_ratings", err)
	}

	creatorRow, opponentRow := firstRow, secondRow
	if creatorRow.UserID != creatorID {
		creatorRow, opponentRow = secondRow, firstRow
	}

	var creatorScore float64
	switch outcome {
	case OutcomeCreator:
		creatorScore = 1
	case OutcomeDraw:
		creatorScore = 0.5
	case OutcomeOpponent:
		creatorScore = 0
	}

	creatorDelta := EloDelta(creatorRow.Rating, opponentRow.Rating, creatorScore)
	opponentDelta := EloDelta(opponentRow.Rating, creatorRow.Rating, 1-creatorScore)

	changes := []RatingChange{
		{UserID: creatorID, OldRating: creatorRow.Rating, NewRating: creatorRow.Rating + creatorDelta, Delta: creatorDelta},
		{UserID: opponentID, OldRating: opponentRow.Rating, NewRating: opponentRow.Rating + opponentDelta, Delta: opponentDelta},
	}

	now := time.Now()
	applyOutcomeToRow(creatorRow, creatorScore, creatorDelta, now)
	applyOutcomeToRow(opponentRow, 1-creatorScore, opponentDelta, now)

	if err := s.ratingRepo.Update(ctx, tx, creatorRow); err != nil {
		return nil, nil, xerrors.NewDatabaseError("update", "battle_ratings", err)
	}
	if err := s.ratingRepo.Update(ctx, tx, opponentRow); err != nil {
		return nil, nil, xerrors.NewDatabaseError("update", "battle_ratings", err)
	}
	return changes, []*battle_runtime.BattleRating{creatorRow, opponentRow}, nil
}

// applyOutcomeToRow 把单边结果写入积分行
func applyOutcomeToRow(row *battle_runtime.BattleRating, score float64, delta int, now time.Time) {
	row.Rating += delta
	row.TotalBattles++
	switch score {
	case 1:
		row.Wins++
		row.WinStreak++
		if row.WinStreak > row.BestWinStreak {
			row.BestWinStreak = row.WinStreak
		}
	case 0.5:
		row.Draws++
		row.WinStreak = 0
	default:
		row.Losses++
		row.WinStreak = 0
	}
	row.UpdatedAt = now
}

// GetUserRating 获取用户积分，从未对战过的用户返回默认初始行
func (s *RatingService) GetUserRating(ctx context.Context, userID string) (*battle_runtime.BattleRating, error) {
	rating, err := s.ratingRepo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return battle_runtime.NewBattleRating(userID), nil
		}
		return nil, xerrors.NewDatabaseError("select", "battle_ratings", err)
	}
	return rating, nil
}

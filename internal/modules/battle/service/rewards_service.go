// File: internal/modules/battle/service/rewards_service.go
package service

import (
	"context"

	"typeduel-self/internal/entity/battle_runtime"
	"typeduel-self/internal/pkg/log"
	"typeduel-self/internal/pkg/notify"
)

// XP 奖励额度
const (
	XPWin  = 100
	XPLoss = 30
	XPDraw = 50
)

// 徽章阈值
const (
	BadgeBattleWinner    = "Battle Winner"
	BadgeUndefeated      = "Undefeated"
	badgeWinsThreshold   = 10
	badgeStreakThreshold = 5
)

// battleEventPublisher 事件发布函数，默认为 notify.PublishBattleEvent
type battleEventPublisher func(ctx context.Context, subject string, payload interface{}) error

// RewardsService 对战奖励服务
// 奖励通过事件发布给用户服务落账，发布失败只记警告，不回滚对战结果
type RewardsService struct {
	publish battleEventPublisher
}

// NewRewardsService 创建奖励服务
func NewRewardsService() *RewardsService {
	return &RewardsService{publish: notify.PublishBattleEvent}
}

// XPAwardEvent 经验奖励事件载荷
type XPAwardEvent struct {
	BattleID string `json:"battle_id"`
	UserID   string `json:"user_id"`
	Amount   int    `json:"amount"`
	Reason   string `json:"reason"` // win / loss / draw
}

// BadgeAwardEvent 徽章奖励事件载荷
type BadgeAwardEvent struct {
	BattleID string `json:"battle_id"`
	UserID   string `json:"user_id"`
	Badge    string `json:"badge"`
}

// xpForOutcome 按单边结果返回经验额度
func xpForOutcome(won bool, draw bool) (int, string) {
	switch {
	case draw:
		return XPDraw, "draw"
	case won:
		return XPWin, "win"
	default:
		return XPLoss, "loss"
	}
}

// Grant 发放一场对战的奖励
// 调用方保证每场对战只调用一次（rewards_granted 幂等标记在结算事务内翻转）
func (s *RewardsService) Grant(ctx context.Context, battle *battle_runtime.Battle, outcome Outcome, ratings []*battle_runtime.BattleRating) {
	if !outcome.IsDecided() {
		return
	}
	draw := outcome == OutcomeDraw

	for _, userID := range []string{battle.CreatorID, battle.OpponentID.String} {
		if userID == "" {
			continue
		}
		won := battle.WinnerID.Valid && battle.WinnerID.String == userID
		amount, reason := xpForOutcome(won, draw)
		s.publishEvent(ctx, notify.SubjectXPAwarded, &XPAwardEvent{
			BattleID: battle.ID,
			UserID:   userID,
			Amount:   amount,
			Reason:   reason,
		})
	}

	for _, rating := range ratings {
		for _, badge := range earnedBadges(rating) {
			s.publishEvent(ctx, notify.SubjectBadgeAwarded, &BadgeAwardEvent{
				BattleID: battle.ID,
				UserID:   rating.UserID,
				Badge:    badge,
			})
		}
	}
}

// earnedBadges 返回这次结算恰好跨过阈值的徽章
// 用等值判断保证每个徽章只在第一次达到时发一次
func earnedBadges(rating *battle_runtime.BattleRating) []string {
	var badges []string
	if rating.Wins == badgeWinsThreshold {
		badges = append(badges, BadgeBattleWinner)
	}
	if rating.WinStreak == badgeStreakThreshold {
		badges = append(badges, BadgeUndefeated)
	}
	return badges
}

func (s *RewardsService) publishEvent(ctx context.Context, subject string, payload interface{}) {
	if err := s.publish(ctx, subject, payload); err != nil {
		log.WarnContext(ctx, "发布奖励事件失败",
			log.String("subject", subject),
			log.Any("error", err))
	}
}

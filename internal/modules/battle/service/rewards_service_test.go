package service

import (
	"context"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/require"

	"typeduel-self/internal/entity/battle_runtime"
	"typeduel-self/internal/pkg/notify"
)

type publishedEvent struct {
	subject string
	payload interface{}
}

func rewardsServiceWithRecorder() (*RewardsService, *[]publishedEvent) {
	var events []publishedEvent
	svc := NewRewardsService()
	svc.publish = func(ctx context.Context, subject string, payload interface{}) error {
		events = append(events, publishedEvent{subject: subject, payload: payload})
		return nil
	}
	return svc, &events
}

func TestRewardsGrantWinnerAndLoserXP(t *testing.T) {
	svc, events := rewardsServiceWithRecorder()
	battle := &battle_runtime.Battle{
		ID:         "battle-1",
		CreatorID:  "user-a",
		OpponentID: null.StringFrom("user-b"),
		WinnerID:   null.StringFrom("user-a"),
	}

	svc.Grant(context.Background(), battle, OutcomeCreator, nil)
	require.Len(t, *events, 2)

	winner := (*events)[0].payload.(*XPAwardEvent)
	require.Equal(t, notify.SubjectXPAwarded, (*events)[0].subject)
	require.Equal(t, "user-a", winner.UserID)
	require.Equal(t, XPWin, winner.Amount)
	require.Equal(t, "win", winner.Reason)

	loser := (*events)[1].payload.(*XPAwardEvent)
	require.Equal(t, "user-b", loser.UserID)
	require.Equal(t, XPLoss, loser.Amount)
	require.Equal(t, "loss", loser.Reason)
}

func TestRewardsGrantDrawXP(t *testing.T) {
	svc, events := rewardsServiceWithRecorder()
	battle := &battle_runtime.Battle{
		ID:         "battle-2",
		CreatorID:  "user-a",
		OpponentID: null.StringFrom("user-b"),
	}

	svc.Grant(context.Background(), battle, OutcomeDraw, nil)
	require.Len(t, *events, 2)
	for _, ev := range *events {
		xp := ev.payload.(*XPAwardEvent)
		require.Equal(t, XPDraw, xp.Amount)
		require.Equal(t, "draw", xp.Reason)
	}
}

func TestRewardsGrantBadgesAtExactThreshold(t *testing.T) {
	svc, events := rewardsServiceWithRecorder()
	battle := &battle_runtime.Battle{
		ID:         "battle-3",
		CreatorID:  "user-a",
		OpponentID: null.StringFrom("user-b"),
		WinnerID:   null.StringFrom("user-a"),
	}
	ratings := []*battle_runtime.BattleRating{
		{UserID: "user-a", Wins: 10, WinStreak: 5},
		{UserID: "user-b", Wins: 11, WinStreak: 0},
	}

	svc.Grant(context.Background(), battle, OutcomeCreator, ratings)

	var badges []string
	for _, ev := range *events {
		if ev.subject == notify.SubjectBadgeAwarded {
			badge := ev.payload.(*BadgeAwardEvent)
			require.Equal(t, "user-a", badge.UserID)
			badges = append(badges, badge.Badge)
		}
	}
	// 恰好第 10 胜 + 恰好 5 连胜，各发一次；user-b 已过阈值不重复发
	require.ElementsMatch(t, []string{BadgeBattleWinner, BadgeUndefeated}, badges)
}

func TestRewardsGrantSkipsPendingOutcome(t *testing.T) {
	svc, events := rewardsServiceWithRecorder()
	svc.Grant(context.Background(), &battle_runtime.Battle{ID: "battle-4", CreatorID: "user-a"}, OutcomePending, nil)
	require.Empty(t, *events)
}

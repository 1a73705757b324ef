package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"typeduel-self/internal/entity/battle_runtime"
	"typeduel-self/internal/pkg/xerrors"
)

type fakeActiveUsers struct {
	users []string
	err   error
}

func (f *fakeActiveUsers) ActiveUsers(ctx context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]string, len(f.users))
	copy(out, f.users)
	return out, nil
}

func TestFindOpponentPrefersInBand(t *testing.T) {
	ratings := newFakeRatingRepo()
	ratings.rows["user-700"] = &battle_runtime.BattleRating{UserID: "user-700", Rating: 700}
	ratings.rows["user-1100"] = &battle_runtime.BattleRating{UserID: "user-1100", Rating: 1100}
	ratings.rows["user-1600"] = &battle_runtime.BattleRating{UserID: "user-1600", Rating: 1600}
	ratings.rows["me"] = &battle_runtime.BattleRating{UserID: "me", Rating: 1000}

	presence := &fakeActiveUsers{users: []string{"me", "user-700", "user-1100", "user-1600"}}
	svc := NewMatchmakingService(presence, ratings, nil)

	// 多次试验里只允许命中带内候选，带外的绝不被选中
	for i := 0; i < 100; i++ {
		opponent, err := svc.FindOpponent(context.Background(), "me")
		require.NoError(t, err)
		require.Equal(t, "user-1100", opponent)
	}
}

func TestFindOpponentFallsBackWhenNoInBand(t *testing.T) {
	ratings := newFakeRatingRepo()
	ratings.rows["user-700"] = &battle_runtime.BattleRating{UserID: "user-700", Rating: 700}
	ratings.rows["user-1600"] = &battle_runtime.BattleRating{UserID: "user-1600", Rating: 1600}
	ratings.rows["me"] = &battle_runtime.BattleRating{UserID: "me", Rating: 1000}

	presence := &fakeActiveUsers{users: []string{"user-700", "user-1600"}}
	svc := NewMatchmakingService(presence, ratings, nil)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		opponent, err := svc.FindOpponent(context.Background(), "me")
		require.NoError(t, err)
		require.Contains(t, []string{"user-700", "user-1600"}, opponent)
		seen[opponent] = true
	}
	// 兜底是随机的，两个候选都应该出现过
	require.Len(t, seen, 2)
}

func TestFindOpponentDefaultsRatingForUnrated(t *testing.T) {
	// 双方都没有积分行: 都按默认 1000 算，属于带内
	presence := &fakeActiveUsers{users: []string{"stranger"}}
	svc := NewMatchmakingService(presence, newFakeRatingRepo(), nil)

	opponent, err := svc.FindOpponent(context.Background(), "me")
	require.NoError(t, err)
	require.Equal(t, "stranger", opponent)
}

func TestFindOpponentExcludesRequesterAndHandlesEmpty(t *testing.T) {
	presence := &fakeActiveUsers{users: []string{"me"}}
	svc := NewMatchmakingService(presence, newFakeRatingRepo(), nil)

	opponent, err := svc.FindOpponent(context.Background(), "me")
	require.NoError(t, err)
	require.Empty(t, opponent, "只有自己在线时没有对手，但不是错误")
}

func TestFindOpponentPropagatesPresenceError(t *testing.T) {
	presence := &fakeActiveUsers{err: errors.New("redis down")}
	svc := NewMatchmakingService(presence, newFakeRatingRepo(), nil)

	_, err := svc.FindOpponent(context.Background(), "me")
	require.Error(t, err)
}

func TestQuickMatchNoOpponent(t *testing.T) {
	fx := newBattleServiceFixture(t)
	presence := &fakeActiveUsers{}
	svc := NewMatchmakingService(presence, fx.ratings, fx.svc)

	_, err := svc.QuickMatch(context.Background(), "me", &CreateBattleInput{Mode: "text", BattleType: "speed"})
	requireErrorCode(t, err, xerrors.CodeNoOpponentAvailable)
}

func TestQuickMatchStartsBattleImmediately(t *testing.T) {
	fx := newBattleServiceFixture(t)
	presence := &fakeActiveUsers{users: []string{"rival"}}
	svc := NewMatchmakingService(presence, fx.ratings, fx.svc)

	fx.expectTx()
	battle, err := svc.QuickMatch(context.Background(), "me", &CreateBattleInput{Mode: "text", BattleType: "balanced"})
	require.NoError(t, err)
	require.Equal(t, battle_runtime.BattleStatusActive, battle.Status)
	require.Equal(t, "me", battle.CreatorID)
	require.Equal(t, "rival", battle.OpponentID.String)
	require.True(t, battle.IsAutoMatch)
	require.True(t, battle.StartedAt.Valid)

	// 双方参与者行已建，对手收到开始事件
	require.Contains(t, fx.parts.rows, participantKey(battle.ID, "me"))
	require.Contains(t, fx.parts.rows, participantKey(battle.ID, "rival"))
	require.NotEmpty(t, *fx.events)
}

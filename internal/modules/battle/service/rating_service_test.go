package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/volatiletech/sqlboiler/v4/boil"
	"github.com/stretchr/testify/require"

	"typeduel-self/internal/entity/battle_runtime"
)

type fakeRatingRepo struct {
	rows      map[string]*battle_runtime.BattleRating
	lockOrder []string
	err       error
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{rows: map[string]*battle_runtime.BattleRating{}}
}

func (f *fakeRatingRepo) GetByUser(ctx context.Context, userID string) (*battle_runtime.BattleRating, error) {
	if f.err != nil {
		return nil, f.err
	}
	row, ok := f.rows[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return row, nil
}

func (f *fakeRatingRepo) GetOrCreateForUpdate(ctx context.Context, tx boil.ContextExecutor, userID string) (*battle_runtime.BattleRating, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lockOrder = append(f.lockOrder, userID)
	if row, ok := f.rows[userID]; ok {
		return row, nil
	}
	row := battle_runtime.NewBattleRating(userID)
	row.CreatedAt = time.Now()
	f.rows[userID] = row
	return row, nil
}

func (f *fakeRatingRepo) Update(ctx context.Context, execer boil.ContextExecutor, rating *battle_runtime.BattleRating) error {
	if f.err != nil {
		return f.err
	}
	f.rows[rating.UserID] = rating
	return nil
}

func (f *fakeRatingRepo) ListByUsers(ctx context.Context, userIDs []string) ([]*battle_runtime.BattleRating, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*battle_runtime.BattleRating
	for _, id := range userIDs {
		if row, ok := f.rows[id]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func TestEloDeltaEqualRatings(t *testing.T) {
	// 同分对局胜负各 ±16，平局为 0
	require.Equal(t, 16, EloDelta(1000, 1000, 1))
	require.Equal(t, -16, EloDelta(1000, 1000, 0))
	require.Equal(t, 0, EloDelta(1000, 1000, 0.5))
}

func TestEloDeltaUnderdogWinsBigger(t *testing.T) {
	underdogWin := EloDelta(1000, 1200, 1)
	favoriteWin := EloDelta(1200, 1000, 1)
	require.Greater(t, underdogWin, favoriteWin)
	require.Equal(t, 24, underdogWin)
	require.Equal(t, 7, favoriteWin)

	// 变动向零截断，不做四舍五入
	require.Equal(t, -24, EloDelta(1200, 1000, 0))
}

func TestEloDeltaZeroSumAtEqualRatings(t *testing.T) {
	require.Equal(t, 0, EloDelta(1000, 1000, 1)+EloDelta(1000, 1000, 0))
}

func TestApplyResultCreatorWins(t *testing.T) {
	repo := newFakeRatingRepo()
	svc := NewRatingService(repo)

	changes, rows, err := svc.ApplyResult(context.Background(), nil, "user-a", "user-b", OutcomeCreator)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	require.Len(t, rows, 2)
	require.Equal(t, "user-a", rows[0].UserID, "结算行按 creator/opponent 顺序返回")

	require.Equal(t, "user-a", changes[0].UserID)
	require.Equal(t, battle_runtime.DefaultRating, changes[0].OldRating)
	require.Equal(t, 1016, changes[0].NewRating)
	require.Equal(t, 984, changes[1].NewRating)

	winner := repo.rows["user-a"]
	require.Equal(t, 1, winner.Wins)
	require.Equal(t, 1, winner.WinStreak)
	require.Equal(t, 1, winner.BestWinStreak)
	require.Equal(t, 1, winner.TotalBattles)

	loser := repo.rows["user-b"]
	require.Equal(t, 1, loser.Losses)
	require.Zero(t, loser.WinStreak)
	require.Equal(t, winner.Wins+winner.Losses+winner.Draws, winner.TotalBattles)
}

func TestApplyResultDrawResetsStreak(t *testing.T) {
	repo := newFakeRatingRepo()
	repo.rows["user-a"] = &battle_runtime.BattleRating{UserID: "user-a", Rating: 1000, Wins: 3, TotalBattles: 3, WinStreak: 3, BestWinStreak: 3}
	repo.rows["user-b"] = &battle_runtime.BattleRating{UserID: "user-b", Rating: 1000}
	svc := NewRatingService(repo)

	changes, _, err := svc.ApplyResult(context.Background(), nil, "user-a", "user-b", OutcomeDraw)
	require.NoError(t, err)
	require.Zero(t, changes[0].Delta)
	require.Zero(t, changes[1].Delta)

	row := repo.rows["user-a"]
	require.Equal(t, 1, row.Draws)
	require.Zero(t, row.WinStreak)
	require.Equal(t, 3, row.BestWinStreak, "历史最佳连胜不回退")
}

func TestApplyResultLocksInUserIDOrder(t *testing.T) {
	repo := newFakeRatingRepo()
	svc := NewRatingService(repo)

	_, _, err := svc.ApplyResult(context.Background(), nil, "user-z", "user-a", OutcomeOpponent)
	require.NoError(t, err)
	require.Equal(t, []string{"user-a", "user-z"}, repo.lockOrder)

	// 结果仍按 creator/opponent 语义落账
	require.Equal(t, 1, repo.rows["user-a"].Wins)
	require.Equal(t, 1, repo.rows["user-z"].Losses)
}

func TestApplyResultRejectsPendingOutcome(t *testing.T) {
	repo := newFakeRatingRepo()
	svc := NewRatingService(repo)

	_, _, err := svc.ApplyResult(context.Background(), nil, "user-a", "user-b", OutcomePending)
	require.Error(t, err)
	require.Empty(t, repo.rows)
}

func TestGetUserRatingDefaultsWithoutRow(t *testing.T) {
	repo := newFakeRatingRepo()
	svc := NewRatingService(repo)

	rating, err := svc.GetUserRating(context.Background(), "newcomer")
	require.NoError(t, err)
	require.Equal(t, battle_runtime.DefaultRating, rating.Rating)
	require.Zero(t, rating.TotalBattles)
}

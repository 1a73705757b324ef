package service

import (
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/require"

	"typeduel-self/internal/entity/battle_runtime"
)

func finishedParticipant(wpm, accuracy float64, mistakes int) *battle_runtime.BattleParticipant {
	return &battle_runtime.BattleParticipant{
		WPM:        null.Float64From(wpm),
		Accuracy:   null.Float64From(accuracy),
		Mistakes:   mistakes,
		IsFinished: true,
	}
}

func TestResolveWinnerSpeed(t *testing.T) {
	cases := []struct {
		name     string
		creator  *battle_runtime.BattleParticipant
		opponent *battle_runtime.BattleParticipant
		want     Outcome
	}{
		{"WPM 高者胜", finishedParticipant(90, 92, 3), finishedParticipant(80, 99, 0), OutcomeCreator},
		{"WPM 平则准确率决胜", finishedParticipant(85, 90, 2), finishedParticipant(85, 95, 1), OutcomeOpponent},
		{"全平为平局", finishedParticipant(85, 95, 2), finishedParticipant(85, 95, 4), OutcomeDraw},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveWinner(BattleTypeSpeed, tc.creator, tc.opponent)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestResolveWinnerAccuracy(t *testing.T) {
	// 准确率优先，WPM 只做决胜
	got, err := ResolveWinner(BattleTypeAccuracy, finishedParticipant(120, 91, 0), finishedParticipant(60, 98, 5))
	require.NoError(t, err)
	require.Equal(t, OutcomeOpponent, got)

	got, err = ResolveWinner(BattleTypeAccuracy, finishedParticipant(120, 95, 0), finishedParticipant(60, 95, 5))
	require.NoError(t, err)
	require.Equal(t, OutcomeCreator, got)
}

func TestResolveWinnerEndurance(t *testing.T) {
	// 失误少者胜
	got, err := ResolveWinner(BattleTypeEndurance, finishedParticipant(70, 90, 2), finishedParticipant(110, 99, 8))
	require.NoError(t, err)
	require.Equal(t, OutcomeCreator, got)

	// 失误平则 WPM 决胜
	got, err = ResolveWinner(BattleTypeEndurance, finishedParticipant(70, 90, 3), finishedParticipant(110, 99, 3))
	require.NoError(t, err)
	require.Equal(t, OutcomeOpponent, got)
}

func TestResolveWinnerBalanced(t *testing.T) {
	// 80 * 0.99 = 79.2 < 90 * 0.90 = 81
	got, err := ResolveWinner(BattleTypeBalanced, finishedParticipant(80, 99, 0), finishedParticipant(90, 90, 2))
	require.NoError(t, err)
	require.Equal(t, OutcomeOpponent, got)

	// 综合分相等直接平局，不再级联
	got, err = ResolveWinner(BattleTypeBalanced, finishedParticipant(100, 90, 1), finishedParticipant(90, 100, 5))
	require.NoError(t, err)
	require.Equal(t, OutcomeDraw, got)
}

func TestResolveWinnerPendingUntilBothFinished(t *testing.T) {
	creator := finishedParticipant(90, 95, 1)
	opponent := &battle_runtime.BattleParticipant{
		WPM:      null.Float64From(100),
		Accuracy: null.Float64From(99),
	}

	got, err := ResolveWinner(BattleTypeSpeed, creator, opponent)
	require.NoError(t, err)
	require.Equal(t, OutcomePending, got)
	require.False(t, got.IsDecided())

	// 完赛但缺指标同样不裁决
	opponent.IsFinished = true
	opponent.WPM = null.Float64{}
	got, err = ResolveWinner(BattleTypeSpeed, creator, opponent)
	require.NoError(t, err)
	require.Equal(t, OutcomePending, got)

	got, err = ResolveWinner(BattleTypeSpeed, creator, nil)
	require.NoError(t, err)
	require.Equal(t, OutcomePending, got)
}

func TestResolveWinnerSymmetry(t *testing.T) {
	a := finishedParticipant(80, 90, 5)
	b := finishedParticipant(75, 99, 0)

	for _, battleType := range []BattleType{BattleTypeSpeed, BattleTypeAccuracy, BattleTypeEndurance, BattleTypeBalanced} {
		forward, err := ResolveWinner(battleType, a, b)
		require.NoError(t, err)
		swapped, err := ResolveWinner(battleType, b, a)
		require.NoError(t, err)

		// 交换双方指标后裁决互换，平局保持平局
		switch forward {
		case OutcomeCreator:
			require.Equal(t, OutcomeOpponent, swapped, string(battleType))
		case OutcomeOpponent:
			require.Equal(t, OutcomeCreator, swapped, string(battleType))
		default:
			require.Equal(t, forward, swapped, string(battleType))
		}

		// 同样输入重复调用结果一致
		again, err := ResolveWinner(battleType, a, b)
		require.NoError(t, err)
		require.Equal(t, forward, again, string(battleType))
	}
}

func TestResolveWinnerRejectsUnknownType(t *testing.T) {
	_, err := ResolveWinner(BattleType("marathon"), finishedParticipant(1, 1, 0), finishedParticipant(1, 1, 0))
	require.Error(t, err)
	require.False(t, BattleType("marathon").IsValid())
	require.True(t, BattleTypeSpeed.IsValid())
}

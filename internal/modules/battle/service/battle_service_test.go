package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/volatiletech/sqlboiler/v4/boil"
	"github.com/stretchr/testify/require"

	"typeduel-self/internal/entity/battle_runtime"
	"typeduel-self/internal/pkg/notify"
	"typeduel-self/internal/pkg/xerrors"
)

type fakeBattleRepo struct {
	battles map[string]*battle_runtime.Battle
	seq     int
	err     error
}

func newFakeBattleRepo() *fakeBattleRepo {
	return &fakeBattleRepo{battles: map[string]*battle_runtime.Battle{}}
}

func (f *fakeBattleRepo) Create(ctx context.Context, execer boil.ContextExecutor, battle *battle_runtime.Battle) error {
	if f.err != nil {
		return f.err
	}
	f.seq++
	battle.ID = fmt.Sprintf("battle-%d", f.seq)
	battle.CreatedAt = time.Now()
	battle.UpdatedAt = battle.CreatedAt
	copied := *battle
	f.battles[battle.ID] = &copied
	return nil
}

func (f *fakeBattleRepo) GetByID(ctx context.Context, battleID string) (*battle_runtime.Battle, error) {
	if f.err != nil {
		return nil, f.err
	}
	battle, ok := f.battles[battleID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *battle
	return &copied, nil
}

func (f *fakeBattleRepo) GetByIDForUpdate(ctx context.Context, tx boil.ContextExecutor, battleID string) (*battle_runtime.Battle, error) {
	return f.GetByID(ctx, battleID)
}

func (f *fakeBattleRepo) Update(ctx context.Context, execer boil.ContextExecutor, battle *battle_runtime.Battle) error {
	if f.err != nil {
		return f.err
	}
	copied := *battle
	f.battles[battle.ID] = &copied
	return nil
}

func (f *fakeBattleRepo) ListOpen(ctx context.Context, excludeUserID string, limit int) ([]*battle_runtime.Battle, error) {
	var out []*battle_runtime.Battle
	for _, b := range f.battles {
		if b.IsPending() && !b.OpponentID.Valid && b.CreatorID != excludeUserID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBattleRepo) ListRecentByUser(ctx context.Context, userID string, limit int) ([]*battle_runtime.Battle, error) {
	var out []*battle_runtime.Battle
	for _, b := range f.battles {
		if b.IsParticipant(userID) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBattleRepo) DeleteStale(ctx context.Context, retentionDays int) (int64, error) {
	return 0, nil
}

type fakeParticipantRepo struct {
	rows map[string]*battle_runtime.BattleParticipant
	err  error
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{rows: map[string]*battle_runtime.BattleParticipant{}}
}

func participantKey(battleID, userID string) string {
	return battleID + "/" + userID
}

func (f *fakeParticipantRepo) Create(ctx context.Context, execer boil.ContextExecutor, p *battle_runtime.BattleParticipant) error {
	if f.err != nil {
		return f.err
	}
	copied := *p
	f.rows[participantKey(p.BattleID, p.UserID)] = &copied
	return nil
}

func (f *fakeParticipantRepo) Get(ctx context.Context, battleID, userID string) (*battle_runtime.BattleParticipant, error) {
	if f.err != nil {
		return nil, f.err
	}
	row, ok := f.rows[participantKey(battleID, userID)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *row
	return &copied, nil
}

func (f *fakeParticipantRepo) GetForUpdate(ctx context.Context, tx boil.ContextExecutor, battleID, userID string) (*battle_runtime.BattleParticipant, error) {
	return f.Get(ctx, battleID, userID)
}

func (f *fakeParticipantRepo) ListByBattle(ctx context.Context, execer boil.ContextExecutor, battleID string) ([]*battle_runtime.BattleParticipant, error) {
	var out []*battle_runtime.BattleParticipant
	for _, row := range f.rows {
		if row.BattleID == battleID {
			copied := *row
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeParticipantRepo) Update(ctx context.Context, execer boil.ContextExecutor, p *battle_runtime.BattleParticipant) error {
	if f.err != nil {
		return f.err
	}
	copied := *p
	f.rows[participantKey(p.BattleID, p.UserID)] = &copied
	return nil
}

type fakeChallengeRepo struct {
	challenge *battle_runtime.Challenge
	err       error
}

func (f *fakeChallengeRepo) Random(ctx context.Context, mode, difficulty string) (*battle_runtime.Challenge, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.challenge == nil {
		return nil, sql.ErrNoRows
	}
	return f.challenge, nil
}

func (f *fakeChallengeRepo) GetByID(ctx context.Context, id string) (*battle_runtime.Challenge, error) {
	if f.challenge == nil || f.challenge.ID != id {
		return nil, sql.ErrNoRows
	}
	return f.challenge, nil
}

type battleServiceFixture struct {
	svc         *BattleService
	battles     *fakeBattleRepo
	parts       *fakeParticipantRepo
	ratings     *fakeRatingRepo
	events      *[]publishedEvent
	mock        sqlmock.Sqlmock
	rewardEvent *[]publishedEvent
}

func newBattleServiceFixture(t *testing.T) *battleServiceFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	battles := newFakeBattleRepo()
	parts := newFakeParticipantRepo()
	ratings := newFakeRatingRepo()
	challenges := &fakeChallengeRepo{challenge: &battle_runtime.Challenge{
		ID:   "challenge-1",
		Mode: battle_runtime.BattleModeText,
		Body: "the quick brown fox jumps over the lazy dog",
	}}

	rewards, rewardEvents := rewardsServiceWithRecorder()
	svc := NewBattleService(db, battles, parts, challenges, NewRatingService(ratings), rewards)

	var events []publishedEvent
	svc.publish = func(ctx context.Context, subject string, payload interface{}) error {
		events = append(events, publishedEvent{subject: subject, payload: payload})
		return nil
	}

	return &battleServiceFixture{
		svc:         svc,
		battles:     battles,
		parts:       parts,
		ratings:     ratings,
		events:      &events,
		mock:        mock,
		rewardEvent: rewardEvents,
	}
}

func (fx *battleServiceFixture) expectTx() {
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
}

func requireErrorCode(t *testing.T, err error, code xerrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*xerrors.AppError)
	require.True(t, ok, "期望 AppError, 实际 %T: %v", err, err)
	require.Equal(t, code, appErr.Code)
}

func TestBattleFullLifecycle(t *testing.T) {
	fx := newBattleServiceFixture(t)
	ctx := context.Background()

	// 创建: pending + 创建者参与者行
	fx.expectTx()
	battle, err := fx.svc.Create(ctx, "user-1", &CreateBattleInput{
		Mode:       battle_runtime.BattleModeText,
		BattleType: string(BattleTypeSpeed),
	})
	require.NoError(t, err)
	require.Equal(t, battle_runtime.BattleStatusPending, battle.Status)
	require.Equal(t, "challenge-1", battle.ChallengeID)
	require.NotEmpty(t, battle.ChallengeBody, "创建时固化内容快照")

	// 加入: active + started_at
	fx.expectTx()
	joined, err := fx.svc.Join(ctx, battle.ID, "user-2")
	require.NoError(t, err)
	require.Equal(t, battle_runtime.BattleStatusActive, joined.Status)
	require.True(t, joined.StartedAt.Valid)
	require.Equal(t, "user-2", joined.OpponentID.String)

	// 先提交的一方不结束对战
	fx.expectTx()
	out, err := fx.svc.SubmitResult(ctx, battle.ID, "user-1", &ProgressInput{WPM: 90, Accuracy: 95, ProgressPercent: 100})
	require.NoError(t, err)
	require.False(t, out.BattleFinished)
	require.Equal(t, "pending", out.Outcome)

	// 双方完赛: 裁决 + 结算 + 幂等标记
	fx.expectTx()
	out, err = fx.svc.SubmitResult(ctx, battle.ID, "user-2", &ProgressInput{WPM: 70, Accuracy: 99, ProgressPercent: 100})
	require.NoError(t, err)
	require.True(t, out.BattleFinished)
	require.Equal(t, "creator", out.Outcome)
	require.Equal(t, "user-1", out.WinnerID)

	final := fx.battles.battles[battle.ID]
	require.Equal(t, battle_runtime.BattleStatusFinished, final.Status)
	require.True(t, final.RewardsGranted)
	require.True(t, final.FinishedAt.Valid)
	require.Equal(t, "user-1", final.WinnerID.String)

	// 双方积分行已建且战绩一致
	winner := fx.ratings.rows["user-1"]
	loser := fx.ratings.rows["user-2"]
	require.Equal(t, 1, winner.TotalBattles)
	require.Equal(t, 1, winner.Wins)
	require.Equal(t, 1, loser.Losses)
	require.Equal(t, 1016, winner.Rating)
	require.Equal(t, 984, loser.Rating)

	// 结束事件双方各一条，奖励事件已发
	var finishedCount int
	for _, ev := range *fx.events {
		if ev.subject == notify.SubjectBattleFinished {
			finishedCount++
		}
	}
	require.Equal(t, 2, finishedCount)
	require.NotEmpty(t, *fx.rewardEvent)
	require.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestSubmitResultIdempotent(t *testing.T) {
	fx := newBattleServiceFixture(t)
	ctx := context.Background()

	fx.expectTx()
	battle, err := fx.svc.Create(ctx, "user-1", &CreateBattleInput{Mode: "text", BattleType: "speed"})
	require.NoError(t, err)
	fx.expectTx()
	_, err = fx.svc.Join(ctx, battle.ID, "user-2")
	require.NoError(t, err)

	fx.expectTx()
	_, err = fx.svc.SubmitResult(ctx, battle.ID, "user-1", &ProgressInput{WPM: 90, Accuracy: 95})
	require.NoError(t, err)

	saved := fx.parts.rows[participantKey(battle.ID, "user-1")]
	require.True(t, saved.IsFinished)
	require.EqualValues(t, 90, saved.WPM.Float64)

	// 重复提交被拒绝，指标不被覆盖
	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()
	_, err = fx.svc.SubmitResult(ctx, battle.ID, "user-1", &ProgressInput{WPM: 300, Accuracy: 10})
	requireErrorCode(t, err, xerrors.CodeResultAlreadySaved)
	require.EqualValues(t, 90, fx.parts.rows[participantKey(battle.ID, "user-1")].WPM.Float64)
	require.Empty(t, fx.ratings.rows, "未完赛不触发积分结算")
}

func TestJoinGuards(t *testing.T) {
	fx := newBattleServiceFixture(t)
	ctx := context.Background()

	fx.expectTx()
	battle, err := fx.svc.Create(ctx, "user-1", &CreateBattleInput{Mode: "text", BattleType: "balanced"})
	require.NoError(t, err)

	// 创建者不能加入自己的对战
	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()
	_, err = fx.svc.Join(ctx, battle.ID, "user-1")
	requireErrorCode(t, err, xerrors.CodeBattleSelfJoin)

	fx.expectTx()
	_, err = fx.svc.Join(ctx, battle.ID, "user-2")
	require.NoError(t, err)

	// 已有对手
	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()
	_, err = fx.svc.Join(ctx, battle.ID, "user-3")
	requireErrorCode(t, err, xerrors.CodeBattleAlreadyJoined)

	// 不存在的对战
	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()
	_, err = fx.svc.Join(ctx, "missing", "user-3")
	requireErrorCode(t, err, xerrors.CodeBattleNotFound)
}

func TestUpdateProgressClampsAndGuards(t *testing.T) {
	fx := newBattleServiceFixture(t)
	ctx := context.Background()

	fx.expectTx()
	battle, err := fx.svc.Create(ctx, "user-1", &CreateBattleInput{Mode: "text", BattleType: "speed"})
	require.NoError(t, err)

	// pending 状态不接受进度
	err = fx.svc.UpdateProgress(ctx, battle.ID, "user-1", &ProgressInput{WPM: 50})
	requireErrorCode(t, err, xerrors.CodeBattleNotActive)

	fx.expectTx()
	_, err = fx.svc.Join(ctx, battle.ID, "user-2")
	require.NoError(t, err)

	// 越界指标被裁剪而不是报错
	err = fx.svc.UpdateProgress(ctx, battle.ID, "user-1", &ProgressInput{
		WPM: 5000, Accuracy: 180, Mistakes: -3, ProgressPercent: 140,
	})
	require.NoError(t, err)
	row := fx.parts.rows[participantKey(battle.ID, "user-1")]
	require.EqualValues(t, MaxWPM, row.WPM.Float64)
	require.EqualValues(t, MaxAccuracy, row.Accuracy.Float64)
	require.Zero(t, row.Mistakes)
	require.EqualValues(t, MaxProgress, row.ProgressPercent)

	// 非参与者禁止上报
	err = fx.svc.UpdateProgress(ctx, battle.ID, "user-9", &ProgressInput{WPM: 50})
	requireErrorCode(t, err, xerrors.CodeNotParticipant)
}

func TestCreateFailsWithoutChallengeContent(t *testing.T) {
	fx := newBattleServiceFixture(t)
	fx.svc.challengeRepo = &fakeChallengeRepo{}

	_, err := fx.svc.Create(context.Background(), "user-1", &CreateBattleInput{Mode: "code", BattleType: "speed"})
	requireErrorCode(t, err, xerrors.CodeNoChallengeContent)
}

func TestCreateRejectsInvalidParams(t *testing.T) {
	fx := newBattleServiceFixture(t)

	_, err := fx.svc.Create(context.Background(), "user-1", &CreateBattleInput{Mode: "voice", BattleType: "speed"})
	requireErrorCode(t, err, xerrors.CodeInvalidParams)

	_, err = fx.svc.Create(context.Background(), "user-1", &CreateBattleInput{Mode: "text", BattleType: "marathon"})
	requireErrorCode(t, err, xerrors.CodeInvalidParams)
}

func TestOpponentProgressWithholdsAccuracy(t *testing.T) {
	fx := newBattleServiceFixture(t)
	ctx := context.Background()

	fx.expectTx()
	battle, err := fx.svc.Create(ctx, "user-1", &CreateBattleInput{Mode: "text", BattleType: "speed"})
	require.NoError(t, err)
	fx.expectTx()
	_, err = fx.svc.Join(ctx, battle.ID, "user-2")
	require.NoError(t, err)

	require.NoError(t, fx.svc.UpdateProgress(ctx, battle.ID, "user-2", &ProgressInput{WPM: 60, Accuracy: 88, ProgressPercent: 40}))

	progress, err := fx.svc.GetOpponentProgress(ctx, battle.ID, "user-1")
	require.NoError(t, err)
	require.True(t, progress.Joined)
	require.EqualValues(t, 60, progress.WPM.Float64)
	require.False(t, progress.Accuracy.Valid, "对手完赛前不下发准确率")
	require.False(t, progress.IsFinished)

	// 完赛后准确率可见
	fx.expectTx()
	_, err = fx.svc.SubmitResult(ctx, battle.ID, "user-2", &ProgressInput{WPM: 60, Accuracy: 88, ProgressPercent: 100})
	require.NoError(t, err)
	progress, err = fx.svc.GetOpponentProgress(ctx, battle.ID, "user-1")
	require.NoError(t, err)
	require.True(t, progress.IsFinished)
	require.True(t, progress.Accuracy.Valid)
	require.EqualValues(t, 88, progress.Accuracy.Float64)
}

func TestOpponentProgressBeforeJoin(t *testing.T) {
	fx := newBattleServiceFixture(t)
	ctx := context.Background()

	fx.expectTx()
	battle, err := fx.svc.Create(ctx, "user-1", &CreateBattleInput{Mode: "text", BattleType: "speed"})
	require.NoError(t, err)

	progress, err := fx.svc.GetOpponentProgress(ctx, battle.ID, "user-1")
	require.NoError(t, err)
	require.False(t, progress.Joined)
}

func TestCancelOnlyPendingByCreator(t *testing.T) {
	fx := newBattleServiceFixture(t)
	ctx := context.Background()

	fx.expectTx()
	battle, err := fx.svc.Create(ctx, "user-1", &CreateBattleInput{Mode: "text", BattleType: "speed"})
	require.NoError(t, err)

	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()
	err = fx.svc.Cancel(ctx, battle.ID, "user-2")
	requireErrorCode(t, err, xerrors.CodeNotParticipant)

	fx.expectTx()
	require.NoError(t, fx.svc.Cancel(ctx, battle.ID, "user-1"))
	require.Equal(t, battle_runtime.BattleStatusCancelled, fx.battles.battles[battle.ID].Status)

	// 已取消不能再取消
	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()
	err = fx.svc.Cancel(ctx, battle.ID, "user-1")
	requireErrorCode(t, err, xerrors.CodeBattleStateConflict)
}

func TestRematchCreatesStartedBattle(t *testing.T) {
	fx := newBattleServiceFixture(t)
	ctx := context.Background()

	fx.expectTx()
	battle, err := fx.svc.Create(ctx, "user-1", &CreateBattleInput{Mode: "text", BattleType: "endurance"})
	require.NoError(t, err)
	fx.expectTx()
	_, err = fx.svc.Join(ctx, battle.ID, "user-2")
	require.NoError(t, err)

	// 未结束不能 rematch
	_, err = fx.svc.Rematch(ctx, battle.ID, "user-2")
	requireErrorCode(t, err, xerrors.CodeBattleNotFinished)

	fx.expectTx()
	_, err = fx.svc.SubmitResult(ctx, battle.ID, "user-1", &ProgressInput{WPM: 80, Accuracy: 95, Mistakes: 2, ProgressPercent: 100})
	require.NoError(t, err)
	fx.expectTx()
	_, err = fx.svc.SubmitResult(ctx, battle.ID, "user-2", &ProgressInput{WPM: 85, Accuracy: 93, Mistakes: 4, ProgressPercent: 100})
	require.NoError(t, err)

	fx.expectTx()
	rematch, err := fx.svc.Rematch(ctx, battle.ID, "user-2")
	require.NoError(t, err)
	require.Equal(t, battle_runtime.BattleStatusActive, rematch.Status)
	require.Equal(t, "user-2", rematch.CreatorID, "发起者成为新对战的创建者")
	require.Equal(t, "user-1", rematch.OpponentID.String)
	require.Equal(t, battle.ID, rematch.RematchOf.String)
	require.Equal(t, battle.ChallengeID, rematch.ChallengeID, "沿用原挑战内容快照")
	require.True(t, rematch.StartedAt.Valid)

	// 双方参与者行已建
	require.Contains(t, fx.parts.rows, participantKey(rematch.ID, "user-1"))
	require.Contains(t, fx.parts.rows, participantKey(rematch.ID, "user-2"))

	// 非参与者不能 rematch
	_, err = fx.svc.Rematch(ctx, battle.ID, "user-9")
	requireErrorCode(t, err, xerrors.CodeNotParticipant)
}

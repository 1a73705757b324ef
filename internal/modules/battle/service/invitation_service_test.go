package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/volatiletech/sqlboiler/v4/boil"
	"github.com/stretchr/testify/require"

	"typeduel-self/internal/entity/battle_runtime"
	"typeduel-self/internal/pkg/notify"
	"typeduel-self/internal/pkg/xerrors"
)

type fakeInvitationRepo struct {
	invitations map[string]*battle_runtime.BattleInvitation
	seq         int
	err         error
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{invitations: map[string]*battle_runtime.BattleInvitation{}}
}

func (f *fakeInvitationRepo) Create(ctx context.Context, inv *battle_runtime.BattleInvitation) error {
	if f.err != nil {
		return f.err
	}
	f.seq++
	inv.ID = fmt.Sprintf("invitation-%d", f.seq)
	inv.Status = battle_runtime.InvitationStatusPending
	inv.CreatedAt = time.Now()
	inv.ExpiresAt = inv.CreatedAt.Add(battle_runtime.InvitationTTL)
	copied := *inv
	f.invitations[inv.ID] = &copied
	return nil
}

func (f *fakeInvitationRepo) GetByID(ctx context.Context, id string) (*battle_runtime.BattleInvitation, error) {
	if f.err != nil {
		return nil, f.err
	}
	inv, ok := f.invitations[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *inv
	return &copied, nil
}

func (f *fakeInvitationRepo) Update(ctx context.Context, execer boil.ContextExecutor, inv *battle_runtime.BattleInvitation) error {
	if f.err != nil {
		return f.err
	}
	copied := *inv
	f.invitations[inv.ID] = &copied
	return nil
}

func (f *fakeInvitationRepo) ListPendingByRecipient(ctx context.Context, userID string) ([]*battle_runtime.BattleInvitation, error) {
	var out []*battle_runtime.BattleInvitation
	now := time.Now()
	for _, inv := range f.invitations {
		if inv.ToUserID == userID && inv.IsPending() && !inv.IsExpired(now) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeInvitationRepo) ListPendingBySender(ctx context.Context, userID string) ([]*battle_runtime.BattleInvitation, error) {
	var out []*battle_runtime.BattleInvitation
	now := time.Now()
	for _, inv := range f.invitations {
		if inv.FromUserID == userID && inv.IsPending() && !inv.IsExpired(now) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeInvitationRepo) ExpireInvitations(ctx context.Context) (int64, error) {
	var affected int64
	now := time.Now()
	for _, inv := range f.invitations {
		if inv.IsPending() && inv.IsExpired(now) {
			inv.Status = battle_runtime.InvitationStatusExpired
			affected++
		}
	}
	return affected, nil
}

func newInvitationFixture(t *testing.T) (*InvitationService, *fakeInvitationRepo, *battleServiceFixture, *[]publishedEvent) {
	t.Helper()
	fx := newBattleServiceFixture(t)
	repo := newFakeInvitationRepo()
	svc := NewInvitationService(repo, fx.svc)

	var events []publishedEvent
	svc.publish = func(ctx context.Context, subject string, payload interface{}) error {
		events = append(events, publishedEvent{subject: subject, payload: payload})
		return nil
	}
	return svc, repo, fx, &events
}

func TestInviteCreatesPendingWithExpiry(t *testing.T) {
	svc, repo, _, events := newInvitationFixture(t)

	inv, err := svc.Invite(context.Background(), "user-a", "user-b", &InviteInput{Mode: "text", BattleType: "speed", TimeLimitSeconds: 60})
	require.NoError(t, err)
	require.Equal(t, battle_runtime.InvitationStatusPending, inv.Status)
	require.WithinDuration(t, time.Now().Add(battle_runtime.InvitationTTL), inv.ExpiresAt, 2*time.Second)
	require.Contains(t, repo.invitations, inv.ID)

	require.Len(t, *events, 1)
	require.Equal(t, notify.SubjectBattleInvitation, (*events)[0].subject)
}

func TestInviteSelfRejected(t *testing.T) {
	svc, repo, _, _ := newInvitationFixture(t)

	_, err := svc.Invite(context.Background(), "user-a", "user-a", &InviteInput{Mode: "text", BattleType: "speed"})
	requireErrorCode(t, err, xerrors.CodeSelfInvite)
	require.Empty(t, repo.invitations)
}

func TestRespondAcceptCreatesStartedBattle(t *testing.T) {
	svc, repo, fx, _ := newInvitationFixture(t)
	ctx := context.Background()

	inv, err := svc.Invite(ctx, "user-a", "user-b", &InviteInput{Mode: "text", BattleType: "accuracy", TimeLimitSeconds: 120})
	require.NoError(t, err)

	fx.expectTx()
	battle, err := svc.Respond(ctx, inv.ID, "user-b", true)
	require.NoError(t, err)
	require.NotNil(t, battle)
	require.Equal(t, battle_runtime.BattleStatusActive, battle.Status)
	require.Equal(t, "user-a", battle.CreatorID, "邀请发起者是对战创建者")
	require.Equal(t, "user-b", battle.OpponentID.String)
	require.Equal(t, 120, battle.TimeLimitSeconds)

	saved := repo.invitations[inv.ID]
	require.Equal(t, battle_runtime.InvitationStatusAccepted, saved.Status)
	require.Equal(t, battle.ID, saved.BattleID.String)
	require.True(t, saved.RespondedAt.Valid)
}

func TestRespondReject(t *testing.T) {
	svc, repo, _, _ := newInvitationFixture(t)
	ctx := context.Background()

	inv, err := svc.Invite(ctx, "user-a", "user-b", &InviteInput{Mode: "text", BattleType: "speed"})
	require.NoError(t, err)

	battle, err := svc.Respond(ctx, inv.ID, "user-b", false)
	require.NoError(t, err)
	require.Nil(t, battle)
	require.Equal(t, battle_runtime.InvitationStatusRejected, repo.invitations[inv.ID].Status)

	// 已响应的邀请不能再次响应
	_, err = svc.Respond(ctx, inv.ID, "user-b", true)
	requireErrorCode(t, err, xerrors.CodeInvitationResponded)
}

func TestRespondGuards(t *testing.T) {
	svc, _, _, _ := newInvitationFixture(t)
	ctx := context.Background()

	inv, err := svc.Invite(ctx, "user-a", "user-b", &InviteInput{Mode: "text", BattleType: "speed"})
	require.NoError(t, err)

	// 只有接收者能响应
	_, err = svc.Respond(ctx, inv.ID, "user-a", true)
	requireErrorCode(t, err, xerrors.CodeInvitationNotRecipient)

	_, err = svc.Respond(ctx, "missing", "user-b", true)
	requireErrorCode(t, err, xerrors.CodeInvitationNotFound)
}

func TestRespondExpiredLazyTransition(t *testing.T) {
	svc, repo, fx, _ := newInvitationFixture(t)
	ctx := context.Background()

	inv, err := svc.Invite(ctx, "user-a", "user-b", &InviteInput{Mode: "text", BattleType: "speed"})
	require.NoError(t, err)
	// 把过期时间拨回过去
	repo.invitations[inv.ID].ExpiresAt = time.Now().Add(-time.Minute)

	_, err = svc.Respond(ctx, inv.ID, "user-b", true)
	requireErrorCode(t, err, xerrors.CodeInvitationExpired)
	require.Equal(t, battle_runtime.InvitationStatusExpired, repo.invitations[inv.ID].Status)
	require.Empty(t, fx.battles.battles, "过期邀请不产生对战")
}

func TestListIncomingOutgoingPendingOnly(t *testing.T) {
	svc, repo, _, _ := newInvitationFixture(t)
	ctx := context.Background()

	in1, err := svc.Invite(ctx, "user-a", "user-b", &InviteInput{Mode: "text", BattleType: "speed"})
	require.NoError(t, err)
	expired, err := svc.Invite(ctx, "user-c", "user-b", &InviteInput{Mode: "text", BattleType: "speed"})
	require.NoError(t, err)
	repo.invitations[expired.ID].ExpiresAt = time.Now().Add(-time.Minute)

	incoming, err := svc.ListIncoming(ctx, "user-b")
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	require.Equal(t, in1.ID, incoming[0].ID)

	outgoing, err := svc.ListOutgoing(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
}

func TestExpirePendingSweep(t *testing.T) {
	svc, repo, _, _ := newInvitationFixture(t)
	ctx := context.Background()

	inv, err := svc.Invite(ctx, "user-a", "user-b", &InviteInput{Mode: "text", BattleType: "speed"})
	require.NoError(t, err)
	repo.invitations[inv.ID].ExpiresAt = time.Now().Add(-time.Hour)

	affected, err := svc.ExpirePending(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)
	require.Equal(t, battle_runtime.InvitationStatusExpired, repo.invitations[inv.ID].Status)
}

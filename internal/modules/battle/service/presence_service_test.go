package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakePresenceStore struct {
	heartbeats map[string]string
	roster     map[string]bool
	removed    []string
	setErr     error
	getErr     error
	removeErr  error
}

func newFakePresenceStore() *fakePresenceStore {
	return &fakePresenceStore{
		heartbeats: map[string]string{},
		roster:     map[string]bool{},
	}
}

func (f *fakePresenceStore) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.heartbeats[key] = value.(string)
	return nil
}

func (f *fakePresenceStore) AddToSet(ctx context.Context, key string, members ...interface{}) error {
	if f.setErr != nil {
		return f.setErr
	}
	for _, m := range members {
		f.roster[m.(string)] = true
	}
	return nil
}

func (f *fakePresenceStore) SetMembers(ctx context.Context, key string) ([]string, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	var out []string
	for m := range f.roster {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakePresenceStore) RemoveFromSet(ctx context.Context, key string, members ...interface{}) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	for _, m := range members {
		delete(f.roster, m.(string))
		f.removed = append(f.removed, m.(string))
	}
	return nil
}

func (f *fakePresenceStore) GetStrings(ctx context.Context, keys ...string) ([]string, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = f.heartbeats[k]
	}
	return out, nil
}

func TestPresenceTouchThenActive(t *testing.T) {
	store := newFakePresenceStore()
	svc := NewPresenceService(store)

	require.NoError(t, svc.Touch(context.Background(), "user-1"))
	require.NoError(t, svc.Touch(context.Background(), "user-2"))

	active, err := svc.ActiveUsers(context.Background())
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"user-1", "user-2"}, active)

	online, err := svc.IsOnline(context.Background(), "user-1")
	require.NoError(t, err)
	require.True(t, online)
}

func TestPresenceExpiredHeartbeatDropsUser(t *testing.T) {
	store := newFakePresenceStore()
	svc := NewPresenceService(store)

	require.NoError(t, svc.Touch(context.Background(), "user-1"))
	require.NoError(t, svc.Touch(context.Background(), "user-2"))
	// 模拟 user-2 的心跳键 TTL 到期
	delete(store.heartbeats, presenceKeyPrefix+"user-2")

	active, err := svc.ActiveUsers(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"user-1"}, active)
	// 陈旧成员被顺手从花名册移除
	require.Equal(t, []string{"user-2"}, store.removed)

	online, err := svc.IsOnline(context.Background(), "user-2")
	require.NoError(t, err)
	require.False(t, online)
}

func TestPresenceRosterCleanupFailureIsNonFatal(t *testing.T) {
	store := newFakePresenceStore()
	svc := NewPresenceService(store)

	require.NoError(t, svc.Touch(context.Background(), "user-1"))
	delete(store.heartbeats, presenceKeyPrefix+"user-1")
	store.removeErr = errors.New("redis down")

	active, err := svc.ActiveUsers(context.Background())
	require.NoError(t, err)
	require.Empty(t, active)
}

func TestPresenceEmptyRoster(t *testing.T) {
	svc := NewPresenceService(newFakePresenceStore())

	active, err := svc.ActiveUsers(context.Background())
	require.NoError(t, err)
	require.NotNil(t, active)
	require.Empty(t, active)
}

func TestPresenceTouchRejectsEmptyUser(t *testing.T) {
	svc := NewPresenceService(newFakePresenceStore())
	require.Error(t, svc.Touch(context.Background(), ""))
}

func TestSplitByHeartbeat(t *testing.T) {
	active, stale := splitByHeartbeat(
		[]string{"a", "b", "c"},
		[]string{"1700000000", "", "1700000001"},
	)
	require.Equal(t, []string{"a", "c"}, active)
	require.Equal(t, []string{"b"}, stale)
}

// File: internal/modules/battle/service/presence_service.go
package service

import (
	"context"
	"strconv"
	"time"

	"typeduel-self/internal/pkg/config"
	"typeduel-self/internal/pkg/log"
	"typeduel-self/internal/pkg/xerrors"
)

const (
	presenceKeyPrefix = "battle:online:"
	presenceRosterKey = "battle:online:roster"

	defaultPresenceTTLSeconds = 300
)

// presenceStore 在线状态存储，由 redis.Client 实现
type presenceStore interface {
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	AddToSet(ctx context.Context, key string, members ...interface{}) error
	SetMembers(ctx context.Context, key string) ([]string, error)
	RemoveFromSet(ctx context.Context, key string, members ...interface{}) error
	GetStrings(ctx context.Context, keys ...string) ([]string, error)
}

// PresenceService 在线状态服务
// 每个在线用户一个带 TTL 的心跳键，外加一个花名册集合用于枚举。
// 心跳键过期即离线；花名册里的陈旧成员在枚举时顺手清理。
type PresenceService struct {
	store presenceStore
	ttl   time.Duration
}

// NewPresenceService 创建在线状态服务，TTL 可通过 BATTLE_PRESENCE_TTL_SECONDS 覆盖
func NewPresenceService(store presenceStore) *PresenceService {
	ttlSeconds := config.GetEnvIntOrDefault("BATTLE_PRESENCE_TTL_SECONDS", defaultPresenceTTLSeconds)
	if ttlSeconds <= 0 {
		ttlSeconds = defaultPresenceTTLSeconds
	}
	return &PresenceService{
		store: store,
		ttl:   time.Duration(ttlSeconds) * time.Second,
	}
}

// TTL 返回当前生效的心跳有效期
func (s *PresenceService) TTL() time.Duration {
	return s.ttl
}

// Touch 刷新用户在线心跳
func (s *PresenceService) Touch(ctx context.Context, userID string) error {
	if userID == "" {
		return xerrors.NewInvalidArgumentError("user_id", "用户ID不能为空")
	}
	now := strconv.FormatInt(time.Now().Unix(), 10)
	if err := s.store.SetWithTTL(ctx, presenceKeyPrefix+userID, now, s.ttl); err != nil {
		return xerrors.Wrap(err, xerrors.CodeCacheError, "写入在线心跳失败")
	}
	if err := s.store.AddToSet(ctx, presenceRosterKey, userID); err != nil {
		return xerrors.Wrap(err, xerrors.CodeCacheError, "更新在线花名册失败")
	}
	return nil
}

// ActiveUsers 返回当前在线的用户ID列表
// 以心跳键存活为准；花名册中心跳已过期的成员被顺手移除
func (s *PresenceService) ActiveUsers(ctx context.Context) ([]string, error) {
	roster, err := s.store.SetMembers(ctx, presenceRosterKey)
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.CodeCacheError, "读取在线花名册失败")
	}
	if len(roster) == 0 {
		return []string{}, nil
	}

	keys := make([]string, len(roster))
	for i, userID := range roster {
		keys[i] = presenceKeyPrefix + userID
	}
	heartbeats, err := s.store.GetStrings(ctx, keys...)
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.CodeCacheError, "读取在线心跳失败")
	}

	active, stale := splitByHeartbeat(roster, heartbeats)
	if len(stale) > 0 {
		members := make([]interface{}, len(stale))
		for i, userID := range stale {
			members[i] = userID
		}
		// 清理失败不影响本次结果，下次枚举还有机会
		if err := s.store.RemoveFromSet(ctx, presenceRosterKey, members...); err != nil {
			log.WarnContext(ctx, "清理离线花名册成员失败",
				log.Int("stale_count", len(stale)),
				log.Any("error", err))
		}
	}
	return active, nil
}

// IsOnline 检查单个用户是否在线
func (s *PresenceService) IsOnline(ctx context.Context, userID string) (bool, error) {
	values, err := s.store.GetStrings(ctx, presenceKeyPrefix+userID)
	if err != nil {
		return false, xerrors.Wrap(err, xerrors.CodeCacheError, "读取在线心跳失败")
	}
	return len(values) == 1 && values[0] != "", nil
}

// splitByHeartbeat 把花名册按心跳存活与否分成在线/陈旧两组
// heartbeats 与 roster 按下标对应，心跳键不存在时取值为空字符串
func splitByHeartbeat(roster, heartbeats []string) (active, stale []string) {
	active = []string{}
	for i, userID := range roster {
		if i < len(heartbeats) && heartbeats[i] != "" {
			active = append(active, userID)
		} else {
			stale = append(stale, userID)
		}
	}
	return active, stale
}

// File: internal/modules/battle/service/container.go
package service

import (
	"database/sql"

	"typeduel-self/internal/pkg/metrics"
	"typeduel-self/internal/pkg/redis"
	"typeduel-self/internal/repository/impl"
	"typeduel-self/internal/repository/interfaces"
)

// ServiceContainer 对战服务容器 - 统一管理所有 Repository 和 Service
// 目的：避免重复创建 Repository，简化依赖注入
type ServiceContainer struct {
	// 所有 Repository（共享实例）
	battleRepo      interfaces.BattleRepository
	participantRepo interfaces.BattleParticipantRepository
	ratingRepo      interfaces.BattleRatingRepository
	invitationRepo  interfaces.BattleInvitationRepository
	challengeRepo   interfaces.ChallengeRepository

	// 所有 Service（共享实例）
	PresenceService    *PresenceService
	RatingService      *RatingService
	RewardsService     *RewardsService
	BattleService      *BattleService
	MatchmakingService *MatchmakingService
	InvitationService  *InvitationService
}

// NewServiceContainer 创建服务容器
// redisClient 承载在线状态；businessMetrics 可选
func NewServiceContainer(db *sql.DB, redisClient *redis.Client, businessMetrics *metrics.BusinessMetrics) *ServiceContainer {
	c := &ServiceContainer{}

	// 初始化所有 Repository
	c.battleRepo = impl.NewBattleRepository(db)
	c.participantRepo = impl.NewBattleParticipantRepository(db)
	c.ratingRepo = impl.NewBattleRatingRepository(db)
	c.invitationRepo = impl.NewBattleInvitationRepository(db)
	c.challengeRepo = impl.NewChallengeRepository(db)

	// 纯计算/叶子服务
	c.PresenceService = NewPresenceService(redisClient)
	c.RatingService = NewRatingService(c.ratingRepo)
	c.RewardsService = NewRewardsService()

	// 生命周期服务（依赖 repository 和叶子服务）
	c.BattleService = NewBattleService(db, c.battleRepo, c.participantRepo, c.challengeRepo, c.RatingService, c.RewardsService)

	// 匹配与邀请（依赖 BattleService 的预绑定入口）
	c.MatchmakingService = NewMatchmakingService(c.PresenceService, c.ratingRepo, c.BattleService)
	c.InvitationService = NewInvitationService(c.invitationRepo, c.BattleService)

	if businessMetrics != nil {
		c.BattleService.SetBusinessMetrics(businessMetrics)
		c.MatchmakingService.SetBusinessMetrics(businessMetrics)
		c.InvitationService.SetBusinessMetrics(businessMetrics)
	}
	return c
}

// GetBattleService 获取对战生命周期服务
func (c *ServiceContainer) GetBattleService() *BattleService {
	return c.BattleService
}

// GetPresenceService 获取在线状态服务
func (c *ServiceContainer) GetPresenceService() *PresenceService {
	return c.PresenceService
}

// GetRatingService 获取积分服务
func (c *ServiceContainer) GetRatingService() *RatingService {
	return c.RatingService
}

// GetMatchmakingService 获取匹配服务
func (c *ServiceContainer) GetMatchmakingService() *MatchmakingService {
	return c.MatchmakingService
}

// GetInvitationService 获取邀请服务
func (c *ServiceContainer) GetInvitationService() *InvitationService {
	return c.InvitationService
}

// GetBattleRepo 获取对战仓储
func (c *ServiceContainer) GetBattleRepo() interfaces.BattleRepository {
	return c.battleRepo
}

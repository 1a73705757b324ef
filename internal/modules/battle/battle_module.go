package battle

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	custommiddleware "typeduel-self/internal/middleware"
	"typeduel-self/internal/modules/battle/handler"
	"typeduel-self/internal/modules/battle/service"
	"typeduel-self/internal/modules/battle/tasks"
	"typeduel-self/internal/pkg/i18n"
	"typeduel-self/internal/pkg/log"
	"typeduel-self/internal/pkg/metrics"
	redisClient "typeduel-self/internal/pkg/redis"
	"typeduel-self/internal/pkg/response"
	"typeduel-self/internal/pkg/trace"
	"typeduel-self/internal/pkg/validator"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/liangdas/mqant/conf"
	"github.com/liangdas/mqant/module"
	basemodule "github.com/liangdas/mqant/module/base"
	"github.com/liangdas/mqant/server"
	_ "github.com/lib/pq"
)

type BattleModule struct {
	basemodule.BaseModule
	db                   *sql.DB
	redis                *redisClient.Client
	httpServer           *echo.Echo
	serviceContainer     *service.ServiceContainer
	battleHandler        *handler.BattleHandler
	matchmakingHandler   *handler.MatchmakingHandler
	invitationHandler    *handler.InvitationHandler
	ratingHandler        *handler.RatingHandler
	battleRPCHandler     *handler.BattleRPCHandler
	invitationExpireTask *tasks.InvitationExpireTask
	battleCleanupTask    *tasks.BattleCleanupTask
	respWriter           response.Writer
}

// GetType returns module type
func (m *BattleModule) GetType() string {
	return "battle"
}

// Version returns module version
func (m *BattleModule) Version() string {
	return "1.0.0"
}

// OnAppConfigurationLoaded 当App初始化时调用
func (m *BattleModule) OnAppConfigurationLoaded(app module.App) {
	m.BaseModule.OnAppConfigurationLoaded(app)
}

// OnInit module initialization
func (m *BattleModule) OnInit(app module.App, settings *conf.ModuleSettings) {
	metrics.SetServiceName("battle")
	// 按照 mqant 官方推荐：在每个模块的 OnInit 中配置服务注册参数
	// TTL = 30s, 心跳间隔 = 15s (TTL 必须大于心跳间隔)
	m.BaseModule.OnInit(m, app, settings,
		server.RegisterInterval(15*time.Second),
		server.RegisterTTL(30*time.Second),
	)

	// 1. Initialize database connection
	if err := m.initDatabase(settings); err != nil {
		panic(fmt.Sprintf("Failed to initialize database: %v", err))
	}

	// 2. Initialize Redis (presence tracker)
	if err := m.initRedis(settings); err != nil {
		panic(fmt.Sprintf("Failed to initialize Redis: %v", err))
	}

	// 3. Initialize response writer
	m.initResponseWriter()

	// 4. Initialize HTTP server
	m.initHTTPServer()

	// 5. Initialize Services and Handlers
	m.initServicesAndHandlers()

	// 6. Setup routes
	m.setupRoutes()

	// 7. Setup RPC methods
	m.setupRPCMethods()

	// 8. Start cron tasks
	m.startCronTasks()

	// 9. Start HTTP server in background
	go m.startHTTPServer(settings)

	m.GetServer().Options()
}

// initDatabase initializes database connection
func (m *BattleModule) initDatabase(settings *conf.ModuleSettings) error {
	// Read from environment variable first
	dbURL := os.Getenv("BATTLE_DATABASE_URL")
	if dbURL == "" {
		// Fallback to config file
		if settings != nil && settings.Settings != nil {
			dbURLInterface, ok := settings.Settings["database_url"]
			if ok {
				dbURL, _ = dbURLInterface.(string)
			}
		}
	}

	if dbURL == "" {
		return fmt.Errorf("BATTLE_DATABASE_URL not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	m.db = db
	fmt.Println("[Battle Module] Database initialized successfully")

	// 启动数据库连接池监控
	go m.startDBPoolMonitoring(db)

	return nil
}

// initRedis initializes Redis client for the presence tracker
func (m *BattleModule) initRedis(settings *conf.ModuleSettings) error {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}

	port := 6379
	if portStr := os.Getenv("REDIS_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	password := os.Getenv("REDIS_PASSWORD")

	dbIndex := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if d, err := strconv.Atoi(dbStr); err == nil {
			dbIndex = d
		}
	}

	client, err := redisClient.NewClient(redisClient.Config{
		Host:     host,
		Port:     port,
		Password: password,
		DB:       dbIndex,
	}, metrics.GetServiceName())
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	m.redis = client
	fmt.Printf("[Battle Module] Redis connected successfully (Host: %s:%d, DB: %d)\n", host, port, dbIndex)
	return nil
}

// initResponseWriter initializes response writer
func (m *BattleModule) initResponseWriter() {
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	// 使用全局 logger
	logger := log.GetLogger()
	m.respWriter = response.NewResponseHandler(logger, environment)
	fmt.Println("[Battle Module] Response writer initialized")
}

// initHTTPServer initializes HTTP server
func (m *BattleModule) initHTTPServer() {
	m.httpServer = echo.New()

	// Hide banner
	m.httpServer.HideBanner = true
	m.httpServer.HidePort = true

	// Register validator
	m.httpServer.Validator = validator.New()

	// 获取全局 logger
	logger := log.GetLogger()

	// 获取环境变量
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	// ========== 中间件配置（顺序很重要！） ==========

	// 1. TraceID 中间件 - 最先执行，生成或提取 TraceID
	m.httpServer.Use(trace.Middleware())

	// 2. Metrics 中间件 - 记录 HTTP 方法到 context（用于 Prometheus）
	m.httpServer.Use(metrics.Middleware())

	// 3. i18n 中间件 - 语言检测和设置
	m.httpServer.Use(i18n.Middleware())

	// 4. Logging 中间件 - 记录请求日志（依赖 TraceID）
	loggingConfig := custommiddleware.DefaultLoggingConfig()
	if environment == "development" {
		// 开发环境启用详细日志
		loggingConfig.DetailedLog = true
		loggingConfig.LogRequestBody = true
	}
	m.httpServer.Use(custommiddleware.LoggingMiddlewareWithConfig(logger, loggingConfig))

	// 5. Recovery 中间件 - 捕获 panic
	m.httpServer.Use(custommiddleware.RecoveryMiddleware(m.respWriter, logger))

	// 6. Error 中间件 - 统一错误处理
	m.httpServer.Use(custommiddleware.ErrorMiddleware(m.respWriter, logger))

	// 7. CORS 中间件
	m.httpServer.Use(middleware.CORS())

	// 8. 限流中间件
	m.httpServer.Use(custommiddleware.RateLimitMiddleware())

	fmt.Println("[Battle Module] HTTP middlewares configured:")
	fmt.Println("  ✓ TraceID (自动生成追踪ID)")
	fmt.Println("  ✓ Metrics (Prometheus 指标收集)")
	fmt.Println("  ✓ i18n (国际化支持)")
	fmt.Printf("  ✓ Logging (日志记录 - %s)\n", environment)
	fmt.Println("  ✓ Recovery (Panic 恢复)")
	fmt.Println("  ✓ Error (统一错误处理)")
	fmt.Println("  ✓ CORS (跨域支持)")
	fmt.Println("  ✓ RateLimit (IP 限流)")
}

// initServicesAndHandlers initializes services and HTTP handlers
func (m *BattleModule) initServicesAndHandlers() {
	// 创建服务容器（统一管理所有 Repository 和 Service）
	m.serviceContainer = service.NewServiceContainer(m.db, m.redis, metrics.DefaultBusinessMetrics)

	// 初始化 HTTP Handlers（从容器中获取需要的服务）
	m.battleHandler = handler.NewBattleHandler(m.serviceContainer, m.respWriter)
	m.matchmakingHandler = handler.NewMatchmakingHandler(m.serviceContainer, m.respWriter)
	m.invitationHandler = handler.NewInvitationHandler(m.serviceContainer, m.respWriter)
	m.ratingHandler = handler.NewRatingHandler(m.serviceContainer, m.respWriter)
	m.battleRPCHandler = handler.NewBattleRPCHandler(m.serviceContainer)

	// 在线人数上报（presence gauge）
	go m.startPresenceMonitoring()

	fmt.Println("[Battle Module] Handlers initialized successfully")
}

// startCronTasks starts cron scheduled tasks
func (m *BattleModule) startCronTasks() {
	logger := log.GetLogger()

	// 1. 邀请过期清扫任务
	m.invitationExpireTask = tasks.NewInvitationExpireTask(m.db, logger)
	m.invitationExpireTask.Start()

	// 2. 滞留对战清理任务
	m.battleCleanupTask = tasks.NewBattleCleanupTask(m.db, logger)
	m.battleCleanupTask.Start()

	fmt.Println("[Battle Module] Cron tasks started successfully:")
	fmt.Println("  ✓ Invitation Expire Task (每小时)")
	fmt.Println("  ✓ Battle Cleanup Task (每天凌晨3点)")
}

// presenceTouchMiddleware 每个已认证请求刷新一次在线心跳
// 心跳失败不阻断请求，只记录日志
func (m *BattleModule) presenceTouchMiddleware(logger log.Logger) echo.MiddlewareFunc {
	presence := m.serviceContainer.GetPresenceService()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if userID, err := custommiddleware.GetCurrentUserID(c); err == nil {
				if err := presence.Touch(c.Request().Context(), userID); err != nil {
					logger.Warn("刷新在线心跳失败", log.String("user_id", userID), log.Any("error", err))
				}
			}
			return next(c)
		}
	}
}

// setupRoutes sets up HTTP routes
func (m *BattleModule) setupRoutes() {
	logger := log.GetLogger()

	// API v1 group
	v1 := m.httpServer.Group("/api/v1")

	// Battle routes (全部需要认证)
	battles := v1.Group("/battles")
	battles.Use(custommiddleware.AuthMiddleware(m.respWriter, logger))
	battles.Use(m.presenceTouchMiddleware(logger))
	{
		// 参与者校验中间件：只用在进度/结果等参与者专属接口
		battleMW := custommiddleware.BattleMiddleware(m.db, m.respWriter, logger)

		// 快速匹配与邀请（静态路径，注册在 :battle_id 之前）
		battles.POST("/quick-match", m.matchmakingHandler.QuickMatch)

		battles.POST("/invitations", m.invitationHandler.CreateInvitation)
		battles.GET("/invitations", m.invitationHandler.ListInvitations)
		battles.POST("/invitations/:invitation_id/respond", m.invitationHandler.RespondInvitation)

		// 积分与战绩
		battles.GET("/ratings/me", m.ratingHandler.GetMyRating)
		battles.GET("/ratings/:user_id", m.ratingHandler.GetUserRating)

		// 对战生命周期
		battles.POST("", m.battleHandler.CreateBattle)
		battles.GET("", m.battleHandler.ListBattles)
		battles.GET("/:battle_id", m.battleHandler.GetBattle)
		battles.POST("/:battle_id/join", m.battleHandler.JoinBattle)
		battles.DELETE("/:battle_id", m.battleHandler.CancelBattle)
		battles.POST("/:battle_id/rematch", m.battleHandler.Rematch)

		// 参与者专属接口
		battles.POST("/:battle_id/progress", m.battleHandler.UpdateProgress, battleMW)
		battles.POST("/:battle_id/result", m.battleHandler.SubmitResult, battleMW)
		battles.GET("/:battle_id/opponent-progress", m.battleHandler.OpponentProgress, battleMW)
	}

	// Health check
	m.httpServer.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status": "ok",
			"module": "battle",
		})
	})

	// Prometheus metrics endpoint
	m.httpServer.GET("/metrics", metrics.EchoHandler())

	fmt.Println("[Battle Module] Routes configured successfully")
	fmt.Println("[Battle Module] Battle API routes: /api/v1/battles/*")
	fmt.Println("[Battle Module] Prometheus metrics available at /metrics")
}

// startHTTPServer starts HTTP server
func (m *BattleModule) startHTTPServer(settings *conf.ModuleSettings) {
	// Read HTTP port from environment variable first
	port := os.Getenv("BATTLE_HTTP_PORT")
	if port == "" {
		// Fallback to config file
		if settings != nil && settings.Settings != nil {
			portInterface, ok := settings.Settings["http_port"]
			if ok {
				port, _ = portInterface.(string)
			}
		}
	}

	if port == "" {
		port = "8073" // Default port
	}

	fmt.Printf("[Battle Module] Starting HTTP server on port %s\n", port)

	if err := m.httpServer.Start(":" + port); err != nil {
		fmt.Printf("[Battle Module] HTTP server error: %v\n", err)
	}
}

// Run module run
func (m *BattleModule) Run(closeSig chan bool) {
	fmt.Println("[Battle Module] Started successfully")
	<-closeSig
}

// OnDestroy module destroy
func (m *BattleModule) OnDestroy() {
	// Stop cron tasks
	if m.invitationExpireTask != nil {
		m.invitationExpireTask.Stop()
	}
	if m.battleCleanupTask != nil {
		m.battleCleanupTask.Stop()
		fmt.Println("[Battle Module] Cron tasks stopped")
	}

	// Close HTTP server
	if m.httpServer != nil {
		if err := m.httpServer.Close(); err != nil {
			fmt.Printf("[Battle Module] Failed to close HTTP server: %v\n", err)
		} else {
			fmt.Println("[Battle Module] HTTP server closed")
		}
	}

	// Close database connection
	if m.db != nil {
		if err := m.db.Close(); err != nil {
			fmt.Printf("[Battle Module] Failed to close database: %v\n", err)
		} else {
			fmt.Println("[Battle Module] Database connection closed")
		}
	}

	m.BaseModule.OnDestroy()
	fmt.Println("[Battle Module] Destroyed")
}

// Module creates Battle module instance
func Module() module.Module {
	return new(BattleModule)
}

// startDBPoolMonitoring 启动数据库连接池监控
// 每 30 秒报告一次连接池统计信息到 Prometheus
func (m *BattleModule) startDBPoolMonitoring(db *sql.DB) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		stats := db.Stats()

		// 记录数据库连接池指标
		metrics.DefaultResourceMetrics.RecordDBPoolStats(
			metrics.GetServiceName(),
			"postgres",            // 数据库名称
			stats.OpenConnections, // 当前打开的连接数
			stats.InUse,           // 正在使用的连接数
			stats.Idle,            // 空闲连接数
			25,                    // 最大连接数（与 SetMaxOpenConns 保持一致）
			stats.WaitCount,       // 等待连接的总次数
			stats.WaitDuration,    // 等待连接的总时长
		)
	}
}

// startPresenceMonitoring 定期把在线人数上报到 Prometheus
func (m *BattleModule) startPresenceMonitoring() {
	logger := log.GetLogger()
	presence := m.serviceContainer.GetPresenceService()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		users, err := presence.ActiveUsers(context.Background())
		if err != nil {
			logger.Warn("统计在线人数失败", log.Any("error", err))
			continue
		}
		metrics.DefaultBusinessMetrics.SetPlayersOnline(len(users), metrics.GetServiceName())
	}
}

// setupRPCMethods 注册 RPC 方法
// 供其他模块（如管理端）调用
func (m *BattleModule) setupRPCMethods() {
	m.GetServer().RegisterGO("GetBattleDetail", m.battleRPCHandler.GetBattleDetail)
	m.GetServer().RegisterGO("GetUserRating", m.battleRPCHandler.GetUserRating)

	fmt.Println("[Battle Module] RPC methods registered:")
	fmt.Println("  ✓ GetBattleDetail - 获取对战详情")
	fmt.Println("  ✓ GetUserRating - 获取用户积分")
}

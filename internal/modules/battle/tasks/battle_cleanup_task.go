package tasks

import (
	"context"
	"database/sql"

	"github.com/robfig/cron/v3"

	"typeduel-self/internal/pkg/log"
	"typeduel-self/internal/repository/impl"
	"typeduel-self/internal/repository/interfaces"
)

// 滞留对战保留天数：超过该天数仍未打完的 pending/active 对战会被删除
const battleRetentionDays = 14

// BattleCleanupTask 滞留对战清理任务
type BattleCleanupTask struct {
	battleRepo interfaces.BattleRepository
	logger     log.Logger
	cron       *cron.Cron
}

// NewBattleCleanupTask 创建滞留对战清理任务实例
func NewBattleCleanupTask(db *sql.DB, logger log.Logger) *BattleCleanupTask {
	return &BattleCleanupTask{
		battleRepo: impl.NewBattleRepository(db),
		logger:     logger,
	}
}

// Start 启动定时任务
func (t *BattleCleanupTask) Start() {
	// 创建 cron 调度器
	t.cron = cron.New(cron.WithSeconds())

	// 每天凌晨3点执行清理
	// Cron 表达式: 秒 分 时 日 月 周
	_, err := t.cron.AddFunc("0 0 3 * * *", func() {
		t.logger.Info("【对战定时任务】开始清理滞留对战")
		t.cleanupStaleBattles()
		t.logger.Info("【对战定时任务】滞留对战清理完成")
	})

	if err != nil {
		t.logger.Error("【对战定时任务】添加清理任务失败", err)
		return
	}

	// 启动调度器
	t.cron.Start()
	t.logger.Info("【对战定时任务】滞留对战清理任务已启动 - 每天凌晨3点执行")
}

// cleanupStaleBattles 删除超过保留期仍未完成的对战
// 已完成的对战永久保留，供战绩与再战查询
func (t *BattleCleanupTask) cleanupStaleBattles() {
	ctx := context.Background()

	deletedCount, err := t.battleRepo.DeleteStale(ctx, battleRetentionDays)
	if err != nil {
		t.logger.Error("【对战定时任务】清理滞留对战失败", err)
		return
	}

	if deletedCount > 0 {
		t.logger.Info("【对战定时任务】滞留对战清理成功",
			"deleted_count", deletedCount,
			"retention_days", battleRetentionDays)
	} else {
		t.logger.Debug("【对战定时任务】没有需要清理的滞留对战")
	}
}

// Stop 停止定时任务（优雅关闭）
func (t *BattleCleanupTask) Stop() {
	if t.cron != nil {
		t.logger.Info("【对战定时任务】正在停止滞留对战清理任务...")
		ctx := t.cron.Stop()
		<-ctx.Done()
		t.logger.Info("【对战定时任务】滞留对战清理任务已停止")
	}
}

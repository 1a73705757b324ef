// File: internal/pkg/metrics/business_metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics 对战业务指标收集器
type BusinessMetrics struct {
	// 当前在线玩家数（Gauge 类型，可增可减）
	PlayersOnline *prometheus.GaugeVec

	// 完成的对战次数（按类型和结果分组：creator/opponent/draw）
	BattlesTotal *prometheus.CounterVec

	// 对战时长直方图（从开始到双方提交结果）
	BattleDuration *prometheus.HistogramVec

	// 匹配尝试次数（按结果分组：matched/fallback/none）
	MatchmakingTotal *prometheus.CounterVec

	// 邀请数（按最终状态分组：accepted/declined/expired）
	InvitationsTotal *prometheus.CounterVec

	// 积分变动量直方图（绝对值）
	RatingDelta *prometheus.HistogramVec
}

var (
	// DefaultBusinessMetrics 默认的业务指标实例
	DefaultBusinessMetrics *BusinessMetrics
)

// BattleBuckets 是针对对战时长优化的 buckets
// 打字对战通常 30 秒到几分钟
// 单位：秒
var BattleBuckets = []float64{
	15,  // 15s
	30,  // 30s
	60,  // 1分钟
	120, // 2分钟
	180, // 3分钟
	300, // 5分钟
	600, // 10分钟
}

// RatingDeltaBuckets 积分变动幅度（K=32 时最大变动 32）
var RatingDeltaBuckets = []float64{2, 4, 8, 16, 24, 32}

// init 初始化默认指标
func init() {
	DefaultBusinessMetrics = NewBusinessMetrics("typeduel")
}

// NewBusinessMetrics 创建新的业务指标收集器
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	return NewBusinessMetricsWithRegistry(namespace, GetRegisterer())
}

// NewBusinessMetricsWithRegistry 创建新的业务指标收集器（使用自定义注册表）
func NewBusinessMetricsWithRegistry(namespace string, registerer prometheus.Registerer) *BusinessMetrics {
	factory := promauto.With(registerer)

	return &BusinessMetrics{
		PlayersOnline: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "battle",
				Name:      "players_online",
				Help:      "Current number of players reported active by the presence tracker",
			},
			[]string{"service"},
		),

		BattlesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "battle",
				Name:      "battles_total",
				Help:      "Total number of completed battles by type and outcome (creator/opponent/draw)",
			},
			[]string{"battle_type", "outcome", "service"},
		),

		BattleDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "battle",
				Name:      "duration_seconds",
				Help:      "Battle duration from start to completion in seconds",
				Buckets:   BattleBuckets,
			},
			[]string{"battle_type", "service"},
		),

		MatchmakingTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "battle",
				Name:      "matchmaking_total",
				Help:      "Total number of matchmaking attempts by result (matched/fallback/none)",
			},
			[]string{"result", "service"},
		),

		InvitationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "battle",
				Name:      "invitations_total",
				Help:      "Total number of battle invitations by final status",
			},
			[]string{"status", "service"},
		),

		RatingDelta: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "battle",
				Name:      "rating_delta",
				Help:      "Absolute ELO rating change per completed battle",
				Buckets:   RatingDeltaBuckets,
			},
			[]string{"service"},
		),
	}
}

// RecordBattle 记录一场完成的对战
//
// 参数:
//   - battleType: 对战类型 ("speed", "accuracy", "endurance", "balanced")
//   - outcome: 结果 ("creator", "opponent", "draw")
//   - duration: 对战时长
//   - service: 服务名称
func (m *BusinessMetrics) RecordBattle(battleType, outcome string, duration time.Duration, service string) {
	service = normalizeServiceName(service)
	m.BattlesTotal.WithLabelValues(battleType, outcome, service).Inc()
	m.BattleDuration.WithLabelValues(battleType, service).Observe(duration.Seconds())
}

// RecordMatchmaking 记录匹配尝试
//
// 参数:
//   - result: 匹配结果 ("matched" 同分段命中, "fallback" 随机兜底, "none" 无人可匹配)
func (m *BusinessMetrics) RecordMatchmaking(result, service string) {
	service = normalizeServiceName(service)
	m.MatchmakingTotal.WithLabelValues(result, service).Inc()
}

// RecordInvitation 记录邀请终态
//
// 参数:
//   - status: 终态 ("accepted", "declined", "expired")
func (m *BusinessMetrics) RecordInvitation(status, service string) {
	service = normalizeServiceName(service)
	m.InvitationsTotal.WithLabelValues(status, service).Inc()
}

// RecordRatingDelta 记录积分变动幅度
func (m *BusinessMetrics) RecordRatingDelta(delta int, service string) {
	service = normalizeServiceName(service)
	if delta < 0 {
		delta = -delta
	}
	m.RatingDelta.WithLabelValues(service).Observe(float64(delta))
}

// SetPlayersOnline 设置当前在线玩家数
func (m *BusinessMetrics) SetPlayersOnline(count int, service string) {
	service = normalizeServiceName(service)
	m.PlayersOnline.WithLabelValues(service).Set(float64(count))
}

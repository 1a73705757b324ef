// File: internal/pkg/metrics/business_metrics_test.go
package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBusinessMetrics_RecordBattle(t *testing.T) {
	tests := []struct {
		name       string
		battleType string
		outcome    string
		duration   time.Duration
	}{
		{
			name:       "速度赛 - 创建者获胜",
			battleType: "speed",
			outcome:    "creator",
			duration:   45 * time.Second,
		},
		{
			name:       "准确率赛 - 平局",
			battleType: "accuracy",
			outcome:    "draw",
			duration:   90 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			metrics := NewBusinessMetricsWithRegistry("test", reg)

			metrics.RecordBattle(tt.battleType, tt.outcome, tt.duration, "battle")

			count := testutil.ToFloat64(metrics.BattlesTotal.WithLabelValues(tt.battleType, tt.outcome, "battle"))
			assert.Equal(t, float64(1), count)
		})
	}
}

func TestBusinessMetrics_RecordMatchmaking(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewBusinessMetricsWithRegistry("test", reg)

	metrics.RecordMatchmaking("matched", "battle")
	metrics.RecordMatchmaking("matched", "battle")
	metrics.RecordMatchmaking("fallback", "battle")
	metrics.RecordMatchmaking("none", "battle")

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.MatchmakingTotal.WithLabelValues("matched", "battle")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.MatchmakingTotal.WithLabelValues("fallback", "battle")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.MatchmakingTotal.WithLabelValues("none", "battle")))
}

func TestBusinessMetrics_PlayersOnline(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewBusinessMetricsWithRegistry("test", reg)

	metrics.SetPlayersOnline(42, "battle")
	assert.Equal(t, float64(42), testutil.ToFloat64(metrics.PlayersOnline.WithLabelValues("battle")))

	// 在线人数可以下降
	metrics.SetPlayersOnline(7, "battle")
	assert.Equal(t, float64(7), testutil.ToFloat64(metrics.PlayersOnline.WithLabelValues("battle")))
}

func TestBusinessMetrics_RecordRatingDelta(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewBusinessMetricsWithRegistry("test", reg)

	// 正负变动都按绝对值记录，不应 panic
	metrics.RecordRatingDelta(16, "battle")
	metrics.RecordRatingDelta(-16, "battle")
	assert.NotNil(t, metrics.RatingDelta)
}

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registererMu sync.RWMutex
	registerer   prometheus.Registerer = prometheus.DefaultRegisterer
)

// SetRegisterer 替换全局 Registerer, 测试中可注入独立注册表避免指标重复注册。
// 传 nil 恢复为 prometheus.DefaultRegisterer。
func SetRegisterer(r prometheus.Registerer) {
	if r == nil {
		r = prometheus.DefaultRegisterer
	}

	registererMu.Lock()
	defer registererMu.Unlock()
	registerer = r
}

// GetRegisterer 返回当前的 Registerer。
func GetRegisterer() prometheus.Registerer {
	registererMu.RLock()
	defer registererMu.RUnlock()
	return registerer
}

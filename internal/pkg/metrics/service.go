package metrics

import "sync/atomic"

const defaultServiceName = "unknown"

var serviceName atomic.Pointer[string]

// SetServiceName 配置当前服务名称, 作为所有指标的 service 标签。
// 模块 OnInit 里最先调用一次, 之后保持稳定。
func SetServiceName(name string) {
	if name == "" {
		name = defaultServiceName
	}
	serviceName.Store(&name)
}

// GetServiceName 返回当前配置的服务名称。
func GetServiceName() string {
	if value := serviceName.Load(); value != nil && *value != "" {
		return *value
	}
	return defaultServiceName
}

func normalizeServiceName(name string) string {
	if name == "" {
		return GetServiceName()
	}
	return name
}

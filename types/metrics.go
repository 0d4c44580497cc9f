package types

import "time"

type MetricsManager interface {
	LifecycleManager
	ObserveRequest(method string, status int, duration time.Duration)
	ObserveFault(kind string)
	GetMetrics() ([]byte, error)
	Render() ([]byte, error)
}

type MetricValue struct {
	Name      string            `json:"name"`
	Type      string            `json:"type"`
	Value     float64           `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
	Help      string            `json:"help,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

package metrics

import (
	"bytes"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"

	"github.com/saiset-co/sai-dispatch/app"
	"github.com/saiset-co/sai-dispatch/types"
	"github.com/saiset-co/sai-dispatch/utils"
)

type PrometheusConfig struct {
	Path            string            `yaml:"path" json:"path"`
	Namespace       string            `yaml:"namespace" json:"namespace"`
	Labels          map[string]string `yaml:"labels" json:"labels"`
	EnableGoMetrics bool              `yaml:"enable_go_metrics" json:"enable_go_metrics"`
}

// PrometheusMetrics counts dispatches and faults. It observes the pipeline
// from the transport side only; nothing in the core depends on it.
type PrometheusMetrics struct {
	logger   types.Logger
	config   *PrometheusConfig
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	faults   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	running  int32
}

func NewPrometheusMetrics(logger types.Logger, config *types.MetricsConfig) (types.MetricsManager, error) {
	var promConfig = &PrometheusConfig{
		Path:            "/metrics",
		Namespace:       "sai_dispatch",
		Labels:          make(map[string]string),
		EnableGoMetrics: true,
	}

	if config.Path != "" {
		promConfig.Path = config.Path
	}
	if config.Namespace != "" {
		promConfig.Namespace = config.Namespace
	}
	if config.Config != nil {
		err := utils.UnmarshalConfig(config.Config, promConfig)
		if err != nil {
			return nil, types.WrapError(err, "failed to unmarshal prometheus config")
		}
	}

	registry := prometheus.NewRegistry()
	if promConfig.EnableGoMetrics {
		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   promConfig.Namespace,
		Name:        "requests_total",
		Help:        "Dispatched requests by method and response status.",
		ConstLabels: promConfig.Labels,
	}, []string{"method", "status"})

	faults := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   promConfig.Namespace,
		Name:        "faults_total",
		Help:        "Handler and middleware faults captured by the fault barrier.",
		ConstLabels: promConfig.Labels,
	}, []string{"kind"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   promConfig.Namespace,
		Name:        "request_duration_seconds",
		Help:        "Wall time of one pipeline run.",
		Buckets:     prometheus.DefBuckets,
		ConstLabels: promConfig.Labels,
	}, []string{"method"})

	registry.MustRegister(requests, faults, duration)

	metrics := &PrometheusMetrics{
		logger:   logger,
		config:   promConfig,
		registry: registry,
		requests: requests,
		faults:   faults,
		duration: duration,
	}

	logger.Info("Prometheus metrics initialized",
		zap.String("namespace", promConfig.Namespace),
		zap.Bool("go_metrics", promConfig.EnableGoMetrics))

	return metrics, nil
}

func (p *PrometheusMetrics) Start() error {
	atomic.StoreInt32(&p.running, 1)
	return nil
}

func (p *PrometheusMetrics) Stop() error {
	atomic.StoreInt32(&p.running, 0)
	return nil
}

func (p *PrometheusMetrics) IsRunning() bool {
	return atomic.LoadInt32(&p.running) == 1
}

func (p *PrometheusMetrics) ObserveRequest(method string, status int, duration time.Duration) {
	p.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	p.duration.WithLabelValues(method).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) ObserveFault(kind string) {
	p.faults.WithLabelValues(kind).Inc()
}

// RegisterRoutes exposes the metrics endpoint through the routing API
// itself, like any other handler.
func (p *PrometheusMetrics) RegisterRoutes(a *app.Application) error {
	return a.Route("GET", p.config.Path, p.handleMetrics).WithoutHead().Register()
}

func (p *PrometheusMetrics) handleMetrics(req *types.Request, resp *types.Response) types.ControlSignal {
	promHandler := promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})

	w := newResponseBridge()
	httpReq, err := http.NewRequest("GET", p.config.Path, nil)
	if err != nil {
		resp.StatusCode = 500
		return types.Forward
	}

	promHandler.ServeHTTP(w, httpReq)
	w.flushTo(resp)

	return types.Forward
}

// Render returns the metrics in the Prometheus text exposition format.
func (p *PrometheusMetrics) Render() ([]byte, error) {
	w := newResponseBridge()
	httpReq, err := http.NewRequest("GET", p.config.Path, nil)
	if err != nil {
		return nil, err
	}

	promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}).ServeHTTP(w, httpReq)
	return w.body.Bytes(), nil
}

// GetMetrics returns a JSON rendering of the gathered metric families.
func (p *PrometheusMetrics) GetMetrics() ([]byte, error) {
	gatherer := prometheus.Gatherers{p.registry}
	gathering, err := gatherer.Gather()
	if err != nil {
		p.logger.Error("Failed to gather prometheus metrics", zap.Error(err))
		return nil, err
	}

	var values []types.MetricValue
	for _, mf := range gathering {
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string)
			for _, label := range m.GetLabel() {
				labels[label.GetName()] = label.GetValue()
			}

			values = append(values, types.MetricValue{
				Name:      mf.GetName(),
				Type:      mf.GetType().String(),
				Value:     metricValue(m),
				Labels:    labels,
				Help:      mf.GetHelp(),
				Timestamp: time.Now(),
			})
		}
	}

	return utils.Marshal(values)
}

func metricValue(m *dto.Metric) float64 {
	switch {
	case m.Counter != nil:
		return m.Counter.GetValue()
	case m.Gauge != nil:
		return m.Gauge.GetValue()
	case m.Histogram != nil:
		return m.Histogram.GetSampleSum()
	case m.Summary != nil:
		return m.Summary.GetSampleSum()
	default:
		return 0
	}
}

// responseBridge adapts a types.Response to http.ResponseWriter so the
// stock promhttp handler can write through it.
type responseBridge struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newResponseBridge() *responseBridge {
	return &responseBridge{
		header: make(http.Header),
		status: http.StatusOK,
	}
}

func (b *responseBridge) Header() http.Header {
	return b.header
}

func (b *responseBridge) Write(data []byte) (int, error) {
	return b.body.Write(data)
}

func (b *responseBridge) WriteHeader(statusCode int) {
	b.status = statusCode
}

func (b *responseBridge) flushTo(resp *types.Response) {
	resp.StatusCode = b.status
	resp.Body = append([]byte(nil), b.body.Bytes()...)
	resp.ContentType = b.header.Get("Content-Type")
	for name, values := range b.header {
		if name == "Content-Type" || len(values) == 0 {
			continue
		}
		resp.SetHeader(name, values[0])
	}
}

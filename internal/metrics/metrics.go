package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Chat registra o desfecho de cada geração
type Chat interface {
	ObserveChat(model, status, kind string, durationSeconds float64)
}

// HTTP registra as requisições recebidas pelo servidor
type HTTP interface {
	ObserveRequest(method, route, status string, durationSeconds float64)
}

// Noop implementa Chat e HTTP sem emitir nada
type Noop struct{}

func (Noop) ObserveChat(string, string, string, float64)    {}
func (Noop) ObserveRequest(string, string, string, float64) {}

// Prom implementa Chat e HTTP com um registry próprio
type Prom struct {
	registry   *prometheus.Registry
	chats      *prometheus.CounterVec
	generation *prometheus.HistogramVec
	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// NewProm cria e registra os coletores de chat e HTTP sob namespace
func NewProm(namespace string) *Prom {
	p := &Prom{
		registry: prometheus.NewRegistry(),
		chats: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "Chat requests by model, status and failure kind",
		}, []string{"model", "status", "kind"}),
		generation: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Time spent waiting on the model provider",
			Buckets:   prometheus.DefBuckets,
		}, []string{"model"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method/route/status",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method/route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	p.registry.MustRegister(
		p.chats, p.generation, p.requests, p.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

func (p *Prom) ObserveChat(model, status, kind string, durationSeconds float64) {
	p.chats.WithLabelValues(model, status, kind).Inc()
	p.generation.WithLabelValues(model).Observe(durationSeconds)
}

func (p *Prom) ObserveRequest(method, route, status string, durationSeconds float64) {
	p.requests.WithLabelValues(method, route, status).Inc()
	p.latency.WithLabelValues(method, route).Observe(durationSeconds)
}

// Handler expõe o registry em /metrics
func (p *Prom) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

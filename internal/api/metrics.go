package api

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"tokenScope/internal/cache"
)

// Metrics holds the prometheus collectors of the service.
type Metrics struct {
	refreshes       *prometheus.CounterVec
	refreshDuration *prometheus.HistogramVec
	tokens          *prometheus.GaugeVec
	tradable        *prometheus.GaugeVec
	quotes          *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokenscope",
			Name:      "token_refreshes_total",
			Help:      "Token list refreshes by outcome.",
		}, []string{"network", "outcome"}),
		refreshDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tokenscope",
			Name:      "token_refresh_duration_seconds",
			Help:      "Duration of token list refreshes.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"network"}),
		tokens: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "tokenscope",
			Name:      "tokens",
			Help:      "Tokens held by the cache after the last successful refresh.",
		}, []string{"network"}),
		tradable: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "tokenscope",
			Name:      "tradable_tokens",
			Help:      "Tradable tokens after the last successful refresh.",
		}, []string{"network"}),
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokenscope",
			Name:      "quotes_total",
			Help:      "Quote requests by direction and outcome.",
		}, []string{"direction", "outcome"}),
	}
	reg.MustRegister(m.refreshes, m.refreshDuration, m.tokens, m.tradable, m.quotes)
	return m
}

// ObserveRefresh records a finished refresh. It is meant to be passed to
// cache.WithRefreshObserver.
func (m *Metrics) ObserveRefresh(r cache.RefreshResult) {
	network := strconv.FormatUint(r.Network, 10)
	m.refreshDuration.WithLabelValues(network).Observe(r.Elapsed.Seconds())
	if r.Err != nil {
		m.refreshes.WithLabelValues(network, "error").Inc()
		return
	}
	m.refreshes.WithLabelValues(network, "ok").Inc()
	m.tokens.WithLabelValues(network).Set(float64(r.Tokens))
	m.tradable.WithLabelValues(network).Set(float64(r.Tradable))
}

func (m *Metrics) observeQuote(direction, outcome string) {
	if m == nil {
		return
	}
	m.quotes.WithLabelValues(direction, outcome).Inc()
}

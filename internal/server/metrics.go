package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metricsRegistry struct {
	registry           *prometheus.Registry
	challengesTotal    prometheus.Counter
	verificationsTotal *prometheus.CounterVec
	supportsTotal      prometheus.Counter
	fraudBlocksTotal   prometheus.Counter
	ledgerErrorsTotal  prometheus.Counter
}

func newMetricsRegistry() *metricsRegistry {
	challenges := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coffeerails_challenges_issued_total",
		Help: "Total number of 402 payment challenges issued",
	})

	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coffeerails_verifications_total",
		Help: "Facilitator verification outcomes",
	}, []string{"status"})

	supports := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coffeerails_supports_recorded_total",
		Help: "Total number of confirmed support records written",
	})

	fraudBlocks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coffeerails_fraud_blocks_total",
		Help: "Payments blocked by the wallet eligibility gate",
	})

	ledgerErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coffeerails_ledger_write_errors_total",
		Help: "Verified payments that failed to persist",
	})

	r := prometheus.NewRegistry()
	r.MustRegister(challenges, verifications, supports, fraudBlocks, ledgerErrors)

	return &metricsRegistry{
		registry:           r,
		challengesTotal:    challenges,
		verificationsTotal: verifications,
		supportsTotal:      supports,
		fraudBlocksTotal:   fraudBlocks,
		ledgerErrorsTotal:  ledgerErrors,
	}
}

func (m *metricsRegistry) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metricsRegistry) incChallenge() {
	m.challengesTotal.Inc()
}

func (m *metricsRegistry) incVerification(status string) {
	m.verificationsTotal.WithLabelValues(status).Inc()
}

func (m *metricsRegistry) incSupport() {
	m.supportsTotal.Inc()
}

func (m *metricsRegistry) incFraudBlock() {
	m.fraudBlocksTotal.Inc()
}

func (m *metricsRegistry) incLedgerError() {
	m.ledgerErrorsTotal.Inc()
}

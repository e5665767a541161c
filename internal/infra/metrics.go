package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PropostasCriadas = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "propostas",
		Name:      "criadas_total",
		Help:      "Proposals issued, by type.",
	}, []string{"tipo"})

	PDFDuracao = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "propostas",
		Name:      "pdf_render_seconds",
		Help:      "Time spent rendering a proposal document.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"tipo"})

	JobsProcessados = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "propostas",
		Name:      "jobs_total",
		Help:      "Background jobs by queue and outcome (ok, retry, dlq).",
	}, []string{"queue", "resultado"})

	CircuitoAberto = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "propostas",
		Name:      "smtp_circuit_open",
		Help:      "1 while the SMTP circuit breaker is open.",
	})
)

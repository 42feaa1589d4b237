package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Gateway outcomes recorded by PaymentMetrics.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// PaymentMetrics tracks gateway round-trips and payment confirmations.
type PaymentMetrics struct {
	gatewayRequests *prometheus.CounterVec
	gatewayLatency  *prometheus.HistogramVec
	confirmations   *prometheus.CounterVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "payments",
		Name:      "gateway_requests_total",
		Help:      "Payment gateway calls by operation and outcome.",
	}, []string{"operation", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "payments",
		Name:      "gateway_request_duration_seconds",
		Help:      "Latency of payment gateway calls.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"operation"})
	confirmations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "payments",
		Name:      "confirmations_total",
		Help:      "Payment confirmation attempts by result.",
	}, []string{"result"})
	reg.MustRegister(requests, latency, confirmations)
	return &PaymentMetrics{
		gatewayRequests: requests,
		gatewayLatency:  latency,
		confirmations:   confirmations,
	}
}

// ObserveGatewayCall records one gateway round-trip.
func (p *PaymentMetrics) ObserveGatewayCall(operation string, duration time.Duration, err error) {
	if p == nil || p.gatewayRequests == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	op := normalizeLabel(operation)
	p.gatewayRequests.WithLabelValues(op, outcome).Inc()
	p.gatewayLatency.WithLabelValues(op).Observe(duration.Seconds())
}

// IncConfirmation counts a confirmation attempt, e.g. "confirmed", "duplicate", "rejected".
func (p *PaymentMetrics) IncConfirmation(result string) {
	if p == nil || p.confirmations == nil {
		return
	}
	p.confirmations.WithLabelValues(normalizeLabel(result)).Inc()
}

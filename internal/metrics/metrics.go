// Package metrics holds the Prometheus collectors of the server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	DraftsStarted    prometheus.Counter
	BillsFinalized   *prometheus.CounterVec
	FinalizeFailures *prometheus.CounterVec
	OverAllocated    prometheus.Counter
	ReceiptsScanned  *prometheus.CounterVec
	PaymentsSettled  prometheus.Counter
	RequestDuration  *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		DraftsStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: "billsplit",
			Name:      "drafts_started_total",
			Help:      "Bill drafts started.",
		}),
		BillsFinalized: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billsplit",
			Name:      "bills_finalized_total",
			Help:      "Bills finalized and persisted, by kind and mode.",
		}, []string{"kind", "mode"}),
		FinalizeFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billsplit",
			Name:      "finalize_failures_total",
			Help:      "Finalize attempts that did not persist a bill, by reason.",
		}, []string{"reason"}),
		OverAllocated: f.NewCounter(prometheus.CounterOpts{
			Namespace: "billsplit",
			Name:      "bills_over_allocated_total",
			Help:      "Finalized bills where custom shares exceeded the total.",
		}),
		ReceiptsScanned: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billsplit",
			Name:      "receipts_scanned_total",
			Help:      "Receipt scans, by result.",
		}, []string{"result"}),
		PaymentsSettled: f.NewCounter(prometheus.CounterOpts{
			Namespace: "billsplit",
			Name:      "payments_settled_total",
			Help:      "Payments marked as paid.",
		}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "billsplit",
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure and code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure", "code"}),
	}
}

func (m *Metrics) DraftStarted() {
	if m != nil {
		m.DraftsStarted.Inc()
	}
}

func (m *Metrics) BillFinalized(kind, mode string, overAllocated bool) {
	if m == nil {
		return
	}
	m.BillsFinalized.WithLabelValues(kind, mode).Inc()
	if overAllocated {
		m.OverAllocated.Inc()
	}
}

func (m *Metrics) FinalizeFailed(reason string) {
	if m != nil {
		m.FinalizeFailures.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) ReceiptScanned(result string) {
	if m != nil {
		m.ReceiptsScanned.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) PaymentSettled() {
	if m != nil {
		m.PaymentsSettled.Inc()
	}
}

// ObserveRequest records one RPC.
func (m *Metrics) ObserveRequest(procedure, code string, d time.Duration) {
	if m != nil {
		m.RequestDuration.WithLabelValues(procedure, code).Observe(d.Seconds())
	}
}

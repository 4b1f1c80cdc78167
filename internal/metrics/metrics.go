package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes billing counters on the shared registry.
type Metrics struct {
	Registry *prometheus.Registry

	ReadingsSubmitted prometheus.Counter
	ReadingsCorrected prometheus.Counter
	ReadingsReversed  prometheus.Counter
	InvoicesIssued    prometheus.Counter
	CreditApplied     prometheus.Counter
	CreditReturned    prometheus.Counter
	AbnormalAlerts    prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,
		ReadingsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "aquabill_readings_submitted_total",
			Help: "Meter readings accepted by the billing engine.",
		}),
		ReadingsCorrected: factory.NewCounter(prometheus.CounterOpts{
			Name: "aquabill_readings_corrected_total",
			Help: "Meter readings amended after submission.",
		}),
		ReadingsReversed: factory.NewCounter(prometheus.CounterOpts{
			Name: "aquabill_readings_reversed_total",
			Help: "Meter readings cancelled with full restitution.",
		}),
		InvoicesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "aquabill_invoices_issued_total",
			Help: "Invoices generated from readings.",
		}),
		CreditApplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "aquabill_credit_applied_total",
			Help: "Monetary units of prepaid credit consumed by invoices.",
		}),
		CreditReturned: factory.NewCounter(prometheus.CounterOpts{
			Name: "aquabill_credit_returned_total",
			Help: "Monetary units of prepaid credit returned to customers.",
		}),
		AbnormalAlerts: factory.NewCounter(prometheus.CounterOpts{
			Name: "aquabill_abnormal_consumption_alerts_total",
			Help: "Abnormal consumption notifications raised.",
		}),
	}
}

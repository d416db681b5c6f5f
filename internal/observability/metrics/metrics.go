package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes application-level instruments, served by the promhttp
// handler mounted on /metrics.
type Metrics struct {
	BillsCreated   *prometheus.CounterVec
	BillsHeld      prometheus.Counter
	LedgerCredits  prometheus.Counter
	LedgerDebits   prometheus.Counter
	LedgerRejected prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		BillsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "glamora_bills_created_total",
			Help: "Bills successfully created, by payment status.",
		}, []string{"status"}),
		BillsHeld: promauto.NewCounter(prometheus.CounterOpts{
			Name: "glamora_bills_held_total",
			Help: "Draft bills placed on hold.",
		}),
		LedgerCredits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "glamora_ledger_credits_total",
			Help: "Advance balance credit operations.",
		}),
		LedgerDebits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "glamora_ledger_debits_total",
			Help: "Advance balance debit operations.",
		}),
		LedgerRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "glamora_ledger_rejected_total",
			Help: "Debits rejected for insufficient balance.",
		}),
	}
}

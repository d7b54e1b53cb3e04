package service

import (
	apperrors "github.com/louisbranch/roll/internal/platform/errors"
	"github.com/louisbranch/roll/internal/services/dice/storage"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for dice requests. A nil *Metrics
// records nothing.
type Metrics struct {
	requests   *prometheus.CounterVec
	diceRolled prometheus.Counter
	totals     prometheus.Histogram
}

// NewMetrics creates the dice collectors and registers them on reg. A nil
// registerer leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "roll",
				Name:      "requests_total",
				Help:      "Dice requests by operation and result code.",
			},
			[]string{"operation", "result"},
		),
		diceRolled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roll",
			Name:      "dice_rolled_total",
			Help:      "Individual dice rolled.",
		}),
		totals: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "roll",
			Name:      "total_value",
			Help:      "Totals returned by successful rolls.",
			Buckets:   []float64{1, 2, 4, 6, 8, 10, 12, 20, 50, 100, 500, 1000, 10000},
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.requests, m.diceRolled, m.totals} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeSuccess(op storage.Operation, count, total int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(string(op), "ok").Inc()
	m.diceRolled.Add(float64(count))
	m.totals.Observe(float64(total))
}

func (m *Metrics) observeFailure(op storage.Operation, err error) {
	if m == nil {
		return
	}
	code := apperrors.GetCode(DomainError(err))
	m.requests.WithLabelValues(string(op), string(code)).Inc()
}

package memo

import "github.com/prometheus/client_golang/prometheus"

// Metrics exports memo cell activity to Prometheus. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
}

// NewMetrics creates the memo counters and registers them with reg. A nil
// reg leaves them unregistered, which is convenient in tests.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		hits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pagecache",
				Subsystem: "memo",
				Name:      "hits_total",
				Help:      "Selector evaluations answered from a memo cell",
			},
			[]string{"cell"},
		),
		misses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pagecache",
				Subsystem: "memo",
				Name:      "misses_total",
				Help:      "Selector evaluations that recomputed their output",
			},
			[]string{"cell"},
		),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.hits, m.misses} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) hit(cell string) {
	if m == nil {
		return
	}
	m.hits.WithLabelValues(label(cell)).Inc()
}

func (m *Metrics) miss(cell string) {
	if m == nil {
		return
	}
	m.misses.WithLabelValues(label(cell)).Inc()
}

func label(cell string) string {
	if cell == "" {
		return "anonymous"
	}
	return cell
}

// Hits returns the hit counter for the named cell.
func (m *Metrics) Hits(cell string) prometheus.Counter {
	return m.hits.WithLabelValues(label(cell))
}

// Misses returns the miss counter for the named cell.
func (m *Metrics) Misses(cell string) prometheus.Counter {
	return m.misses.WithLabelValues(label(cell))
}

package fauna

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// QueryMetrics exports query outcomes and the cost the service reports for
// them. Attach it to a [fauna.Client] with [fauna.WithMetrics].
type QueryMetrics struct {
	queries   *prometheus.CounterVec
	ops       *prometheus.CounterVec
	queryTime prometheus.Histogram
}

// NewQueryMetrics creates the collectors and registers them with reg.
func NewQueryMetrics(reg prometheus.Registerer) (*QueryMetrics, error) {
	m := &QueryMetrics{
		queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fauna_queries_total",
				Help: "Total number of query responses by result kind and HTTP status.",
			},
			[]string{"kind", "status"},
		),
		ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fauna_query_ops_total",
				Help: "Operations reported by the service, by type.",
			},
			[]string{"op"},
		),
		queryTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fauna_query_time_seconds",
				Help:    "Query time reported by the service.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	for _, collector := range []prometheus.Collector{m.queries, m.ops, m.queryTime} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Observe records one response. Responses without stats only count
// towards fauna_queries_total, negative stats are not recorded.
func (m *QueryMetrics) Observe(res *Response) {
	m.queries.WithLabelValues(res.Kind.String(), strconv.Itoa(res.status)).Inc()

	if res.Stats == nil {
		return
	}

	m.addOps("compute", res.Stats.ComputeOps)
	m.addOps("read", res.Stats.ReadOps)
	m.addOps("write", res.Stats.WriteOps)

	if res.Stats.QueryTimeMs >= 0 {
		m.queryTime.Observe(res.Stats.QueryTime().Seconds())
	}
}

// addOps skips negative counts, counters cannot decrease.
func (m *QueryMetrics) addOps(op string, n int64) {
	if n > 0 {
		m.ops.WithLabelValues(op).Add(float64(n))
	}
}

package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/lingvo-go/internal/core/domain"
)

// SessionCollector reports the current session state as a one-hot gauge.
type SessionCollector struct {
	status func() domain.SessionStatus
	desc   *prometheus.Desc
}

// NewSessionCollector creates a collector reading the state from status.
func NewSessionCollector(status func() domain.SessionStatus) *SessionCollector {
	return &SessionCollector{
		status: status,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "session", "state"),
			"Current session state (1 for the active state)",
			[]string{"state"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *SessionCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *SessionCollector) Collect(ch chan<- prometheus.Metric) {
	current := c.status()
	for _, s := range []domain.SessionStatus{
		domain.StatusUnauthenticated,
		domain.StatusRestoring,
		domain.StatusAuthenticated,
	} {
		v := 0.0
		if s == current {
			v = 1
		}
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, v, s.String())
	}
}

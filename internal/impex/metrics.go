package impex

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels of jhac_impex_operations_total.
const (
	OutcomeSuccess            = "success"
	OutcomeDataError          = "data_error"
	OutcomeCommunicationError = "communication_error"
	OutcomeTransportError     = "transport_error"
)

// Metrics counts impex operations by outcome and the bytes downloaded by exports.
type Metrics struct {
	Operations      *prometheus.CounterVec
	DownloadedBytes prometheus.Counter
}

// NewMetrics creates the collectors and registers them on reg. A collector
// that is already registered is reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jhac",
			Subsystem: "impex",
			Name:      "operations_total",
			Help:      "Import and export calls by outcome.",
		}, []string{"operation", "outcome"}),
		DownloadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jhac",
			Subsystem: "impex",
			Name:      "downloaded_bytes_total",
			Help:      "Bytes of export resources downloaded.",
		}),
	}
	if reg == nil {
		return m, nil
	}

	if err := reg.Register(m.Operations); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("register operations counter: %w", err)
		}
		m.Operations = are.ExistingCollector.(*prometheus.CounterVec)
	}
	if err := reg.Register(m.DownloadedBytes); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("register downloaded bytes counter: %w", err)
		}
		m.DownloadedBytes = are.ExistingCollector.(prometheus.Counter)
	}
	return m, nil
}

func (m *Metrics) observe(operation, outcome string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) addDownloaded(n int) {
	if m == nil {
		return
	}
	m.DownloadedBytes.Add(float64(n))
}

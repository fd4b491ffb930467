package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wildwatch/sightings/internal/errors"
)

// ErrorMetrics counts enhanced errors by category and component.
type ErrorMetrics struct {
	errorsTotal *prometheus.CounterVec
}

// NewErrorMetrics creates and registers error metrics.
func NewErrorMetrics(registry *prometheus.Registry) (*ErrorMetrics, error) {
	m := &ErrorMetrics{
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "errors_total",
				Help: "Total number of errors built by the application",
			},
			[]string{"category", "component"},
		),
	}
	if err := registry.Register(m.errorsTotal); err != nil {
		return nil, err
	}
	return m, nil
}

// Hook returns an error hook feeding this counter. Register it with
// errors.AddErrorHook.
func (m *ErrorMetrics) Hook() errors.ErrorHook {
	return func(ee *errors.EnhancedError) {
		m.errorsTotal.WithLabelValues(ee.GetCategory(), ee.GetComponent()).Inc()
	}
}

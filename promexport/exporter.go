// Package promexport keeps latest PMS7003 readings as prometheus metrics.
//
// Nothing is served over network. Metrics are written to a file for node_exporter textfile collector
package promexport

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"pms7003"
)

type Exporter struct {
	registry      *prometheus.Registry
	concentration *prometheus.GaugeVec
	particles     *prometheus.GaugeVec
	readings      *prometheus.CounterVec
	failures      *prometheus.CounterVec
}

func New() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		concentration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pms7003_concentration_ugm3",
			Help: "Particulate matter concentration (units: µg/m³). kind ending with cf1 is standard particle, others atmospheric",
		}, []string{"device", "kind"}),
		particles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pms7003_particles_per_dl",
			Help: "Number of particles beyond size in 0.1L of air (size in µm)",
		}, []string{"device", "size"}),
		readings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pms7003_readings_total",
			Help: "Successfully decoded frames",
		}, []string{"device"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pms7003_read_errors_total",
			Help: "Failed reads by error kind",
		}, []string{"device", "kind"}),
	}
	e.registry.MustRegister(e.concentration, e.particles, e.readings, e.failures)
	return e
}

func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

func (e *Exporter) Observe(device string, r pms7003.Reading) {
	for name, value := range r.Values() {
		if strings.HasPrefix(name, "n") {
			e.particles.WithLabelValues(device, strings.TrimPrefix(name, "n")).Set(float64(value))
		} else {
			e.concentration.WithLabelValues(device, name).Set(float64(value))
		}
	}
	e.readings.WithLabelValues(device).Inc()
}

func ErrorKind(err error) string {
	switch {
	case errors.Is(err, pms7003.ErrChecksum):
		return "checksum"
	case errors.Is(err, pms7003.ErrFraming):
		return "framing"
	case errors.Is(err, pms7003.ErrTimeout):
		return "timeout"
	case errors.Is(err, pms7003.ErrIO):
		return "io"
	}
	return "other"
}

func (e *Exporter) ObserveError(device string, err error) {
	if err == nil {
		return
	}
	e.failures.WithLabelValues(device, ErrorKind(err)).Inc()
}

// WriteTextfile writes atomically (temp file + rename)
func (e *Exporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return errors.Wrapf(err, "writing metrics to %v", path)
	}
	return nil
}

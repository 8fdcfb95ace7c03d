package table

import (
	"errors"

	"github.com/pingcap/metertable/common"
	"github.com/prometheus/client_golang/prometheus"
)

const resultOK = "ok"

// Metrics prometheus metrics of a meter table. A nil *Metrics records nothing.
type Metrics struct {
	meters       prometheus.Gauge
	bands        prometheus.Gauge
	meterMods    *prometheus.CounterVec
	unknownApply prometheus.Counter
}

// NewMetrics creates and registers the meter table metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		meters: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "metertable_meters",
				Help: "Number of installed meters",
			},
		),
		bands: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "metertable_bands",
				Help: "Number of bands across all installed meters",
			},
		),
		meterMods: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "metertable_meter_mod_total",
				Help: "Total number of meter modification requests",
			},
			[]string{"command", "result"}, // result: ok or the rejection reason
		),
		unknownApply: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "metertable_unknown_meter_apply_total",
				Help: "Packets that referenced a meter that is not installed",
			},
		),
	}

	reg.MustRegister(m.meters, m.bands, m.meterMods, m.unknownApply)
	return m
}

func (m *Metrics) observe(meters int, bands uint32) {
	if m == nil {
		return
	}
	m.meters.Set(float64(meters))
	m.bands.Set(float64(bands))
}

func (m *Metrics) meterMod(cmd common.Command, err error) {
	if m == nil {
		return
	}
	m.meterMods.WithLabelValues(cmd.String(), resultLabel(err)).Inc()
}

func (m *Metrics) unknownMeter() {
	if m == nil {
		return
	}
	m.unknownApply.Inc()
}

func resultLabel(err error) string {
	if err == nil {
		return resultOK
	}
	var protoErr *common.Error
	if errors.As(err, &protoErr) {
		return protoErr.Reason()
	}
	return "error"
}

package table

import (
	"context"
	"testing"

	"github.com/pingcap/metertable/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	tbl := New(nil, WithMetrics(reg))
	ctx := context.Background()
	remote := &common.Remote{Role: common.RoleMaster}

	add := func(id common.MeterID, n int) error {
		return tbl.HandleMeterMod(ctx, &common.MeterMod{
			Command: common.CommandAdd,
			MeterID: id,
			Bands:   make([]common.Band, n),
		}, remote)
	}
	require.Error(t, add(1, 1), "zero band type is not supported")

	drop := []common.Band{{Type: common.BandTypeDrop, Rate: 10}, {Type: common.BandTypeDrop, Rate: 20}}
	require.NoError(t, tbl.HandleMeterMod(ctx, &common.MeterMod{Command: common.CommandAdd, MeterID: 1, Bands: drop}, remote))
	assert.ErrorIs(t, tbl.HandleMeterMod(ctx, &common.MeterMod{Command: common.CommandAdd, MeterID: 1}, remote), common.ErrMeterExists)
	assert.ErrorIs(t, tbl.HandleMeterMod(ctx, &common.MeterMod{Command: common.CommandAdd, MeterID: 2}, &common.Remote{Role: common.RoleSlave}), common.ErrIsSlave)

	assert.Equal(t, float64(1), testutil.ToFloat64(tbl.metrics.meters))
	assert.Equal(t, float64(2), testutil.ToFloat64(tbl.metrics.bands))
	assert.Equal(t, float64(1), testutil.ToFloat64(tbl.metrics.meterMods.WithLabelValues("add", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(tbl.metrics.meterMods.WithLabelValues("add", "meter_exists")))
	assert.Equal(t, float64(1), testutil.ToFloat64(tbl.metrics.meterMods.WithLabelValues("add", "bad_band")))
	assert.Equal(t, float64(1), testutil.ToFloat64(tbl.metrics.meterMods.WithLabelValues("add", "is_slave")))

	tbl.Apply(&common.Packet{Size: 1}, 9, 0)
	tbl.Apply(&common.Packet{Size: 1}, 9, 0)
	assert.Equal(t, float64(2), testutil.ToFloat64(tbl.metrics.unknownApply))

	tbl.Destroy()
	assert.Equal(t, float64(0), testutil.ToFloat64(tbl.metrics.meters))
	assert.Equal(t, float64(0), testutil.ToFloat64(tbl.metrics.bands))

	n, err := testutil.GatherAndCount(reg, "metertable_meter_mod_total")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.observe(1, 1)
	m.meterMod(common.CommandAdd, nil)
	m.unknownMeter()
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "ok", resultLabel(nil))
	assert.Equal(t, "out_of_bands", resultLabel(common.ErrOutOfBands))
	assert.Equal(t, "error", resultLabel(assert.AnError))
}

package table_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/pingcap/metertable/common"
	"github.com/pingcap/metertable/config"
	"github.com/pingcap/metertable/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var master = &common.Remote{ID: "ctl-1", Role: common.RoleMaster}

func bands(n int) []common.Band {
	bs := make([]common.Band, n)
	for i := range bs {
		bs[i] = common.Band{Type: common.BandTypeDrop, Rate: uint32(1000 * (i + 1)), BurstSize: 100}
	}
	return bs
}

func meterMod(cmd common.Command, id common.MeterID, nbands int) *common.MeterMod {
	return &common.MeterMod{
		Command: cmd,
		Flags:   common.MeterFlagKBPS | common.MeterFlagStats,
		MeterID: id,
		Bands:   bands(nbands),
	}
}

func mustMod(t *testing.T, tbl *table.Table, cmd common.Command, id common.MeterID, nbands int) {
	t.Helper()
	require.NoError(t, tbl.HandleMeterMod(context.Background(), meterMod(cmd, id, nbands), master))
}

// checkTotals recomputes the counters from the installed entries
func checkTotals(t *testing.T, tbl *table.Table) {
	t.Helper()
	snap := tbl.Snapshot("check")
	var sum uint32
	for _, cfg := range snap.Configs {
		sum += uint32(len(cfg.Bands))
		e, ok := tbl.Find(cfg.MeterID)
		require.True(t, ok)
		assert.Equal(t, len(cfg.Bands), e.BandCount())
	}
	assert.Equal(t, len(snap.Configs), tbl.Count())
	assert.Equal(t, sum, tbl.BandTotal())
	assert.LessOrEqual(t, uint32(tbl.Count()), tbl.Features().MaxMeter)
	assert.LessOrEqual(t, tbl.BandTotal(), tbl.BandLimit())
}

func TestNew_Defaults(t *testing.T) {
	tbl := table.New(nil)

	assert.Equal(t, 0, tbl.Count())
	assert.Equal(t, uint32(0), tbl.BandTotal())
	assert.Equal(t, uint32(1024), tbl.BandLimit())

	f := tbl.Features()
	assert.Equal(t, uint32(256), f.MaxMeter)
	assert.Equal(t, uint8(16), f.MaxBands)
	assert.Equal(t, uint8(8), f.MaxColor)
	assert.Equal(t, uint32(common.MeterFlagKBPS|common.MeterFlagBurst|common.MeterFlagStats), f.Capabilities)
	assert.True(t, f.SupportsBand(common.BandTypeDrop))
	assert.True(t, f.SupportsBand(common.BandTypeDSCPRemark))
	assert.False(t, f.SupportsBand(common.BandTypeExperimenter))

	_, ok := tbl.Find(1)
	assert.False(t, ok)
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		setup   []*common.MeterMod
		mod     *common.MeterMod
		wantErr error
	}{
		{
			name: "ok",
			mod:  meterMod(common.CommandAdd, 1, 2),
		},
		{
			name:    "duplicate id",
			setup:   []*common.MeterMod{meterMod(common.CommandAdd, 1, 2)},
			mod:     meterMod(common.CommandAdd, 1, 1),
			wantErr: common.ErrMeterExists,
		},
		{
			name: "out of meters",
			cfg:  config.DefaultConfig().WithMaxMeters(2),
			setup: []*common.MeterMod{
				meterMod(common.CommandAdd, 1, 1),
				meterMod(common.CommandAdd, 2, 1),
			},
			mod:     meterMod(common.CommandAdd, 3, 1),
			wantErr: common.ErrOutOfMeters,
		},
		{
			name:    "out of table bands",
			cfg:     config.DefaultConfig().WithTableBandLimit(4),
			setup:   []*common.MeterMod{meterMod(common.CommandAdd, 1, 3)},
			mod:     meterMod(common.CommandAdd, 2, 2),
			wantErr: common.ErrOutOfBands,
		},
		{
			name:  "exactly at band ceiling",
			cfg:   config.DefaultConfig().WithTableBandLimit(4),
			setup: []*common.MeterMod{meterMod(common.CommandAdd, 1, 3)},
			mod:   meterMod(common.CommandAdd, 2, 1),
		},
		{
			name:    "too many bands for one meter",
			cfg:     config.DefaultConfig().WithMaxBandsPerMeter(2),
			mod:     meterMod(common.CommandAdd, 1, 3),
			wantErr: common.ErrOutOfBands,
		},
		{
			name: "unsupported band type",
			mod: &common.MeterMod{
				Command: common.CommandAdd,
				MeterID: 1,
				Bands:   []common.Band{{Type: common.BandTypeExperimenter, Rate: 10}},
			},
			wantErr: common.ErrBadBand,
		},
		{
			name:    "id zero",
			mod:     meterMod(common.CommandAdd, 0, 1),
			wantErr: common.ErrInvalidMeter,
		},
		{
			name:    "id above max",
			mod:     meterMod(common.CommandAdd, common.MeterMax+1, 1),
			wantErr: common.ErrInvalidMeter,
		},
		{
			name:    "all wildcard",
			mod:     meterMod(common.CommandAdd, common.MeterAll, 1),
			wantErr: common.ErrInvalidMeter,
		},
		{
			name: "controller meter",
			mod:  meterMod(common.CommandAdd, common.MeterController, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := table.New(tt.cfg)
			for _, m := range tt.setup {
				require.NoError(t, tbl.HandleMeterMod(context.Background(), m, master))
			}
			before := tbl.Snapshot("before")

			err := tbl.HandleMeterMod(context.Background(), tt.mod, master)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.NotNil(t, tt.mod.Bands, "rejected request is not consumed")
				after := tbl.Snapshot("after")
				assert.Equal(t, before.Configs, after.Configs, "table must be unchanged")
			} else {
				assert.NoError(t, err)
				assert.Nil(t, tt.mod.Bands, "request is consumed")
				_, ok := tbl.Find(tt.mod.MeterID)
				assert.True(t, ok)
			}
			checkTotals(t, tbl)
		})
	}
}

func TestAdd_DuplicateScenario(t *testing.T) {
	tbl := table.New(nil)
	mustMod(t, tbl, common.CommandAdd, 1, 2)

	err := tbl.HandleMeterMod(context.Background(), meterMod(common.CommandAdd, 1, 1), master)
	assert.ErrorIs(t, err, common.ErrMeterExists)
	assert.Equal(t, 1, tbl.Count())
	assert.Equal(t, uint32(2), tbl.BandTotal())
}

func TestModify(t *testing.T) {
	t.Run("unknown meter", func(t *testing.T) {
		tbl := table.New(nil)
		mustMod(t, tbl, common.CommandAdd, 1, 1)

		err := tbl.HandleMeterMod(context.Background(), meterMod(common.CommandModify, 2, 1), master)
		assert.ErrorIs(t, err, common.ErrUnknownMeter)
		assert.Equal(t, 1, tbl.Count())
		assert.Equal(t, uint32(1), tbl.BandTotal())
	})

	t.Run("out of bands counts the replaced meter", func(t *testing.T) {
		tbl := table.New(config.DefaultConfig().WithTableBandLimit(4))
		mustMod(t, tbl, common.CommandAdd, 1, 2)
		mustMod(t, tbl, common.CommandAdd, 2, 1)

		// 3 - 2 + 3 = 4 fits
		mustMod(t, tbl, common.CommandModify, 1, 3)
		assert.Equal(t, uint32(4), tbl.BandTotal())

		err := tbl.HandleMeterMod(context.Background(), meterMod(common.CommandModify, 2, 2), master)
		assert.ErrorIs(t, err, common.ErrOutOfBands)
		assert.Equal(t, uint32(4), tbl.BandTotal())
		e, _ := tbl.Find(2)
		assert.Equal(t, 1, e.BandCount())
	})

	t.Run("flow references move to the new entry", func(t *testing.T) {
		tbl := table.New(nil)
		mustMod(t, tbl, common.CommandAdd, 7, 3)
		require.NoError(t, tbl.Attach(7, 100))
		require.NoError(t, tbl.Attach(7, 200))

		old, ok := tbl.Find(7)
		require.True(t, ok)

		mustMod(t, tbl, common.CommandModify, 7, 1)

		assert.Equal(t, 1, tbl.Count())
		assert.Equal(t, uint32(1), tbl.BandTotal())

		e, ok := tbl.Find(7)
		require.True(t, ok)
		assert.NotSame(t, old, e, "old entry is no longer reachable")
		assert.True(t, old.Released())
		assert.Equal(t, 0, old.FlowRefCount())
		assert.True(t, e.HasFlowRef(100))
		assert.True(t, e.HasFlowRef(200))
		assert.Equal(t, uint32(2), e.Stats.FlowCount)
		assert.Equal(t, 1, e.BandCount())
		checkTotals(t, tbl)
	})
}

func TestDelete(t *testing.T) {
	t.Run("all", func(t *testing.T) {
		tbl := table.New(nil)
		mustMod(t, tbl, common.CommandAdd, 2, 1)
		mustMod(t, tbl, common.CommandAdd, 3, 1)
		e2, _ := tbl.Find(2)

		mustMod(t, tbl, common.CommandDelete, common.MeterAll, 0)
		assert.Equal(t, 0, tbl.Count())
		assert.Equal(t, uint32(0), tbl.BandTotal())
		assert.True(t, e2.Released())
		assert.Equal(t, uint32(256), tbl.Features().MaxMeter, "features survive a reset")

		mustMod(t, tbl, common.CommandDelete, 2, 0)
		assert.Equal(t, 0, tbl.Count())
	})

	t.Run("all on empty table", func(t *testing.T) {
		tbl := table.New(nil)
		mustMod(t, tbl, common.CommandDelete, common.MeterAll, 0)
		assert.Equal(t, 0, tbl.Count())
		assert.Equal(t, uint32(0), tbl.BandTotal())
	})

	t.Run("absent id is a no-op", func(t *testing.T) {
		tbl := table.New(nil)
		mustMod(t, tbl, common.CommandAdd, 1, 2)

		mod := meterMod(common.CommandDelete, 9, 0)
		assert.NoError(t, tbl.HandleMeterMod(context.Background(), mod, master))
		assert.Equal(t, 1, tbl.Count())
		assert.Equal(t, uint32(2), tbl.BandTotal())
	})

	t.Run("specific id", func(t *testing.T) {
		tbl := table.New(nil)
		mustMod(t, tbl, common.CommandAdd, 1, 2)
		mustMod(t, tbl, common.CommandAdd, 2, 3)
		e, _ := tbl.Find(1)

		mustMod(t, tbl, common.CommandDelete, 1, 0)
		_, ok := tbl.Find(1)
		assert.False(t, ok)
		assert.True(t, e.Released())
		assert.Equal(t, 1, tbl.Count())
		assert.Equal(t, uint32(3), tbl.BandTotal())
	})
}

func TestMutations_KeepTotals(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	tbl := table.New(config.DefaultConfig().WithMaxMeters(16).WithTableBandLimit(40).WithMaxBandsPerMeter(6))
	ctx := context.Background()

	for i := 0; i < 2000; i++ {
		id := common.MeterID(rnd.Intn(24) + 1)
		cmd := common.Command(rnd.Intn(3))
		if cmd == common.CommandDelete && rnd.Intn(50) == 0 {
			id = common.MeterAll
		}

		before := tbl.Snapshot("x")
		err := tbl.HandleMeterMod(ctx, meterMod(cmd, id, rnd.Intn(8)), master)
		if err != nil {
			after := tbl.Snapshot("x")
			require.Equal(t, before.Configs, after.Configs, "step %d: failed %s changed the table", i, cmd)
		}
		checkTotals(t, tbl)
	}
}

func TestDestroy(t *testing.T) {
	tbl := table.New(nil)
	mustMod(t, tbl, common.CommandAdd, 1, 1)
	mustMod(t, tbl, common.CommandAdd, 2, 2)
	e1, _ := tbl.Find(1)
	e2, _ := tbl.Find(2)

	tbl.Destroy()
	assert.True(t, e1.Released())
	assert.True(t, e2.Released())
	assert.Equal(t, 0, tbl.Count())
	assert.Equal(t, uint32(0), tbl.BandTotal())
}

func TestAttachDetach(t *testing.T) {
	tbl := table.New(nil)
	mustMod(t, tbl, common.CommandAdd, 1, 1)

	assert.ErrorIs(t, tbl.Attach(5, 1), common.ErrUnknownMeter)
	require.NoError(t, tbl.Attach(1, 10))
	require.NoError(t, tbl.Attach(1, 10))

	e, _ := tbl.Find(1)
	assert.Equal(t, uint32(1), e.Stats.FlowCount)

	assert.True(t, tbl.Detach(1, 10))
	assert.False(t, tbl.Detach(1, 10))
	assert.False(t, tbl.Detach(5, 10))
	assert.Equal(t, uint32(0), e.Stats.FlowCount)
}

func TestNew_InvalidTableConfig(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	cfg := config.DefaultConfig().
		WithLogger(zap.New(core)).
		WithTable(config.TableConfig{BandTypes: []string{"drp"}})

	tbl := table.New(cfg)
	entries := logs.FilterMessage("invalid table config, unknown names are ignored").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], "unknown band type: drp")

	// the misspelled name advertises nothing, so every band is rejected
	err := tbl.HandleMeterMod(context.Background(), meterMod(common.CommandAdd, 1, 1), master)
	assert.ErrorIs(t, err, common.ErrBadBand)

	core, logs = observer.New(zapcore.WarnLevel)
	table.New(config.DefaultConfig().WithLogger(zap.New(core)))
	assert.Equal(t, 0, logs.Len())
}

func TestAdd_BandTypeCheck(t *testing.T) {
	experimenter := &common.MeterMod{
		Command: common.CommandAdd,
		Flags:   common.MeterFlagKBPS,
		MeterID: 1,
		Bands:   []common.Band{{Type: common.BandTypeExperimenter, Rate: 1000, Experimenter: 7}},
	}

	tests := []struct {
		name    string
		enabled bool
		wantErr error
	}{
		{name: "enabled", enabled: true, wantErr: common.ErrBadBand},
		{name: "disabled", enabled: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := table.New(nil, table.WithBandTypeCheck(tt.enabled))
			mod := *experimenter
			mod.Bands = append([]common.Band(nil), experimenter.Bands...)

			err := tbl.HandleMeterMod(context.Background(), &mod, master)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 0, tbl.Count())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint32(1), tbl.BandTotal())
			assert.Equal(t, common.VerdictPass, tbl.Apply(&common.Packet{Size: 64}, 1, 0))
		})
	}
}

package table

import (
	"github.com/pingcap/metertable/common"
	"go.uber.org/zap"
)

// add installs a new meter. Caller holds mu.
func (t *Table) add(mod *common.MeterMod) error {
	if !mod.MeterID.Valid() {
		return common.ErrInvalidMeter
	}
	if _, ok := t.entries[mod.MeterID]; ok {
		return common.ErrMeterExists
	}
	if uint32(len(t.entries)) >= t.features.MaxMeter {
		return common.ErrOutOfMeters
	}
	if err := t.checkBands(mod.Bands); err != nil {
		return err
	}
	if uint64(t.bandTotal)+uint64(len(mod.Bands)) > uint64(t.bandLimit) {
		return common.ErrOutOfBands
	}

	t.insert(t.factory.Materialize(mod))
	return nil
}

// modify replaces an installed meter with a fresh entry built from mod.
// Flow references move to the new entry before the old one is released.
// Caller holds mu.
func (t *Table) modify(mod *common.MeterMod) error {
	old, ok := t.entries[mod.MeterID]
	if !ok {
		return common.ErrUnknownMeter
	}
	if err := t.checkBands(mod.Bands); err != nil {
		return err
	}
	if uint64(t.bandTotal)-uint64(old.BandCount())+uint64(len(mod.Bands)) > uint64(t.bandLimit) {
		return common.ErrOutOfBands
	}

	e := t.factory.Materialize(mod)
	e.AdoptFlowRefs(old.TakeFlowRefs())

	t.entries[mod.MeterID] = e
	t.bandTotal = t.bandTotal - uint32(old.BandCount()) + uint32(e.BandCount())
	t.factory.Release(old)
	t.metrics.observe(len(t.entries), t.bandTotal)
	return nil
}

// deleteMeter removes one meter, or every meter for MeterAll. Deleting a meter
// that is not installed succeeds and changes nothing. Caller holds mu.
func (t *Table) deleteMeter(id common.MeterID) {
	if id.IsAll() {
		t.clear()
		return
	}
	if e, ok := t.entries[id]; ok {
		t.remove(e)
	}
}

// checkBands validates the requested bands against the table features
func (t *Table) checkBands(bands []common.Band) error {
	if len(bands) > int(t.features.MaxBands) {
		return common.ErrOutOfBands
	}
	if !t.checkBandTypes {
		return nil
	}
	for _, b := range bands {
		if !t.features.SupportsBand(b.Type) {
			return common.ErrBadBand
		}
	}
	return nil
}

// applyMeterMod routes a modification by command. Caller holds mu.
func (t *Table) applyMeterMod(mod *common.MeterMod) error {
	var err error
	switch mod.Command {
	case common.CommandAdd:
		err = t.add(mod)
	case common.CommandModify:
		err = t.modify(mod)
	case common.CommandDelete:
		t.deleteMeter(mod.MeterID)
	default:
		err = common.ErrBadType
	}

	t.metrics.meterMod(mod.Command, err)
	if err != nil {
		t.logger.Debug("meter mod rejected",
			zap.Stringer("command", mod.Command),
			zap.Uint32("meter_id", uint32(mod.MeterID)),
			zap.Error(err))
		return err
	}

	t.logger.Debug("meter mod applied",
		zap.Stringer("command", mod.Command),
		zap.Uint32("meter_id", uint32(mod.MeterID)),
		zap.Int("bands", len(mod.Bands)),
		zap.Int("meters", len(t.entries)),
		zap.Uint32("band_total", t.bandTotal))
	mod.Release()
	return nil
}

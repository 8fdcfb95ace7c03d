package table

import (
	"context"

	"github.com/pingcap/metertable/common"
	"go.uber.org/zap"
)

// HandleMeterMod applies a meter modification from remote. Slaves may not
// modify meters. On success mod is consumed; on failure the table is unchanged.
func (t *Table) HandleMeterMod(ctx context.Context, mod *common.MeterMod, remote *common.Remote) error {
	if mod == nil {
		return common.ErrBadType
	}
	if remote != nil && remote.Role == common.RoleSlave {
		t.logger.Debug("meter mod from slave rejected",
			zap.String("remote", remote.ID),
			zap.Uint32("meter_id", uint32(mod.MeterID)))
		t.metrics.meterMod(mod.Command, common.ErrIsSlave)
		return common.ErrIsSlave
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return t.applyMeterMod(mod)
}

// Handle routes a decoded controller message to its handler
func (t *Table) Handle(ctx context.Context, msg common.Message, remote *common.Remote) error {
	switch m := msg.(type) {
	case *common.MeterMod:
		return t.HandleMeterMod(ctx, m, remote)
	case *common.MeterStatsRequest:
		return t.HandleStatsRequest(ctx, m, remote)
	case *common.MeterConfigRequest:
		return t.HandleConfigRequest(ctx, m, remote)
	case *common.MeterFeaturesRequest:
		return t.HandleFeaturesRequest(ctx, m, remote)
	default:
		return common.ErrBadType
	}
}

// Apply meters a packet of flow against meter id. A packet referencing a
// meter that is not installed passes unmetered.
func (t *Table) Apply(pkt *common.Packet, id common.MeterID, flow common.FlowRef) common.Verdict {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if !ok {
		t.metrics.unknownMeter()
		if t.unknownMeterLog.AllowN(t.now(), 1) {
			t.logger.Warn("packet references unknown meter", zap.Uint32("meter_id", uint32(id)))
		}
		return common.VerdictPass
	}
	return t.meterer.Apply(e, pkt, flow)
}

// Attach records that flow uses meter id
func (t *Table) Attach(id common.MeterID, flow common.FlowRef) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if !ok {
		return common.ErrUnknownMeter
	}
	e.AddFlowRef(flow)
	return nil
}

// Detach forgets that flow uses meter id, returns false if it was not recorded
func (t *Table) Detach(id common.MeterID, flow common.FlowRef) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if !ok {
		return false
	}
	return e.RemoveFlowRef(flow)
}

package table

import (
	"context"
	"fmt"

	"github.com/pingcap/metertable/common"
	"go.uber.org/zap"
)

// HandleStatsRequest replies with the statistics of one meter, or of every
// meter for MeterAll. The reply references live statistics.
func (t *Table) HandleStatsRequest(ctx context.Context, req *common.MeterStatsRequest, remote *common.Remote) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.handleStatsRequest(ctx, req, remote)
}

// HandleConfigRequest replies with the configuration of every meter.
// The requested meter id is ignored.
func (t *Table) HandleConfigRequest(ctx context.Context, req *common.MeterConfigRequest, remote *common.Remote) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.handleConfigRequest(ctx, req, remote)
}

// HandleFeaturesRequest replies with the table features
func (t *Table) HandleFeaturesRequest(ctx context.Context, req *common.MeterFeaturesRequest, remote *common.Remote) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.handleFeaturesRequest(ctx, req, remote)
}

func (t *Table) handleStatsRequest(ctx context.Context, req *common.MeterStatsRequest, remote *common.Remote) error {
	now := t.now()
	reply := &common.MeterStatsReply{}

	if req.MeterID.IsAll() {
		reply.Stats = make([]*common.MeterStats, 0, len(t.entries))
		for _, e := range t.entries {
			e.RefreshDuration(now)
			reply.Stats = append(reply.Stats, e.Stats)
		}
	} else {
		e, ok := t.entries[req.MeterID]
		if !ok {
			t.logger.Debug("stats requested for unknown meter", zap.Uint32("meter_id", uint32(req.MeterID)))
			return common.ErrUnknownMeter
		}
		e.RefreshDuration(now)
		reply.Stats = []*common.MeterStats{e.Stats}
	}

	if err := t.sender.Send(ctx, remote, reply); err != nil {
		return fmt.Errorf("failed to send meter stats reply: %w", err)
	}
	return nil
}

func (t *Table) handleConfigRequest(ctx context.Context, _ *common.MeterConfigRequest, remote *common.Remote) error {
	reply := &common.MeterConfigReply{
		Configs: make([]*common.MeterConfig, 0, len(t.entries)),
	}
	for _, e := range t.entries {
		reply.Configs = append(reply.Configs, e.Config)
	}

	if err := t.sender.Send(ctx, remote, reply); err != nil {
		return fmt.Errorf("failed to send meter config reply: %w", err)
	}
	return nil
}

func (t *Table) handleFeaturesRequest(ctx context.Context, _ *common.MeterFeaturesRequest, remote *common.Remote) error {
	if err := t.sender.Send(ctx, remote, &common.MeterFeaturesReply{Features: t.features}); err != nil {
		return fmt.Errorf("failed to send meter features reply: %w", err)
	}
	return nil
}

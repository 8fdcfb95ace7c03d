package table

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pingcap/metertable/common"
	"go.uber.org/zap"
)

// ErrNotEmpty is returned when restoring into a table that has meters installed
var ErrNotEmpty = errors.New("meter table is not empty")

// Snapshot returns a deep copy of the table ordered by meter id
func (t *Table) Snapshot(datapathID string) *common.TableSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	ids := make([]common.MeterID, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	snap := &common.TableSnapshot{
		DatapathID: datapathID,
		Timestamp:  now.Unix(),
		Features:   t.features,
		Configs:    make([]*common.MeterConfig, 0, len(ids)),
		Stats:      make([]*common.MeterStats, 0, len(ids)),
	}
	for _, id := range ids {
		e := t.entries[id]
		e.RefreshDuration(now)
		snap.Configs = append(snap.Configs, e.Config.Clone())
		snap.Stats = append(snap.Stats, e.Stats.Clone())
	}
	return snap
}

// Restore installs the meters of a snapshot into an empty table. Counters are
// carried over for meters whose band count matches. If any meter is rejected
// the table is emptied again and the error returned.
func (t *Table) Restore(snap *common.TableSnapshot) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if snap == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}
	if len(t.entries) != 0 {
		return ErrNotEmpty
	}

	stats := make(map[common.MeterID]*common.MeterStats, len(snap.Stats))
	for _, s := range snap.Stats {
		if s != nil {
			stats[s.MeterID] = s
		}
	}

	for i, cfg := range snap.Configs {
		if cfg == nil {
			t.clear()
			return fmt.Errorf("snapshot config %d is nil", i)
		}
		mod := &common.MeterMod{
			Command: common.CommandAdd,
			Flags:   cfg.Flags,
			MeterID: cfg.MeterID,
			Bands:   append([]common.Band(nil), cfg.Bands...),
		}
		if err := t.add(mod); err != nil {
			t.clear()
			return fmt.Errorf("failed to restore meter %s: %w", cfg.MeterID, err)
		}
		if s, ok := stats[cfg.MeterID]; ok {
			restoreCounters(t.entries[cfg.MeterID].Stats, s)
		}
	}

	t.logger.Info("meter table restored",
		zap.String("datapath_id", snap.DatapathID),
		zap.Int64("timestamp", snap.Timestamp),
		zap.Int("meters", len(t.entries)),
		zap.Uint32("band_total", t.bandTotal))
	return nil
}

// restoreCounters copies packet and byte counters, flow counts are not restored
func restoreCounters(dst, src *common.MeterStats) {
	if len(dst.BandStats) != len(src.BandStats) {
		return
	}
	dst.PacketInCount = src.PacketInCount
	dst.ByteInCount = src.ByteInCount
	for i, b := range src.BandStats {
		if b == nil {
			continue
		}
		*dst.BandStats[i] = *b
	}
}

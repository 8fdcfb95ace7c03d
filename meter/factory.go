package meter

import (
	"time"

	"github.com/pingcap/metertable/common"
)

// Factory materializes meter entries from modification requests and releases them
type Factory interface {
	// Materialize builds a fresh entry with its own band list, statistics and configuration
	Materialize(mod *common.MeterMod) *Entry
	// Release destroys an entry; it must not be used afterwards
	Release(entry *Entry)
}

// Meterer applies the rate limiting algorithm of an entry to a packet
type Meterer interface {
	Apply(entry *Entry, pkt *common.Packet, flow common.FlowRef) common.Verdict
}

// DefaultFactory builds entries by copying the request
type DefaultFactory struct {
	now func() time.Time
}

var _ Factory = (*DefaultFactory)(nil)

// NewDefaultFactory creates a factory stamping entries with the wall clock
func NewDefaultFactory() *DefaultFactory {
	return &DefaultFactory{now: time.Now}
}

// NewFactoryWithClock creates a factory stamping entries with the given clock
func NewFactoryWithClock(now func() time.Time) *DefaultFactory {
	return &DefaultFactory{now: now}
}

// Materialize implements Factory interface
func (f *DefaultFactory) Materialize(mod *common.MeterMod) *Entry {
	return NewEntry(mod, f.now())
}

// Release implements Factory interface
func (f *DefaultFactory) Release(entry *Entry) {
	entry.flowRefs = nil
	entry.state = nil
	entry.Stats.BandStats = nil
	entry.Config.Bands = nil
	entry.released = true
}

// NewEntry builds an entry from a request. The band list is copied so the
// request can be released independently.
func NewEntry(mod *common.MeterMod, created time.Time) *Entry {
	bands := append([]common.Band(nil), mod.Bands...)

	bandStats := make([]*common.BandStats, len(bands))
	for i := range bandStats {
		bandStats[i] = &common.BandStats{}
	}

	return &Entry{
		Stats: &common.MeterStats{
			MeterID:   mod.MeterID,
			BandStats: bandStats,
		},
		Config: &common.MeterConfig{
			Flags:   mod.Flags,
			MeterID: mod.MeterID,
			Bands:   bands,
		},
		flowRefs: make(map[common.FlowRef]struct{}),
		created:  created,
	}
}

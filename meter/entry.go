package meter

import (
	"time"

	"github.com/pingcap/metertable/common"
)

// Entry a single installed meter.
//
// The entry owns its band list, statistics and configuration. Flow references
// are back-references to flow rules using the meter; the entry does not own
// the flow rules themselves.
type Entry struct {
	Stats  *common.MeterStats
	Config *common.MeterConfig

	flowRefs map[common.FlowRef]struct{}
	created  time.Time
	state    any
	released bool
}

// ID returns the meter id
func (e *Entry) ID() common.MeterID {
	return e.Config.MeterID
}

// BandCount returns the number of bands attached to the meter
func (e *Entry) BandCount() int {
	return len(e.Config.Bands)
}

// Created returns the time the entry was materialized
func (e *Entry) Created() time.Time {
	return e.created
}

// Released reports whether the entry has been released by its factory
func (e *Entry) Released() bool {
	return e.released
}

// AddFlowRef records a flow rule using this meter, returns false if already present
func (e *Entry) AddFlowRef(ref common.FlowRef) bool {
	if _, ok := e.flowRefs[ref]; ok {
		return false
	}
	e.flowRefs[ref] = struct{}{}
	e.Stats.FlowCount = uint32(len(e.flowRefs))
	return true
}

// RemoveFlowRef forgets a flow rule, returns false if it was not recorded
func (e *Entry) RemoveFlowRef(ref common.FlowRef) bool {
	if _, ok := e.flowRefs[ref]; !ok {
		return false
	}
	delete(e.flowRefs, ref)
	e.Stats.FlowCount = uint32(len(e.flowRefs))
	return true
}

// HasFlowRef reports whether the flow rule is recorded on this meter
func (e *Entry) HasFlowRef(ref common.FlowRef) bool {
	_, ok := e.flowRefs[ref]
	return ok
}

// FlowRefCount returns the number of flow rules using this meter
func (e *Entry) FlowRefCount() int {
	return len(e.flowRefs)
}

// FlowRefs returns the recorded flow references in no particular order
func (e *Entry) FlowRefs() []common.FlowRef {
	refs := make([]common.FlowRef, 0, len(e.flowRefs))
	for ref := range e.flowRefs {
		refs = append(refs, ref)
	}
	return refs
}

// TakeFlowRefs moves the flow reference set out of the entry.
// The entry is left with an empty set, so releasing it never touches
// references that now belong to another entry.
func (e *Entry) TakeFlowRefs() map[common.FlowRef]struct{} {
	refs := e.flowRefs
	e.flowRefs = make(map[common.FlowRef]struct{})
	e.Stats.FlowCount = 0
	return refs
}

// AdoptFlowRefs installs a flow reference set taken from another entry
func (e *Entry) AdoptFlowRefs(refs map[common.FlowRef]struct{}) {
	if refs == nil {
		refs = make(map[common.FlowRef]struct{})
	}
	e.flowRefs = refs
	e.Stats.FlowCount = uint32(len(refs))
}

// State returns the opaque per-entry state kept by the Meterer
func (e *Entry) State() any {
	return e.state
}

// SetState stores opaque per-entry state for the Meterer
func (e *Entry) SetState(state any) {
	e.state = state
}

// RefreshDuration updates the duration fields of the statistics
func (e *Entry) RefreshDuration(now time.Time) {
	d := now.Sub(e.created)
	if d < 0 {
		d = 0
	}
	e.Stats.DurationSec = uint32(d / time.Second)
	e.Stats.DurationNSec = uint32(d % time.Second)
}

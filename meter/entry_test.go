package meter

import (
	"testing"
	"time"

	"github.com/pingcap/metertable/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMod(id common.MeterID, n int) *common.MeterMod {
	mod := &common.MeterMod{Command: common.CommandAdd, Flags: common.MeterFlagPKTPS, MeterID: id}
	for i := 0; i < n; i++ {
		mod.Bands = append(mod.Bands, common.Band{Type: common.BandTypeDrop, Rate: uint32(i + 1)})
	}
	return mod
}

func TestNewEntry(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mod := testMod(3, 2)
	e := NewEntry(mod, created)

	assert.Equal(t, common.MeterID(3), e.ID())
	assert.Equal(t, 2, e.BandCount())
	assert.Equal(t, common.MeterID(3), e.Stats.MeterID)
	assert.Equal(t, 2, e.Stats.BandCount())
	assert.Equal(t, common.MeterFlagPKTPS, e.Config.Flags)
	assert.Equal(t, created, e.Created())

	// the band list is owned by the entry
	mod.Release()
	assert.Equal(t, 2, e.BandCount())
}

func TestEntry_FlowRefs(t *testing.T) {
	e := NewEntry(testMod(1, 1), time.Now())

	assert.True(t, e.AddFlowRef(1))
	assert.False(t, e.AddFlowRef(1))
	assert.True(t, e.AddFlowRef(2))
	assert.Equal(t, 2, e.FlowRefCount())
	assert.Equal(t, uint32(2), e.Stats.FlowCount)
	assert.ElementsMatch(t, []common.FlowRef{1, 2}, e.FlowRefs())

	assert.True(t, e.RemoveFlowRef(1))
	assert.False(t, e.RemoveFlowRef(1))
	assert.False(t, e.HasFlowRef(1))
	assert.True(t, e.HasFlowRef(2))
	assert.Equal(t, uint32(1), e.Stats.FlowCount)
}

func TestEntry_TakeFlowRefs(t *testing.T) {
	old := NewEntry(testMod(1, 3), time.Now())
	old.AddFlowRef(10)
	old.AddFlowRef(20)

	next := NewEntry(testMod(1, 1), time.Now())
	next.AdoptFlowRefs(old.TakeFlowRefs())

	assert.Equal(t, 0, old.FlowRefCount())
	assert.Equal(t, uint32(0), old.Stats.FlowCount)
	assert.Equal(t, 2, next.FlowRefCount())
	assert.Equal(t, uint32(2), next.Stats.FlowCount)

	// releasing the old entry leaves the moved set alone
	NewDefaultFactory().Release(old)
	assert.True(t, old.Released())
	assert.True(t, next.HasFlowRef(10))
	assert.True(t, next.HasFlowRef(20))

	next.AdoptFlowRefs(nil)
	assert.Equal(t, 0, next.FlowRefCount())
	assert.True(t, next.AddFlowRef(30))
}

func TestEntry_RefreshDuration(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e := NewEntry(testMod(1, 1), created)

	e.RefreshDuration(created.Add(3*time.Second + 250*time.Millisecond))
	assert.Equal(t, uint32(3), e.Stats.DurationSec)
	assert.Equal(t, uint32(250*time.Millisecond), e.Stats.DurationNSec)

	e.RefreshDuration(created.Add(-time.Second))
	assert.Equal(t, uint32(0), e.Stats.DurationSec)
	assert.Equal(t, uint32(0), e.Stats.DurationNSec)
}

func TestDefaultFactory(t *testing.T) {
	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	f := NewFactoryWithClock(func() time.Time { return created })

	e := f.Materialize(testMod(9, 2))
	require.NotNil(t, e)
	assert.Equal(t, created, e.Created())
	e.SetState("buckets")
	assert.Equal(t, "buckets", e.State())

	f.Release(e)
	assert.True(t, e.Released())
	assert.Nil(t, e.State())
	assert.Nil(t, e.Config.Bands)
	assert.Nil(t, e.Stats.BandStats)
}

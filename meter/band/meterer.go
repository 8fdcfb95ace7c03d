// Package band implements token bucket metering of meter bands.
package band

import (
	"sort"
	"time"

	"github.com/pingcap/metertable/common"
	"github.com/pingcap/metertable/meter"
	"golang.org/x/time/rate"
)

const maxDSCP = 63

// bucket measures the meter rate against a single band
type bucket struct {
	index   int // position in the configured band list
	band    common.Band
	limiter *rate.Limiter
}

// TokenBucketMeterer meters packets with one token bucket per band.
// KBPS meters count bytes, PKTPS meters count packets.
//
// It keeps its buckets on the entry, so a modified meter starts with fresh buckets.
// Not safe for concurrent use; the table serializes calls.
type TokenBucketMeterer struct {
	now func() time.Time
}

var _ meter.Meterer = (*TokenBucketMeterer)(nil)

// NewTokenBucketMeterer creates a meterer using the wall clock
func NewTokenBucketMeterer() *TokenBucketMeterer {
	return &TokenBucketMeterer{now: time.Now}
}

// NewTokenBucketMetererWithClock creates a meterer using the given clock
func NewTokenBucketMetererWithClock(now func() time.Time) *TokenBucketMeterer {
	return &TokenBucketMeterer{now: now}
}

// Apply implements meter.Meterer interface
func (m *TokenBucketMeterer) Apply(entry *meter.Entry, pkt *common.Packet, _ common.FlowRef) common.Verdict {
	buckets := m.buckets(entry)
	now := m.now()
	pktps := entry.Config.Flags.Has(common.MeterFlagPKTPS)

	entry.Stats.PacketInCount++
	entry.Stats.ByteInCount += uint64(pkt.Size)

	tokens := pkt.Size
	if pktps {
		tokens = 1
	}

	// Every bucket measures the same traffic; the exceeded band with the
	// highest rate is the one that applies.
	var hit *bucket
	for _, b := range buckets {
		if !b.limiter.AllowN(now, tokens) {
			hit = b
		}
	}
	if hit == nil {
		return common.VerdictPass
	}

	bs := entry.Stats.BandStats[hit.index]
	bs.PacketBandCount++
	bs.ByteBandCount += uint64(pkt.Size)

	switch hit.band.Type {
	case common.BandTypeDrop:
		return common.VerdictDrop
	case common.BandTypeDSCPRemark:
		pkt.DSCP = remarkDSCP(pkt.DSCP, hit.band.PrecLevel)
		return common.VerdictRemark
	default:
		return common.VerdictPass
	}
}

// buckets returns the buckets of an entry ordered by ascending rate, creating them on first use
func (m *TokenBucketMeterer) buckets(entry *meter.Entry) []*bucket {
	if buckets, ok := entry.State().([]*bucket); ok {
		return buckets
	}

	flags := entry.Config.Flags
	buckets := make([]*bucket, 0, len(entry.Config.Bands))
	for i, band := range entry.Config.Bands {
		limit, burst := bucketSize(band, flags)
		buckets = append(buckets, &bucket{
			index:   i,
			band:    band,
			limiter: rate.NewLimiter(limit, burst),
		})
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].band.Rate < buckets[j].band.Rate
	})

	entry.SetState(buckets)
	return buckets
}

// bucketSize converts a band to a token rate and bucket depth.
// Without the burst flag the bucket holds one second worth of tokens.
func bucketSize(band common.Band, flags common.MeterFlags) (rate.Limit, int) {
	if flags.Has(common.MeterFlagPKTPS) {
		burst := int(band.Rate)
		if flags.Has(common.MeterFlagBurst) {
			burst = int(band.BurstSize)
		}
		return rate.Limit(band.Rate), burst
	}

	// kilobits to bytes
	bytesPerSec := float64(band.Rate) * 1000 / 8
	burst := int(bytesPerSec)
	if flags.Has(common.MeterFlagBurst) {
		burst = int(band.BurstSize) * 1000 / 8
	}
	return rate.Limit(bytesPerSec), burst
}

// remarkDSCP raises the drop precedence of an AF code point by precLevel, saturating at 3
func remarkDSCP(dscp uint8, precLevel uint8) uint8 {
	dscp &= maxDSCP
	prec := (dscp >> 1) & 0x3
	next := int(prec) + int(precLevel)
	if next > 3 {
		next = 3
	}
	return dscp&^0x6 | uint8(next)<<1
}

// Package table implements the meter table of a datapath: the registry of
// installed meters and the handlers for meter modification, statistics,
// configuration and features requests.
package table

import (
	"sync"
	"time"

	"github.com/pingcap/metertable/common"
	"github.com/pingcap/metertable/config"
	"github.com/pingcap/metertable/meter"
	"github.com/pingcap/metertable/meter/band"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// unknownMeterLogInterval average spacing of unknown meter warnings
	unknownMeterLogInterval = time.Second
	// unknownMeterLogBurst warnings allowed back to back
	unknownMeterLogBurst = 60
)

// Table the meter table of one datapath.
//
// Every exported method holds the table lock for its whole duration,
// including the send of a reply, so no caller observes a partial update.
type Table struct {
	mu sync.Mutex

	entries   map[common.MeterID]*meter.Entry
	bandTotal uint32
	features  common.MeterFeatures
	bandLimit uint32

	factory meter.Factory
	meterer meter.Meterer
	sender  Sender
	metrics *Metrics
	logger  *zap.Logger
	now     func() time.Time

	// checkBandTypes rejects bands whose type is not advertised in features
	checkBandTypes bool

	unknownMeterLog *rate.Limiter
}

// Option configures a Table
type Option func(*Table)

// WithFactory sets the factory used to materialize and release entries
func WithFactory(factory meter.Factory) Option {
	return func(t *Table) {
		t.factory = factory
	}
}

// WithMeterer sets the metering algorithm applied to packets
func WithMeterer(meterer meter.Meterer) Option {
	return func(t *Table) {
		t.meterer = meterer
	}
}

// WithSender sets the destination of query replies
func WithSender(sender Sender) Option {
	return func(t *Table) {
		t.sender = sender
	}
}

// WithMetrics registers table metrics with reg
func WithMetrics(reg prometheus.Registerer) Option {
	return func(t *Table) {
		t.metrics = NewMetrics(reg)
	}
}

// WithBandTypeCheck enables or disables rejecting bands whose type is not
// advertised in the table features, enabled by default
func WithBandTypeCheck(enabled bool) Option {
	return func(t *Table) {
		t.checkBandTypes = enabled
	}
}

// WithClock sets the clock used for statistics durations and log rate limiting
func WithClock(now func() time.Time) Option {
	return func(t *Table) {
		t.now = now
	}
}

// New creates an empty meter table with the limits of cfg
func New(cfg *config.Config, opts ...Option) *Table {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	t := &Table{
		entries:   make(map[common.MeterID]*meter.Entry),
		features:  cfg.Table.Features(),
		bandLimit: cfg.Table.BandLimit(),
		sender:    nopSender{},
		logger:    cfg.GetLogger().Named("metertable"),
		now:       time.Now,

		checkBandTypes: true,
	}
	if err := cfg.Table.Validate(); err != nil {
		t.logger.Warn("invalid table config, unknown names are ignored", zap.Error(err))
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.factory == nil {
		t.factory = meter.NewFactoryWithClock(t.now)
	}
	if t.meterer == nil {
		t.meterer = band.NewTokenBucketMetererWithClock(t.now)
	}
	t.unknownMeterLog = rate.NewLimiter(rate.Every(unknownMeterLogInterval), unknownMeterLogBurst)

	t.logger.Debug("meter table created",
		zap.Uint32("max_meter", t.features.MaxMeter),
		zap.Uint8("max_bands", t.features.MaxBands),
		zap.Uint32("band_limit", t.bandLimit))
	return t
}

// Find returns the entry installed under id
func (t *Table) Find(id common.MeterID) (*meter.Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	return e, ok
}

// Count returns the number of installed meters
func (t *Table) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.entries)
}

// BandTotal returns the number of bands across all installed meters
func (t *Table) BandTotal() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.bandTotal
}

// BandLimit returns the table wide band ceiling
func (t *Table) BandLimit() uint32 {
	return t.bandLimit
}

// Features returns the fixed meter features of the table
func (t *Table) Features() common.MeterFeatures {
	return t.features
}

// Destroy releases every entry. The table is empty and usable afterwards.
func (t *Table) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.entries)
	t.clear()
	t.logger.Debug("meter table destroyed", zap.Int("released", n))
}

// clear releases all entries and resets the totals. Caller holds mu.
func (t *Table) clear() {
	for id, e := range t.entries {
		t.factory.Release(e)
		delete(t.entries, id)
	}
	t.bandTotal = 0
	t.metrics.observe(0, 0)
}

// insert stores a new entry. Caller holds mu.
func (t *Table) insert(e *meter.Entry) {
	t.entries[e.ID()] = e
	t.bandTotal += uint32(e.BandCount())
	t.metrics.observe(len(t.entries), t.bandTotal)
}

// remove drops and releases an entry. Caller holds mu.
func (t *Table) remove(e *meter.Entry) {
	delete(t.entries, e.ID())
	t.bandTotal -= uint32(e.BandCount())
	t.factory.Release(e)
	t.metrics.observe(len(t.entries), t.bandTotal)
}

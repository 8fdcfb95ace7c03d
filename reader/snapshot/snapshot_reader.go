package snapshotreader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/gzip"
	"github.com/pingcap/metertable/common"
	"github.com/pingcap/metertable/config"
	"github.com/pingcap/metertable/internal/cache"
	"github.com/pingcap/metertable/internal/utils"
	"github.com/pingcap/metertable/reader"
	"github.com/pingcap/metertable/storage"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// SnapshotReader reads gzip compressed JSON snapshots written by the snapshot writer
type SnapshotReader struct {
	provider storage.ObjectStorageProvider
	config   *config.Config
	logger   *zap.Logger
	cache    *cache.MemoryCache[*common.TableSnapshot]
}

var _ reader.SnapshotReader = (*SnapshotReader)(nil)

// Config snapshot reader configuration
type Config struct {
	// Cache caches decoded snapshots by path (optional)
	Cache *cache.Config `json:"cache,omitempty"`
}

// NewSnapshotReader creates a new snapshot reader
func NewSnapshotReader(provider storage.ObjectStorageProvider, cfg *config.Config, readerCfg *Config) (*SnapshotReader, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	r := &SnapshotReader{
		provider: provider,
		config:   cfg,
		logger:   cfg.GetLogger(),
	}

	if readerCfg != nil && readerCfg.Cache != nil {
		c, err := cache.NewMemoryCache[*common.TableSnapshot](readerCfg.Cache)
		if err != nil {
			return nil, fmt.Errorf("failed to create cache: %w", err)
		}
		r.cache = c
		r.logger.Info("Snapshot reader cache initialized",
			zap.Int("max_entries", readerCfg.Cache.MaxEntries),
			zap.Duration("ttl", readerCfg.Cache.TTL),
		)
	}

	return r, nil
}

// Latest implements reader.SnapshotReader interface
func (r *SnapshotReader) Latest(ctx context.Context, datapathID string) (*common.TableSnapshot, error) {
	return r.Read(ctx, datapathID, math.MaxInt64)
}

// Read implements reader.SnapshotReader interface
func (r *SnapshotReader) Read(ctx context.Context, datapathID string, timestamp int64) (*common.TableSnapshot, error) {
	files, err := r.List(ctx, datapathID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no snapshots found for datapath %s", reader.ErrFileNotFound, datapathID)
	}

	var latestFile string
	var latestTimestamp int64 = -1
	for _, file := range files {
		fileTimestamp, err := utils.ParseTimestampFromPath(file)
		if err != nil {
			r.logger.Debug("Skipping file without snapshot timestamp",
				zap.String("file", file),
				zap.Error(err),
			)
			continue
		}
		if fileTimestamp <= timestamp && fileTimestamp > latestTimestamp {
			latestTimestamp = fileTimestamp
			latestFile = file
		}
	}

	if latestFile == "" {
		return nil, fmt.Errorf("%w: no snapshots found for datapath %s at or before %d",
			reader.ErrFileNotFound, datapathID, timestamp)
	}

	snap, err := r.ReadFile(ctx, latestFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", latestFile, err)
	}
	return snap, nil
}

// ReadFile implements reader.SnapshotReader interface. Cached snapshots are
// shared between callers and must not be modified.
func (r *SnapshotReader) ReadFile(ctx context.Context, path string) (_ *common.TableSnapshot, err error) {
	if r.cache != nil {
		if snap, found := r.cache.Get(path); found {
			r.logger.Debug("Snapshot cache hit", zap.String("path", path))
			return snap, nil
		}
	}

	r.logger.Debug("Reading snapshot file", zap.String("path", path))

	exists, err := r.provider.Exists(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to check if file exists: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", reader.ErrFileNotFound, path)
	}

	rc, err := r.provider.Download(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(rc))

	snap, err := decode(rc)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		r.cache.Set(path, snap)
	}

	r.logger.Debug("Successfully read snapshot file",
		zap.String("path", path),
		zap.String("datapath_id", snap.DatapathID),
		zap.Int64("timestamp", snap.Timestamp),
		zap.Int("meters", len(snap.Configs)),
	)
	return snap, nil
}

// List implements reader.SnapshotReader interface
func (r *SnapshotReader) List(ctx context.Context, datapathID string) ([]string, error) {
	if err := utils.ValidateDatapathID(datapathID); err != nil {
		return nil, err
	}

	files, err := r.provider.List(ctx, utils.SnapshotPrefix(datapathID))
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}

// Close implements reader.SnapshotReader interface. The storage provider is
// owned by the caller and stays open.
func (r *SnapshotReader) Close() error {
	r.logger.Debug("Closing snapshot reader")
	if r.cache != nil {
		return r.cache.Close()
	}
	return nil
}

// decode decompresses and unmarshals a snapshot
func decode(rd io.Reader) (*common.TableSnapshot, error) {
	gzipReader, err := gzip.NewReader(rd)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create gzip reader: %v", reader.ErrInvalidFormat, err)
	}
	defer gzipReader.Close()

	var snap common.TableSnapshot
	if err := json.NewDecoder(gzipReader).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal snapshot: %v", reader.ErrInvalidFormat, err)
	}
	return &snap, nil
}

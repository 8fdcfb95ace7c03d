package snapshotwriter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/pingcap/metertable/common"
	"github.com/pingcap/metertable/config"
	"github.com/pingcap/metertable/internal/utils"
	"github.com/pingcap/metertable/storage"
	"github.com/pingcap/metertable/writer"
	"go.uber.org/zap"
)

// SnapshotWriter writes meter table snapshots as gzip compressed JSON
type SnapshotWriter struct {
	provider   storage.ObjectStorageProvider
	config     *config.Config
	logger     *zap.Logger
	gzipWriter *gzip.Writer
	buffer     *bytes.Buffer
	mu         sync.Mutex // protects gzipWriter and buffer
}

var _ writer.SnapshotWriter = (*SnapshotWriter)(nil)

// NewSnapshotWriter creates a new snapshot writer
func NewSnapshotWriter(provider storage.ObjectStorageProvider, cfg *config.Config) *SnapshotWriter {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	buffer := &bytes.Buffer{}
	return &SnapshotWriter{
		provider:   provider,
		config:     cfg,
		logger:     cfg.GetLogger(),
		gzipWriter: gzip.NewWriter(buffer),
		buffer:     buffer,
	}
}

// Write implements writer.SnapshotWriter interface
func (w *SnapshotWriter) Write(ctx context.Context, snap *common.TableSnapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}
	if err := utils.ValidateDatapathID(snap.DatapathID); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}
	if err := utils.ValidateTimestamp(snap.Timestamp); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}

	path := utils.SnapshotPath(snap.DatapathID, snap.Timestamp)

	w.logger.Debug("Writing meter table snapshot",
		zap.String("path", path),
		zap.String("datapath_id", snap.DatapathID),
		zap.Int64("timestamp", snap.Timestamp),
		zap.Int("meters", len(snap.Configs)),
	)

	if !w.config.OverwriteExisting {
		exists, err := w.provider.Exists(ctx, path)
		if err != nil {
			return fmt.Errorf("failed to check if file exists: %w", err)
		}
		if exists {
			w.logger.Warn("Snapshot already exists, refusing to overwrite",
				zap.String("path", path),
			)
			return fmt.Errorf("%w: %s", writer.ErrFileExists, path)
		}
	}

	jsonData, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	compressed, err := w.compress(jsonData)
	if err != nil {
		return fmt.Errorf("failed to compress snapshot: %w", err)
	}

	if err := w.provider.Upload(ctx, path, bytes.NewReader(compressed)); err != nil {
		return fmt.Errorf("failed to upload snapshot: %w", err)
	}

	w.logger.Info("Successfully wrote meter table snapshot",
		zap.String("path", path),
		zap.Int("size_bytes", len(compressed)),
	)
	return nil
}

// Close implements writer.SnapshotWriter interface
func (w *SnapshotWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.gzipWriter != nil {
		err := w.gzipWriter.Close()
		w.gzipWriter = nil
		return err
	}
	return nil
}

// compress gzips data with the reusable writer and returns a copy of the output
func (w *SnapshotWriter) compress(data []byte) ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.gzipWriter == nil {
		return nil, fmt.Errorf("writer is closed")
	}

	w.buffer.Reset()
	w.gzipWriter.Reset(w.buffer)
	if _, err := w.gzipWriter.Write(data); err != nil {
		return nil, err
	}
	if err := w.gzipWriter.Close(); err != nil {
		return nil, err
	}

	result := make([]byte, w.buffer.Len())
	copy(result, w.buffer.Bytes())
	return result, nil
}

package writer

import (
	"context"
	"errors"

	"github.com/pingcap/metertable/common"
)

// Error definitions
var (
	// ErrFileExists error when file already exists
	ErrFileExists = errors.New("file already exists")
)

// SnapshotWriter persists meter table snapshots
type SnapshotWriter interface {
	// Write stores a snapshot under its datapath id and timestamp
	Write(ctx context.Context, snap *common.TableSnapshot) error
	// Close closes the writer and cleanup resources
	Close() error
}

package reader

import (
	"context"
	"errors"

	"github.com/pingcap/metertable/common"
)

// Error definitions
var (
	// ErrFileNotFound file not found error
	ErrFileNotFound = errors.New("file not found")
	// ErrInvalidFormat invalid file format error
	ErrInvalidFormat = errors.New("invalid file format")
)

// SnapshotReader reads meter table snapshots
type SnapshotReader interface {
	// Latest reads the newest snapshot of a datapath
	Latest(ctx context.Context, datapathID string) (*common.TableSnapshot, error)
	// Read reads the newest snapshot of a datapath taken at or before timestamp
	Read(ctx context.Context, datapathID string, timestamp int64) (*common.TableSnapshot, error)
	// ReadFile reads the snapshot stored at path
	ReadFile(ctx context.Context, path string) (*common.TableSnapshot, error)
	// List lists the snapshot paths of a datapath
	List(ctx context.Context, datapathID string) ([]string, error)
	// Close closes the reader and cleans up resources
	Close() error
}

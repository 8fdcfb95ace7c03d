package metertable

import (
	"github.com/pingcap/metertable/common"
	"github.com/pingcap/metertable/config"
	"github.com/pingcap/metertable/reader"
	snapshotreader "github.com/pingcap/metertable/reader/snapshot"
	"github.com/pingcap/metertable/storage"
	"github.com/pingcap/metertable/table"
	"github.com/pingcap/metertable/writer"
	snapshotwriter "github.com/pingcap/metertable/writer/snapshot"
)

// SDK version information
const (
	Version = "v0.1.0"
)

// Re-export main types and functions for user convenience
type (
	// Config configuration
	Config = config.Config
	// Table meter table of one datapath
	Table = table.Table
	// Sender delivers replies to a controller
	Sender = table.Sender
	// SenderFunc adapts a function to Sender
	SenderFunc = table.SenderFunc
	// SnapshotWriter meter table snapshot writer interface
	SnapshotWriter = writer.SnapshotWriter
	// SnapshotReader meter table snapshot reader interface
	SnapshotReader = reader.SnapshotReader
	// ObjectStorageProvider storage provider interface
	ObjectStorageProvider = storage.ObjectStorageProvider
	// ProviderConfig storage provider configuration
	ProviderConfig = storage.ProviderConfig
	// ProviderType storage provider type
	ProviderType = storage.ProviderType
	// MeterMod meter modification request
	MeterMod = common.MeterMod
	// TableSnapshot point-in-time copy of a meter table
	TableSnapshot = common.TableSnapshot
	// AWSConfig AWS specific configuration
	AWSConfig = storage.AWSConfig
	// OSSConfig Alibaba Cloud OSS specific configuration
	OSSConfig = storage.OSSConfig
	// AzureConfig Azure specific configuration
	AzureConfig = storage.AzureConfig
	// LocalFSConfig local filesystem specific configuration
	LocalFSConfig = storage.LocalFSConfig
)

// Re-export constants
const (
	ProviderTypeS3      = storage.ProviderTypeS3
	ProviderTypeOSS     = storage.ProviderTypeOSS
	ProviderTypeAzure   = storage.ProviderTypeAzure
	ProviderTypeLocalFS = storage.ProviderTypeLocalFS
)

// Re-export main functions
var (
	// DefaultConfig creates default configuration
	DefaultConfig = config.DefaultConfig
	// NewDebugConfig creates debug configuration
	NewDebugConfig = config.NewDebugConfig
	// NewTable creates an empty meter table
	NewTable = table.New
	// NewObjectStorageProvider creates storage provider
	NewObjectStorageProvider = storage.NewObjectStorageProvider
	// NewSnapshotWriter creates meter table snapshot writer
	NewSnapshotWriter = snapshotwriter.NewSnapshotWriter
	// NewSnapshotReader creates meter table snapshot reader
	NewSnapshotReader = snapshotreader.NewSnapshotReader
)

// Package storage stores meter table snapshots in object storage.
package storage

import (
	"context"
	"io"

	"github.com/pingcap/metertable/storage/provider"
)

// ObjectStorageProvider is the object store behind the snapshot writer and reader.
// Paths are slash separated keys relative to the provider prefix.
type ObjectStorageProvider interface {
	// Upload stores data under path, replacing any existing object
	Upload(ctx context.Context, path string, data io.Reader) error
	// Download opens the object at path, the caller closes the reader
	Download(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete removes the object at path, a missing object is not an error
	Delete(ctx context.Context, path string) error
	// Exists reports whether an object is stored at path
	Exists(ctx context.Context, path string) (bool, error)
	// List returns the keys under prefix, relative to the provider prefix
	List(ctx context.Context, prefix string) ([]string, error)
}

type (
	// ProviderType selects the object storage backend
	ProviderType = provider.ProviderType
	// ProviderConfig backend independent provider configuration
	ProviderConfig = provider.ProviderConfig
	// AWSConfig S3 credentials and addressing
	AWSConfig = provider.AWSConfig
	// OSSConfig Alibaba Cloud OSS credentials
	OSSConfig = provider.OSSConfig
	// AzureConfig Azure Blob Storage credentials
	AzureConfig = provider.AzureConfig
	// LocalFSConfig local directory layout
	LocalFSConfig = provider.LocalFSConfig
)

// Supported snapshot backends
const (
	ProviderTypeS3      = provider.ProviderTypeS3
	ProviderTypeOSS     = provider.ProviderTypeOSS
	ProviderTypeAzure   = provider.ProviderTypeAzure
	ProviderTypeLocalFS = provider.ProviderTypeLocalFS
)

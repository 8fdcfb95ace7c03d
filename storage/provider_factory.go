package storage

import (
	"fmt"

	"github.com/pingcap/metertable/storage/provider"
)

// NewObjectStorageProvider creates object storage provider based on configuration
func NewObjectStorageProvider(config *ProviderConfig) (ObjectStorageProvider, error) {
	if config == nil {
		return nil, fmt.Errorf("provider config cannot be nil")
	}

	var (
		p   ObjectStorageProvider
		err error
	)
	switch config.Type {
	case provider.ProviderTypeS3:
		p, err = provider.NewS3Provider(config)
	case provider.ProviderTypeOSS:
		p, err = provider.NewOSSProvider(config)
	case provider.ProviderTypeAzure:
		p, err = provider.NewAzureProvider(config)
	case provider.ProviderTypeLocalFS:
		p, err = provider.NewLocalFSProvider(config)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s storage provider: %w", config.Type, err)
	}
	return p, nil
}

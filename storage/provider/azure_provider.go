package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
)

// AzureProvider Azure Blob Storage provider implementation
type AzureProvider struct {
	container *container.Client
	prefix    string
}

// NewAzureProvider creates a new Azure Blob Storage provider
func NewAzureProvider(providerConfig *ProviderConfig) (*AzureProvider, error) {
	if providerConfig.Type != ProviderTypeAzure {
		return nil, fmt.Errorf("invalid provider type: %s, expected: %s", providerConfig.Type, ProviderTypeAzure)
	}
	if providerConfig.Bucket == "" {
		return nil, fmt.Errorf("container name is required for Azure provider")
	}

	serviceURL, err := buildAzureServiceURL(providerConfig)
	if err != nil {
		return nil, err
	}

	client, err := buildAzureClient(serviceURL, providerConfig.Azure)
	if err != nil {
		return nil, err
	}

	return &AzureProvider{
		container: client.ServiceClient().NewContainerClient(providerConfig.Bucket),
		prefix:    providerConfig.Prefix,
	}, nil
}

func buildAzureServiceURL(providerConfig *ProviderConfig) (string, error) {
	if providerConfig.Endpoint != "" {
		return strings.TrimSuffix(providerConfig.Endpoint, "/"), nil
	}
	if providerConfig.Azure == nil || providerConfig.Azure.AccountName == "" {
		return "", fmt.Errorf("azure account name or endpoint is required")
	}
	return fmt.Sprintf("https://%s.blob.core.windows.net", providerConfig.Azure.AccountName), nil
}

// buildAzureClient picks shared key, then SAS token, then the default credential chain
func buildAzureClient(serviceURL string, azureConfig *AzureConfig) (*azblob.Client, error) {
	switch {
	case azureConfig != nil && azureConfig.AccountKey != "":
		if azureConfig.AccountName == "" {
			return nil, fmt.Errorf("azure account name is required when account key is set")
		}
		cred, err := azblob.NewSharedKeyCredential(azureConfig.AccountName, azureConfig.AccountKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure shared key credential: %w", err)
		}
		return azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	case azureConfig != nil && azureConfig.SASToken != "":
		sasURL, err := appendSASToken(serviceURL, azureConfig.SASToken)
		if err != nil {
			return nil, err
		}
		return azblob.NewClientWithNoCredential(sasURL, nil)
	default:
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create default Azure credential: %w", err)
		}
		return azblob.NewClient(serviceURL, cred, nil)
	}
}

func appendSASToken(serviceURL, sasToken string) (string, error) {
	parsed, err := url.Parse(serviceURL)
	if err != nil {
		return "", fmt.Errorf("invalid Azure service URL: %w", err)
	}
	sasToken = strings.TrimPrefix(sasToken, "?")
	if sasToken == "" {
		return serviceURL, nil
	}
	if parsed.RawQuery == "" {
		parsed.RawQuery = sasToken
	} else {
		parsed.RawQuery += "&" + sasToken
	}
	return parsed.String(), nil
}

// Upload implements ObjectStorageProvider interface
func (a *AzureProvider) Upload(ctx context.Context, path string, data io.Reader) error {
	_, err := a.container.NewBlockBlobClient(objectKey(a.prefix, path)).UploadStream(ctx, data, nil)
	if err != nil {
		return fmt.Errorf("failed to upload blob %s: %w", path, err)
	}
	return nil
}

// Download implements ObjectStorageProvider interface
func (a *AzureProvider) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	result, err := a.container.NewBlobClient(objectKey(a.prefix, path)).DownloadStream(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download blob %s: %w", path, err)
	}
	return result.Body, nil
}

// Delete implements ObjectStorageProvider interface
func (a *AzureProvider) Delete(ctx context.Context, path string) error {
	_, err := a.container.NewBlobClient(objectKey(a.prefix, path)).Delete(ctx, nil)
	if err != nil && !isAzureNotFound(err) {
		return fmt.Errorf("failed to delete blob %s: %w", path, err)
	}
	return nil
}

// Exists implements ObjectStorageProvider interface
func (a *AzureProvider) Exists(ctx context.Context, path string) (bool, error) {
	_, err := a.container.NewBlobClient(objectKey(a.prefix, path)).GetProperties(ctx, nil)
	if err != nil {
		if isAzureNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get blob properties %s: %w", path, err)
	}
	return true, nil
}

// List implements ObjectStorageProvider interface.
// Returned keys are relative to the provider prefix.
func (a *AzureProvider) List(ctx context.Context, prefix string) ([]string, error) {
	fullPrefix := objectKey(a.prefix, prefix)
	pager := a.container.NewListBlobsFlatPager(&container.ListBlobsFlatOptions{Prefix: &fullPrefix})
	var objects []string
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list blobs with prefix %s: %w", prefix, err)
		}
		for _, blob := range page.Segment.BlobItems {
			if blob.Name != nil {
				objects = append(objects, trimKeyPrefix(a.prefix, *blob.Name))
			}
		}
	}
	return objects, nil
}

func isAzureNotFound(err error) bool {
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) {
		return false
	}
	if respErr.StatusCode == http.StatusNotFound {
		return true
	}
	switch respErr.ErrorCode {
	case "BlobNotFound", "ResourceNotFound", "ContainerNotFound":
		return true
	}
	return false
}

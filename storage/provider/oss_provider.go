package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/alibabacloud-go/tea/tea"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"
	openapicred "github.com/aliyun/credentials-go/credentials"
)

// OSSProvider Alibaba Cloud OSS storage provider implementation
type OSSProvider struct {
	client *oss.Client
	bucket string
	prefix string
	// stop ends the background refresh of assumed role credentials
	stop context.CancelFunc
}

// NewOSSProvider creates a new OSS storage provider
func NewOSSProvider(providerConfig *ProviderConfig) (*OSSProvider, error) {
	if providerConfig.Type != ProviderTypeOSS {
		return nil, fmt.Errorf("invalid provider type: %s, expected: %s", providerConfig.Type, ProviderTypeOSS)
	}
	if providerConfig.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required for OSS provider")
	}
	if providerConfig.Region == "" {
		return nil, fmt.Errorf("region is required for OSS provider")
	}

	p := &OSSProvider{
		bucket: providerConfig.Bucket,
		prefix: providerConfig.Prefix,
	}

	ossConfig := providerConfig.OSS
	if ossConfig != nil && ossConfig.CustomConfig != nil {
		cfg, ok := ossConfig.CustomConfig.(*oss.Config)
		if !ok {
			return nil, fmt.Errorf("invalid OSS config type, expected *oss.Config")
		}
		p.client = oss.NewClient(cfg)
		return p, nil
	}

	provider, err := p.credentialsProvider(providerConfig)
	if err != nil {
		return nil, err
	}

	cfg := oss.LoadDefaultConfig().WithRegion(providerConfig.Region).WithCredentialsProvider(provider)
	if providerConfig.Endpoint != "" {
		cfg = cfg.WithEndpoint(providerConfig.Endpoint)
	}
	p.client = oss.NewClient(cfg)
	return p, nil
}

// credentialsProvider builds static or default credentials, wrapped in an
// assume role cache when a role ARN is configured
func (p *OSSProvider) credentialsProvider(providerConfig *ProviderConfig) (credentials.CredentialsProvider, error) {
	ossConfig := providerConfig.OSS
	static := ossConfig != nil && ossConfig.AccessKey != "" && ossConfig.SecretAccessKey != ""

	var baseCred openapicred.Credential
	var err error
	if static {
		baseCred, err = openapicred.NewCredential(&openapicred.Config{
			Type:            tea.String("access_key"),
			AccessKeyId:     tea.String(ossConfig.AccessKey),
			AccessKeySecret: tea.String(ossConfig.SecretAccessKey),
			SecurityToken:   tea.String(ossConfig.SessionToken),
		})
	} else {
		baseCred, err = openapicred.NewCredential(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create AliCloud credentials: %w", err)
	}

	if ossConfig != nil && ossConfig.AssumeRoleARN != "" {
		cache, err := NewCredentialCache(baseCred, ossConfig.AssumeRoleARN, providerConfig.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create credential cache: %w", err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		p.stop = cancel
		cache.StartBackgroundRefresh(ctx)
		return credentials.CredentialsProviderFunc(cache.GetCredentials), nil
	}

	if static {
		return credentials.NewStaticCredentialsProvider(ossConfig.AccessKey, ossConfig.SecretAccessKey, ossConfig.SessionToken), nil
	}

	return credentials.CredentialsProviderFunc(func(ctx context.Context) (credentials.Credentials, error) {
		cred, err := baseCred.GetCredential()
		if err != nil {
			return credentials.Credentials{}, err
		}
		return credentials.Credentials{
			AccessKeyID:     tea.StringValue(cred.AccessKeyId),
			AccessKeySecret: tea.StringValue(cred.AccessKeySecret),
			SecurityToken:   tea.StringValue(cred.SecurityToken),
		}, nil
	}), nil
}

// Close stops the background credential refresh, if any
func (p *OSSProvider) Close() error {
	if p.stop != nil {
		p.stop()
	}
	return nil
}

// Upload implements ObjectStorageProvider interface
func (p *OSSProvider) Upload(ctx context.Context, path string, data io.Reader) error {
	_, err := p.client.PutObject(ctx, &oss.PutObjectRequest{
		Bucket: oss.Ptr(p.bucket),
		Key:    oss.Ptr(objectKey(p.prefix, path)),
		Body:   data,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", path, err)
	}
	return nil
}

// Download implements ObjectStorageProvider interface
func (p *OSSProvider) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	result, err := p.client.GetObject(ctx, &oss.GetObjectRequest{
		Bucket: oss.Ptr(p.bucket),
		Key:    oss.Ptr(objectKey(p.prefix, path)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", path, err)
	}
	return result.Body, nil
}

// Delete implements ObjectStorageProvider interface
func (p *OSSProvider) Delete(ctx context.Context, path string) error {
	_, err := p.client.DeleteObject(ctx, &oss.DeleteObjectRequest{
		Bucket: oss.Ptr(p.bucket),
		Key:    oss.Ptr(objectKey(p.prefix, path)),
	})
	if err != nil && !isOSSNotFound(err) {
		return fmt.Errorf("failed to delete object %s: %w", path, err)
	}
	return nil
}

// Exists implements ObjectStorageProvider interface
func (p *OSSProvider) Exists(ctx context.Context, path string) (bool, error) {
	_, err := p.client.HeadObject(ctx, &oss.HeadObjectRequest{
		Bucket: oss.Ptr(p.bucket),
		Key:    oss.Ptr(objectKey(p.prefix, path)),
	})
	if err != nil {
		if isOSSNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to head object %s: %w", path, err)
	}
	return true, nil
}

// List implements ObjectStorageProvider interface.
// Returned keys are relative to the provider prefix.
func (p *OSSProvider) List(ctx context.Context, prefix string) ([]string, error) {
	paginator := p.client.NewListObjectsV2Paginator(&oss.ListObjectsV2Request{
		Bucket: oss.Ptr(p.bucket),
		Prefix: oss.Ptr(objectKey(p.prefix, prefix)),
	})
	var objects []string
	for paginator.HasNext() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects with prefix %s: %w", prefix, err)
		}
		for _, object := range page.Contents {
			if object.Key != nil {
				objects = append(objects, trimKeyPrefix(p.prefix, *object.Key))
			}
		}
	}
	return objects, nil
}

func isOSSNotFound(err error) bool {
	var serviceError *oss.ServiceError
	return errors.As(err, &serviceError) &&
		(serviceError.Code == "NoSuchKey" || serviceError.StatusCode == http.StatusNotFound)
}

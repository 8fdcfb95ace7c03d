package provider

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
)

// S3Provider AWS S3 storage provider implementation
type S3Provider struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Provider creates a new S3 storage provider
func NewS3Provider(providerConfig *ProviderConfig) (*S3Provider, error) {
	if providerConfig.Type != ProviderTypeS3 {
		return nil, fmt.Errorf("invalid provider type: %s, expected: %s", providerConfig.Type, ProviderTypeS3)
	}
	if providerConfig.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required for S3 provider")
	}

	cfg, err := loadAWSConfig(providerConfig)
	if err != nil {
		return nil, err
	}

	forcePathStyle := providerConfig.AWS != nil && providerConfig.AWS.S3ForcePathStyle
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = forcePathStyle
	})

	return &S3Provider{
		client: client,
		bucket: providerConfig.Bucket,
		prefix: providerConfig.Prefix,
	}, nil
}

// loadAWSConfig resolves the aws.Config: a custom config wins, otherwise the default chain
// with optional static credentials, endpoint override and assume role
func loadAWSConfig(providerConfig *ProviderConfig) (aws.Config, error) {
	awsConfig := providerConfig.AWS
	if awsConfig != nil && awsConfig.CustomConfig != nil {
		cfg, ok := awsConfig.CustomConfig.(aws.Config)
		if !ok {
			return aws.Config{}, fmt.Errorf("invalid AWS config type, expected aws.Config")
		}
		return cfg, nil
	}

	var opts []func(*config.LoadOptions) error
	if providerConfig.Region != "" {
		opts = append(opts, config.WithRegion(providerConfig.Region))
	}
	if awsConfig != nil && awsConfig.AccessKey != "" && awsConfig.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			awsConfig.AccessKey,
			awsConfig.SecretAccessKey,
			awsConfig.SessionToken,
		)))
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if providerConfig.Endpoint != "" {
		cfg.BaseEndpoint = aws.String(providerConfig.Endpoint)
	}
	if awsConfig != nil && awsConfig.AssumeRoleARN != "" {
		cfg.Credentials = aws.NewCredentialsCache(stscreds.NewAssumeRoleProvider(sts.NewFromConfig(cfg), awsConfig.AssumeRoleARN))
	}
	return cfg, nil
}

// Upload implements ObjectStorageProvider interface
func (s *S3Provider) Upload(ctx context.Context, path string, data io.Reader) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(s.prefix, path)),
		Body:   data,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", path, err)
	}
	return nil
}

// Download implements ObjectStorageProvider interface
func (s *S3Provider) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(s.prefix, path)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", path, err)
	}
	return result.Body, nil
}

// Delete implements ObjectStorageProvider interface
func (s *S3Provider) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(s.prefix, path)),
	})
	if err != nil && !isS3NotFound(err) {
		return fmt.Errorf("failed to delete object %s: %w", path, err)
	}
	return nil
}

// Exists implements ObjectStorageProvider interface
func (s *S3Provider) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(s.prefix, path)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to head object %s: %w", path, err)
	}
	return true, nil
}

// List implements ObjectStorageProvider interface.
// Returned keys are relative to the provider prefix.
func (s *S3Provider) List(ctx context.Context, prefix string) ([]string, error) {
	var objects []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(objectKey(s.prefix, prefix)),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects with prefix %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			if obj.Key != nil {
				objects = append(objects, trimKeyPrefix(s.prefix, *obj.Key))
			}
		}
	}
	return objects, nil
}

func isS3NotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

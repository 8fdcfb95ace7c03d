package provider

import "strings"

// ProviderType storage provider type
type ProviderType string

const (
	// ProviderTypeS3 AWS S3 storage provider
	ProviderTypeS3 ProviderType = "s3"
	// ProviderTypeAzure Azure Blob Storage provider
	ProviderTypeAzure ProviderType = "azure"
	// ProviderTypeOSS Alibaba Cloud OSS storage provider
	ProviderTypeOSS ProviderType = "oss"
	// ProviderTypeLocalFS local filesystem storage provider
	ProviderTypeLocalFS ProviderType = "localfs"
)

// ProviderConfig storage provider configuration
type ProviderConfig struct {
	Type     ProviderType `json:"type"`
	Prefix   string       `json:"prefix,omitempty"`   // path prefix, all object keys are placed under it
	Region   string       `json:"region,omitempty"`   // common region configuration
	Bucket   string       `json:"bucket,omitempty"`   // common bucket/container name
	Endpoint string       `json:"endpoint,omitempty"` // common endpoint configuration

	AWS     *AWSConfig     `json:"aws,omitempty"`
	Azure   *AzureConfig   `json:"azure,omitempty"`
	OSS     *OSSConfig     `json:"oss,omitempty"`
	LocalFS *LocalFSConfig `json:"localfs,omitempty"`
}

// AWSConfig AWS S3 specific configuration
type AWSConfig struct {
	S3ForcePathStyle bool   `json:"s3_force_path_style,omitempty"`
	AssumeRoleARN    string `json:"assume_role_arn,omitempty"`
	AccessKey        string `json:"-"`
	SecretAccessKey  string `json:"-"`
	SessionToken     string `json:"-"`
	// CustomConfig aws.Config used as is when set
	CustomConfig interface{} `json:"-"`
}

// AzureConfig Azure Blob Storage specific configuration
type AzureConfig struct {
	AccountName string `json:"account_name,omitempty"`
	AccountKey  string `json:"-"`
	SASToken    string `json:"-"`
}

// OSSConfig Alibaba Cloud OSS specific configuration
type OSSConfig struct {
	AssumeRoleARN   string `json:"assume_role_arn,omitempty"`
	AccessKey       string `json:"-"`
	SecretAccessKey string `json:"-"`
	SessionToken    string `json:"-"`
	// CustomConfig *oss.Config used as is when set
	CustomConfig interface{} `json:"-"`
}

// LocalFSConfig local filesystem specific configuration
type LocalFSConfig struct {
	BasePath    string `json:"base_path"`             // base path for local filesystem
	CreateDirs  bool   `json:"create_dirs,omitempty"` // whether to automatically create directories
	Permissions string `json:"permissions,omitempty"` // file permissions, e.g. "0755"
}

// objectKey places path under prefix with exactly one separator between them
func objectKey(prefix, path string) string {
	if prefix == "" {
		return path
	}
	return strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(path, "/")
}

// trimKeyPrefix turns a full object key back into a path relative to prefix
func trimKeyPrefix(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return strings.TrimPrefix(key, strings.TrimSuffix(prefix, "/")+"/")
}

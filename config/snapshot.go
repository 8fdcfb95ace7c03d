package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pingcap/metertable/storage"
)

// SnapshotAWSConfig AWS S3 specific configuration for snapshot storage
type SnapshotAWSConfig struct {
	AssumeRoleARN    string `yaml:"assume-role-arn,omitempty" toml:"assume-role-arn,omitempty" json:"assume-role-arn,omitempty" reloadable:"false"`
	S3ForcePathStyle bool   `yaml:"s3-force-path-style,omitempty" toml:"s3-force-path-style,omitempty" json:"s3-force-path-style,omitempty" reloadable:"false"`
	AccessKey        string `yaml:"access-key,omitempty" toml:"access-key,omitempty" json:"access-key,omitempty" reloadable:"false"`
	SecretAccessKey  string `yaml:"secret-access-key,omitempty" toml:"secret-access-key,omitempty" json:"secret-access-key,omitempty" reloadable:"false"`
	SessionToken     string `yaml:"session-token,omitempty" toml:"session-token,omitempty" json:"session-token,omitempty" reloadable:"false"`
}

// SnapshotOSSConfig Alibaba Cloud OSS specific configuration for snapshot storage
type SnapshotOSSConfig struct {
	AssumeRoleARN   string `yaml:"assume-role-arn,omitempty" toml:"assume-role-arn,omitempty" json:"assume-role-arn,omitempty" reloadable:"false"`
	AccessKey       string `yaml:"access-key,omitempty" toml:"access-key,omitempty" json:"access-key,omitempty" reloadable:"false"`
	SecretAccessKey string `yaml:"secret-access-key,omitempty" toml:"secret-access-key,omitempty" json:"secret-access-key,omitempty" reloadable:"false"`
	SessionToken    string `yaml:"session-token,omitempty" toml:"session-token,omitempty" json:"session-token,omitempty" reloadable:"false"`
}

// SnapshotAzureConfig Azure Blob Storage specific configuration for snapshot storage
type SnapshotAzureConfig struct {
	AccountName string `yaml:"account-name,omitempty" toml:"account-name,omitempty" json:"account-name,omitempty" reloadable:"false"`
	AccountKey  string `yaml:"account-key,omitempty" toml:"account-key,omitempty" json:"account-key,omitempty" reloadable:"false"`
	SASToken    string `yaml:"sas-token,omitempty" toml:"sas-token,omitempty" json:"sas-token,omitempty" reloadable:"false"`
}

// SnapshotLocalFSConfig local filesystem specific configuration for snapshot storage
type SnapshotLocalFSConfig struct {
	BasePath    string `yaml:"base-path,omitempty" toml:"base-path,omitempty" json:"base-path,omitempty" reloadable:"false"`
	CreateDirs  bool   `yaml:"create-dirs,omitempty" toml:"create-dirs,omitempty" json:"create-dirs,omitempty" reloadable:"false"`
	Permissions string `yaml:"permissions,omitempty" toml:"permissions,omitempty" json:"permissions,omitempty" reloadable:"false"`
}

// SnapshotConfig describes where meter table snapshots are stored
type SnapshotConfig struct {
	// Storage provider type: s3, oss, azure, localfs
	Type storage.ProviderType `yaml:"type,omitempty" toml:"type,omitempty" json:"type,omitempty" reloadable:"false"`
	// Storage region
	Region string `yaml:"region,omitempty" toml:"region,omitempty" json:"region,omitempty" reloadable:"false"`
	// Storage bucket/container name
	Bucket string `yaml:"bucket,omitempty" toml:"bucket,omitempty" json:"bucket,omitempty" reloadable:"false"`
	// Path prefix for all stored files
	Prefix string `yaml:"prefix,omitempty" toml:"prefix,omitempty" json:"prefix,omitempty" reloadable:"false"`
	// Custom endpoint for S3-compatible services
	Endpoint string `yaml:"endpoint,omitempty" toml:"endpoint,omitempty" json:"endpoint,omitempty" reloadable:"false"`

	AWS     *SnapshotAWSConfig     `yaml:"aws,omitempty" toml:"aws,omitempty" json:"aws,omitempty" reloadable:"false"`
	OSS     *SnapshotOSSConfig     `yaml:"oss,omitempty" toml:"oss,omitempty" json:"oss,omitempty" reloadable:"false"`
	Azure   *SnapshotAzureConfig   `yaml:"azure,omitempty" toml:"azure,omitempty" json:"azure,omitempty" reloadable:"false"`
	LocalFS *SnapshotLocalFSConfig `yaml:"localfs,omitempty" toml:"localfs,omitempty" json:"localfs,omitempty" reloadable:"false"`

	// DatapathID names the switch whose meter table is snapshotted
	DatapathID string `yaml:"datapath-id,omitempty" toml:"datapath-id,omitempty" json:"datapath-id,omitempty" reloadable:"false"`
}

// NewSnapshotConfig creates an empty SnapshotConfig
func NewSnapshotConfig() *SnapshotConfig {
	return &SnapshotConfig{}
}

// ToProviderConfig converts SnapshotConfig to storage.ProviderConfig
func (sc *SnapshotConfig) ToProviderConfig() *storage.ProviderConfig {
	pc := &storage.ProviderConfig{
		Type:     sc.Type,
		Region:   sc.Region,
		Bucket:   sc.Bucket,
		Prefix:   sc.Prefix,
		Endpoint: sc.Endpoint,
	}

	switch sc.Type {
	case storage.ProviderTypeS3:
		if sc.AWS != nil {
			pc.AWS = &storage.AWSConfig{
				AssumeRoleARN:    sc.AWS.AssumeRoleARN,
				S3ForcePathStyle: sc.AWS.S3ForcePathStyle,
				AccessKey:        sc.AWS.AccessKey,
				SecretAccessKey:  sc.AWS.SecretAccessKey,
				SessionToken:     sc.AWS.SessionToken,
			}
		}
	case storage.ProviderTypeOSS:
		if sc.OSS != nil {
			pc.OSS = &storage.OSSConfig{
				AssumeRoleARN:   sc.OSS.AssumeRoleARN,
				AccessKey:       sc.OSS.AccessKey,
				SecretAccessKey: sc.OSS.SecretAccessKey,
				SessionToken:    sc.OSS.SessionToken,
			}
		}
	case storage.ProviderTypeAzure:
		if sc.Azure != nil {
			pc.Azure = &storage.AzureConfig{
				AccountName: sc.Azure.AccountName,
				AccountKey:  sc.Azure.AccountKey,
				SASToken:    sc.Azure.SASToken,
			}
		}
	case storage.ProviderTypeLocalFS:
		if sc.LocalFS != nil {
			pc.LocalFS = &storage.LocalFSConfig{
				BasePath:    sc.LocalFS.BasePath,
				CreateDirs:  sc.LocalFS.CreateDirs,
				Permissions: sc.LocalFS.Permissions,
			}
		}
	}

	return pc
}

// WithS3 configures for AWS S3 storage
func (sc *SnapshotConfig) WithS3(region, bucket string) *SnapshotConfig {
	sc.Type = storage.ProviderTypeS3
	sc.Region = region
	sc.Bucket = bucket
	return sc
}

// WithOSS configures for Alibaba Cloud OSS storage
func (sc *SnapshotConfig) WithOSS(region, bucket string) *SnapshotConfig {
	sc.Type = storage.ProviderTypeOSS
	sc.Region = region
	sc.Bucket = bucket
	return sc
}

// WithAzure configures for Azure Blob Storage
func (sc *SnapshotConfig) WithAzure(accountName, container string) *SnapshotConfig {
	sc.Type = storage.ProviderTypeAzure
	sc.Bucket = container
	if sc.Azure == nil {
		sc.Azure = &SnapshotAzureConfig{}
	}
	sc.Azure.AccountName = accountName
	return sc
}

// WithLocalFS configures for local filesystem storage
func (sc *SnapshotConfig) WithLocalFS(basePath string) *SnapshotConfig {
	sc.Type = storage.ProviderTypeLocalFS
	if sc.LocalFS == nil {
		sc.LocalFS = &SnapshotLocalFSConfig{}
	}
	sc.LocalFS.BasePath = basePath
	sc.LocalFS.CreateDirs = true
	return sc
}

// WithAWSRoleARN sets the AWS IAM role ARN for assume role
func (sc *SnapshotConfig) WithAWSRoleARN(roleARN string) *SnapshotConfig {
	if sc.AWS == nil {
		sc.AWS = &SnapshotAWSConfig{}
	}
	sc.AWS.AssumeRoleARN = roleARN
	return sc
}

// WithOSSRoleARN sets the Alibaba Cloud role ARN for assume role
func (sc *SnapshotConfig) WithOSSRoleARN(roleARN string) *SnapshotConfig {
	if sc.OSS == nil {
		sc.OSS = &SnapshotOSSConfig{}
	}
	sc.OSS.AssumeRoleARN = roleARN
	return sc
}

// WithPrefix sets the path prefix
func (sc *SnapshotConfig) WithPrefix(prefix string) *SnapshotConfig {
	sc.Prefix = prefix
	return sc
}

// WithEndpoint sets the custom endpoint
func (sc *SnapshotConfig) WithEndpoint(endpoint string) *SnapshotConfig {
	sc.Endpoint = endpoint
	return sc
}

// WithDatapathID sets the datapath id used in snapshot paths
func (sc *SnapshotConfig) WithDatapathID(datapathID string) *SnapshotConfig {
	sc.DatapathID = datapathID
	return sc
}

// firstParam returns the first non-empty value among parameter aliases
func firstParam(q url.Values, names ...string) string {
	for _, name := range names {
		if v := q.Get(name); v != "" {
			return v
		}
	}
	return ""
}

// NewFromURI creates a new SnapshotConfig from a URI string.
// URI format: [scheme]://[bucket]/[prefix]?[parameters]
// Examples:
//   - s3://my-bucket/snapshots?region-id=us-east-1&endpoint=https://s3.example.com
//   - oss://my-bucket/snapshots?region-id=oss-ap-southeast-1&access-key=AKSKEXAMPLE
//   - azblob://my-container/snapshots?account-name=myaccount
//   - localfs:///data/meter-snapshots?create-dirs=true&permissions=0755
//
// Supported schemes: s3, oss, azblob, azure, localfs, file
// Common parameters: region-id/region, endpoint, prefix, datapath-id
// AWS/S3 parameters: access-key, secret-access-key, session-token, assume-role-arn/role-arn, s3-force-path-style/force-path-style
// OSS parameters: access-key, secret-access-key, session-token, assume-role-arn/role-arn
// Azure parameters: account-name, account-key, sas-token
// LocalFS parameters: create-dirs, permissions
func NewFromURI(uriStr string) (*SnapshotConfig, error) {
	parsedURL, err := url.Parse(uriStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URI: %w", err)
	}

	sc := NewSnapshotConfig()
	switch strings.ToLower(parsedURL.Scheme) {
	case "s3":
		sc.Type = storage.ProviderTypeS3
	case "oss":
		sc.Type = storage.ProviderTypeOSS
	case "azblob", "azure":
		sc.Type = storage.ProviderTypeAzure
	case "localfs", "file":
		sc.Type = storage.ProviderTypeLocalFS
	default:
		return nil, fmt.Errorf("unsupported URI scheme: %s", parsedURL.Scheme)
	}

	if sc.Type == storage.ProviderTypeLocalFS {
		sc.LocalFS = &SnapshotLocalFSConfig{
			BasePath:   localBasePath(parsedURL),
			CreateDirs: true,
		}
	} else {
		sc.Bucket = parsedURL.Host
		sc.Prefix = strings.TrimPrefix(parsedURL.Path, "/")
	}

	q := parsedURL.Query()
	if region := firstParam(q, "region-id", "region"); region != "" {
		sc.Region = region
	}
	if prefix := q.Get("prefix"); prefix != "" {
		sc.Prefix = prefix
	}
	if endpoint := q.Get("endpoint"); endpoint != "" {
		sc.Endpoint = endpoint
	}
	if datapathID := q.Get("datapath-id"); datapathID != "" {
		sc.DatapathID = datapathID
	}

	switch sc.Type {
	case storage.ProviderTypeS3:
		aws := SnapshotAWSConfig{
			AccessKey:        q.Get("access-key"),
			SecretAccessKey:  q.Get("secret-access-key"),
			SessionToken:     q.Get("session-token"),
			AssumeRoleARN:    firstParam(q, "assume-role-arn", "role-arn"),
			S3ForcePathStyle: firstParam(q, "s3-force-path-style", "force-path-style") == "true",
		}
		if aws != (SnapshotAWSConfig{}) {
			sc.AWS = &aws
		}
	case storage.ProviderTypeOSS:
		oss := SnapshotOSSConfig{
			AccessKey:       q.Get("access-key"),
			SecretAccessKey: q.Get("secret-access-key"),
			SessionToken:    q.Get("session-token"),
			AssumeRoleARN:   firstParam(q, "assume-role-arn", "role-arn"),
		}
		if oss != (SnapshotOSSConfig{}) {
			sc.OSS = &oss
		}
	case storage.ProviderTypeAzure:
		azure := SnapshotAzureConfig{
			AccountName: q.Get("account-name"),
			AccountKey:  q.Get("account-key"),
			SASToken:    q.Get("sas-token"),
		}
		if azure != (SnapshotAzureConfig{}) {
			sc.Azure = &azure
		}
	case storage.ProviderTypeLocalFS:
		if q.Get("create-dirs") == "false" {
			sc.LocalFS.CreateDirs = false
		}
		if permissions := q.Get("permissions"); permissions != "" {
			sc.LocalFS.Permissions = permissions
		}
	}

	return sc, nil
}

// localBasePath joins host and path for "localfs://host/path", or returns the path of "file:///path"
func localBasePath(u *url.URL) string {
	if u.Host == "" {
		return u.Path
	}
	base := "/" + u.Host
	if u.Path != "" && u.Path != "/" {
		base += "/" + strings.TrimPrefix(u.Path, "/")
	}
	return base
}

// ToURI converts SnapshotConfig to a URI string accepted by NewFromURI
func (sc *SnapshotConfig) ToURI() string {
	var uri strings.Builder
	params := make(url.Values)

	switch sc.Type {
	case storage.ProviderTypeS3:
		uri.WriteString("s3://")
	case storage.ProviderTypeOSS:
		uri.WriteString("oss://")
	case storage.ProviderTypeAzure:
		uri.WriteString("azblob://")
	case storage.ProviderTypeLocalFS:
		uri.WriteString("localfs://")
	default:
		return ""
	}

	if sc.Type == storage.ProviderTypeLocalFS {
		if sc.LocalFS != nil && sc.LocalFS.BasePath != "" {
			uri.WriteString("/")
			uri.WriteString(strings.TrimPrefix(sc.LocalFS.BasePath, "/"))
		}
	} else {
		uri.WriteString(sc.Bucket)
		if sc.Prefix != "" {
			uri.WriteString("/")
			uri.WriteString(sc.Prefix)
		}
	}

	setParam := func(name, value string) {
		if value != "" {
			params.Set(name, value)
		}
	}
	setParam("region-id", sc.Region)
	setParam("endpoint", sc.Endpoint)
	setParam("datapath-id", sc.DatapathID)

	switch {
	case sc.Type == storage.ProviderTypeS3 && sc.AWS != nil:
		setParam("access-key", sc.AWS.AccessKey)
		setParam("secret-access-key", sc.AWS.SecretAccessKey)
		setParam("session-token", sc.AWS.SessionToken)
		setParam("assume-role-arn", sc.AWS.AssumeRoleARN)
		if sc.AWS.S3ForcePathStyle {
			params.Set("s3-force-path-style", "true")
		}
	case sc.Type == storage.ProviderTypeOSS && sc.OSS != nil:
		setParam("access-key", sc.OSS.AccessKey)
		setParam("secret-access-key", sc.OSS.SecretAccessKey)
		setParam("session-token", sc.OSS.SessionToken)
		setParam("assume-role-arn", sc.OSS.AssumeRoleARN)
	case sc.Type == storage.ProviderTypeAzure && sc.Azure != nil:
		setParam("account-name", sc.Azure.AccountName)
		setParam("account-key", sc.Azure.AccountKey)
		setParam("sas-token", sc.Azure.SASToken)
	case sc.Type == storage.ProviderTypeLocalFS && sc.LocalFS != nil:
		if !sc.LocalFS.CreateDirs {
			params.Set("create-dirs", "false")
		}
		setParam("permissions", sc.LocalFS.Permissions)
	}

	if len(params) > 0 {
		uri.WriteString("?")
		uri.WriteString(params.Encode())
	}

	return uri.String()
}

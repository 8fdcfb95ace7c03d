package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alibabacloud-go/darabonba-openapi/v2/client"
	stsclient "github.com/alibabacloud-go/sts-20150401/v2/client"
	"github.com/alibabacloud-go/tea-utils/v2/service"
	"github.com/alibabacloud-go/tea/tea"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"
	openapicred "github.com/aliyun/credentials-go/credentials"
)

const (
	// credentialRefreshThreshold how long before expiration cached credentials are renewed
	credentialRefreshThreshold = 15 * time.Minute
	// credentialCheckInterval how often the background loop checks for expiry
	credentialCheckInterval = 5 * time.Minute
	// assumeRoleDuration validity requested from STS, in seconds
	assumeRoleDuration = 3600
)

// AssumeRoleCredentials credentials obtained from assume role
type AssumeRoleCredentials struct {
	AccessKeyID     string
	AccessKeySecret string
	SecurityToken   string
	Expiration      time.Time
}

func (c *AssumeRoleCredentials) toOSS() credentials.Credentials {
	return credentials.Credentials{
		AccessKeyID:     c.AccessKeyID,
		AccessKeySecret: c.AccessKeySecret,
		SecurityToken:   c.SecurityToken,
		Expires:         &c.Expiration,
	}
}

// CredentialCache caches assume role credentials and renews them before they expire.
// Refreshes are serialized; callers arriving during a refresh wait for its result.
type CredentialCache struct {
	assumeRoleARN    string
	region           string
	refreshThreshold time.Duration
	assume           func(ctx context.Context) (*AssumeRoleCredentials, error)

	mu     sync.Mutex
	cached *AssumeRoleCredentials
}

// NewCredentialCache creates a new credential cache for assume role
func NewCredentialCache(baseCred openapicred.Credential, assumeRoleARN string, region string) (*CredentialCache, error) {
	if assumeRoleARN == "" {
		return nil, fmt.Errorf("assume role ARN is required")
	}
	if region == "" {
		return nil, fmt.Errorf("region is required")
	}

	stsCli, err := stsclient.NewClient(&client.Config{
		Credential: baseCred,
		RegionId:   tea.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create STS client: %w", err)
	}

	c := &CredentialCache{
		assumeRoleARN:    assumeRoleARN,
		region:           region,
		refreshThreshold: credentialRefreshThreshold,
	}
	c.assume = func(ctx context.Context) (*AssumeRoleCredentials, error) {
		return assumeRole(stsCli, assumeRoleARN)
	}
	return c, nil
}

// GetCredentials returns cached credentials, renewing them first when they are close to expiry
func (c *CredentialCache) GetCredentials(ctx context.Context) (credentials.Credentials, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && !c.needsRefresh(c.cached.Expiration) {
		return c.cached.toOSS(), nil
	}
	if err := c.refreshLocked(ctx); err != nil {
		// Keep serving credentials that are still valid if renewal fails.
		if c.cached != nil && time.Now().Before(c.cached.Expiration) {
			return c.cached.toOSS(), nil
		}
		return credentials.Credentials{}, err
	}
	return c.cached.toOSS(), nil
}

func (c *CredentialCache) needsRefresh(expiration time.Time) bool {
	return time.Now().Add(c.refreshThreshold).After(expiration)
}

func (c *CredentialCache) refreshLocked(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	creds, err := c.assume(ctx)
	if err != nil {
		return fmt.Errorf("failed to assume role: %w", err)
	}
	c.cached = creds
	return nil
}

// StartBackgroundRefresh renews credentials ahead of expiry until ctx is done
func (c *CredentialCache) StartBackgroundRefresh(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(credentialCheckInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.mu.Lock()
				if c.cached != nil && c.needsRefresh(c.cached.Expiration) {
					// errors are retried on the next tick or the next GetCredentials
					_ = c.refreshLocked(ctx)
				}
				c.mu.Unlock()
			}
		}
	}()
}

// assumeRole calls the STS AssumeRole API
func assumeRole(stsCli *stsclient.Client, roleARN string) (*AssumeRoleCredentials, error) {
	resp, err := stsCli.AssumeRoleWithOptions(&stsclient.AssumeRoleRequest{
		RoleArn:         tea.String(roleARN),
		RoleSessionName: tea.String(fmt.Sprintf("metertable-session-%d", time.Now().Unix())),
		DurationSeconds: tea.Int64(assumeRoleDuration),
	}, &service.RuntimeOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to call AssumeRole API: %w", err)
	}
	if resp.Body == nil || resp.Body.Credentials == nil {
		return nil, fmt.Errorf("invalid AssumeRole response: missing credentials")
	}

	creds := resp.Body.Credentials
	expiration, err := time.Parse(time.RFC3339, tea.StringValue(creds.Expiration))
	if err != nil {
		return nil, fmt.Errorf("failed to parse expiration time: %w", err)
	}
	return &AssumeRoleCredentials{
		AccessKeyID:     tea.StringValue(creds.AccessKeyId),
		AccessKeySecret: tea.StringValue(creds.AccessKeySecret),
		SecurityToken:   tea.StringValue(creds.SecurityToken),
		Expiration:      expiration,
	}, nil
}

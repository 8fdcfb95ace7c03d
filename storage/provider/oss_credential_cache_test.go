package provider

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	openapicred "github.com/aliyun/credentials-go/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createMockCredential creates a fake AK/SK credential for testing
func createMockCredential() openapicred.Credential {
	config := &openapicred.Config{}
	config.SetType("access_key").
		SetAccessKeyId("fake-access-key-id").
		SetAccessKeySecret("fake-access-key-secret")

	akCredential, err := openapicred.NewCredential(config)
	if err != nil {
		panic("Failed to create mock credential: " + err.Error())
	}
	return akCredential
}

func newTestCredentialCache(t *testing.T) *CredentialCache {
	cache, err := NewCredentialCache(createMockCredential(), "acs:ram::123456789012:role/MeterSnapshot", "cn-hangzhou")
	require.NoError(t, err)
	return cache
}

func TestCredentialCache_NewCredentialCache(t *testing.T) {
	cred := createMockCredential()

	tests := []struct {
		name          string
		assumeRoleARN string
		region        string
		wantErr       bool
	}{
		{
			name:          "valid parameters",
			assumeRoleARN: "acs:ram::123456789012:role/MeterSnapshot",
			region:        "ap-southeast-1",
		},
		{
			name:          "empty assume role ARN",
			assumeRoleARN: "",
			region:        "ap-southeast-1",
			wantErr:       true,
		},
		{
			name:          "empty region",
			assumeRoleARN: "acs:ram::123456789012:role/MeterSnapshot",
			region:        "",
			wantErr:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache, err := NewCredentialCache(cred, tt.assumeRoleARN, tt.region)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, cache)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.assumeRoleARN, cache.assumeRoleARN)
			assert.Equal(t, tt.region, cache.region)
			assert.Equal(t, 15*time.Minute, cache.refreshThreshold)
		})
	}
}

func TestCredentialCache_needsRefresh(t *testing.T) {
	cache := newTestCredentialCache(t)

	tests := []struct {
		name       string
		expiration time.Time
		want       bool
	}{
		{"expires in 10 minutes", time.Now().Add(10 * time.Minute), true},
		{"expires in 20 minutes", time.Now().Add(20 * time.Minute), false},
		{"already expired", time.Now().Add(-time.Minute), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cache.needsRefresh(tt.expiration))
		})
	}
}

func TestCredentialCache_GetCredentials_WithValidCache(t *testing.T) {
	cache := newTestCredentialCache(t)
	cache.assume = func(ctx context.Context) (*AssumeRoleCredentials, error) {
		t.Fatal("valid cached credentials must not be renewed")
		return nil, nil
	}
	cache.cached = &AssumeRoleCredentials{
		AccessKeyID:     "cached-access-key",
		AccessKeySecret: "cached-access-secret",
		SecurityToken:   "cached-security-token",
		Expiration:      time.Now().Add(time.Hour),
	}

	creds, err := cache.GetCredentials(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "cached-access-key", creds.AccessKeyID)
	assert.Equal(t, "cached-access-secret", creds.AccessKeySecret)
	assert.Equal(t, "cached-security-token", creds.SecurityToken)
	assert.NotNil(t, creds.Expires)
}

func TestCredentialCache_GetCredentials_Refresh(t *testing.T) {
	cache := newTestCredentialCache(t)
	cache.assume = func(ctx context.Context) (*AssumeRoleCredentials, error) {
		return &AssumeRoleCredentials{
			AccessKeyID: "fresh-key",
			Expiration:  time.Now().Add(time.Hour),
		}, nil
	}
	cache.cached = &AssumeRoleCredentials{
		AccessKeyID: "stale-key",
		Expiration:  time.Now().Add(time.Minute),
	}

	creds, err := cache.GetCredentials(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "fresh-key", creds.AccessKeyID)
}

func TestCredentialCache_GetCredentials_RefreshFailure(t *testing.T) {
	stsErr := errors.New("sts unavailable")

	t.Run("serves still valid credentials", func(t *testing.T) {
		cache := newTestCredentialCache(t)
		cache.assume = func(ctx context.Context) (*AssumeRoleCredentials, error) { return nil, stsErr }
		cache.cached = &AssumeRoleCredentials{
			AccessKeyID: "old-key",
			Expiration:  time.Now().Add(5 * time.Minute),
		}

		creds, err := cache.GetCredentials(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, "old-key", creds.AccessKeyID)
	})

	t.Run("fails once expired", func(t *testing.T) {
		cache := newTestCredentialCache(t)
		cache.assume = func(ctx context.Context) (*AssumeRoleCredentials, error) { return nil, stsErr }
		cache.cached = &AssumeRoleCredentials{
			AccessKeyID: "expired-key",
			Expiration:  time.Now().Add(-time.Minute),
		}

		_, err := cache.GetCredentials(context.Background())
		assert.ErrorIs(t, err, stsErr)
		assert.Contains(t, err.Error(), "failed to assume role")
	})

	t.Run("cancelled context", func(t *testing.T) {
		cache := newTestCredentialCache(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := cache.GetCredentials(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCredentialCache_ConcurrentRefreshOnce(t *testing.T) {
	cache := newTestCredentialCache(t)
	var calls atomic.Int32
	cache.assume = func(ctx context.Context) (*AssumeRoleCredentials, error) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return &AssumeRoleCredentials{
			AccessKeyID: "shared-key",
			Expiration:  time.Now().Add(time.Hour),
		}, nil
	}

	const numGoroutines = 20
	var wg sync.WaitGroup
	keys := make(chan string, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			creds, err := cache.GetCredentials(context.Background())
			if assert.NoError(t, err) {
				keys <- creds.AccessKeyID
			}
		}()
	}
	wg.Wait()
	close(keys)

	for key := range keys {
		assert.Equal(t, "shared-key", key)
	}
	assert.Equal(t, int32(1), calls.Load())
}

package s3

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JackKelly/list-with-depth/pkg/store"
)

// mockAPIError implements smithy.APIError for testing error code mapping.
type mockAPIError struct {
	code    string
	message string
}

func (e *mockAPIError) Error() string                 { return fmt.Sprintf("%s: %s", e.code, e.message) }
func (e *mockAPIError) ErrorCode() string             { return e.code }
func (e *mockAPIError) ErrorMessage() string          { return e.message }
func (e *mockAPIError) ErrorFault() smithy.ErrorFault { return smithy.FaultUnknown }

var _ smithy.APIError = (*mockAPIError)(nil)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name:    "empty bucket",
			config:  Config{},
			wantErr: "bucket name is required",
		},
		{
			name:    "valid minimal config",
			config:  Config{Bucket: "my-bucket"},
			wantErr: "",
		},
		{
			name: "valid config with endpoint",
			config: Config{
				Bucket:         "my-bucket",
				Endpoint:       "http://localhost:9000",
				ForcePathStyle: true,
			},
			wantErr: "",
		},
		{
			name: "access key without secret",
			config: Config{
				Bucket:      "my-bucket",
				AccessKeyID: "AKIA...",
			},
			wantErr: "both access key ID and secret access key",
		},
		{
			name: "secret without access key",
			config: Config{
				Bucket:          "my-bucket",
				SecretAccessKey: "secret",
			},
			wantErr: "both access key ID and secret access key",
		},
		{
			name: "explicit credentials pair",
			config: Config{
				Bucket:          "my-bucket",
				AccessKeyID:     "AKIA...",
				SecretAccessKey: "secret",
			},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNew_ValidationError(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)

	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestWrapError_TypedErrors(t *testing.T) {
	s := &Store{bucket: "test-bucket"}

	err := s.wrapError("ListLevel", "prefix/", &types.NoSuchBucket{})
	assert.True(t, store.IsBucketNotFound(err))

	err = s.wrapError("ListLevel", "prefix/", &types.NoSuchKey{})
	assert.True(t, store.IsNotFound(err))
}

func TestWrapError_APIError(t *testing.T) {
	s := &Store{bucket: "test-bucket"}

	tests := []struct {
		code  string
		check func(error) bool
	}{
		{"AccessDenied", store.IsAccessDenied},
		{"NoSuchBucket", store.IsBucketNotFound},
		{"InvalidAccessKeyId", store.IsInvalidCredentials},
		{"SlowDown", store.IsThrottled},
		{"ServiceUnavailable", store.IsStoreUnavailable},
		{"NotFound", store.IsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := s.wrapError("ListLevel", "prefix/", &mockAPIError{code: tt.code, message: "nope"})
			assert.True(t, tt.check(err))

			var storeErr *store.StoreError
			require.ErrorAs(t, err, &storeErr)
			assert.Equal(t, "ListLevel", storeErr.Op)
			assert.Equal(t, "test-bucket", storeErr.Bucket)
			assert.Equal(t, "prefix/", storeErr.Key)
		})
	}
}

func TestWrapError_FromMessage(t *testing.T) {
	s := &Store{bucket: "test-bucket"}

	err := s.wrapError("ListLevel", "", errors.New("operation error S3: ListObjectsV2, AccessDenied"))
	assert.True(t, store.IsAccessDenied(err))

	err = s.wrapError("ListLevel", "", errors.New("https response error StatusCode: 503, ServiceUnavailable"))
	assert.True(t, store.IsStoreUnavailable(err))
}

func TestCleanETag(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", cleanETag(`"d41d8cd98f00b204e9800998ecf8427e"`))
	assert.Equal(t, "already-clean", cleanETag("already-clean"))
	assert.Equal(t, "", cleanETag(""))
}

func TestMaxKeysClamping(t *testing.T) {
	assert.Equal(t, DefaultMaxKeys, clampMaxKeys(0, DefaultMaxKeys))
	assert.Equal(t, 100, clampMaxKeys(100, DefaultMaxKeys))
	assert.Equal(t, MaxAllowedKeys, clampMaxKeys(5000, DefaultMaxKeys))
	assert.Equal(t, 250, clampMaxKeys(-1, 250))
}

func TestResolveRegion(t *testing.T) {
	// SDK-resolved region always wins.
	assert.Equal(t, "eu-west-2", resolveRegion("eu-west-2", "", "eu-west-2"))
	assert.Equal(t, "us-west-1", resolveRegion("", "", "us-west-1"))

	// No region anywhere: AWS gets the conventional default.
	assert.Equal(t, DefaultAWSRegion, resolveRegion("", "", ""))

	// S3-compatible endpoint: no defaulting.
	assert.Equal(t, "", resolveRegion("", "http://localhost:9000", ""))
}

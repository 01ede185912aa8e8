package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JackKelly/list-with-depth/pkg/store"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		name        string
		uri         string
		wantErr     error
		errContains string
		want        *ObjectURI
	}{
		{
			name: "simple bucket",
			uri:  "s3://my-bucket",
			want: &ObjectURI{
				Store:  store.StoreS3,
				Bucket: "my-bucket",
				Key:    "",
			},
		},
		{
			name: "bucket with trailing slash",
			uri:  "s3://my-bucket/",
			want: &ObjectURI{
				Store:  store.StoreS3,
				Bucket: "my-bucket",
				Key:    "",
			},
		},
		{
			name: "bucket with key",
			uri:  "s3://my-bucket/path/to/object.txt",
			want: &ObjectURI{
				Store:  store.StoreS3,
				Bucket: "my-bucket",
				Key:    "path/to/object.txt",
			},
		},
		{
			name: "bucket with prefix",
			uri:  "s3://my-bucket/path/to/prefix/",
			want: &ObjectURI{
				Store:  store.StoreS3,
				Bucket: "my-bucket",
				Key:    "path/to/prefix/",
			},
		},
		{
			name: "bucket with glob pattern",
			uri:  "s3://my-bucket/data/2024/**/*.parquet",
			want: &ObjectURI{
				Store:   store.StoreS3,
				Bucket:  "my-bucket",
				Key:     "data/2024/",
				Pattern: "data/2024/**/*.parquet",
			},
		},
		{
			name: "bucket with star pattern at root",
			uri:  "s3://my-bucket/*.txt",
			want: &ObjectURI{
				Store:   store.StoreS3,
				Bucket:  "my-bucket",
				Key:     "",
				Pattern: "*.txt",
			},
		},
		{
			name: "bucket with question mark pattern",
			uri:  "s3://my-bucket/data/file?.csv",
			want: &ObjectURI{
				Store:   store.StoreS3,
				Bucket:  "my-bucket",
				Key:     "data/",
				Pattern: "data/file?.csv",
			},
		},
		{
			name: "uppercase S3 scheme",
			uri:  "S3://my-bucket/path",
			want: &ObjectURI{
				Store:  store.StoreS3,
				Bucket: "my-bucket",
				Key:    "path",
			},
		},
		{
			name: "file URI absolute",
			uri:  "file:///var/data/archive/",
			want: &ObjectURI{
				Store:   store.StoreFile,
				BaseDir: "/var/data/archive/",
			},
		},
		{
			name: "file URI with glob",
			uri:  "file:///var/data/*.csv",
			want: &ObjectURI{
				Store:   store.StoreFile,
				BaseDir: "/var/data/",
				Pattern: "*.csv",
			},
		},
		{
			name:        "empty URI",
			uri:         "",
			wantErr:     ErrInvalidURI,
			errContains: "empty",
		},
		{
			name:        "missing scheme",
			uri:         "my-bucket/path",
			wantErr:     ErrInvalidURI,
			errContains: "missing scheme",
		},
		{
			name:        "unsupported scheme",
			uri:         "gcs://my-bucket/path",
			wantErr:     ErrUnsupportedStore,
			errContains: "gcs",
		},
		{
			name:        "missing bucket",
			uri:         "s3:///path",
			wantErr:     ErrMissingBucket,
			errContains: "missing bucket",
		},
		{
			name:        "http scheme not supported",
			uri:         "http://example.com/bucket",
			wantErr:     ErrUnsupportedStore,
			errContains: "http",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseURI(tt.uri)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want.Store, got.Store)
			assert.Equal(t, tt.want.Bucket, got.Bucket)
			assert.Equal(t, tt.want.Key, got.Key)
			assert.Equal(t, tt.want.Pattern, got.Pattern)
			assert.Equal(t, tt.want.BaseDir, got.BaseDir)
		})
	}
}

func TestObjectURI_String(t *testing.T) {
	tests := []struct {
		name string
		uri  *ObjectURI
		want string
	}{
		{
			name: "bucket only",
			uri:  &ObjectURI{Store: store.StoreS3, Bucket: "bucket"},
			want: "s3://bucket/",
		},
		{
			name: "bucket with key",
			uri:  &ObjectURI{Store: store.StoreS3, Bucket: "bucket", Key: "path/to/file.txt"},
			want: "s3://bucket/path/to/file.txt",
		},
		{
			name: "bucket with pattern",
			uri:  &ObjectURI{Store: store.StoreS3, Bucket: "bucket", Key: "data/", Pattern: "data/**/*.csv"},
			want: "s3://bucket/data/**/*.csv",
		},
		{
			name: "file base dir",
			uri:  &ObjectURI{Store: store.StoreFile, BaseDir: "/var/data/"},
			want: "file:///var/data/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.uri.String()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestObjectURI_IsPattern(t *testing.T) {
	assert.False(t, (&ObjectURI{Store: store.StoreS3, Bucket: "bucket", Key: "path/"}).IsPattern())
	assert.True(t, (&ObjectURI{Store: store.StoreS3, Bucket: "bucket", Key: "data/", Pattern: "data/**/*.csv"}).IsPattern())
}

func TestObjectURI_IsPrefix(t *testing.T) {
	tests := []struct {
		name string
		uri  *ObjectURI
		want bool
	}{
		{
			name: "empty key is prefix",
			uri:  &ObjectURI{Store: store.StoreS3, Bucket: "bucket", Key: ""},
			want: true,
		},
		{
			name: "trailing slash is prefix",
			uri:  &ObjectURI{Store: store.StoreS3, Bucket: "bucket", Key: "path/"},
			want: true,
		},
		{
			name: "no trailing slash is not prefix",
			uri:  &ObjectURI{Store: store.StoreS3, Bucket: "bucket", Key: "path/file.txt"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.uri.IsPrefix()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseURI_EscapeAware(t *testing.T) {
	// These tests verify escape-aware glob detection and unescaping
	tests := []struct {
		name    string
		uri     string
		wantKey string
		wantPat string
	}{
		{
			name:    "escaped asterisk is literal - unescaped for the store",
			uri:     `s3://bucket/data/file\*.txt`,
			wantKey: "data/file*.txt",
			wantPat: "",
		},
		{
			name:    "escaped question mark is literal - unescaped for the store",
			uri:     `s3://bucket/data/file\?.txt`,
			wantKey: "data/file?.txt",
			wantPat: "",
		},
		{
			name:    "mixed escaped and unescaped glob",
			uri:     `s3://bucket/data/file\*/*.txt`,
			wantKey: "data/file*/",
			wantPat: `data/file\*/*.txt`,
		},
		{
			name:    "unescaped glob detected",
			uri:     "s3://bucket/data/**/*.parquet",
			wantKey: "data/",
			wantPat: "data/**/*.parquet",
		},
		{
			name:    "no escapes no glob - unchanged",
			uri:     "s3://bucket/data/file.txt",
			wantKey: "data/file.txt",
			wantPat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseURI(tt.uri)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, got.Key)
			assert.Equal(t, tt.wantPat, got.Pattern)
		})
	}
}

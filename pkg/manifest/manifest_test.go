package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
version: "1.0"
connection:
  store: s3
  bucket: my-data-bucket
  region: us-east-1
traversal:
  prefix: "data/"
  depth: 2
  parallel: 8
match:
  includes:
    - "data/2024/**/*.parquet"
  excludes:
    - "**/_temporary/**"
output:
  destination: stdout
`

func TestLoadFromBytes_ValidYAML(t *testing.T) {
	m, err := LoadFromBytes([]byte(validYAML), "job.yaml")
	require.NoError(t, err)

	assert.Equal(t, "1.0", m.Version)
	assert.Equal(t, "s3", m.Connection.Store)
	assert.Equal(t, "my-data-bucket", m.Connection.Bucket)
	assert.Equal(t, "data/", m.Traversal.Prefix)
	assert.Equal(t, 2, m.Traversal.Depth)
	assert.Equal(t, 8, m.Traversal.Parallel)
	assert.Equal(t, []string{"data/2024/**/*.parquet"}, m.Match.Includes)
}

func TestLoadFromBytes_Defaults(t *testing.T) {
	minimal := `
version: "1.0"
connection:
  store: file
  base_dir: /data
`
	m, err := LoadFromBytes([]byte(minimal), "job.yaml")
	require.NoError(t, err)

	assert.Equal(t, 0, m.Traversal.Depth)
	assert.Equal(t, "/", m.Traversal.Delimiter)
	assert.Equal(t, DefaultParallel, m.Traversal.Parallel)
	assert.Equal(t, DefaultDestination, m.Output.Destination)
}

func TestLoadFromBytes_ValidJSON(t *testing.T) {
	data := `{"version":"1.0","connection":{"store":"s3","bucket":"b"}}`

	m, err := LoadFromBytes([]byte(data), "job.json")
	require.NoError(t, err)
	assert.Equal(t, "b", m.Connection.Bucket)
}

func TestLoadFromBytes_UnknownField(t *testing.T) {
	data := `
version: "1.0"
connection:
  store: s3
  bucket: b
crawl:
  concurrency: 4
`
	_, err := LoadFromBytes([]byte(data), "job.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestLoadFromBytes_NegativeDepth(t *testing.T) {
	data := `
version: "1.0"
connection:
  store: s3
  bucket: b
traversal:
  depth: -1
`
	_, err := LoadFromBytes([]byte(data), "job.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestLoadFromBytes_MissingConnection(t *testing.T) {
	_, err := LoadFromBytes([]byte(`version: "1.0"`), "job.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestLoadFromBytes_BadVersion(t *testing.T) {
	data := `
version: "2.0"
connection:
  store: s3
  bucket: b
`
	_, err := LoadFromBytes([]byte(data), "job.yaml")
	require.Error(t, err)
}

func TestLoadFromBytes_Empty(t *testing.T) {
	_, err := LoadFromBytes(nil, "job.yaml")
	require.Error(t, err)
}

func TestLoadFromBytes_InvalidYAML(t *testing.T) {
	_, err := LoadFromBytes([]byte("::not yaml::"), "job.yaml")
	require.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "my-data-bucket", m.Connection.Bucket)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load("/nonexistent/job.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidate_Struct(t *testing.T) {
	m := &Manifest{
		Version: "1.0",
		Connection: ConnectionConfig{
			Store:  "s3",
			Bucket: "b",
		},
	}
	assert.NoError(t, Validate(m))

	m.Version = ""
	assert.Error(t, Validate(m))
}

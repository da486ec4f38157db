package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jljohnson/mindmup/app/logger"
)

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := []byte(`
log:
  defaultLevel: info
  format: 2
  levels:
    - name: mindmup.retry
      level: debug
repository:
  retryTimes: 3
  backoff: exponential
  backoffMaxMs: 8000
storage:
  adapters: [http, file]
  remoteUrl: https://maps.example.com
metric:
  addr: 127.0.0.1:8090
recent:
  limit: 3
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	c, err := NewFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "info", c.Log.DefaultLevel)
	assert.Equal(t, logger.JSONOutput, c.Log.Format)
	assert.Equal(t, []logger.NamedLevel{{Name: "mindmup.retry", Level: "debug"}}, c.Log.Levels)
	assert.Equal(t, Repository{RetryTimes: 3, Backoff: "exponential", BackoffStepMs: defaultBackoffStepMs, BackoffMaxMs: 8000}, c.GetRepository())
	assert.Equal(t, []string{"http", "file"}, c.GetStorage().Adapters)
	assert.Equal(t, "https://maps.example.com", c.GetStorage().RemoteURL)
	assert.Equal(t, "127.0.0.1:8090", c.GetMetric().Addr)
	assert.Equal(t, "data/local.db", c.GetLocalDBPath())
	assert.Equal(t, 3, c.GetRecent().Limit)
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, 5, c.Repository.RetryTimes)
	assert.Equal(t, 1000, c.Repository.BackoffStepMs)
	assert.Equal(t, "linear", c.Repository.Backoff)
	assert.Equal(t, []string{"file", "anystore"}, c.Storage.Adapters)
	assert.Equal(t, 10, c.GetRecent().Limit)
	assert.Equal(t, CName, c.Name())
}

func TestParseError(t *testing.T) {
	_, err := Parse([]byte("repository: [unclosed"))
	assert.Error(t, err)

	_, err = NewFromFile(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	fp := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(fp, []byte(contents), 0o644))
	return fp
}

func TestReadConfig(t *testing.T) {
	{
		// defaults
		settings, err := ReadConfig(writeConfig(t, `
source: source-sqlite
config:
  path: /tmp/source.db
streams: ["orders", "customers"]
`))
		assert.NoError(t, err)
		assert.Equal(t, "source-sqlite", settings.Source)
		assert.Equal(t, map[string]string{"path": "/tmp/source.db"}, settings.Config)
		assert.Equal(t, []string{"orders", "customers"}, settings.Streams)
		assert.True(t, settings.SyncEnabled())
		require.NotNil(t, settings.Sync)
		assert.True(t, *settings.Sync)
		assert.False(t, settings.ForceFullRefresh)
		assert.Equal(t, 1, settings.Concurrency)
		assert.Equal(t, Cache{Kind: CacheKindDuckDB, Name: "default_cache", Dir: ".cache"}, settings.Cache)
		assert.Nil(t, settings.Reporting)
	}
	{
		// everything set
		settings, err := ReadConfig(writeConfig(t, `
source: source-mssql
config:
  host: localhost
  port: "1433"
sync: true
forceFullRefresh: true
concurrency: 4
cache:
  kind: sqlite
  name: analytics
  dir: /var/lib/minisync
reporting:
  sentry:
    dsn: https://key@sentry.io/1
metrics:
  namespace: minisync.
  tags: ["env:dev"]
`))
		assert.NoError(t, err)
		assert.True(t, settings.ForceFullRefresh)
		assert.Equal(t, 4, settings.Concurrency)
		assert.Equal(t, Cache{Kind: CacheKindSQLite, Name: "analytics", Dir: "/var/lib/minisync"}, settings.Cache)
		assert.Equal(t, "https://key@sentry.io/1", settings.Reporting.Sentry.DSN)
		assert.Equal(t, &Metrics{Namespace: "minisync.", Tags: []string{"env:dev"}}, settings.Metrics)
	}
	{
		// sync disabled with streams
		_, err := ReadConfig(writeConfig(t, `
source: source-sqlite
sync: false
streams: ["orders"]
`))
		assert.ErrorContains(t, err, "streams cannot be selected when sync is disabled")
	}
	{
		// sync disabled without streams
		settings, err := ReadConfig(writeConfig(t, "source: source-sqlite\nsync: false\n"))
		assert.NoError(t, err)
		assert.False(t, settings.SyncEnabled())
	}
	{
		// bad cache kind
		_, err := ReadConfig(writeConfig(t, "source: source-sqlite\ncache:\n  kind: redis\n"))
		assert.ErrorContains(t, err, `cache validation failed: unsupported cache kind: "redis"`)
	}
	{
		// missing file
		_, err := ReadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorContains(t, err, "failed to read config file")
	}
}

func TestSettings_Validate(t *testing.T) {
	var settings *Settings
	assert.ErrorContains(t, settings.Validate(), "config is nil")

	settings = &Settings{}
	settings.GenerateDefault()
	assert.ErrorContains(t, settings.Validate(), "source is not set")
}

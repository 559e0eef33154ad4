package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSQLite(t *testing.T) {
	{
		cfg, err := ParseSQLite(Params{"path": "/tmp/./source.db"})
		assert.NoError(t, err)
		assert.Equal(t, SQLite{Path: "/tmp/source.db", BatchSize: 100_000}, cfg)
		assert.Equal(t, "file:/tmp/source.db?mode=ro", cfg.ToDSN())
	}
	{
		_, err := ParseSQLite(Params{})
		assert.ErrorContains(t, err, `"path" is required`)
	}
}

package connectors

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/artie-labs/minisync/caches"
	"github.com/artie-labs/minisync/caches/duckdb"
	"github.com/artie-labs/minisync/caches/sqlite"
	"github.com/artie-labs/minisync/config"
	"github.com/artie-labs/minisync/lib/syncerr"
	"github.com/artie-labs/minisync/sources"
	"github.com/artie-labs/minisync/sources/mssql"
	"github.com/artie-labs/minisync/sources/mysql"
	"github.com/artie-labs/minisync/sources/postgres"
	"github.com/artie-labs/minisync/sources/snowflake"
	sqlitesource "github.com/artie-labs/minisync/sources/sqlite"
)

const (
	SourceMSSQL     = "source-mssql"
	SourceSnowflake = "source-snowflake"
	SourcePostgres  = "source-postgres"
	SourceMySQL     = "source-mysql"
	SourceSQLite    = "source-sqlite"
)

var registry = map[string]sources.Builder{
	SourceMSSQL:     builder(mssql.NewProcessor),
	SourceSnowflake: builder(snowflake.NewProcessor),
	SourcePostgres:  builder(postgres.NewProcessor),
	SourceMySQL:     builder(mysql.NewProcessor),
	SourceSQLite:    builder(sqlitesource.NewProcessor),
}

// builder erases the concrete processor type without turning a nil pointer into a non-nil interface.
func builder[P sources.Processor](build func(ctx context.Context, params config.Params) (P, error)) sources.Builder {
	return func(ctx context.Context, params config.Params) (sources.Processor, error) {
		processor, err := build(ctx, params)
		if err != nil {
			return nil, err
		}
		return processor, nil
	}
}

// Available returns the registered source names, sorted.
func Available() []string {
	return slices.Sorted(maps.Keys(registry))
}

func Get(name string) (sources.Builder, error) {
	b, isOk := registry[name]
	if !isOk {
		return nil, syncerr.NewConfigurationError("source", fmt.Sprintf("unknown source %q, available: %v", name, Available()))
	}
	return b, nil
}

// GetSource looks a source up by name and discovers its catalog. The default cache is DuckDB's default_cache.
func GetSource(ctx context.Context, name string, params map[string]string, opts sources.Options) (*sources.Source, error) {
	b, err := Get(name)
	if err != nil {
		return nil, err
	}

	if opts.DefaultCache == nil {
		opts.DefaultCache = duckdb.Default
	}
	return sources.New(ctx, name, b, params, opts)
}

func OpenCache(cfg config.Cache) (caches.Cache, error) {
	cfg.GenerateDefault()
	if err := cfg.Validate(); err != nil {
		return nil, syncerr.NewConfigurationError("cache", err.Error())
	}

	open := duckdb.Open
	if cfg.Kind == config.CacheKindSQLite {
		open = sqlite.Open
	}

	cache, err := open(cfg.Name, cfg.Dir)
	if err != nil {
		return nil, err
	}
	return cache, nil
}

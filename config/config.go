package config

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/artie-labs/minisync/constants"
	"github.com/artie-labs/minisync/lib/ptr"
)

type CacheKind string

const (
	CacheKindDuckDB CacheKind = "duckdb"
	CacheKindSQLite CacheKind = "sqlite"
)

type Cache struct {
	Kind CacheKind `yaml:"kind"`
	Name string    `yaml:"name"`
	Dir  string    `yaml:"dir"`
}

func (c *Cache) GenerateDefault() {
	if c.Kind == "" {
		c.Kind = CacheKindDuckDB
	}
	if c.Name == "" {
		c.Name = constants.DefaultCacheName
	}
	if c.Dir == "" {
		c.Dir = constants.DefaultCacheDir
	}
}

func (c Cache) Validate() error {
	if !slices.Contains([]CacheKind{CacheKindDuckDB, CacheKindSQLite}, c.Kind) {
		return fmt.Errorf("unsupported cache kind: %q", c.Kind)
	}
	return nil
}

type Reporting struct {
	Sentry *Sentry `yaml:"sentry"`
}

type Sentry struct {
	DSN string `yaml:"dsn"`
}

type Metrics struct {
	Namespace string   `yaml:"namespace"`
	Tags      []string `yaml:"tags"`
}

type Settings struct {
	Source           string            `yaml:"source"`
	Config           map[string]string `yaml:"config"`
	Streams          []string          `yaml:"streams"`
	Sync             *bool             `yaml:"sync"`
	ForceFullRefresh bool              `yaml:"forceFullRefresh"`
	Concurrency      int               `yaml:"concurrency"`
	Cache            Cache             `yaml:"cache"`
	Reporting        *Reporting        `yaml:"reporting"`
	Metrics          *Metrics          `yaml:"metrics"`
	LogLevel         string            `yaml:"logLevel"`
}

// SyncEnabled returns whether discovery and reads should touch the source, defaulting to true.
func (s *Settings) SyncEnabled() bool {
	return s.Sync == nil || *s.Sync
}

func (s *Settings) GenerateDefault() {
	s.Cache.GenerateDefault()
	if s.Sync == nil {
		s.Sync = ptr.ToPtr(true)
	}
	if s.Concurrency <= 0 {
		s.Concurrency = 1
	}
}

func (s *Settings) Validate() error {
	if s == nil {
		return fmt.Errorf("config is nil")
	}

	if s.Source == "" {
		return fmt.Errorf("source is not set")
	}

	if !s.SyncEnabled() && len(s.Streams) > 0 {
		return fmt.Errorf("streams cannot be selected when sync is disabled")
	}

	if s.Concurrency < 0 {
		return fmt.Errorf("concurrency cannot be negative")
	}

	if err := s.Cache.Validate(); err != nil {
		return fmt.Errorf("cache validation failed: %w", err)
	}

	return nil
}

func ReadConfig(fp string) (*Settings, error) {
	bytes, err := os.ReadFile(fp)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var settings Settings
	if err = yaml.Unmarshal(bytes, &settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
	}

	settings.GenerateDefault()
	if err = settings.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config file: %w", err)
	}

	return &settings, nil
}

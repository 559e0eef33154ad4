package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/samber/lo"

	"github.com/artie-labs/minisync/caches"
	"github.com/artie-labs/minisync/config"
	"github.com/artie-labs/minisync/lib"
	"github.com/artie-labs/minisync/lib/catalog"
	"github.com/artie-labs/minisync/lib/iterator"
	"github.com/artie-labs/minisync/lib/progress"
	"github.com/artie-labs/minisync/lib/syncerr"
	"github.com/artie-labs/minisync/lib/typing"
)

// AllStreams selects every stream in the catalog.
const AllStreams = "*"

// Processor is a live session against one source backend.
type Processor interface {
	// Discover lists the base tables in scope with their row counts.
	Discover(ctx context.Context) (*catalog.Catalog, error)
	GenerateTableSchema(ctx context.Context, stream string) (typing.TableSchema, error)
	// GetResultBatches returns a finite, non-restartable iterator over the rows of a stream, in schema column order.
	GetResultBatches(ctx context.Context, stream string) (iterator.ClosableIterator[lib.Batch], error)
	// Close releases the connection and any iterators left open. It is safe to call more than once.
	Close() error
}

// Builder opens a processor from backend parameters.
type Builder func(ctx context.Context, params config.Params) (Processor, error)

// WithProcessor opens a processor, runs fn and always closes the processor afterwards.
func WithProcessor(ctx context.Context, builder Builder, params config.Params, fn func(processor Processor) error) (err error) {
	processor, err := builder(ctx, params)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := processor.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close processor: %w", closeErr))
		}
	}()

	return fn(processor)
}

// CacheProvider returns the cache a read writes to when the caller does not pass one.
type CacheProvider func() (caches.Cache, error)

type Options struct {
	// Streams is applied as the initial selection, see [Source.SelectStreams].
	Streams []string
	// Sync defaults to true. When false the source never touches the backend.
	Sync         *bool
	Reporter     progress.Reporter
	Concurrency  int
	DefaultCache CacheProvider
}

type Source struct {
	name         string
	builder      Builder
	params       config.Params
	syncEnabled  bool
	reporter     progress.Reporter
	concurrency  int
	defaultCache CacheProvider

	mu       sync.RWMutex
	catalog  *catalog.Catalog
	selected []string
}

// New builds a source and, unless sync is disabled, discovers its catalog with a short lived processor.
func New(ctx context.Context, name string, builder Builder, params map[string]string, opts Options) (*Source, error) {
	if builder == nil {
		return nil, syncerr.NewConfigurationError("source", fmt.Sprintf("no processor builder for %q", name))
	}

	source := &Source{
		name:         name,
		builder:      builder,
		params:       maps.Clone(config.Params(params)),
		syncEnabled:  opts.Sync == nil || *opts.Sync,
		reporter:     opts.Reporter,
		concurrency:  max(opts.Concurrency, 1),
		defaultCache: opts.DefaultCache,
	}

	if source.reporter == nil {
		source.reporter = progress.Nop{}
	}

	if !source.syncEnabled {
		if len(opts.Streams) > 0 {
			return nil, syncerr.NewConfigurationError("streams", "cannot be selected when sync is disabled")
		}
		slog.Info("Sync is disabled, skipping discovery", slog.String("source", name))
		return source, nil
	}

	cat, err := source.discover(ctx)
	if err != nil {
		return nil, err
	}
	source.catalog = cat

	if len(opts.Streams) > 0 {
		if err = source.SelectStreams(opts.Streams...); err != nil {
			return nil, err
		}
	}
	return source, nil
}

func (s *Source) discover(ctx context.Context) (*catalog.Catalog, error) {
	var cat *catalog.Catalog
	err := WithProcessor(ctx, s.builder, s.params, func(processor Processor) error {
		var err error
		cat, err = processor.Discover(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Discovered streams", slog.String("source", s.name), slog.Int("streams", cat.Len()))
	return cat, nil
}

func (s *Source) Name() string {
	return s.name
}

func (s *Source) SyncEnabled() bool {
	return s.syncEnabled
}

// Catalog returns the catalog from the last discovery, nil when sync is disabled.
func (s *Source) Catalog() *catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

func (s *Source) AvailableStreams() []string {
	return s.Catalog().Streams()
}

func (s *Source) SelectedStreams() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.selected)
}

// SelectAllStreams selects every stream in catalog order.
func (s *Source) SelectAllStreams() error {
	return s.SelectStreams(AllStreams)
}

// SelectStreams replaces the selection. Every stream is validated before anything is assigned, duplicates are
// dropped and the first occurrence decides the order. [AllStreams] anywhere selects the whole catalog.
func (s *Source) SelectStreams(streams ...string) error {
	if !s.syncEnabled {
		return syncerr.NewConfigurationError("streams", "cannot be selected when sync is disabled")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if lo.Contains(streams, AllStreams) {
		s.selected = s.catalog.Streams()
		return nil
	}

	for _, stream := range streams {
		if !s.catalog.Has(stream) {
			return syncerr.StreamNotFoundError{Stream: stream}
		}
	}

	s.selected = lo.Uniq(streams)
	return nil
}

// Rediscover refreshes the catalog. The current selection must still exist in the new catalog, otherwise the old
// catalog is kept.
func (s *Source) Rediscover(ctx context.Context) error {
	if !s.syncEnabled {
		return syncerr.NewConfigurationError("sync", "is disabled, the catalog cannot be refreshed")
	}

	cat, err := s.discover(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if missing := lo.Filter(s.selected, func(stream string, _ int) bool { return !cat.Has(stream) }); len(missing) > 0 {
		return syncerr.StreamNotFoundError{Stream: missing[0]}
	}

	s.catalog = cat
	return nil
}

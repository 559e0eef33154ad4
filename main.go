package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/spf13/cobra"

	"github.com/artie-labs/minisync/caches"
	"github.com/artie-labs/minisync/config"
	"github.com/artie-labs/minisync/connectors"
	"github.com/artie-labs/minisync/constants"
	"github.com/artie-labs/minisync/lib/logger"
	"github.com/artie-labs/minisync/lib/mtr"
	"github.com/artie-labs/minisync/lib/progress"
	"github.com/artie-labs/minisync/sources"
)

var (
	configFilePath   string
	forceFullRefresh bool
	exportStream     string
	exportPath       string
	maxChunkSize     int
)

var rootCmd = &cobra.Command{
	Use:           "minisync",
	Short:         "Sync tables from a database or warehouse into a local analytical cache",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the selected streams into the cache",
	RunE:  runSync,
}

var streamsCmd = &cobra.Command{
	Use:   "streams",
	Short: "List the streams the source exposes with their row counts",
	RunE:  runStreams,
}

var connectorsCmd = &cobra.Command{
	Use:   "connectors",
	Short: "List the available sources",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, name := range connectors.Available() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a cached stream to an Arrow IPC file",
	RunE:  runExport,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFilePath, "config", "", "path to config file")
	syncCmd.Flags().BoolVar(&forceFullRefresh, "force", false, "re-sync every selected stream")
	exportCmd.Flags().StringVar(&exportStream, "stream", "", "stream to export")
	exportCmd.Flags().StringVar(&exportPath, "out", "", "path of the Arrow IPC file to write")
	exportCmd.Flags().IntVar(&maxChunkSize, "max-chunk-size", constants.DefaultMaxChunkSize, "maximum rows per record batch")
	_ = exportCmd.MarkFlagRequired("stream")
	_ = exportCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(syncCmd, streamsCmd, connectorsCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("Command failed", slog.Any("err", err))
	}
}

// loadSettings reads the config file and installs the logger it describes.
func loadSettings() (*config.Settings, func(), error) {
	cfg, err := config.ReadConfig(configFilePath)
	if err != nil {
		return nil, nil, err
	}

	_logger, cleanUpHandlers := logger.NewLogger(cfg)
	slog.SetDefault(_logger)
	return cfg, cleanUpHandlers, nil
}

func setUpReporter(cfg *config.Settings) (progress.Reporter, func(), error) {
	reporter := progress.NewLogReporter(nil)
	if cfg.Metrics == nil {
		return reporter, func() {}, nil
	}

	slog.Info("Creating metrics client")
	client, err := mtr.New(cfg.Metrics.Namespace, cfg.Metrics.Tags, 0.5)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up metrics: %w", err)
	}
	return progress.Multi(reporter, progress.NewMetricsReporter(client, map[string]string{"source": cfg.Source})), client.Flush, nil
}

// buildSource returns the configured source along with a function closing the cache it opened, if any.
func buildSource(ctx context.Context, cfg *config.Settings, reporter progress.Reporter) (*sources.Source, func(), error) {
	var opened caches.Cache
	source, err := connectors.GetSource(ctx, cfg.Source, cfg.Config, sources.Options{
		Streams:     cfg.Streams,
		Sync:        cfg.Sync,
		Reporter:    reporter,
		Concurrency: cfg.Concurrency,
		DefaultCache: func() (caches.Cache, error) {
			cache, err := connectors.OpenCache(cfg.Cache)
			if err != nil {
				return nil, err
			}
			opened = cache
			return cache, nil
		},
	})
	if err != nil {
		return nil, nil, err
	}

	return source, func() {
		if opened == nil {
			return
		}
		if err := opened.Close(); err != nil {
			slog.Warn("Failed to close cache", slog.Any("err", err))
		}
	}, nil
}

func runSync(cmd *cobra.Command, _ []string) error {
	cfg, cleanUp, err := loadSettings()
	if err != nil {
		return err
	}
	defer cleanUp()

	reporter, flush, err := setUpReporter(cfg)
	if err != nil {
		return err
	}
	defer flush()

	ctx := cmd.Context()
	source, closeCache, err := buildSource(ctx, cfg, reporter)
	if err != nil {
		return fmt.Errorf("failed to build source: %w", err)
	}
	defer closeCache()

	result, err := source.Read(ctx, nil, sources.ReadOptions{ForceFullRefresh: cfg.ForceFullRefresh || forceFullRefresh})
	if err != nil {
		return err
	}

	slog.Info("Sync complete", slog.Int64("processedRecords", result.ProcessedRecords()))
	return nil
}

func runStreams(cmd *cobra.Command, _ []string) error {
	cfg, cleanUp, err := loadSettings()
	if err != nil {
		return err
	}
	defer cleanUp()

	source, closeCache, err := buildSource(cmd.Context(), cfg, progress.Nop{})
	if err != nil {
		return fmt.Errorf("failed to build source: %w", err)
	}
	defer closeCache()

	for _, stream := range source.AvailableStreams() {
		entry, _ := source.Catalog().Get(stream)
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", stream, entry.RowCount)
	}
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, cleanUp, err := loadSettings()
	if err != nil {
		return err
	}
	defer cleanUp()

	cache, err := connectors.OpenCache(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer cache.Close()

	table, err := cache.ExportColumnar(cmd.Context(), exportStream, maxChunkSize)
	if err != nil {
		return err
	}
	defer table.Release()

	file, err := os.Create(exportPath)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", exportPath, err)
	}
	defer file.Close()

	writer, err := ipc.NewFileWriter(file, ipc.WithSchema(table.Schema()), ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return fmt.Errorf("failed to create arrow writer: %w", err)
	}

	reader := array.NewTableReader(table, int64(maxChunkSize))
	defer reader.Release()
	for reader.Next() {
		if err = writer.Write(reader.Record()); err != nil {
			return fmt.Errorf("failed to write record batch: %w", err)
		}
	}

	if err = writer.Close(); err != nil {
		return fmt.Errorf("failed to close arrow writer: %w", err)
	}

	slog.Info("Exported stream", slog.String("stream", exportStream), slog.Int64("rows", table.NumRows()), slog.String("path", exportPath))
	return nil
}

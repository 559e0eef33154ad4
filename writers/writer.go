package writers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/artie-labs/minisync/lib"
	"github.com/artie-labs/minisync/lib/iterator"
	"github.com/artie-labs/minisync/lib/progress"
)

type Destination interface {
	InsertBatch(ctx context.Context, stream string, batch lib.Batch) error
}

type Writer struct {
	destination Destination
	reporter    progress.Reporter
	logProgress bool
}

func New(destination Destination, reporter progress.Reporter, logProgress bool) Writer {
	if reporter == nil {
		reporter = progress.Nop{}
	}
	return Writer{destination: destination, reporter: reporter, logProgress: logProgress}
}

// Write writes every batch of a stream to the destination and returns the number of rows written. The context is
// checked between batches.
func (w *Writer) Write(ctx context.Context, stream string, expected int64, iter iterator.Iterator[lib.Batch]) (int64, error) {
	start := time.Now()
	var count int64
	for iter.HasNext() {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		iterStart := time.Now()
		batch, err := iter.Next()
		if err != nil {
			return count, fmt.Errorf("failed to iterate over batches: %w", err)
		}

		if batch.Len() == 0 {
			continue
		}

		if err = w.destination.InsertBatch(ctx, stream, batch); err != nil {
			return count, fmt.Errorf("failed to write batch: %w", err)
		}

		count += int64(batch.Len())
		w.reporter.StreamProgress(stream, count, expected)
		if w.logProgress {
			slog.Info("Write progress",
				slog.String("stream", stream),
				slog.Int64("totalSize", count),
				slog.Duration("totalDuration", time.Since(start)),
				slog.Int("batchSize", batch.Len()),
				slog.Duration("batchDuration", time.Since(iterStart)),
			)
		}
	}

	return count, nil
}

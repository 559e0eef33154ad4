package writers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/artie-labs/minisync/lib"
	"github.com/artie-labs/minisync/lib/iterator"
)

type mockDestination struct {
	rows      [][]any
	emitError bool
}

func (m *mockDestination) InsertBatch(_ context.Context, _ string, batch lib.Batch) error {
	if m.emitError {
		return fmt.Errorf("test insert-batch error")
	}
	m.rows = append(m.rows, batch.Rows...)
	return nil
}

type errorIterator struct{}

func (m *errorIterator) HasNext() bool {
	return true
}

func (m *errorIterator) Next() (lib.Batch, error) {
	return lib.Batch{}, fmt.Errorf("test iteration error")
}

type progressRecorder struct {
	synced []int64
}

func (p *progressRecorder) StreamStarted(string, int64) {}
func (p *progressRecorder) StreamProgress(_ string, synced, _ int64) {
	p.synced = append(p.synced, synced)
}
func (p *progressRecorder) StreamCompleted(string, int64, time.Duration) {}
func (p *progressRecorder) StreamSkipped(string)                         {}

func batchOf(values ...int64) lib.Batch {
	batch := lib.Batch{Columns: []string{"id"}}
	for _, value := range values {
		batch.Rows = append(batch.Rows, []any{value})
	}
	return batch
}

func TestWriter_Write(t *testing.T) {
	ctx := context.Background()
	{
		// Empty iterator
		destination := &mockDestination{}
		writer := New(destination, nil, false)
		count, err := writer.Write(ctx, "orders", 0, iterator.FromSlice([]lib.Batch{}))
		assert.NoError(t, err)
		assert.Equal(t, int64(0), count)
		assert.Empty(t, destination.rows)
	}
	{
		// Iteration error
		destination := &mockDestination{}
		writer := New(destination, nil, false)
		_, err := writer.Write(ctx, "orders", 0, &errorIterator{})
		assert.ErrorContains(t, err, "failed to iterate over batches: test iteration error")
		assert.Empty(t, destination.rows)
	}
	{
		// Three batches, two non-empty
		destination := &mockDestination{}
		recorder := &progressRecorder{}
		writer := New(destination, recorder, true)
		count, err := writer.Write(ctx, "orders", 3, iterator.FromSlice([]lib.Batch{batchOf(1), batchOf(), batchOf(2, 3)}))
		assert.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.Equal(t, [][]any{{int64(1)}, {int64(2)}, {int64(3)}}, destination.rows)
		assert.Equal(t, []int64{1, 3}, recorder.synced)
	}
	{
		// Destination error
		destination := &mockDestination{emitError: true}
		writer := New(destination, nil, false)
		_, err := writer.Write(ctx, "orders", 1, iterator.FromSlice([]lib.Batch{batchOf(1)}))
		assert.ErrorContains(t, err, "failed to write batch: test insert-batch error")
		assert.Empty(t, destination.rows)
	}
	{
		// Cancelled context
		cancelledCtx, cancel := context.WithCancel(ctx)
		cancel()
		destination := &mockDestination{}
		writer := New(destination, nil, false)
		_, err := writer.Write(cancelledCtx, "orders", 1, iterator.FromSlice([]lib.Batch{batchOf(1)}))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, destination.rows)
	}
}

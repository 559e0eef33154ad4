package progress

import (
	"log/slog"
	"time"

	"github.com/artie-labs/minisync/lib/mtr"
)

// Reporter receives per-stream progress events during a sync. Implementations must be safe for concurrent use when
// streams are synced in parallel.
type Reporter interface {
	StreamStarted(stream string, expected int64)
	StreamProgress(stream string, synced, expected int64)
	StreamCompleted(stream string, synced int64, elapsed time.Duration)
	StreamSkipped(stream string)
}

type Nop struct{}

func (Nop) StreamStarted(string, int64)                  {}
func (Nop) StreamProgress(string, int64, int64)          {}
func (Nop) StreamCompleted(string, int64, time.Duration) {}
func (Nop) StreamSkipped(string)                         {}

type logReporter struct {
	logger *slog.Logger
}

// NewLogReporter reports progress as structured log lines. A nil logger uses [slog.Default].
func NewLogReporter(logger *slog.Logger) Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return logReporter{logger: logger}
}

func (l logReporter) StreamStarted(stream string, expected int64) {
	l.logger.Info("Syncing stream", slog.String("stream", stream), slog.Int64("expectedRows", expected))
}

func (l logReporter) StreamProgress(stream string, synced, expected int64) {
	attrs := []any{slog.String("stream", stream), slog.Int64("syncedRows", synced), slog.Int64("expectedRows", expected)}
	if expected > 0 {
		attrs = append(attrs, slog.Float64("percent", float64(synced)*100/float64(expected)))
	}
	l.logger.Info("Stream progress", attrs...)
}

func (l logReporter) StreamCompleted(stream string, synced int64, elapsed time.Duration) {
	l.logger.Info("Finished syncing stream",
		slog.String("stream", stream),
		slog.Int64("syncedRows", synced),
		slog.Duration("elapsed", elapsed),
	)
}

func (l logReporter) StreamSkipped(stream string) {
	l.logger.Info("Stream is up to date, skipping", slog.String("stream", stream))
}

type metricsReporter struct {
	client mtr.Client
	tags   map[string]string
}

// NewMetricsReporter emits row counts and stream durations to statsd.
func NewMetricsReporter(client mtr.Client, tags map[string]string) Reporter {
	return metricsReporter{client: client, tags: tags}
}

func (m metricsReporter) streamTags(stream string) map[string]string {
	tags := map[string]string{"stream": stream}
	for key, value := range m.tags {
		tags[key] = value
	}
	return tags
}

func (m metricsReporter) StreamStarted(stream string, expected int64) {
	m.client.Gauge("stream.expected_rows", float64(expected), m.streamTags(stream))
}

func (m metricsReporter) StreamProgress(stream string, synced, _ int64) {
	m.client.Gauge("stream.synced_rows", float64(synced), m.streamTags(stream))
}

func (m metricsReporter) StreamCompleted(stream string, synced int64, elapsed time.Duration) {
	tags := m.streamTags(stream)
	m.client.Count("stream.rows", synced, tags)
	m.client.Timing("stream.duration", elapsed, tags)
	m.client.Incr("stream.completed", tags)
}

func (m metricsReporter) StreamSkipped(stream string) {
	m.client.Incr("stream.skipped", m.streamTags(stream))
}

type multi []Reporter

// Multi fans every event out to each of the reporters, in order.
func Multi(reporters ...Reporter) Reporter {
	return multi(reporters)
}

func (m multi) StreamStarted(stream string, expected int64) {
	for _, reporter := range m {
		reporter.StreamStarted(stream, expected)
	}
}

func (m multi) StreamProgress(stream string, synced, expected int64) {
	for _, reporter := range m {
		reporter.StreamProgress(stream, synced, expected)
	}
}

func (m multi) StreamCompleted(stream string, synced int64, elapsed time.Duration) {
	for _, reporter := range m {
		reporter.StreamCompleted(stream, synced, elapsed)
	}
}

func (m multi) StreamSkipped(stream string) {
	for _, reporter := range m {
		reporter.StreamSkipped(stream)
	}
}

package logger

import (
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/lmittmann/tint"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"

	"github.com/artie-labs/minisync/config"
)

var handlersToTerminate []func()

// NewLogger returns a colorized stderr logger, fanned out to Sentry for errors when a DSN is configured.
func NewLogger(settings *config.Settings) (*slog.Logger, func()) {
	level := slog.LevelInfo
	if settings != nil && settings.LogLevel != "" {
		if err := level.UnmarshalText([]byte(settings.LogLevel)); err != nil {
			level = slog.LevelInfo
		}
	}

	var handler slog.Handler = tint.NewHandler(os.Stderr, &tint.Options{Level: level, TimeFormat: time.DateTime})
	if dsn := sentryDSN(settings); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			slog.New(handler).Warn("Failed to enable Sentry output", slog.Any("err", err))
		} else {
			handler = slogmulti.Fanout(
				handler,
				slogsentry.Option{Level: slog.LevelError}.NewSentryHandler(),
			)

			slog.New(handler).Info("Sentry logger enabled")
			handlersToTerminate = append(handlersToTerminate, func() {
				sentry.Flush(2 * time.Second)
			})
		}
	}

	return slog.New(handler), runHandlers
}

func sentryDSN(settings *config.Settings) string {
	if settings == nil || settings.Reporting == nil || settings.Reporting.Sentry == nil {
		return ""
	}
	return settings.Reporting.Sentry.DSN
}

func runHandlers() {
	for _, handlerToTerminate := range handlersToTerminate {
		handlerToTerminate()
	}
}

func Fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	runHandlers()
	os.Exit(1)
}

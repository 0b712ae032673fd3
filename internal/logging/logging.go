// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package logging contains the logging functionality for the Zoom admin service.
package logging

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"

	slogotel "github.com/remychantenay/slog-otel"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ctxKey string

// Public constants
const (
	ErrKey = "error"
)

// Private constants
const (
	slogFields      ctxKey = "slog_fields"
	logLevelDefault        = slog.LevelDebug

	// Log levels
	debug = "debug"
	warn  = "warn"
	err   = "error"
	info  = "info"

	// Rotation defaults for LOG_FILE
	fileMaxSizeMBDefault  = 50
	fileMaxBackupsDefault = 7
	fileMaxAgeDaysDefault = 30

	priorityCritical = "critical"
)

type contextHandler struct {
	slog.Handler
}

// Handle adds contextual attributes to the Record before calling the underlying handler
func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(slogFields).([]slog.Attr); ok {
		for _, v := range attrs {
			r.AddAttrs(v)
		}
	}

	return h.Handler.Handle(ctx, r)
}

// AppendCtx adds an slog attribute to the provided context so that it will be
// included in any Record created with such context
func AppendCtx(parent context.Context, attr slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}

	if v, ok := parent.Value(slogFields).([]slog.Attr); ok {
		// copy so sibling contexts never share a backing array
		next := make([]slog.Attr, 0, len(v)+1)
		next = append(next, v...)
		next = append(next, attr)
		return context.WithValue(parent, slogFields, next)
	}

	return context.WithValue(parent, slogFields, []slog.Attr{attr})
}

// InitStructureLogConfig sets the structured log behavior. Records go to stdout
// and, when LOG_FILE is set, to a size-rotated file as well.
func InitStructureLogConfig() slog.Handler {
	logOptions := &slog.HandlerOptions{}
	var h slog.Handler

	// Configure log level
	logLevel := os.Getenv("LOG_LEVEL")
	switch logLevel {
	case debug:
		logOptions.Level = slog.LevelDebug
	case warn:
		logOptions.Level = slog.LevelWarn
	case err:
		logOptions.Level = slog.LevelError
	case info:
		logOptions.Level = slog.LevelInfo
	default:
		logOptions.Level = logLevelDefault
	}

	// Configure source information
	addSource := os.Getenv("LOG_ADD_SOURCE")
	logOptions.AddSource = addSource == "true" || addSource == "t" || addSource == "1"

	var out io.Writer = os.Stdout
	logFile := os.Getenv("LOG_FILE")
	if logFile != "" {
		out = io.MultiWriter(os.Stdout, NewFileWriter(logFile))
	}

	h = slog.NewJSONHandler(out, logOptions)
	log.SetFlags(log.Llongfile)
	logger := contextHandler{slogotel.OtelHandler{Next: h}}
	slog.SetDefault(slog.New(logger))

	slog.Info("log config",
		"logLevel", logOptions.Level,
		"addSource", logOptions.AddSource,
		"logFile", logFile,
	)

	return h
}

// NewFileWriter returns a rotating writer for path. Rotation limits can be
// tuned with LOG_FILE_MAX_SIZE_MB, LOG_FILE_MAX_BACKUPS and LOG_FILE_MAX_AGE_DAYS.
func NewFileWriter(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    envInt("LOG_FILE_MAX_SIZE_MB", fileMaxSizeMBDefault),
		MaxBackups: envInt("LOG_FILE_MAX_BACKUPS", fileMaxBackupsDefault),
		MaxAge:     envInt("LOG_FILE_MAX_AGE_DAYS", fileMaxAgeDaysDefault),
		LocalTime:  true,
		Compress:   true,
	}
}

func envInt(key string, def int) int {
	v, parseErr := strconv.Atoi(os.Getenv(key))
	if parseErr != nil || v <= 0 {
		return def
	}
	return v
}

// Priority creates a slog.Attr for error priority classification
func Priority(level string) slog.Attr {
	return slog.String("priority", level)
}

// PriorityCritical marks errors that need an operator, such as a missing or
// unrefreshable Zoom token.
func PriorityCritical() slog.Attr {
	return Priority(priorityCritical)
}

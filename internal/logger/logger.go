// Package logger builds the process-wide slog logger and adapts it for gorm.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ParseLevel maps LOG_LEVEL values to slog levels; unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// Gorm routes gorm's SQL logging through slog. Statements are traced at
// debug; slow statements at warn.
type Gorm struct {
	l             *slog.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func NewGorm(l *slog.Logger, level string) *Gorm {
	gl := gormlogger.Warn
	switch ParseLevel(level) {
	case slog.LevelDebug:
		gl = gormlogger.Info
	case slog.LevelError:
		gl = gormlogger.Error
	}
	return &Gorm{l: l.With("component", "gorm"), level: gl, slowThreshold: time.Second}
}

func (g *Gorm) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *g
	cp.level = level
	return &cp
}

func (g *Gorm) Info(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Info {
		g.l.InfoContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (g *Gorm) Warn(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Warn {
		g.l.WarnContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (g *Gorm) Error(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Error {
		g.l.ErrorContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (g *Gorm) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= gormlogger.Error:
		sql, rows := fc()
		g.l.ErrorContext(ctx, "query failed", "sql", sql, "rows", rows, "elapsed", elapsed, "err", err)
	case elapsed > g.slowThreshold && g.level >= gormlogger.Warn:
		sql, rows := fc()
		g.l.WarnContext(ctx, "slow query", "sql", sql, "rows", rows, "elapsed", elapsed)
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		g.l.DebugContext(ctx, "query", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}

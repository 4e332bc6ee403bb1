// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Tracepipe (https://www.tracepipe.dev/).
// Copyright 2023 Tracepipe, Inc.

// Package log provides the logger used internally by the instrumentation.
// The default logger writes to standard error and stays quiet below the
// warning level unless TRACE_DEBUG is set.
package log

import (
	"log/slog"
	"os"
	"strconv"
	"sync/atomic"
)

// Logger is the leveled logging interface used by the instrumentation. It is
// satisfied by *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

var active atomic.Value // Logger

func init() {
	level := slog.LevelWarn
	if v, _ := strconv.ParseBool(os.Getenv("TRACE_DEBUG")); v {
		level = slog.LevelDebug
	}
	UseLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// UseLogger replaces the logger used by the instrumentation.
func UseLogger(l Logger) {
	if l == nil {
		return
	}
	active.Store(&l)
}

func logger() Logger { return *active.Load().(*Logger) }

// Debug logs a message at the debug level.
func Debug(msg string, args ...any) { logger().Debug(msg, args...) }

// Info logs a message at the info level.
func Info(msg string, args ...any) { logger().Info(msg, args...) }

// Warn logs a message at the warning level.
func Warn(msg string, args ...any) { logger().Warn(msg, args...) }

// Error logs a message at the error level.
func Error(msg string, args ...any) { logger().Error(msg, args...) }

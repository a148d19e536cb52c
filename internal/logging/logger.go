// Package logging builds the slog logger shared by the server and CLI.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Params struct {
	Level string
	// File, when set, receives a copy of every record and is rotated by size.
	File string
	// Stdout is disabled by the terminal player, which owns the screen.
	Stdout bool
}

// New returns a text logger and a closer for the rotating file, if any.
func New(p Params) (*slog.Logger, io.Closer) {
	var (
		writers []io.Writer
		closer  io.Closer = nopCloser{}
	)
	if p.Stdout {
		writers = append(writers, os.Stdout)
	}
	if p.File != "" {
		lj := &lumberjack.Logger{
			Filename:   p.File,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			Compress:   true,
		}
		writers = append(writers, lj)
		closer = lj
	}

	var w io.Writer
	switch len(writers) {
	case 0:
		w = io.Discard
	case 1:
		w = writers[0]
	default:
		w = io.MultiWriter(writers...)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(p.Level)})), closer
}

// ParseLevel maps a config level name to a slog level. Unknown names are info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

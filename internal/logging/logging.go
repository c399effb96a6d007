// Package logging builds the structured logger shared by the binaries and defines the attribute
// keys used in log records.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Attribute keys.
const (
	KeyComponent = "component"
	KeyError     = "error"
	KeyDriver    = "driver"
	KeyPath      = "path"
	KeyLine      = "line"
	KeyCount     = "count"
	KeyName      = "name"
	KeyCommand   = "command"
	KeyMethod    = "method"
	KeyRoute     = "route"
	KeyStatus    = "status_code"
	KeyRequestID = "request_id"
	KeyRemote    = "remote_addr"
	KeyDuration  = "duration_ms"
	KeyPort      = "port"
	KeyLanguage  = "lang"
)

// Components.
const (
	CompMain    = "main"
	CompStorage = "storage"
	CompCommand = "command"
	CompService = "service"
)

// New creates a logger writing to w. level is one of debug, info, warn or error and defaults to
// info; format is text or json and defaults to text. It does not set the global logger.
func New(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Package logging builds the structured logger shared by all components.
package logging

import (
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// New creates a logger writing to w. The format is "json" or "logfmt" (default). Messages below
// the given level ("debug", "info", "warn", "error"; default "info") are dropped.
func New(w io.Writer, format, lvl string) log.Logger {
	w = log.NewSyncWriter(w)
	var logger log.Logger
	if strings.EqualFold(format, "json") {
		logger = log.NewJSONLogger(w)
	} else {
		logger = log.NewLogfmtLogger(w)
	}
	logger = level.NewFilter(logger, allow(lvl))
	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
}

func allow(lvl string) level.Option {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return level.AllowDebug()
	case "warn", "warning":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}

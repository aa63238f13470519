// Package logging is a thin leveled wrapper over the standard logger so the
// LOG_LEVEL setting can silence chatty paths without changing call sites.
package logging

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"
)

type Level int32

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

var level atomic.Int32

func init() {
	level.Store(int32(LevelInfo))
}

// ParseLevel maps LOG_LEVEL values onto a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LevelError
	case "WARN", "WARNING":
		return LevelWarn
	case "DEBUG":
		return LevelDebug
	default:
		return LevelInfo
	}
}

func SetLevel(l Level) {
	level.Store(int32(l))
}

func Enabled(l Level) bool {
	return Level(level.Load()) >= l
}

func output(l Level, tag, format string, args ...interface{}) {
	if !Enabled(l) {
		return
	}
	// depth 3: output -> Errorf/Warnf/... -> caller
	_ = log.Output(3, "["+tag+"] "+fmt.Sprintf(format, args...))
}

func Errorf(format string, args ...interface{}) { output(LevelError, "ERROR", format, args...) }
func Warnf(format string, args ...interface{})  { output(LevelWarn, "WARN", format, args...) }
func Infof(format string, args ...interface{})  { output(LevelInfo, "INFO", format, args...) }
func Debugf(format string, args ...interface{}) { output(LevelDebug, "DEBUG", format, args...) }

package main

import (
	"fmt"
	"io"
	"log"
	"strings"
)

// --------------------------------------------------------------------------
// Leveled logger
// --------------------------------------------------------------------------

type logLevel int

const (
	levelError logLevel = iota
	levelWarn
	levelInfo
	levelDebug
)

// logger writes "LEVEL | component | message" lines.
type logger struct {
	name   string
	level  logLevel
	logger *log.Logger
}

func newLogger(w io.Writer, name string, level logLevel) *logger {
	return &logger{
		name:   name,
		level:  level,
		logger: log.New(w, "", log.Ldate|log.Ltime),
	}
}

func (l *logger) Debugf(format string, args ...any) {
	if l.level >= levelDebug {
		l.log("DEBUG", format, args...)
	}
}

func (l *logger) Infof(format string, args ...any) {
	if l.level >= levelInfo {
		l.log("INFO", format, args...)
	}
}

func (l *logger) Warningf(format string, args ...any) {
	if l.level >= levelWarn {
		l.log("WARN", format, args...)
	}
}

func (l *logger) Errorf(format string, args ...any) {
	l.log("ERROR", format, args...)
}

func (l *logger) log(levelStr string, format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("%-5s | %-10s | %s", levelStr, l.name, message)
}

// parseLogLevel converts a string level to logLevel
func parseLogLevel(level string) (logLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return levelDebug, nil
	case "info":
		return levelInfo, nil
	case "warning", "warn":
		return levelWarn, nil
	case "error":
		return levelError, nil
	default:
		return levelInfo, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// Logger is the console logging surface used across rqport.
type Logger interface {
	Info(format string, args ...any)
	Debug(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	SetOutput(out io.Writer)
	SetVerbose(enabled bool)
	SetQuiet(enabled bool)
	IsVerbose() bool
	IsQuiet() bool
}

type consoleLogger struct {
	out     io.Writer
	errOut  io.Writer
	verbose bool
	quiet   bool
	mu      sync.Mutex
}

var (
	instance Logger
	once     sync.Once
	isTTY    bool
)

// GetLogger returns the process-wide logger instance.
func GetLogger() Logger {
	once.Do(func() {
		instance = &consoleLogger{
			out:    os.Stdout,
			errOut: os.Stderr,
		}
		// Colors only when stdout is a terminal
		isTTY = term.IsTerminal(int(os.Stdout.Fd()))
	})
	return instance
}

func SetVerbose(verbose bool) { GetLogger().SetVerbose(verbose) }
func IsVerbose() bool         { return GetLogger().IsVerbose() }
func SetQuiet(quiet bool)     { GetLogger().SetQuiet(quiet) }
func IsQuiet() bool           { return GetLogger().IsQuiet() }

// Package-level helpers so call sites read logger.Debug(...).
func Info(format string, args ...any)    { GetLogger().Info(format, args...) }
func Debug(format string, args ...any)   { GetLogger().Debug(format, args...) }
func Success(format string, args ...any) { GetLogger().Success(format, args...) }
func Warn(format string, args ...any)    { GetLogger().Warn(format, args...) }
func Error(format string, args ...any)   { GetLogger().Error(format, args...) }

const (
	blueColor   = "\033[34m"
	greenColor  = "\033[32m"
	yellowColor = "\033[33m"
	redColor    = "\033[31m"
	grayColor   = "\033[90m"
	resetColor  = "\033[0m"
)

func (l *consoleLogger) SetOutput(out io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = out
}

func (l *consoleLogger) SetVerbose(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = enabled
}

func (l *consoleLogger) IsVerbose() bool { return l.verbose }

func (l *consoleLogger) SetQuiet(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.quiet = enabled
}

func (l *consoleLogger) IsQuiet() bool { return l.quiet }

func (l *consoleLogger) write(out io.Writer, prefix, color, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	if isTTY {
		fmt.Fprintf(out, "%s%s %s%s\n", color, prefix, msg, resetColor)
	} else {
		fmt.Fprintf(out, "%s %s\n", prefix, msg)
	}
}

func (l *consoleLogger) Info(format string, args ...any) {
	if l.quiet {
		return
	}
	l.write(l.out, "INFO", blueColor, format, args...)
}

func (l *consoleLogger) Debug(format string, args ...any) {
	if !l.verbose {
		return
	}
	stamp := time.Now().Format("2006-01-02 15:04:05.000")
	l.write(l.out, fmt.Sprintf("[%s] DEBUG", stamp), grayColor, format, args...)
}

func (l *consoleLogger) Success(format string, args ...any) {
	if l.quiet {
		return
	}
	icon := "✓"
	if !isTTY {
		icon = "OK"
	}
	l.write(l.out, icon, greenColor, format, args...)
}

func (l *consoleLogger) Warn(format string, args ...any) {
	if l.quiet {
		return
	}
	icon := "⚠"
	if !isTTY {
		icon = "WARN"
	}
	l.write(l.out, icon, yellowColor, format, args...)
}

func (l *consoleLogger) Error(format string, args ...any) {
	icon := "✗"
	if !isTTY {
		icon = "ERROR"
	}
	l.write(l.errOut, icon, redColor, format, args...)
}

// Package log prints scriic's diagnostic chatter. Every message is formatted
// and newline-terminated; debug messages are filtered by topic and the rest by
// a verbosity level. Output defaults to stderr so that stdout carries only the
// generated instructions.
package log

import (
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
)

type Topic uint

const (
	PARSE Topic = 1 << iota
	RUN
	RESOLVE
	DEPS
)

type topicName struct {
	val  Topic
	name string
}

var topicNames = []topicName{
	{PARSE, "parse"},
	{RUN, "run"},
	{RESOLVE, "resolve"},
	{DEPS, "deps"},
}

func TopicNames() []string {
	names := make([]string, len(topicNames))
	for i, tn := range topicNames {
		names[i] = tn.name
	}
	return names
}

// Logger filters messages by debug topic and verbosity: 0 is quiet, 1 is
// normal, 2 is verbose and 3 enables every debug topic.
type Logger struct {
	stdlog    *stdlog.Logger
	debug     Topic
	verbosity uint
}

var defaultLogger = New(os.Stderr)

func New(output io.Writer) *Logger {
	return &Logger{
		stdlog:    stdlog.New(output, "", 0),
		verbosity: 1,
	}
}

// Default returns the package-level logger.
func Default() *Logger {
	return defaultLogger
}

// SetDefault replaces the package-level logger and returns the previous one.
func SetDefault(l *Logger) *Logger {
	prev := defaultLogger
	defaultLogger = l
	return prev
}

// Debug prints a message when topic is enabled, e.g. with --debug=run,resolve.
func Debug(topic Topic, format string, args ...any) {
	defaultLogger.Debug(topic, format, args...)
}

// EnableDebugTopics turns on the named topics, rejecting unknown names.
func EnableDebugTopics(names []string) error {
	return defaultLogger.EnableDebugTopics(names)
}

func SetVerbosity(verbosity uint) {
	defaultLogger.verbosity = verbosity
}

// Verbose prints a message that only shows with -v.
func Verbose(format string, args ...any) {
	defaultLogger.Verbose(format, args...)
}

// Info prints a message that is suppressed by -q.
func Info(format string, args ...any) {
	defaultLogger.Info(format, args...)
}

func (l *Logger) EnableDebug(topic Topic) {
	l.debug |= topic
}

func (l *Logger) EnableDebugTopics(names []string) error {
	var bad []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		ok := false
		for _, tn := range topicNames {
			if tn.name == name {
				l.EnableDebug(tn.val)
				ok = true
				break
			}
		}
		if !ok {
			bad = append(bad, name)
		}
	}
	if len(bad) > 0 {
		return errors.New("invalid debug topic: " + strings.Join(bad, ", "))
	}
	return nil
}

func (l *Logger) SetVerbosity(verbosity uint) {
	l.verbosity = verbosity
}

func (l *Logger) Debug(topic Topic, format string, args ...any) bool {
	if !l.debugEnabled(topic) {
		return false
	}
	l.stdlog.Output(2, fmt.Sprintf(format, args...))
	return true
}

func (l *Logger) debugEnabled(topic Topic) bool {
	return l.verbosity >= 3 || l.debug&topic > 0
}

func (l *Logger) Verbose(format string, args ...any) {
	if l.verbosity >= 2 {
		l.stdlog.Output(2, fmt.Sprintf(format, args...))
	}
}

func (l *Logger) Info(format string, args ...any) {
	if l.verbosity >= 1 {
		l.stdlog.Output(2, fmt.Sprintf(format, args...))
	}
}

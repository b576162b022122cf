package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Level represents logging severity
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

func (l Level) String() string { return levelNames[l] }

var levelColors = map[Level]*color.Color{
	DEBUG: color.New(color.FgWhite),
	INFO:  color.New(color.FgBlue, color.Bold),
	WARN:  color.New(color.FgYellow, color.Bold),
	ERROR: color.New(color.FgRed, color.Bold),
}

// tagColors colors endpoint lines by where they were seen.
var tagColors = map[string]*color.Color{
	"XHR":         color.New(color.FgMagenta, color.Bold),
	"Fetch":       color.New(color.FgCyan, color.Bold),
	"Static JS":   color.New(color.FgYellow),
	"Static HTML": color.New(color.FgGreen),
	"Proxy":       color.New(color.FgBlue),
}

// Logger is a leveled console logger. It is safe for concurrent use.
type Logger struct {
	level  Level
	out    io.Writer
	mu     *sync.Mutex
	module string
}

// New creates a Logger writing to out. A nil out means stderr.
func New(out io.Writer, level Level) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{level: level, out: out, mu: &sync.Mutex{}}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, ERROR+1)
}

// WithModule creates a child logger with a module tag. The child shares the
// parent's writer and lock.
func (l *Logger) WithModule(module string) *Logger {
	return &Logger{level: l.level, out: l.out, mu: l.mu, module: module}
}

// Level returns the minimum level that is written.
func (l *Logger) Level() Level { return l.level }

func (l *Logger) Debug(format string, args ...interface{}) { l.log(DEBUG, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.log(INFO, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.log(WARN, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.log(ERROR, format, args...) }

// Success logs at INFO level with a green marker.
func (l *Logger) Success(format string, args ...interface{}) {
	if l.level > INFO {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	defer l.mu.Unlock()
	color.New(color.FgGreen, color.Bold).Fprint(l.out, "[+] ")
	fmt.Fprintln(l.out, msg)
}

// Endpoint prints an observation line such as "[XHR] -> /api/users".
func (l *Logger) Endpoint(tag, value string) {
	if l.level > INFO {
		return
	}
	c, ok := tagColors[tag]
	if !ok {
		c = color.New(color.FgWhite)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	c.Fprintf(l.out, "[%s]", tag)
	fmt.Fprintf(l.out, " -> %s\n", value)
}

// Plain writes msg without a prefix at INFO level.
func (l *Logger) Plain(format string, args ...interface{}) {
	if l.level > INFO {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, format+"\n", args...)
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)

	prefix := fmt.Sprintf("[%s]", level)
	if l.module != "" {
		prefix = fmt.Sprintf("[%s][%s]", level, l.module)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	levelColors[level].Fprintf(l.out, "%s ", prefix)
	fmt.Fprintln(l.out, msg)
}

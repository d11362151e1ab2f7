// Package logging provides structured, component-scoped logging.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Format selects the line encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// levelPriority maps levels to numeric priority for filtering.
var levelPriority = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel converts a level name (any case) to a Level.
func ParseLevel(s string) (Level, error) {
	level := Level(strings.ToUpper(strings.TrimSpace(s)))
	if level == "WARNING" {
		level = LevelWarn
	}
	if _, ok := levelPriority[level]; !ok {
		return "", fmt.Errorf("unknown log level %q (valid: debug, info, warn, error)", s)
	}
	return level, nil
}

// Entry is a single JSON log line.
type Entry struct {
	Time      string                 `json:"time"`
	Level     Level                  `json:"level"`
	Component string                 `json:"component,omitempty"`
	TraceID   string                 `json:"trace_id,omitempty"`
	Message   string                 `json:"msg"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// sink is shared by a logger and every logger derived from it.
type sink struct {
	mu       sync.Mutex
	output   io.Writer
	minLevel Level
	format   Format
}

// Logger writes leveled log lines for one component.
type Logger struct {
	sink      *sink
	component string
	traceID   string
}

// New creates a Logger writing text lines at INFO to stderr.
func New() *Logger {
	return &Logger{
		sink: &sink{
			output:   os.Stderr,
			minLevel: LevelInfo,
			format:   FormatText,
		},
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	l := New()
	l.SetOutput(io.Discard)
	return l
}

// WithComponent returns a logger tagged with the given component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{sink: l.sink, component: component, traceID: l.traceID}
}

// WithTraceID returns a logger tagged with the given trace ID.
func (l *Logger) WithTraceID(traceID string) *Logger {
	return &Logger{sink: l.sink, component: l.component, traceID: traceID}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.minLevel = level
}

// SetOutput sets the output writer (default: stderr).
func (l *Logger) SetOutput(w io.Writer) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.output = w
}

// SetFormat sets the line format.
func (l *Logger) SetFormat(f Format) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.format = f
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields...)
}

// formatFields formats fields as key=value pairs in key order.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return " " + strings.Join(parts, " ")
}

// log writes one entry: LEVEL TIMESTAMP [component] message key=value ...
func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if levelPriority[level] < levelPriority[l.sink.minLevel] {
		return
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var f map[string]interface{}
	if len(fields) > 0 {
		f = fields[0]
	}

	if l.sink.format == FormatJSON {
		data, err := json.Marshal(Entry{
			Time:      timestamp,
			Level:     level,
			Component: l.component,
			TraceID:   l.traceID,
			Message:   msg,
			Fields:    f,
		})
		if err != nil {
			return
		}
		l.sink.output.Write(append(data, '\n'))
		return
	}

	fieldStr := formatFields(f)
	if l.traceID != "" {
		fieldStr = " trace_id=" + l.traceID + fieldStr
	}

	var line string
	if l.component != "" {
		line = fmt.Sprintf("%-5s %s [%s] %s%s\n", level, timestamp, l.component, msg, fieldStr)
	} else {
		line = fmt.Sprintf("%-5s %s %s%s\n", level, timestamp, msg, fieldStr)
	}
	l.sink.output.Write([]byte(line))
}

// RunStart logs the banner for a new run.
func (l *Logger) RunStart(goal, model, provider string) {
	l.Info("run_start", map[string]interface{}{
		"goal":     goal,
		"model":    model,
		"provider": provider,
	})
}

// RunComplete logs the end of a run.
func (l *Logger) RunComplete(kind string, outputs int, duration time.Duration) {
	l.Info("run_complete", map[string]interface{}{
		"kind":     kind,
		"outputs":  outputs,
		"duration": duration.String(),
	})
}

// PhaseStart logs the start of a run phase (plan, execute, summarize).
func (l *Logger) PhaseStart(phase string) {
	l.Info("phase_start", map[string]interface{}{
		"phase": phase,
	})
}

// PhaseComplete logs the completion of a run phase.
func (l *Logger) PhaseComplete(phase string, duration time.Duration, result string) {
	l.Info("phase_complete", map[string]interface{}{
		"phase":    phase,
		"duration": duration.String(),
		"result":   result,
	})
}

// Fallback logs a switch to the heuristic plan.
func (l *Logger) Fallback(reason string) {
	l.Info("plan_fallback", map[string]interface{}{
		"reason": reason,
	})
}

// ToolCall logs a tool invocation.
func (l *Logger) ToolCall(tool, fileName string) {
	l.Info("tool_call", map[string]interface{}{
		"tool":      tool,
		"file_name": fileName,
	})
}

// ToolResult logs a tool result.
func (l *Logger) ToolResult(tool string, duration time.Duration, err error) {
	fields := map[string]interface{}{
		"tool":     tool,
		"duration": duration.String(),
	}
	if err != nil {
		fields["error"] = err.Error()
		l.Error("tool_error", fields)
	} else {
		l.Debug("tool_result", fields)
	}
}

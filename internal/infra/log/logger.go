package log

// Logging for econchart
// app.log receives every entry at or above the configured level; the terminal only shows
// the ✓/✗ lines written by LogSuccess and LogError
// Until Init is called all loggers are no-ops, so library callers and tests never touch the disk

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.RWMutex
	Logger  = zap.NewNop()
	console = zap.NewNop()
)

const (
	logFileName = "app.log"
	// app.log is truncated once it grows past this size
	maxLogSize = 50 << 20
)

// Init builds the file and console loggers. dir is created if missing.
// level is one of debug, info, warn, error; empty means debug.
func Init(dir, level string) error {
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	fileLevel := zapcore.DebugLevel
	if level != "" {
		if err := fileLevel.UnmarshalText([]byte(level)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}

	file, err := openCappedFile(filepath.Join(dir, logFileName))
	if err != nil {
		return err
	}
	fileCore := zapcore.NewCore(lineEncoder{}, file, fileLevel)

	consoleConfig := zap.NewDevelopmentConfig()
	consoleConfig.Development = false
	consoleConfig.DisableStacktrace = true
	consoleConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	consoleConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	consoleConfig.EncoderConfig.EncodeCaller = nil
	consoleConfig.EncoderConfig.EncodeLevel = consoleLevel

	term, err := consoleConfig.Build()
	if err != nil {
		return fmt.Errorf("failed to build console logger: %w", err)
	}

	mu.Lock()
	Logger = zap.New(fileCore)
	console = term
	mu.Unlock()
	return nil
}

// Sync flushes both loggers. Errors from syncing stderr are ignored.
func Sync() {
	l, c := loggers()
	_ = l.Sync()
	_ = c.Sync()
}

// Named returns a child of the file logger tagged with a component name
func Named(name string) *zap.Logger {
	l, _ := loggers()
	return l.Named(name)
}

func loggers() (*zap.Logger, *zap.Logger) {
	mu.RLock()
	defer mu.RUnlock()
	return Logger, console
}

// consoleLevel colors the terminal level; INFO is shown as SUCCESS
func consoleLevel(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	const reset = "\033[0m"
	switch {
	case level >= zapcore.ErrorLevel:
		enc.AppendString("\033[31m" + level.CapitalString() + reset)
	case level == zapcore.WarnLevel:
		enc.AppendString("\033[33mWARN" + reset)
	default:
		enc.AppendString("\033[32mSUCCESS" + reset)
	}
}

func LogInfo(message string, fields ...zap.Field) {
	l, _ := loggers()
	l.Info(message, fields...)
}

func LogWarn(message string, fields ...zap.Field) {
	l, _ := loggers()
	l.Warn(message, fields...)
}

// LogSuccess writes to the file and prints a ✓ line on the terminal
func LogSuccess(message string, fields ...zap.Field) {
	l, c := loggers()
	l.Info(message, fields...)
	c.Info("✓ " + message + durationSuffix(fields))
}

// LogError writes to the file and prints a ✗ line on the terminal
func LogError(message string, fields ...zap.Field) {
	l, c := loggers()
	l.Error(message, fields...)
	c.Error("✗ " + message + durationSuffix(fields))
}

func durationSuffix(fields []zap.Field) string {
	if ms := extractDuration(fields); ms > 0 {
		return fmt.Sprintf(" (%dms)", ms)
	}
	return ""
}

// extractDuration returns the int64 duration_ms field, or 0
func extractDuration(fields []zap.Field) int64 {
	for _, field := range fields {
		if field.Key == "duration_ms" && field.Type == zapcore.Int64Type {
			return field.Integer
		}
	}
	return 0
}

// cappedFile appends to path and starts over once the file passes maxLogSize.
type cappedFile struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

func openCappedFile(path string) (*cappedFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &cappedFile{path: path, f: f}, nil
}

func (c *cappedFile) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if info, err := c.f.Stat(); err == nil && info.Size() > maxLogSize {
		c.f.Close()
		f, err := os.OpenFile(c.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return 0, fmt.Errorf("failed to truncate log file: %w", err)
		}
		c.f = f
	}
	return c.f.Write(p)
}

func (c *cappedFile) Sync() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.f.Sync()
}

var linePool = buffer.NewPool()

// lineEncoder writes "2006-01-02 15:04:05     LEVEL [name] message\t{json fields}".
// Fields added with With are kept in the embedded map and merged into every line.
type lineEncoder struct {
	*zapcore.MapObjectEncoder
}

func (e lineEncoder) Clone() zapcore.Encoder {
	clone := zapcore.NewMapObjectEncoder()
	if e.MapObjectEncoder != nil {
		for k, v := range e.Fields {
			clone.Fields[k] = v
		}
	}
	return lineEncoder{clone}
}

func (e lineEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	buf := linePool.Get()
	buf.AppendString(entry.Time.Format("2006-01-02 15:04:05"))
	buf.AppendString("     ")
	buf.AppendString(entry.Level.CapitalString())
	buf.AppendByte(' ')
	if entry.LoggerName != "" {
		buf.AppendString("[" + entry.LoggerName + "] ")
	}
	buf.AppendString(entry.Message)

	all := e.Clone().(lineEncoder).MapObjectEncoder
	for _, field := range fields {
		field.AddTo(all)
	}
	if len(all.Fields) > 0 {
		if data, err := json.Marshal(all.Fields); err == nil {
			buf.AppendByte('\t')
			buf.Write(data)
		}
	}

	buf.AppendByte('\n')
	return buf, nil
}

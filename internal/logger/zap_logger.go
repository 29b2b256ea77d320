package logger

import (
	"os"
	"sync"
	"time"

	"github.com/leandrodaf/midibridge/sdk/contracts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements contracts.Logger on top of Uber's zap.
type ZapLogger struct {
	mu     sync.RWMutex
	logger *zap.Logger
	level  zap.AtomicLevel
	exit   func(int)
}

// NewZapLogger creates a production zap logger writing JSON lines to stderr.
func NewZapLogger() contracts.Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	return &ZapLogger{
		logger: build(level, "stderr"),
		level:  level,
		exit:   os.Exit,
	}
}

// NewNopLogger returns a logger that discards everything. Intended for tests.
func NewNopLogger() contracts.Logger {
	return &ZapLogger{
		logger: zap.NewNop(),
		level:  zap.NewAtomicLevelAt(zapcore.InfoLevel),
		exit:   func(int) {},
	}
}

// Info logs a message at the INFO level
func (z *ZapLogger) Info(msg string, fields ...contracts.Field) {
	z.log(zapcore.InfoLevel, msg, fields...)
}

// Error logs a message at the ERROR level
func (z *ZapLogger) Error(msg string, fields ...contracts.Field) {
	z.log(zapcore.ErrorLevel, msg, fields...)
}

// Debug logs a message at the DEBUG level
func (z *ZapLogger) Debug(msg string, fields ...contracts.Field) {
	z.log(zapcore.DebugLevel, msg, fields...)
}

// Warn logs a message at the WARN level
func (z *ZapLogger) Warn(msg string, fields ...contracts.Field) {
	z.log(zapcore.WarnLevel, msg, fields...)
}

// Fatal logs a message at the FATAL level and terminates the application
func (z *ZapLogger) Fatal(msg string, fields ...contracts.Field) {
	z.log(zapcore.FatalLevel, msg, fields...)
	z.sync()
	z.exit(1)
}

// Field returns a new instance of Field
func (z *ZapLogger) Field() contracts.Field {
	return zapField{}
}

// SetLevel sets the logging level
func (z *ZapLogger) SetLevel(level contracts.LogLevel) {
	z.level.SetLevel(toZapLevel(level))
}

// SetDestination redirects output to the console (stderr) or to a file.
// A file destination without a path, or a path zap cannot open, keeps the current output.
func (z *ZapLogger) SetDestination(dest contracts.LogDestination, filePath ...string) {
	output := "stderr"
	if dest == contracts.FileLog {
		if len(filePath) == 0 || filePath[0] == "" {
			z.Warn("file log destination requested without a path; keeping current output")
			return
		}
		output = filePath[0]
	}

	next, err := zapConfig(z.level, output).Build(buildOptions()...)
	if err != nil {
		z.Error("failed to switch log destination",
			z.Field().String("destination", output),
			z.Field().Error("error", err))
		return
	}

	z.mu.Lock()
	prev := z.logger
	z.logger = next
	z.mu.Unlock()
	_ = prev.Sync()
}

// log is the internal function for recording messages
func (z *ZapLogger) log(level zapcore.Level, msg string, fields ...contracts.Field) {
	z.mu.RLock()
	l := z.logger
	z.mu.RUnlock()

	if ce := l.Check(level, msg); ce != nil {
		ce.Write(toZapFields(fields)...)
	}
}

func (z *ZapLogger) sync() {
	z.mu.RLock()
	defer z.mu.RUnlock()
	_ = z.logger.Sync()
}

func build(level zap.AtomicLevel, output string) *zap.Logger {
	l, err := zapConfig(level, output).Build(buildOptions()...)
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// newWithCore wraps an existing core; the exit func replaces os.Exit for Fatal.
func newWithCore(core zapcore.Core, level zap.AtomicLevel, exit func(int)) *ZapLogger {
	return &ZapLogger{
		logger: zap.New(core, buildOptions()...),
		level:  level,
		exit:   exit,
	}
}

// buildOptions is shared by every constructor. Fatal exits through ZapLogger.exit, never inside zap.
func buildOptions() []zap.Option {
	return []zap.Option{
		zap.AddCaller(),
		zap.AddCallerSkip(2),
		zap.WithFatalHook(deferredExit{}),
	}
}

// deferredExit leaves termination to ZapLogger.Fatal (zap does not accept WriteThenNoop for fatal entries).
type deferredExit struct{}

func (deferredExit) OnWrite(*zapcore.CheckedEntry, []zapcore.Field) {}

func zapConfig(level zap.AtomicLevel, output string) zap.Config {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.OutputPaths = []string{output}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg
}

func toZapLevel(level contracts.LogLevel) zapcore.Level {
	switch level {
	case contracts.DebugLevel:
		return zapcore.DebugLevel
	case contracts.WarnLevel:
		return zapcore.WarnLevel
	case contracts.ErrorLevel:
		return zapcore.ErrorLevel
	case contracts.FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func toZapFields(fields []contracts.Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		if f, ok := field.(zapField); ok && f.key != "" {
			out = append(out, f.zap())
		}
	}
	return out
}

// zapField implements contracts.Field
type zapField struct {
	key   string
	value interface{}
}

func (f zapField) zap() zap.Field {
	switch v := f.value.(type) {
	case error:
		return zap.NamedError(f.key, v)
	case time.Time:
		return zap.Time(f.key, v)
	default:
		return zap.Any(f.key, v)
	}
}

func (zapField) Bool(key string, val bool) contracts.Field {
	return zapField{key, val}
}

func (zapField) Int(key string, val int) contracts.Field {
	return zapField{key, val}
}

func (zapField) Float64(key string, val float64) contracts.Field {
	return zapField{key, val}
}

func (zapField) String(key string, val string) contracts.Field {
	return zapField{key, val}
}

func (zapField) Time(key string, val time.Time) contracts.Field {
	return zapField{key, val}
}

func (zapField) Int64(key string, val int64) contracts.Field {
	return zapField{key, val}
}

func (zapField) Error(key string, val error) contracts.Field {
	return zapField{key, val}
}

func (zapField) Uint64(key string, val uint64) contracts.Field {
	return zapField{key, val}
}

func (zapField) Uint8(key string, val uint8) contracts.Field {
	return zapField{key, val}
}

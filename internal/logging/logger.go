package logging

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return "unknown"
}

// ParseLevel accepts debug, info, warn or error in any case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("logging: unknown level %q", s)
}

type FieldType uint8

const (
	AnyType FieldType = iota
	StringType
	IntType
	Int64Type
	Float64Type
	BoolType
	DurationType
	ErrorType
)

type Field struct {
	Key   string
	Type  FieldType
	Value any
}

func String(key, val string) Field          { return Field{Key: key, Type: StringType, Value: val} }
func Int(key string, val int) Field         { return Field{Key: key, Type: IntType, Value: val} }
func Int64(key string, val int64) Field     { return Field{Key: key, Type: Int64Type, Value: val} }
func Float64(key string, val float64) Field { return Field{Key: key, Type: Float64Type, Value: val} }
func Bool(key string, val bool) Field       { return Field{Key: key, Type: BoolType, Value: val} }
func Any(key string, val any) Field         { return Field{Key: key, Type: AnyType, Value: val} }

func Duration(key string, val time.Duration) Field {
	return Field{Key: key, Type: DurationType, Value: val}
}

func Error(err error) Field {
	return Field{Key: "error", Type: ErrorType, Value: err}
}

// Logger is a leveled structured logger backed by zap. A nil *Logger
// discards everything.
type Logger struct {
	zap   *zap.Logger
	level zap.AtomicLevel
}

// New builds a console logger on stderr.
func New(level Level) *Logger {
	return build(level, "console")
}

// NewJSON builds a JSON logger on stderr.
func NewJSON(level Level) *Logger {
	return build(level, "json")
}

func build(level Level, encoding string) *Logger {
	atom := zap.NewAtomicLevelAt(toZapLevel(level))
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	if encoding == "console" {
		enc.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	cfg := zap.Config{
		Level:            atom,
		Encoding:         encoding,
		EncoderConfig:    enc,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	z, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return &Logger{zap: z, level: atom}
}

// NewWithCore wraps an existing zap core.
func NewWithCore(core zapcore.Core) *Logger {
	return &Logger{zap: zap.New(core), level: zap.NewAtomicLevelAt(zap.DebugLevel)}
}

// Nop returns a logger that writes nothing.
func Nop() *Logger {
	return &Logger{zap: zap.NewNop(), level: zap.NewAtomicLevelAt(zap.InfoLevel)}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.log(zap.DebugLevel, msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(zap.InfoLevel, msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(zap.WarnLevel, msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.log(zap.ErrorLevel, msg, fields) }

func (l *Logger) log(level zapcore.Level, msg string, fields []Field) {
	if l == nil || l.zap == nil {
		return
	}
	if ce := l.zap.Check(level, msg); ce != nil {
		ce.Write(toZapFields(fields)...)
	}
}

// With returns a child logger that adds fields to every entry.
func (l *Logger) With(fields ...Field) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{zap: l.zap.With(toZapFields(fields)...), level: l.level}
}

// Named adds a component name to the logger.
func (l *Logger) Named(name string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{zap: l.zap.Named(name), level: l.level}
}

func (l *Logger) SetLevel(level Level) {
	if l != nil {
		l.level.SetLevel(toZapLevel(level))
	}
}

func (l *Logger) Sync() error {
	if l == nil || l.zap == nil {
		return nil
	}
	return l.zap.Sync()
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zap.DebugLevel
	case LevelWarn:
		return zap.WarnLevel
	case LevelError:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func toZapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		switch f.Type {
		case StringType:
			out[i] = zap.String(f.Key, f.Value.(string))
		case IntType:
			out[i] = zap.Int(f.Key, f.Value.(int))
		case Int64Type:
			out[i] = zap.Int64(f.Key, f.Value.(int64))
		case Float64Type:
			out[i] = zap.Float64(f.Key, f.Value.(float64))
		case BoolType:
			out[i] = zap.Bool(f.Key, f.Value.(bool))
		case DurationType:
			out[i] = zap.Duration(f.Key, f.Value.(time.Duration))
		case ErrorType:
			if err, ok := f.Value.(error); ok {
				out[i] = zap.NamedError(f.Key, err)
			} else {
				out[i] = zap.Skip()
			}
		default:
			out[i] = zap.Any(f.Key, f.Value)
		}
	}
	return out
}

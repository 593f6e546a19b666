package logging

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// StructuredLogger implementa Logger sobre zap
type StructuredLogger struct {
	config *LoggerConfig
	level  zap.AtomicLevel
	zl     *zap.Logger
	closer io.Closer
}

// NewStructuredLogger crea un nuevo logger estructurado
func NewStructuredLogger(config *LoggerConfig) (*StructuredLogger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logger config: %w", err)
	}

	level := zap.NewAtomicLevelAt(toZapLevel(config.Level))
	sink, closer := buildSink(config)

	core := zapcore.NewCore(buildEncoder(config.Format), sink, level)

	opts := []zap.Option{
		zap.Fields(
			zap.String(FieldService, config.Service),
			zap.String(FieldVersion, config.Version),
			zap.String("environment", config.Environment),
		),
	}
	if config.AddSource {
		// log -> método público -> helper global
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(2))
	}

	return &StructuredLogger{
		config: config,
		level:  level,
		zl:     zap.New(core, opts...),
		closer: closer,
	}, nil
}

// buildSink decide entre archivo rotado y writer plano
func buildSink(config *LoggerConfig) (zapcore.WriteSyncer, io.Closer) {
	if config.FilePath != "" {
		lj := &lumberjack.Logger{
			Filename:   config.FilePath,
			MaxSize:    config.Rotation.MaxSizeMB,
			MaxBackups: config.Rotation.MaxBackups,
			MaxAge:     config.Rotation.MaxAgeDays,
			Compress:   config.Rotation.Compress,
		}
		return zapcore.AddSync(lj), lj
	}
	return zapcore.AddSync(config.Output), nil
}

func buildEncoder(format LogFormat) zapcore.Encoder {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = FieldTimestamp
	encCfg.LevelKey = FieldLevel
	encCfg.MessageKey = FieldMessage
	encCfg.CallerKey = "source"
	encCfg.EncodeTime = zapcore.RFC3339TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	if format == FormatText {
		return zapcore.NewConsoleEncoder(encCfg)
	}
	return zapcore.NewJSONEncoder(encCfg)
}

func toZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// log escribe una entrada con los campos del contexto y los del caller
func (sl *StructuredLogger) log(ctx context.Context, level LogLevel, message string, fields Fields) {
	zlevel := toZapLevel(level)
	if !sl.level.Enabled(zlevel) {
		return
	}

	if ce := sl.zl.Check(zlevel, message); ce != nil {
		ce.Write(sl.toZapFields(ctx, fields)...)
	}
}

// toZapFields convierte Fields a zap.Field en orden estable
func (sl *StructuredLogger) toZapFields(ctx context.Context, fields Fields) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+2)

	if ctx != nil {
		if requestID := GetRequestID(ctx); requestID != "" {
			out = append(out, zap.String(FieldRequestID, requestID))
		}
		if startTime := GetStartTime(ctx); !startTime.IsZero() {
			if _, ok := fields[FieldDuration]; !ok {
				out = append(out, zap.Float64(FieldDuration, float64(time.Since(startTime).Nanoseconds())/1e6))
			}
		}
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, zap.Any(k, fields[k]))
	}
	return out
}

// Debug logs a debug message
func (sl *StructuredLogger) Debug(ctx context.Context, message string, fields Fields) {
	sl.log(ctx, LevelDebug, message, fields)
}

// Info logs an info message
func (sl *StructuredLogger) Info(ctx context.Context, message string, fields Fields) {
	sl.log(ctx, LevelInfo, message, fields)
}

// Warn logs a warning message
func (sl *StructuredLogger) Warn(ctx context.Context, message string, fields Fields) {
	sl.log(ctx, LevelWarn, message, fields)
}

// Error logs an error message
func (sl *StructuredLogger) Error(ctx context.Context, message string, fields Fields) {
	sl.log(ctx, LevelError, message, fields)
}

// InfoWithError logs an info message with error details
func (sl *StructuredLogger) InfoWithError(ctx context.Context, message string, err error, fields Fields) {
	sl.log(ctx, LevelInfo, message, enrichWithError(fields, err))
}

// WarnWithError logs a warning message with error details
func (sl *StructuredLogger) WarnWithError(ctx context.Context, message string, err error, fields Fields) {
	sl.log(ctx, LevelWarn, message, enrichWithError(fields, err))
}

// ErrorWithError logs an error message with error details
func (sl *StructuredLogger) ErrorWithError(ctx context.Context, message string, err error, fields Fields) {
	sl.log(ctx, LevelError, message, enrichWithError(fields, err))
}

// enrichWithError copia los campos y agrega la información del error
func enrichWithError(fields Fields, err error) Fields {
	if err == nil {
		return fields
	}

	enriched := make(Fields, len(fields)+2)
	for k, v := range fields {
		enriched[k] = v
	}
	enriched[FieldError] = err.Error()
	enriched[FieldErrorType] = getErrorType(err)
	return enriched
}

// SetLevel establece el nivel de logging
func (sl *StructuredLogger) SetLevel(level LogLevel) {
	sl.config.Level = level
	sl.level.SetLevel(toZapLevel(level))
}

// GetLevel retorna el nivel actual de logging
func (sl *StructuredLogger) GetLevel() LogLevel {
	return sl.config.Level
}

// Sync vacía los buffers de zap y cierra el archivo rotado si existe
func (sl *StructuredLogger) Sync() error {
	_ = sl.zl.Sync()
	if sl.closer != nil {
		return sl.closer.Close()
	}
	return nil
}

// Zap expone el logger subyacente para librerías que lo esperan
func (sl *StructuredLogger) Zap() *zap.Logger {
	return sl.zl
}

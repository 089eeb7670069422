package logger

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	globalLogger = zap.NewNop()
	mu           sync.RWMutex
)

// LogLevel 定义日志级别
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

// Config 定义日志配置
type Config struct {
	Level      LogLevel
	OutputPath string // 为空时只输出到 stdout
	MaxSize    int    // MB
	MaxBackups int
	MaxAge     int // 天
	Compress   bool
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// InitLogger 初始化全局日志，可重复调用，后一次覆盖前一次
func InitLogger(config Config) error {
	level := config.Level.zapLevel()

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(os.Stdout), level),
	}

	if config.OutputPath != "" {
		if err := os.MkdirAll(filepath.Dir(config.OutputPath), 0755); err != nil {
			return err
		}
		// 使用 lumberjack 进行日志轮转
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   config.OutputPath,
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
			Compress:   config.Compress,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileWriter, level))
	}

	l := zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)

	Replace(l)
	return nil
}

// Replace 替换全局 logger，测试中可传入 zaptest/observer 的 logger
func Replace(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	globalLogger = l
	mu.Unlock()
}

// L 返回全局 logger
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// Sync 刷新缓冲
func Sync() {
	_ = L().Sync()
}

// With 返回带固定字段的子 logger
func With(fields ...zap.Field) *zap.Logger {
	return L().With(fields...)
}

// Debug 输出调试级别日志
func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }

// Info 输出信息级别日志
func Info(msg string, fields ...zap.Field) { L().Info(msg, fields...) }

// Warn 输出警告级别日志
func Warn(msg string, fields ...zap.Field) { L().Warn(msg, fields...) }

// Error 输出错误级别日志
func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }

// Fatal 输出致命错误级别日志并退出程序
func Fatal(msg string, fields ...zap.Field) { L().Fatal(msg, fields...) }

// Field 日志字段
type Field = zap.Field

func String(key string, val string) zap.Field { return zap.String(key, val) }

func Strings(key string, val []string) zap.Field { return zap.Strings(key, val) }

func Int(key string, val int) zap.Field { return zap.Int(key, val) }

func Int64(key string, val int64) zap.Field { return zap.Int64(key, val) }

func Bool(key string, val bool) zap.Field { return zap.Bool(key, val) }

// ErrorField 创建错误字段
func ErrorField(err error) zap.Field { return zap.Error(err) }

func Any(key string, val interface{}) zap.Field { return zap.Any(key, val) }

func Duration(key string, val time.Duration) zap.Field { return zap.Duration(key, val) }

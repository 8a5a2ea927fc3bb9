package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	Logger      = zap.NewNop()                        // 全局 Logger 实例，初始化前为空实现
	AtomicLevel = zap.NewAtomicLevelAt(zap.InfoLevel) // 全局共享日志级别
)

// Options 日志配置
type Options struct {
	Level      string
	Path       string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // 天
	Compress   bool
}

func (o *Options) applyDefaults() {
	if o.Level == "" {
		o.Level = "info"
	}
	if o.Path == "" {
		o.Path = "logs/shortlink.log"
	}
	if o.MaxSize <= 0 {
		o.MaxSize = 10
	}
	if o.MaxBackups <= 0 {
		o.MaxBackups = 5
	}
	if o.MaxAge <= 0 {
		o.MaxAge = 7
	}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		// 自定义时间格式
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.Format("2006/01/02 - 15:04:05"))
		},
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// InitLogger 初始化全局日志（控制台 + lumberjack 文件轮转）
func InitLogger(opts Options) {
	opts.applyDefaults()

	// 解析日志级别（安全处理无效值）
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		level = zap.InfoLevel
	}
	AtomicLevel = zap.NewAtomicLevelAt(level)

	encCfg := encoderConfig()
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(os.Stdout), AtomicLevel),
	}

	// 确保日志目录存在，失败时仅输出到控制台
	if err := os.MkdirAll(filepath.Dir(opts.Path), os.ModePerm); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to create log directory: %v\n", err)
	} else {
		lumberjackLogger := &lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    opts.MaxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAge,
			Compress:   opts.Compress,
			LocalTime:  true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encCfg),
			zapcore.AddSync(lumberjackLogger),
			AtomicLevel,
		))
	}

	Logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller())

	// 替换全局 logger
	zap.ReplaceGlobals(Logger)

	Logger.Info("InitLogger finished", zap.String("level", level.String()), zap.String("path", opts.Path))
}

// Sync 刷新缓冲区，进程退出前调用
func Sync() {
	_ = Logger.Sync()
}

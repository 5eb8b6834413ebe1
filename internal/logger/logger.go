// Package logger 提供 newsroom 全局使用的结构化日志。
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// L 是全局 SugaredLogger，业务代码通过包级函数使用。
	L *zap.SugaredLogger
	// Z 是底层 zap.Logger，供需要结构化字段的场景使用。
	Z *zap.Logger
)

func init() {
	// Init 之前的日志（如配置加载阶段）走默认 production logger。
	z, _ := zap.NewProduction()
	Z = z
	L = z.Sugar()
}

// Config 日志配置。
type Config struct {
	Level      string // debug, info, warn, error
	File       string // 为空则只输出到 stderr
	MaxSize    int    // MB
	MaxBackups int
	MaxAge     int // 天
}

// ParseLevel 将配置中的级别字符串转换为 zapcore.Level。
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("不支持的日志级别: %s", level)
}

// Init 根据配置重建全局 logger。
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		NameKey:        "N",
		CallerKey:      "C",
		MessageKey:     "M",
		StacktraceKey:  "S",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	output, err := openOutput(cfg)
	if err != nil {
		return err
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(output),
		level,
	)

	Z = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	L = Z.Sugar()
	return nil
}

// openOutput 返回日志输出目标；配置了文件时同时写 stderr 和滚动文件。
func openOutput(cfg Config) (io.Writer, error) {
	if cfg.File == "" {
		return os.Stderr, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return nil, fmt.Errorf("创建日志目录失败: %w", err)
	}

	rotating := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    orDefault(cfg.MaxSize, 64),
		MaxBackups: orDefault(cfg.MaxBackups, 3),
		MaxAge:     orDefault(cfg.MaxAge, 7),
		Compress:   true,
	}
	return io.MultiWriter(os.Stderr, rotating), nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Sync 刷新缓冲区，退出前调用。
func Sync() {
	if Z != nil {
		_ = Z.Sync()
	}
}

func Debug(msg string) { L.Debug(msg) }

func Debugf(template string, args ...interface{}) { L.Debugf(template, args...) }

func Info(msg string) { L.Info(msg) }

func Infof(template string, args ...interface{}) { L.Infof(template, args...) }

func Warn(msg string) { L.Warn(msg) }

func Warnf(template string, args ...interface{}) { L.Warnf(template, args...) }

func Error(msg string) { L.Error(msg) }

func Errorf(template string, args ...interface{}) { L.Errorf(template, args...) }

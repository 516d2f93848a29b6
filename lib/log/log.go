// Package log hands out named zap loggers that share one level and sink.
package log

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const EnvLevel = "VANA_LOG_LEVEL"

var (
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	out   = &sink{ws: zapcore.Lock(os.Stderr)}
	root  *zap.Logger
)

func init() {
	if l := os.Getenv(EnvLevel); l != "" {
		_ = SetLevel(l)
	}

	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), out, level)
	root = zap.New(core, zap.AddCaller())
}

// sink lets package level loggers follow a later SetFile.
type sink struct {
	sync.RWMutex
	ws zapcore.WriteSyncer
}

func (s *sink) Write(p []byte) (int, error) {
	s.RLock()
	defer s.RUnlock()
	return s.ws.Write(p)
}

func (s *sink) Sync() error {
	s.RLock()
	defer s.RUnlock()
	return s.ws.Sync()
}

// Logger returns a sugared logger tagged with name.
func Logger(name string) *zap.SugaredLogger {
	return root.Named(name).Sugar()
}

// SetLevel accepts debug, info, warn, error.
func SetLevel(l string) error {
	return level.UnmarshalText([]byte(l))
}

// SetFile tees every logger to a rotated file.
func SetFile(path string, maxSizeMB int) {
	if path == "" {
		return
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: 3,
		Compress:   true,
	}

	out.Lock()
	defer out.Unlock()
	out.ws = zapcore.NewMultiWriteSyncer(zapcore.Lock(os.Stderr), zapcore.AddSync(lj))
}

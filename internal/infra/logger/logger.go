package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls where logs go. Console receives human-readable progress
// (stderr when nil); Dir, when set, also receives a JSON log file.
type Config struct {
	Dir     string
	Debug   bool
	Console io.Writer
}

const fileName = "bianx.log"

var (
	mu      sync.RWMutex
	global  = zap.NewNop()
	logFile *os.File
	logPath string
)

func Setup(cfg Config) (func() error, error) {
	level := zapcore.InfoLevel
	if cfg.Debug {
		level = zapcore.DebugLevel
	}

	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}

	consoleEnc := zap.NewDevelopmentEncoderConfig()
	consoleEnc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	consoleEnc.EncodeLevel = zapcore.CapitalLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEnc), zapcore.AddSync(console), level),
	}

	var (
		f    *os.File
		path string
	)
	if cfg.Dir != "" {
		dir := filepath.Clean(cfg.Dir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			setNop()
			return nil, err
		}

		path = filepath.Join(dir, fileName)
		var err error
		f, err = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			setNop()
			return nil, err
		}

		fileEnc := zap.NewProductionEncoderConfig()
		fileEnc.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.UTC().Format(time.RFC3339Nano))
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEnc), zapcore.AddSync(f), level))
	}

	opts := []zap.Option{}
	if cfg.Debug {
		opts = append(opts, zap.AddCaller())
	}
	l := zap.New(zapcore.NewTee(cores...), opts...)

	mu.Lock()
	global = l
	logFile = f
	logPath = path
	mu.Unlock()

	l.Debug("logger.initialized", zap.String("path", path), zap.Bool("debug", cfg.Debug))

	cleanup := func() error {
		mu.Lock()
		defer mu.Unlock()

		_ = global.Sync()
		var cerr error
		if logFile != nil {
			cerr = logFile.Close()
		}
		logFile = nil
		logPath = ""
		global = zap.NewNop()
		return cerr
	}

	return cleanup, nil
}

func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Path is the JSON log file in use, or "" when logging to the console only.
func Path() string {
	mu.RLock()
	defer mu.RUnlock()
	return logPath
}

func setNop() {
	mu.Lock()
	defer mu.Unlock()
	global = zap.NewNop()
	logFile = nil
	logPath = ""
}

package logger

import (
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	CoreLogFileName = "core.log"
	GinLogFileName  = "gin.log"
)

const encodeTimeFormat = "2006-01-02 15:04:05.000"

// RotateConfig bounds the size of each log file on disk.
type RotateConfig struct {
	MaxSize    int `yaml:"maxSize" mapstructure:"maxSize"`
	MaxBackups int `yaml:"maxBackups" mapstructure:"maxBackups"`
	MaxAge     int `yaml:"maxAge" mapstructure:"maxAge"`
}

// DefaultRotateConfig keeps five 10 MB files.
var DefaultRotateConfig = RotateConfig{
	MaxSize:    10,
	MaxBackups: 5,
	MaxAge:     30,
}

// Init replaces the bootstrap loggers. With console set everything goes to
// stderr; otherwise core and gin entries go to rotated JSON files in dir.
func Init(verbose, console bool, dir string, rotate RotateConfig) error {
	if console {
		return createConsoleLogger(verbose)
	}

	levels = nil
	core, coreLevel := CreateLogger(filepath.Join(dir, CoreLogFileName), rotate, verbose)
	SetCoreLogger(core.Sugar())
	gin, ginLevel := CreateLogger(filepath.Join(dir, GinLogFileName), rotate, verbose)
	SetGinLogger(gin.Sugar())
	levels = append(levels, coreLevel, ginLevel)
	return nil
}

// CreateLogger builds a JSON logger writing to a lumberjack-rotated file.
func CreateLogger(filePath string, rotate RotateConfig, verbose bool) (*zap.Logger, zap.AtomicLevel) {
	rotateConfig := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    rotate.MaxSize,
		MaxAge:     rotate.MaxAge,
		MaxBackups: rotate.MaxBackups,
		LocalTime:  true,
	}
	syncer := zapcore.AddSync(rotateConfig)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(encodeTimeFormat)

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		level.SetLevel(zapcore.DebugLevel)
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), syncer, level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zap.WarnLevel), zap.AddCallerSkip(1)), level
}

func createConsoleLogger(verbose bool) error {
	levels = nil
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	log, err := config.Build(zap.AddCaller(), zap.AddStacktrace(zap.WarnLevel), zap.AddCallerSkip(1))
	if err != nil {
		return err
	}

	sugar := log.Sugar()
	SetCoreLogger(sugar)
	SetGinLogger(sugar)
	levels = append(levels, config.Level)
	return nil
}

package logx

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process logger. It starts as a no-op so packages can log
// before the CLI has parsed --verbose.
var Logger = zap.NewNop()

func InitLogger() {
	InitLoggerWithLevel(false)
}

func InitLoggerWithLevel(verbose bool) {
	var err error

	if verbose {
		// Development mode: detailed logs, stack traces, console output
		Logger, err = zap.NewDevelopment()
	} else {
		// Production mode: JSON logs on stderr, warnings and errors only
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		config.DisableStacktrace = true
		Logger, err = config.Build()
	}

	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	Logger = Logger.Named("bulksql")

	InitStyledLogger()
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Logger.Sync()
}

package logx

import (
	"github.com/pixperk/bulksql/internal/ui"
	"go.uber.org/zap"
)

// StyledLogger writes every entry to zap and mirrors it as a styled line on
// the terminal. Quiet loggers skip the terminal line.
type StyledLogger struct {
	logger *zap.Logger
	quiet  bool
}

func NewStyledLogger(logger *zap.Logger, quiet bool) *StyledLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StyledLogger{logger: logger, quiet: quiet}
}

func (s *StyledLogger) Info(msg string, fields ...zap.Field) {
	s.logger.Info(msg, fields...)
	if !s.quiet {
		ui.PrintInfo(msg)
	}
}

func (s *StyledLogger) Success(msg string, fields ...zap.Field) {
	s.logger.Info(msg, fields...)
	if !s.quiet {
		ui.PrintSuccess(msg)
	}
}

// Error is never silenced.
func (s *StyledLogger) Error(msg string, fields ...zap.Field) {
	s.logger.Error(msg, fields...)
	ui.PrintError(msg)
}

func (s *StyledLogger) Warn(msg string, fields ...zap.Field) {
	s.logger.Warn(msg, fields...)
	if !s.quiet {
		ui.PrintWarning(msg)
	}
}

// Fatal logs at error level, prints the message and exits with status 1.
func (s *StyledLogger) Fatal(msg string, fields ...zap.Field) {
	s.logger.Error(msg, fields...)
	_ = s.logger.Sync()
	ui.ExitWithError(msg)
}

// Debug goes to zap only.
func (s *StyledLogger) Debug(msg string, fields ...zap.Field) {
	s.logger.Debug(msg, fields...)
}

func (s *StyledLogger) Highlight(msg string, fields ...zap.Field) {
	s.logger.Info(msg, fields...)
	if !s.quiet {
		ui.PrintHighlight(msg)
	}
}

// With returns a new StyledLogger with the given fields added to it
func (s *StyledLogger) With(fields ...zap.Field) *StyledLogger {
	return &StyledLogger{
		logger: s.logger.With(fields...),
		quiet:  s.quiet,
	}
}

// Quiet reports whether terminal lines are suppressed.
func (s *StyledLogger) Quiet() bool {
	return s.quiet
}

// GetZapLogger returns the underlying zap.Logger
func (s *StyledLogger) GetZapLogger() *zap.Logger {
	return s.logger
}

// StyledLog is the process styled logger.
var StyledLog = NewStyledLogger(nil, false)

// InitStyledLogger rebuilds StyledLog on top of Logger.
func InitStyledLogger() {
	StyledLog = NewStyledLogger(Logger, StyledLog.quiet)
}

// SetQuiet toggles terminal output of StyledLog.
func SetQuiet(quiet bool) {
	StyledLog = NewStyledLogger(Logger, quiet)
}

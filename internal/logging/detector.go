package logging

import "log/slog"

// DetectorLogger adapts slog.Logger to the detector.Logger interface.
type DetectorLogger struct {
	logger *slog.Logger
}

// NewDetectorLogger creates a new DetectorLogger wrapping a slog.Logger.
func NewDetectorLogger(logger *slog.Logger) *DetectorLogger {
	return &DetectorLogger{logger: logger}
}

// Debug logs a debug message with optional key-value pairs.
func (l *DetectorLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

// Info logs an info message with optional key-value pairs.
func (l *DetectorLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info(msg, keysAndValues...)
}

// Error logs an error message with optional key-value pairs.
func (l *DetectorLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Error(msg, keysAndValues...)
}

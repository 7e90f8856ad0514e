package apiclient

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"
)

const loggerPrefix = "HTTP%s\t"

var secretRE = regexp.MustCompile(`(?i)((?:token|authorization)[:=]?\s*(?:bearer\s+)?|bearer\s+)[^\s|]+`)

// Logger adapts zap to resty's logger interface and masks credentials.
type Logger struct {
	logger *zap.SugaredLogger
}

// NewLogger wraps l; nil means a no-op logger.
func NewLogger(l *zap.SugaredLogger) *Logger {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	return &Logger{logger: l}
}

func (l *Logger) Debugf(format string, v ...any) {
	l.logger.Debug(l.format("", format, v...))
}

func (l *Logger) Warnf(format string, v ...any) {
	l.logger.Warn(l.format("-WARN", format, v...))
}

func (l *Logger) Errorf(format string, v ...any) {
	l.logger.Error(l.format("-ERROR", format, v...))
}

func (l *Logger) format(level, format string, v ...any) string {
	msg := fmt.Sprintf(loggerPrefix, level) + fmt.Sprintf(format, v...)
	return MaskSecrets(msg)
}

// MaskSecrets replaces values following token-like words with *****.
func MaskSecrets(s string) string {
	return secretRE.ReplaceAllString(s, "${1}*****")
}

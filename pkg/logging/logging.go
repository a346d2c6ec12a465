package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// MaxArticleLogLength is the maximum length of article text to log.
const MaxArticleLogLength = 120

// New builds the root logger for the given environment.
// "local" gets a human-readable console encoder at debug level;
// everything else gets production JSON at info level.
func New(env string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "local" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// SanitizeArticle truncates article text for logging.
// Full drafts can run to thousands of words and belong in the audit
// payload, not the log stream.
func SanitizeArticle(text string) string {
	return TruncateString(text, MaxArticleLogLength)
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

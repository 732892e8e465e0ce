package logger

import (
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skill-mapper/internal/matcher"
)

const (
	// FieldProvider is the structured log field key for the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"

	FieldInput      = "input"
	FieldSkill      = "skill"
	FieldCategory   = "category"
	FieldConfidence = "confidence"
	FieldTier       = "tier"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CommonFields returns standard zap fields that describe the AI provider and model.
// Empty values are ignored to keep log entries compact when information is missing.
func CommonFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithCommonFields attaches the common AI fields to the provided logger.
// If the logger is nil, a no-op logger is created to avoid panics.
func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	fields := CommonFields(provider, model)
	return WithFields(logger, fields...)
}

// MatchFields describes a matcher result. The input phrase is truncated so
// long AI answers do not flood the log.
func MatchFields(r matcher.Result) []zap.Field {
	fields := StringFields(
		StringField{Key: FieldInput, Value: TruncateForLog(r.Input, maxInputLogLength)},
		StringField{Key: FieldSkill, Value: r.Skill},
		StringField{Key: FieldCategory, Value: string(r.Category)},
	)
	return append(fields,
		zap.Float64(FieldConfidence, r.Confidence),
		zap.String(FieldTier, string(matcher.TierOf(r.Confidence))),
	)
}

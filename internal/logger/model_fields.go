package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldModelGeneration is the structured log field key for the fitted model generation tag.
	FieldModelGeneration = "model_generation"
	// FieldVocabVersion is the structured log field key for the vocabulary version tag.
	FieldVocabVersion = "vocab_version"
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

// ModelFields returns standard zap fields describing the model artifacts in use.
// Empty values are ignored to keep log entries compact when information is missing.
func ModelFields(generation, vocabVersion string) []zap.Field {
	return StringFields(
		StringField{Key: FieldModelGeneration, Value: generation},
		StringField{Key: FieldVocabVersion, Value: vocabVersion},
	)
}

// WithModelFields attaches the model artifact fields to the provided logger.
// If the logger is nil, a no-op logger is created to avoid panics.
func WithModelFields(logger *zap.Logger, generation, vocabVersion string) *zap.Logger {
	return WithFields(logger, ModelFields(generation, vocabVersion)...)
}

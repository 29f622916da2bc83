package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationResult carries the outcome of a schema check.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidateAgainstSchema validates a decoded JSON document against a schema
// expressed as a Go map. Used for AI model payloads before they are trusted.
func ValidateAgainstSchema(data interface{}, schemaMap map[string]interface{}) (*ValidationResult, error) {
	schemaLoader := gojsonschema.NewGoLoader(schemaMap)
	documentLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	if result.Valid() {
		return &ValidationResult{Valid: true}, nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return &ValidationResult{Valid: false, Errors: msgs}, nil
}

// IntentPayloadSchema describes the JSON shape the intent model must return.
func IntentPayloadSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"intent": map[string]interface{}{
				"type":      "string",
				"minLength": 1,
			},
			"sectors": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "string",
				},
			},
		},
		"required": []interface{}{"intent", "sectors"},
	}
}

// CorrelationPayloadSchema describes the JSON shape of correlation analyses.
func CorrelationPayloadSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"correlation": map[string]interface{}{
				"type": "string",
			},
			"description": map[string]interface{}{
				"type": "string",
			},
		},
		"required": []interface{}{"correlation"},
	}
}

package validation

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Embedded schemas keep the binary self-contained; there is no schema
// directory to deploy alongside it.
var schemaSources = map[string]string{
	"action": actionSchema,
	"auth":   authSchema,
}

const actionSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"title": "UserAction",
	"type": "object",
	"required": ["user_id", "item_id", "action_type"],
	"properties": {
		"user_id": {"type": "string", "minLength": 1, "maxLength": 128},
		"item_id": {"type": "integer", "minimum": 1},
		"action_type": {
			"type": "string",
			"enum": ["rate", "watchTime", "add_watchlist", "view", "click"]
		},
		"value": {"type": "number", "minimum": 0},
		"timestamp": {"type": "string", "format": "date-time"},
		"metadata": {
			"type": "object",
			"properties": {
				"genres": {"type": "array", "items": {"type": "string"}, "maxItems": 20},
				"directors": {"type": "array", "items": {"type": "string"}, "maxItems": 20},
				"actors": {"type": "array", "items": {"type": "string"}, "maxItems": 50},
				"runtime": {"type": "integer", "minimum": 0},
				"release_year": {"type": "integer", "minimum": 1880, "maximum": 2100}
			},
			"additionalProperties": false
		}
	},
	"additionalProperties": false
}`

const authSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"title": "AuthRequest",
	"type": "object",
	"required": ["api_key"],
	"properties": {
		"api_key": {"type": "string", "minLength": 1},
		"user_id": {"type": "string", "maxLength": 128}
	},
	"additionalProperties": false
}`

// SchemaValidator handles JSON schema validation for API requests
type SchemaValidator struct {
	schemas map[string]*gojsonschema.Schema
}

func NewSchemaValidator() (*SchemaValidator, error) {
	sv := &SchemaValidator{schemas: make(map[string]*gojsonschema.Schema)}

	for name, source := range schemaSources {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
		if err != nil {
			return nil, fmt.Errorf("failed to load schema %s: %w", name, err)
		}
		sv.schemas[name] = schema
	}
	return sv, nil
}

// ValidateAction validates an action ingest payload against its JSON schema.
func (sv *SchemaValidator) ValidateAction(data interface{}) *ValidationResult {
	return sv.validate("action", data)
}

// ValidateAuthRequest validates a token request payload.
func (sv *SchemaValidator) ValidateAuthRequest(data interface{}) *ValidationResult {
	return sv.validate("auth", data)
}

func (sv *SchemaValidator) validate(schemaName string, data interface{}) *ValidationResult {
	schema, exists := sv.schemas[schemaName]
	if !exists {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "schema",
				Message: fmt.Sprintf("Schema '%s' not found", schemaName),
				Code:    "SCHEMA_NOT_FOUND",
			}},
		}
	}

	var documentLoader gojsonschema.JSONLoader
	switch v := data.(type) {
	case string:
		documentLoader = gojsonschema.NewStringLoader(v)
	case []byte:
		documentLoader = gojsonschema.NewBytesLoader(v)
	default:
		jsonBytes, err := json.Marshal(data)
		if err != nil {
			return &ValidationResult{
				Valid: false,
				Errors: []ValidationError{{
					Field:   "data",
					Message: fmt.Sprintf("Failed to marshal data to JSON: %v", err),
					Code:    "JSON_MARSHAL_ERROR",
				}},
			}
		}
		documentLoader = gojsonschema.NewBytesLoader(jsonBytes)
	}

	result, err := schema.Validate(documentLoader)
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "validation",
				Message: fmt.Sprintf("Validation error: %v", err),
				Code:    "VALIDATION_ERROR",
			}},
		}
	}

	validationResult := &ValidationResult{
		Valid:  result.Valid(),
		Errors: make([]ValidationError, 0),
	}

	if !result.Valid() {
		for _, err := range result.Errors() {
			validationResult.Errors = append(validationResult.Errors, ValidationError{
				Field:   err.Field(),
				Message: err.Description(),
				Code:    "VALIDATION_ERROR",
				Value:   err.Value(),
				Context: err.Context().String(),
			})
		}
	}

	return validationResult
}

// ValidationResult represents the result of a validation operation
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Value   interface{} `json:"value,omitempty"`
	Context string      `json:"context,omitempty"`
}

func (ve ValidationError) Error() string {
	return fmt.Sprintf("validation error in field '%s': %s", ve.Field, ve.Message)
}

// ToAPIError converts validation errors to the API error envelope.
func (vr *ValidationResult) ToAPIError() map[string]interface{} {
	if vr.Valid {
		return nil
	}

	errorDetails := make(map[string]interface{})
	errorDetails["validationErrors"] = vr.Errors

	fieldErrors := make(map[string][]string)
	for _, err := range vr.Errors {
		if err.Field != "" {
			fieldErrors[err.Field] = append(fieldErrors[err.Field], err.Message)
		}
	}
	if len(fieldErrors) > 0 {
		errorDetails["fieldErrors"] = fieldErrors
	}

	return map[string]interface{}{
		"error": map[string]interface{}{
			"code":    "VALIDATION_ERROR",
			"message": "Request validation failed",
			"details": errorDetails,
		},
	}
}

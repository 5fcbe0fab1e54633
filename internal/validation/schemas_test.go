package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaValidator_ValidateAction(t *testing.T) {
	sv, err := NewSchemaValidator()
	require.NoError(t, err)

	tests := []struct {
		name  string
		body  string
		valid bool
	}{
		{
			name:  "valid rating",
			body:  `{"user_id": "user-1", "item_id": 42, "action_type": "rate", "value": 8}`,
			valid: true,
		},
		{
			name: "valid action with metadata",
			body: `{"user_id": "user-1", "item_id": 42, "action_type": "view",
				"metadata": {"genres": ["Drama"], "directors": ["Kurosawa"], "runtime": 162, "release_year": 1985}}`,
			valid: true,
		},
		{
			name:  "missing user_id",
			body:  `{"item_id": 42, "action_type": "view"}`,
			valid: false,
		},
		{
			name:  "unknown action type",
			body:  `{"user_id": "user-1", "item_id": 42, "action_type": "purchase"}`,
			valid: false,
		},
		{
			name:  "item_id below one",
			body:  `{"user_id": "user-1", "item_id": 0, "action_type": "view"}`,
			valid: false,
		},
		{
			name:  "negative value",
			body:  `{"user_id": "user-1", "item_id": 42, "action_type": "watchTime", "value": -5}`,
			valid: false,
		},
		{
			name:  "unexpected field",
			body:  `{"user_id": "user-1", "item_id": 42, "action_type": "view", "rating": 5}`,
			valid: false,
		},
		{
			name:  "unexpected metadata field",
			body:  `{"user_id": "user-1", "item_id": 42, "action_type": "view", "metadata": {"budget": 1}}`,
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sv.ValidateAction(tt.body)
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				assert.NotEmpty(t, result.Errors)
			}
		})
	}
}

func TestSchemaValidator_ValidateAuthRequest(t *testing.T) {
	sv, err := NewSchemaValidator()
	require.NoError(t, err)

	assert.True(t, sv.ValidateAuthRequest(`{"api_key": "demo-key"}`).Valid)
	assert.True(t, sv.ValidateAuthRequest(`{"api_key": "demo-key", "user_id": "user-1"}`).Valid)
	assert.False(t, sv.ValidateAuthRequest(`{"user_id": "user-1"}`).Valid)
	assert.False(t, sv.ValidateAuthRequest(`{"api_key": ""}`).Valid)
}

func TestValidationResult_ToAPIError(t *testing.T) {
	valid := &ValidationResult{Valid: true}
	assert.Nil(t, valid.ToAPIError())

	invalid := &ValidationResult{
		Valid: false,
		Errors: []ValidationError{
			{Field: "user_id", Message: "user_id is required", Code: "VALIDATION_ERROR"},
		},
	}

	apiErr := invalid.ToAPIError()
	require.NotNil(t, apiErr)

	errBody, ok := apiErr["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", errBody["code"])

	details, ok := errBody["details"].(map[string]interface{})
	require.True(t, ok)
	fieldErrors, ok := details["fieldErrors"].(map[string][]string)
	require.True(t, ok)
	assert.Contains(t, fieldErrors["user_id"], "user_id is required")
}

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const querySchema = `{
  "type": "object",
  "required": ["query"],
  "properties": {
    "query": {"type": "string", "minLength": 1},
    "limit": {"type": "integer"}
  }
}`

func TestSchema_ValidateJSON(t *testing.T) {
	schema, err := Compile(querySchema)
	require.NoError(t, err)

	tests := []struct {
		name      string
		doc       string
		valid     bool
		errorOn   string
		errorCode string
	}{
		{"valid", `{"query":"beef to Canada"}`, true, "", ""},
		{"missing required", `{}`, false, "query", "REQUIRED"},
		{"empty string", `{"query":""}`, false, "query", "STRING_GTE"},
		{"wrong type", `{"query":"x","limit":"ten"}`, false, "limit", "INVALID_TYPE"},
		{"not json", `{`, false, "(root)", "INVALID_DOCUMENT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := schema.ValidateJSON([]byte(tt.doc))
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				require.NotEmpty(t, result.Errors)
				assert.True(t, result.HasErrors(tt.errorOn), "errors: %v", result.GetErrorMessages())
				assert.Equal(t, tt.errorCode, result.Errors[0].Code)
				assert.NotEmpty(t, result.Error())
			}
		})
	}
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
}

func TestValidateURL(t *testing.T) {
	assert.True(t, ValidateURL("https://agents.example.com/api/v1/chat"))
	assert.True(t, ValidateURL("http://localhost:8081"))
	assert.False(t, ValidateURL("agents.example.com"))
	assert.False(t, ValidateURL(""))
}

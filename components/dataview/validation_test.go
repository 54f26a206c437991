package dataview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSchemaValidator(t *testing.T) {
	validator := NewJSONSchemaValidator()
	products := productsResource()

	require.NoError(t, validator.ValidatePatch(products, map[string]any{"status": "draft", "stock": 3}))
	assert.Error(t, validator.ValidatePatch(products, map[string]any{"status": "archived"}))
	assert.Error(t, validator.ValidatePatch(products, map[string]any{"price": -1}))
	assert.Error(t, validator.ValidatePatch(products, map[string]any{"stock": 1.5}))
}

func TestJSONSchemaValidatorAcceptsResourcesWithoutSchema(t *testing.T) {
	validator := NewJSONSchemaValidator()
	res := ResourceConfig{Code: "free", Endpoint: "/free"}
	assert.NoError(t, validator.ValidatePatch(res, map[string]any{"anything": true}))
}

func TestJSONSchemaValidatorForget(t *testing.T) {
	validator := NewJSONSchemaValidator()
	res := ResourceConfig{Code: "flags", PatchSchema: map[string]any{
		"type":       "object",
		"properties": map[string]any{"on": map[string]any{"type": "boolean"}},
	}}
	assert.Error(t, validator.ValidatePatch(res, map[string]any{"on": "yes"}))

	res.PatchSchema = map[string]any{"type": "object"}
	assert.Error(t, validator.ValidatePatch(res, map[string]any{"on": "yes"}), "compiled schema is cached")
	validator.Forget("flags")
	assert.NoError(t, validator.ValidatePatch(res, map[string]any{"on": "yes"}))
}

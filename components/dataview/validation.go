package dataview

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// PatchValidator validates row-action patches before they are sent to the backend.
type PatchValidator interface {
	ValidatePatch(resource ResourceConfig, patch map[string]any) error
}

// JSONSchemaValidator compiles resource patch schemas and validates patch maps.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// ValidatePatch ensures the patch satisfies the resource schema. Resources without a
// schema accept any patch.
func (v *JSONSchemaValidator) ValidatePatch(resource ResourceConfig, patch map[string]any) error {
	if len(resource.PatchSchema) == 0 {
		return nil
	}
	schema, err := v.schemaFor(resource)
	if err != nil {
		return err
	}
	payload := map[string]any{}
	if patch != nil {
		data, err := json.Marshal(patch)
		if err != nil {
			return fmt.Errorf("dataview: marshal patch for %s: %w", resource.Code, err)
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("dataview: normalize patch for %s: %w", resource.Code, err)
		}
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("dataview: patch for %s failed validation: %w", resource.Code, err)
	}
	return nil
}

// Forget drops a compiled schema so a reloaded manifest takes effect.
func (v *JSONSchemaValidator) Forget(code string) {
	v.mu.Lock()
	delete(v.compiled, code)
	v.mu.Unlock()
}

func (v *JSONSchemaValidator) schemaFor(resource ResourceConfig) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[resource.Code]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := json.Marshal(resource.PatchSchema)
	if err != nil {
		return nil, fmt.Errorf("dataview: marshal schema %s: %w", resource.Code, err)
	}
	compiler := jsonschema.NewCompiler()
	name := resource.Code + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("dataview: load schema %s: %w", resource.Code, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("dataview: compile schema %s: %w", resource.Code, err)
	}
	v.mu.Lock()
	v.compiled[resource.Code] = compiled
	v.mu.Unlock()
	return compiled, nil
}

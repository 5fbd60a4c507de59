package utils

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// NewSchemaReflector returns the reflector used for every config schema:
// required fields come from jsonschema tags and unknown properties are rejected.
func NewSchemaReflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
	}
}

// GetSchemaFromConfig returns the JSON schema of config as a string.
func GetSchemaFromConfig(config any) (string, error) {
	schema := NewSchemaReflector().Reflect(config)

	jsonSchemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}

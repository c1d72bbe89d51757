package config

import (
	"fmt"
	"strings"

	"github.com/fulmenhq/rgd/internal/assets"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// ValidateConfig validates YAML (or JSON) config bytes against the embedded
// rgd-config schema. An empty document is valid.
func ValidateConfig(configData []byte) error {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(configData, &doc); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if doc == nil {
		return nil
	}

	schema, ok := assets.GetSchema(assets.ConfigSchema)
	if !ok {
		return fmt.Errorf("embedded schema %s not found", assets.ConfigSchema)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var errors []string
		for _, desc := range result.Errors() {
			errors = append(errors, desc.String())
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}
	return nil
}

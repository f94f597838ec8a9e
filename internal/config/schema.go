package config

import (
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

var (
	schemaLoader     gojsonschema.JSONLoader
	schemaLoaderOnce sync.Once
)

// Schema describes the accepted keys of config.toml.
func Schema() map[string]any {
	return map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"encoding": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"fullname": map[string]any{"type": "boolean"},
			"hunks":    map[string]any{"type": "boolean"},
			"log_level": map[string]any{
				"type": "string",
				"enum": []any{"debug", "info", "warn", "warning", "error"},
			},
			"output_dir": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
		},
	}
}

type schemaValidationError struct {
	issues []string
}

func (e schemaValidationError) Error() string {
	if len(e.issues) == 0 {
		return "config failed schema validation"
	}
	return strings.Join(e.issues, "; ")
}

func validate(doc map[string]any) error {
	schemaLoaderOnce.Do(func() {
		schemaLoader = gojsonschema.NewGoLoader(Schema())
	})

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}
	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return schemaValidationError{issues: issues}
}

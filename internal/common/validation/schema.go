// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// categoriesSchema constrains the keyword categories file: an object whose
// values are non-empty arrays of non-empty strings.
const categoriesSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"minProperties": 1,
	"additionalProperties": {
		"type": "array",
		"minItems": 1,
		"items": {
			"type": "string",
			"minLength": 1
		}
	}
}`

// ValidateCategories checks raw JSON against the categories schema.
func ValidateCategories(data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(categoriesSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("categories document invalid: %s", strings.Join(problems, "; "))
	}

	return nil
}

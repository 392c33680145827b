package profileserver

import (
	"fmt"
	"reflect"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/anatolykoptev/go_profile/internal/engine/assemble"
	"github.com/anatolykoptev/go_profile/internal/engine/profile"
)

// Types whose JSON form differs from their Go shape.
var typeSchemas = map[reflect.Type]*jsonschema.Schema{
	reflect.TypeFor[profile.Proficiency](): {
		Type:        "string",
		Description: "Canonical proficiency label, or the raw text when it maps to no level",
	},
	reflect.TypeFor[profile.EmploymentType](): {
		Type: "string",
		Enum: []any{"", "Full-time", "Part-time", "Contract", "Freelance", "Internship", "Other"},
	},
}

var extractionSchema = outputSchema[assemble.Extraction]()

func outputSchema[T any]() *jsonschema.Schema {
	s, err := jsonschema.For[T](&jsonschema.ForOptions{TypeSchemas: typeSchemas})
	if err != nil {
		panic(fmt.Sprintf("output schema: %v", err))
	}
	return s
}

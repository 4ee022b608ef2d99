package config

import (
	"fmt"
	"sync"

	"github.com/json2vars-setter/json2vars/pkg/jsonschema"
)

const schemaTemplate = `{
  "title": "Build matrix",
  "type": "object",
  "required": ["os", "versions", "ghpages_branch"],
  "properties": {
    "os": {
      "type": "array",
      "items": { "type": "string" }
    },
    "versions": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": { "type": "string" }
      }
    },
    "ghpages_branch": { "type": "string" }
  },
  "additionalProperties": %t
}`

// knownFields are the recognized top-level keys.
var knownFields = map[string]bool{
	"os":             true,
	"versions":       true,
	"ghpages_branch": true,
}

// Schema returns the JSON Schema of a matrix file. The strict variant
// forbids unknown top-level keys.
func Schema(strict bool) string {
	return fmt.Sprintf(schemaTemplate, !strict)
}

var shapeSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.Compile("matrix.schema.json", Schema(false))
})

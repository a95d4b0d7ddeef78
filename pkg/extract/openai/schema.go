package openai

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// payloadSchema constrains the shape of a sensor reply before any value
// crosses the trust boundary. It only rejects payloads too malformed to
// sanitize; field names, candidate caps and the UNKNOWN sentinel are
// enforced afterwards by extract.Sanitize.
const payloadSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["extraction_confidence", "fields"],
  "properties": {
    "extraction_confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "notes": {"type": "string"},
    "fields": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["value", "evidence", "confidence"],
          "properties": {
            "value": {},
            "evidence": {"type": "string"},
            "confidence": {"type": "number", "minimum": 0, "maximum": 1}
          }
        }
      }
    }
  }
}`

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("payload.json", strings.NewReader(payloadSchema)); err != nil {
		return nil, fmt.Errorf("add payload schema: %w", err)
	}
	schema, err := compiler.Compile("payload.json")
	if err != nil {
		return nil, fmt.Errorf("compile payload schema: %w", err)
	}
	return schema, nil
}

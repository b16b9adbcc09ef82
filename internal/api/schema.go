package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const processRequestSchema = `{
  "type": "object",
  "required": ["input"],
  "additionalProperties": false,
  "properties": {
    "input": {},
    "encoding": {"enum": ["base64"]},
    "source": {"type": "string", "maxLength": 64},
    "conversation_id": {"type": "string", "minLength": 1, "maxLength": 256},
    "content_type": {"type": "string", "maxLength": 255}
  }
}`

// requestSchema is compiled once; a broken schema is a programming error.
var requestSchema = mustCompileSchema("process_request.json", processRequestSchema)

func mustCompileSchema(name, src string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader([]byte(src))); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", name, err))
	}
	return schema
}

// validateBody checks data against schema.
func validateBody(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("request does not match schema: %w", err)
	}
	return nil
}

package tools

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"billing-agent/internal/core"
)

// inputSchema reflects a tool's argument struct into an inline JSON Schema.
func inputSchema(v any) map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schemaJSON, err := json.Marshal(reflector.Reflect(v))
	if err != nil {
		panic(fmt.Sprintf("reflect tool schema: %v", err))
	}
	var m map[string]any
	if err := json.Unmarshal(schemaJSON, &m); err != nil {
		panic(fmt.Sprintf("decode tool schema: %v", err))
	}
	return m
}

// decodeArgs round-trips the raw argument map into a typed struct.
func decodeArgs(args map[string]any, dst any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidArgument, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidArgument, err)
	}
	return nil
}

// marshalResult encodes a tool result as compact JSON.
func marshalResult(v any) (string, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(out), nil
}

package mcp

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/rendis/seamark/pkg/schema"
)

// styleSchemaJSON constrains the render style object. Unrecognized keys and
// values are rejected, never ignored.
const styleSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://seamark.dev/schemas/style.json",
  "type": "object",
  "properties": {
    "theme": {
      "type": "string",
      "enum": ["default", "dark", "forest", "neutral"]
    },
    "look": {
      "type": "string",
      "enum": ["classic", "handDrawn", "hand-drawn"]
    },
    "background": {
      "type": "string",
      "enum": ["transparent", "white"]
    },
    "direction": {
      "type": "string",
      "enum": ["TB", "BT", "LR", "RL"]
    },
    "scale": {
      "type": "number",
      "exclusiveMinimum": 0,
      "maximum": 4
    }
  },
  "additionalProperties": false
}`

// styleValidator checks raw style objects against the embedded schema and
// maps them onto a RenderConfig. Safe for concurrent use.
type styleValidator struct {
	compiled *jsonschema.Schema
}

func newStyleValidator() (*styleValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(styleSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal style schema: %w", err)
	}
	if err := c.AddResource("https://seamark.dev/schemas/style.json", doc); err != nil {
		return nil, fmt.Errorf("add style schema resource: %w", err)
	}
	compiled, err := c.Compile("https://seamark.dev/schemas/style.json")
	if err != nil {
		return nil, fmt.Errorf("compile style schema: %w", err)
	}
	return &styleValidator{compiled: compiled}, nil
}

// Config validates a raw style object and folds it into a RenderConfig,
// starting from the defaults for any unset key.
func (v *styleValidator) Config(style map[string]any) (schema.RenderConfig, error) {
	cfg := schema.DefaultRenderConfig()
	if style == nil {
		return cfg, nil
	}

	doc, err := toJSONValue(style)
	if err != nil {
		return cfg, schema.NewError(schema.ErrCodeConfig, "style is not a JSON object").WithCause(err)
	}
	if err := v.compiled.Validate(doc); err != nil {
		return cfg, toStyleError(err)
	}

	if theme, ok := style["theme"].(string); ok {
		cfg.Theme = schema.Theme(theme)
	}
	if look, ok := style["look"].(string); ok {
		parsed, err := schema.ParseLook(look)
		if err != nil {
			return cfg, err
		}
		cfg.Look = parsed
	}
	if background, ok := style["background"].(string); ok {
		cfg.Background = schema.Background(background)
	}
	if direction, ok := style["direction"].(string); ok {
		cfg.Direction = schema.Direction(direction)
	}
	if scale, ok := style["scale"].(float64); ok {
		cfg.Scale = scale
	}
	return cfg, nil
}

// toJSONValue round-trips a Go value through JSON encoding so numbers become
// json.Number as the jsonschema library requires.
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(strings.NewReader(string(b)))
}

// toStyleError converts a jsonschema.ValidationError into a CONFIG_ERROR
// with per-key violation messages.
func toStyleError(err error) *schema.SeamarkError {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return schema.NewError(schema.ErrCodeConfig, err.Error())
	}

	violations := collectViolations(verr)
	if len(violations) == 0 {
		return schema.NewError(schema.ErrCodeConfig, verr.Error())
	}
	if len(violations) == 1 {
		return schema.NewError(schema.ErrCodeConfig, violations[0]).
			WithDetails(map[string]any{"violations": violations})
	}
	msg := fmt.Sprintf("style rejected with %d violations", len(violations))
	return schema.NewError(schema.ErrCodeConfig, msg).
		WithDetails(map[string]any{"violations": violations})
}

// collectViolations walks a ValidationError tree and collects leaf messages
// with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}

	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}

package toolschema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	santhosh "github.com/santhosh-tekuri/jsonschema/v6"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const schemaBaseURL = "https://tools.salesbot.local/"

// parameterSchema builds the JSON Schema object for params, keeping the
// registry's parameter order in "properties".
func parameterSchema(params []Param) *jsonschema.Schema {
	props := orderedmap.New[string, *jsonschema.Schema]()
	var required []string

	for _, p := range params {
		prop := &jsonschema.Schema{
			Type:        p.Kind.JSONType(),
			Description: p.Description,
		}
		if p.HasDefault() {
			prop.Default = p.DefaultValue
		}
		if p.Example != nil {
			prop.Examples = []any{p.Example}
		}
		props.Set(p.Name, prop)
		if p.Required {
			required = append(required, p.Name)
		}
	}

	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

// compileValidator compiles raw into a validator registered under name.
func compileValidator(name string, raw json.RawMessage) (*santhosh.Schema, error) {
	doc, err := santhosh.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}

	url := schemaBaseURL + name + ".json"
	c := santhosh.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return c.Compile(url)
}

// validateArgs checks args against v. args is re-decoded through the
// validator's own JSON reader so numeric types match what it expects.
func validateArgs(v *santhosh.Schema, args map[string]any) error {
	data, err := json.Marshal(args)
	if err != nil {
		return err
	}
	inst, err := santhosh.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return err
	}
	return v.Validate(inst)
}

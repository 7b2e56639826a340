package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsValidator "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const draft2020 = "https://json-schema.org/draft/2020-12/schema"

var defaultPrinter = message.NewPrinter(language.English)

type optionsValidator struct {
	schema *jsValidator.Schema
}

// compileOptionsSchema compiles a rule's options schema. A list schema is positional:
// option i must match item i and no more options than items are allowed.
func compileOptionsSchema(schema any, defs map[string]any) (*optionsValidator, error) {
	var doc map[string]any

	switch s := schema.(type) {
	case []any:
		doc = map[string]any{
			"type":     "array",
			"maxItems": len(s),
		}
		if len(s) > 0 {
			doc["prefixItems"] = s
		}
	case map[string]any:
		doc = make(map[string]any, len(s)+1)
		for k, v := range s {
			doc[k] = v
		}
	default:
		return nil, fmt.Errorf("schema must be a list or an object, got %T", schema)
	}

	if _, ok := doc["$schema"]; !ok {
		doc["$schema"] = draft2020
	}
	if len(defs) > 0 {
		if _, ok := doc["$defs"]; !ok {
			doc["$defs"] = defs
		}
	}

	loaded, err := toJSONValue(doc)
	if err != nil {
		return nil, err
	}

	c := jsValidator.NewCompiler()
	if err := c.AddResource("schema.json", loaded); err != nil {
		return nil, err
	}
	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, err
	}

	return &optionsValidator{schema: compiled}, nil
}

func (v *optionsValidator) validate(options []any) error {
	if options == nil {
		options = []any{}
	}

	inst, err := toJSONValue(options)
	if err != nil {
		return fmt.Errorf("options are not JSON compatible: %w", err)
	}

	err = v.schema.Validate(inst)
	if err == nil {
		return nil
	}

	var validationErr *jsValidator.ValidationError
	if !errors.As(err, &validationErr) {
		return err
	}

	causes := rootCauses(validationErr)
	msgs := make([]string, 0, len(causes))
	for _, cause := range causes {
		msgs = append(msgs, fmt.Sprintf("at /%s: %s", strings.Join(cause.InstanceLocation, "/"), cause.ErrorKind.LocalizedString(defaultPrinter)))
	}
	return fmt.Errorf("options do not match schema: %s", strings.Join(msgs, "; "))
}

func rootCauses(err *jsValidator.ValidationError) []*jsValidator.ValidationError {
	if len(err.Causes) == 0 {
		return []*jsValidator.ValidationError{err}
	}

	var causes []*jsValidator.ValidationError
	for _, cause := range err.Causes {
		causes = append(causes, rootCauses(cause)...)
	}
	return causes
}

// toJSONValue converts decoded YAML or Go values into the representation the validator
// expects by round tripping through JSON.
func toJSONValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsValidator.UnmarshalJSON(bytes.NewReader(data))
}

package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaData []byte

const schemaURL = "keyviz://config/schema.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaData)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// Diagnostic describes a setting that was ignored.
type Diagnostic struct {
	Section string
	Key     string
	Value   any
	Message string
}

func (d Diagnostic) String() string {
	var where string
	switch {
	case d.Section == "":
		where = "config"
	case d.Key == "":
		where = d.Section
	default:
		where = d.Section + "." + d.Key
	}
	if d.Value == nil {
		return fmt.Sprintf("%s: %s", where, d.Message)
	}
	return fmt.Sprintf("%s: %s (got %v)", where, d.Message, d.Value)
}

// Diagnostics is everything Load ignored, in discovery order.
type Diagnostics []Diagnostic

func (ds Diagnostics) String() string {
	msgs := make([]string, len(ds))
	for i, d := range ds {
		msgs[i] = d.String()
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether a diagnostic exists for section.key.
func (ds Diagnostics) Has(section, key string) bool {
	for _, d := range ds {
		if d.Section == section && d.Key == key {
			return true
		}
	}
	return false
}

// validate checks doc against the embedded schema and returns one
// diagnostic per offending setting.
func validate(doc map[string]map[string]any) (Diagnostics, error) {
	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}

	// The validator expects values shaped like decoded JSON.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}

	err = schema.Validate(instance)
	if err == nil {
		return nil, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, err
	}

	var out Diagnostics
	seen := make(map[string]bool)
	for _, leaf := range leaves(verr) {
		section, key := splitPointer(leaf.InstanceLocation)
		if section == "" || key == "" || seen[section+"."+key] {
			continue
		}
		seen[section+"."+key] = true
		out = append(out, Diagnostic{
			Section: section,
			Key:     key,
			Value:   doc[section][key],
			Message: leaf.Message,
		})
	}
	return out, nil
}

func leaves(e *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(e.Causes) == 0 {
		return []*jsonschema.ValidationError{e}
	}
	var out []*jsonschema.ValidationError
	for _, c := range e.Causes {
		out = append(out, leaves(c)...)
	}
	return out
}

var pointerUnescape = strings.NewReplacer("~1", "/", "~0", "~")

// splitPointer splits "/section/key" into its parts.
func splitPointer(ptr string) (section, key string) {
	parts := strings.SplitN(strings.TrimPrefix(ptr, "/"), "/", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return pointerUnescape.Replace(parts[0]), pointerUnescape.Replace(parts[1])
}

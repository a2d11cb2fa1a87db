package repair

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Kind enumerates the primitive shapes a field value may take.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	}
	return "unknown"
}

// FieldType describes the accepted shape of one value. Listing more than one
// Kind forms a primitive union (e.g. string | number). Enum constrains string
// values to a fixed set.
type FieldType struct {
	Kinds    []Kind
	Nullable bool
	Enum     []string
	Object   *Object    // set when Kinds includes KindObject
	Elem     *FieldType // set when Kinds includes KindArray
}

// Field is one named member of an object schema.
type Field struct {
	Name     string
	Required bool
	Type     FieldType
}

// Object is a declarative shape for a JSON object. Fields not declared here
// are ignored during validation, allowing permissive schema evolution.
type Object struct {
	Name   string
	Fields []Field
}

// Schema is a tagged union of object variants. A value conforms when it
// matches any variant; variants are tried in declaration order.
type Schema struct {
	Variants []*Object
}

// Validate checks a generic parsed value against the schema. It returns the
// name of the matched variant and no failures on success. On failure it
// returns the failures of the closest variant (the one with the fewest
// violations), so diagnostics point at the shape the value was probably
// aiming for.
func (s *Schema) Validate(v interface{}) (string, []Failure) {
	if len(s.Variants) == 0 {
		return "", []Failure{{Path: "$", Reason: "schema declares no variants"}}
	}

	bestIdx := 0
	var bestFailures []Failure
	for i, variant := range s.Variants {
		failures := validateObject("$", v, variant)
		if len(failures) == 0 {
			return variant.Name, nil
		}
		if i == 0 || len(failures) < len(bestFailures) {
			bestIdx = i
			bestFailures = failures
		}
	}
	return s.Variants[bestIdx].Name, bestFailures
}

func validateObject(path string, v interface{}, obj *Object) []Failure {
	m, ok := v.(map[string]interface{})
	if !ok {
		return []Failure{{Path: path, Reason: fmt.Sprintf("expected object, got %s", kindOf(v))}}
	}

	var failures []Failure
	for _, f := range obj.Fields {
		fieldPath := path + "." + f.Name
		val, present := m[f.Name]
		if !present {
			if f.Required {
				failures = append(failures, Failure{Path: fieldPath, Reason: "required field is missing"})
			}
			continue
		}
		failures = append(failures, validateValue(fieldPath, val, &f.Type)...)
	}
	return failures
}

func validateValue(path string, v interface{}, t *FieldType) []Failure {
	if v == nil {
		if t.Nullable {
			return nil
		}
		return []Failure{{Path: path, Reason: "null is not allowed"}}
	}

	for _, k := range t.Kinds {
		switch k {
		case KindString:
			s, ok := v.(string)
			if !ok {
				continue
			}
			if len(t.Enum) > 0 && !containsString(t.Enum, s) {
				return []Failure{{
					Path:   path,
					Reason: fmt.Sprintf("%q is not one of [%s]", s, strings.Join(t.Enum, ", ")),
				}}
			}
			return nil
		case KindNumber:
			if isNumber(v) {
				return nil
			}
		case KindBool:
			if _, ok := v.(bool); ok {
				return nil
			}
		case KindObject:
			if _, ok := v.(map[string]interface{}); ok {
				return validateObject(path, v, t.Object)
			}
		case KindArray:
			arr, ok := v.([]interface{})
			if !ok {
				continue
			}
			var failures []Failure
			for i, elem := range arr {
				failures = append(failures, validateValue(fmt.Sprintf("%s[%d]", path, i), elem, t.Elem)...)
			}
			return failures
		}
	}

	return []Failure{{
		Path:   path,
		Reason: fmt.Sprintf("expected %s, got %s", kindList(t), kindOf(v)),
	}}
}

func isNumber(v interface{}) bool {
	switch n := v.(type) {
	case float64, float32, int, int32, int64:
		return true
	case json.Number:
		_, err := n.Float64()
		return err == nil
	}
	return false
}

func kindOf(v interface{}) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	case nil:
		return "null"
	}
	if isNumber(v) {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

func kindList(t *FieldType) string {
	names := make([]string, 0, len(t.Kinds))
	for _, k := range t.Kinds {
		names = append(names, k.String())
	}
	sort.Strings(names)
	return strings.Join(names, " | ")
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

package wizard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aimatch/portal/internal/core/domain"
)

// Values is a set of draft field values keyed by JSON field name.
type Values map[string]json.RawMessage

// clone returns a shallow copy; nil stays nil.
func (v Values) clone() Values {
	if v == nil {
		return nil
	}
	out := make(Values, len(v))
	for k, raw := range v {
		out[k] = raw
	}
	return out
}

// overlay returns base with every layer applied in order, later keys winning.
// It is the {...draft, ...values} merge: top-level keys only.
func overlay(base Values, layers ...Values) Values {
	out := base.clone()
	if out == nil {
		out = Values{}
	}
	for _, l := range layers {
		for k, raw := range l {
			out[k] = raw
		}
	}
	return out
}

// objectOf encodes a draft as a flat JSON object.
func objectOf(draft any) (Values, error) {
	b, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("encode draft: %w", err)
	}
	var obj Values
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, fmt.Errorf("decode draft object: %w", err)
	}
	return obj, nil
}

// decodeDraft decodes obj into a fresh D, rejecting unknown keys and values
// of the wrong JSON type as field errors.
func decodeDraft[D any](obj Values) (D, error) {
	var d D

	b, err := json.Marshal(obj)
	if err != nil {
		return d, fmt.Errorf("encode values: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return d, shapeError(err)
	}
	return d, nil
}

func shapeError(err error) error {
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		field := ute.Field
		if field == "" {
			field = "values"
		}
		return &domain.ValidationError{Fields: map[string]string{
			field: fmt.Sprintf("%s must be %s", field, jsonKind(ute.Type.Kind().String())),
		}}
	}

	if name, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		name = strings.Trim(name, `"`)
		return &domain.ValidationError{Fields: map[string]string{
			name: name + " is not a recognised field",
		}}
	}

	return &domain.ValidationError{Fields: map[string]string{"values": "values are malformed"}}
}

func jsonKind(goKind string) string {
	switch goKind {
	case "string":
		return "a string"
	case "slice", "array":
		return "a list"
	case "struct", "ptr", "map":
		return "an object"
	case "bool":
		return "a boolean"
	default:
		return "a number"
	}
}

// Seed builds a draft from a foreign record such as an enterprise payload.
// Keys the draft does not know and values that do not decode are skipped.
func Seed[D any](raw []byte) D {
	var zero D

	var obj Values
	if err := json.Unmarshal(raw, &obj); err != nil {
		return zero
	}

	kept := Values{}
	for k, v := range obj {
		if string(v) == "null" {
			continue
		}
		if _, err := decodeDraft[D](Values{k: v}); err == nil {
			kept[k] = v
		}
	}

	d, err := decodeDraft[D](kept)
	if err != nil {
		return zero
	}
	return d
}

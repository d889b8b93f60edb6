// config/variant.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/clyde3d/clyde/util"
)

// Variants describes a closed set of implementations of the interface T
// that are stored in JSON as objects with a "type" field giving the
// variant name, e.g. {"type": "normal", "queue": "Opaque"}. Each entry
// returns a pointer to a new zero value of the variant.
type Variants[T any] map[string]func() T

// Decode unmarshals a tagged JSON object into the variant it names.
func (v Variants[T]) Decode(data []byte) (T, error) {
	var zero T
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return zero, err
	}
	if tag.Type == "" {
		return zero, ErrMissingType
	}

	mk, ok := v[tag.Type]
	if !ok {
		return zero, fmt.Errorf("%q: %w (expected one of %v)", tag.Type, ErrUnknownVariant,
			util.SortedMapKeys(v))
	}
	t := mk()

	// Decode into the variant with the tag removed so that the variant's
	// own fields are all that's left.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return zero, err
	}
	delete(fields, "type")
	rest, err := json.Marshal(fields)
	if err != nil {
		return zero, err
	}

	dec := json.NewDecoder(bytes.NewReader(rest))
	dec.DisallowUnknownFields()
	if err := dec.Decode(t); err != nil {
		return zero, fmt.Errorf("%s: %w", tag.Type, err)
	}
	return t, nil
}

// Name returns the variant name of t or the empty string if t isn't one
// of the variants.
func (v Variants[T]) Name(t T) string {
	ty := reflect.TypeOf(t)
	for name, mk := range v {
		if reflect.TypeOf(mk()) == ty {
			return name
		}
	}
	return ""
}

// Encode marshals t as a tagged JSON object.
func (v Variants[T]) Encode(t T) ([]byte, error) {
	name := v.Name(t)
	if name == "" {
		return nil, fmt.Errorf("%T: %w", t, ErrUnknownVariant)
	}

	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	tag := fmt.Sprintf(`{"type":%q`, name)
	if bytes.Equal(b, []byte("{}")) {
		return []byte(tag + "}"), nil
	}
	return append([]byte(tag+","), b[1:]...), nil
}

// DecodeSlice decodes a JSON array of tagged objects.
func (v Variants[T]) DecodeSlice(data []byte) ([]T, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	s := make([]T, 0, len(raw))
	for i, r := range raw {
		t, err := v.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		s = append(s, t)
	}
	return s, nil
}

// EncodeSlice marshals a slice of variants as a JSON array.
func (v Variants[T]) EncodeSlice(s []T) ([]byte, error) {
	raw := make([]json.RawMessage, len(s))
	for i, t := range s {
		b, err := v.Encode(t)
		if err != nil {
			return nil, err
		}
		raw[i] = b
	}
	return json.Marshal(raw)
}

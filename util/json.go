// util/json.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

///////////////////////////////////////////////////////////////////////////
// JSON

// DuplicateJSONKey represents a duplicate key found in JSON.
type DuplicateJSONKey struct {
	Path string // JSON path of the object holding the duplicate (e.g., "materials.Rock")
	Key  string // The duplicate key name
}

// FindDuplicateJSONKeys scans JSON content and returns all duplicate keys
// found; encoding/json silently keeps the last one, which hides mistakes
// in hand-edited files. For malformed JSON, the duplicates found before
// the error are returned along with it.
func FindDuplicateJSONKeys(data []byte) ([]DuplicateJSONKey, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var duplicates []DuplicateJSONKey

	var walk func(path string) error
	walk = func(path string) error {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		delim, ok := tok.(json.Delim)
		if !ok {
			return nil
		}

		switch delim {
		case '{':
			seen := make(map[string]bool)
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return err
				}
				key, _ := kt.(string)
				if seen[key] {
					duplicates = append(duplicates, DuplicateJSONKey{Path: path, Key: key})
				}
				seen[key] = true

				if err := walk(Select(path == "", key, path+"."+key)); err != nil {
					return err
				}
			}
		case '[':
			// Array elements report the path of the array itself.
			for dec.More() {
				if err := walk(path); err != nil {
					return err
				}
			}
		}
		_, err = dec.Token() // closing delimiter
		return err
	}

	err := walk("")
	return duplicates, err
}

// JSONPosition returns the 1-based line and column of the given byte
// offset in b.
func JSONPosition(b []byte, offset int64) (line, col int) {
	offset = min(offset, int64(len(b)))
	before := b[:offset]
	line = 1 + bytes.Count(before, []byte{'\n'})
	col = 1 + len(before) - (bytes.LastIndexByte(before, '\n') + 1)
	return
}

// UnmarshalJSONBytes is json.Unmarshal but reports the line and column
// of syntax and type errors. Errors from custom unmarshalers, like those
// of unknown variants, are returned unchanged.
func UnmarshalJSONBytes[T any](b []byte, out *T) error {
	err := json.Unmarshal(b, out)

	var serr *json.SyntaxError
	var terr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &serr):
		line, col := JSONPosition(b, serr.Offset)
		return fmt.Errorf("line %d, column %d: %w", line, col, err)
	case errors.As(err, &terr):
		line, col := JSONPosition(b, terr.Offset)
		field := terr.Field
		if terr.Struct != "" {
			field = terr.Struct + "." + field
		}
		return fmt.Errorf("line %d, column %d: %s value for %s invalid for type %s", line, col, terr.Value,
			field, terr.Type)
	default:
		return err
	}
}

///////////////////////////////////////////////////////////////////////////

// CheckJSON checks whether the provided JSON is syntactically valid and
// then typechecks it with respect to the provided type T. Duplicate keys
// are reported as errors as well.
func CheckJSON[T any](contents []byte, e *ErrorLogger) {
	defer e.CheckDepth(e.CurrentDepth())

	var items any
	if err := UnmarshalJSONBytes(contents, &items); err != nil {
		e.Error(err)
		return
	}

	// contents already decoded, so the scan cannot fail.
	dups, _ := FindDuplicateJSONKeys(contents)
	for _, dup := range dups {
		e.ErrorString("%q: duplicate key %q", dup.Path, dup.Key)
	}

	ty := reflect.TypeOf((*T)(nil)).Elem()
	structTypeCache := make(map[reflect.Type]map[string]reflect.Type)
	typeCheckJSON(items, ty, structTypeCache, e)
}

// JSONChecker is an interface that allows types that implement custom JSON
// unmarshalers to check whether raw unmarshaled JSON types are compatible
// with their underlying type.
type JSONChecker interface {
	CheckJSON(json any) bool
}

func typeCheckJSON(json any, ty reflect.Type, structTypeCache map[reflect.Type]map[string]reflect.Type, e *ErrorLogger) {
	for ty.Kind() == reflect.Ptr {
		ty = ty.Elem()
	}

	// Use the type's JSONChecker, if there is one.
	chty := reflect.TypeOf((*JSONChecker)(nil)).Elem()
	if ty.Implements(chty) || reflect.PointerTo(ty).Implements(chty) {
		checker := reflect.New(ty).Interface().(JSONChecker)
		if !checker.CheckJSON(json) {
			e.ErrorString("unexpected data format provided for object: %s",
				reflect.TypeOf(json))
		}
		return
	}

	switch ty.Kind() {
	case reflect.Array, reflect.Slice:
		if array, ok := json.([]any); ok {
			for _, item := range array {
				typeCheckJSON(item, ty.Elem(), structTypeCache, e)
			}
		} else {
			e.ErrorString("unexpected data format provided for array: %s",
				reflect.TypeOf(json))
		}

	case reflect.Map:
		if m, ok := json.(map[string]any); ok {
			for k, v := range m {
				e.Push(k)
				typeCheckJSON(v, ty.Elem(), structTypeCache, e)
				e.Pop()
			}
		} else {
			e.ErrorString("unexpected data format provided for map: %s",
				reflect.TypeOf(json))
		}

	case reflect.Struct:
		items, ok := json.(map[string]any)
		if !ok {
			e.ErrorString("unexpected data format provided for object: %s",
				reflect.TypeOf(json))
			return
		}

		// For each struct type encountered, structTypeCache holds a map
		// from the JSON name of each struct element to its corresponding
		// reflect.Type to avoid repeated calls to reflect.VisibleFields.
		types, ok := structTypeCache[ty]
		if !ok {
			types = make(map[string]reflect.Type)
			for _, field := range reflect.VisibleFields(ty) {
				if jtag, ok := field.Tag.Lookup("json"); ok {
					name, _, _ := strings.Cut(jtag, ",")
					types[name] = field.Type
				}
			}
			structTypeCache[ty] = types
		}

		for item, values := range items {
			if fty, ok := types[item]; ok {
				e.Push(item)
				typeCheckJSON(values, fty, structTypeCache, e)
				e.Pop()
			} else {
				e.ErrorString("The entry %q is not an expected JSON object. Is it misspelled?", item)
			}
		}

	case reflect.Interface:
		// Tagged variants; these are checked when they are decoded.
	}
}

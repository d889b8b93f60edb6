// util/json_test.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bytes"
	"strings"
	"testing"
)

func TestFindDuplicateJSONKeys(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		expected []DuplicateJSONKey
	}{
		{
			name:     "no duplicates",
			json:     `{"materials": {"Rock": {}, "Sand": {}}}`,
			expected: nil,
		},
		{
			name:     "duplicate at root",
			json:     `{"materials": {}, "enqueuers": {}, "materials": {}}`,
			expected: []DuplicateJSONKey{{Path: "", Key: "materials"}},
		},
		{
			name:     "duplicate in nested object",
			json:     `{"materials": {"Rock": {"type": "original", "type": "derived"}}}`,
			expected: []DuplicateJSONKey{{Path: "materials.Rock", Key: "type"}},
		},
		{
			name: "duplicates at several levels",
			json: `{"a": 1, "a": 2, "nested": {"b": [1, 2], "b": 3}}`,
			expected: []DuplicateJSONKey{
				{Path: "", Key: "a"},
				{Path: "nested", Key: "b"},
			},
		},
		{
			name:     "same key in sibling array elements",
			json:     `{"passes": [{"alpha": 1}, {"alpha": 2}]}`,
			expected: nil,
		},
		{
			name:     "duplicate inside array element",
			json:     `{"passes": [{"depth": {}, "depth": {}}]}`,
			expected: []DuplicateJSONKey{{Path: "passes", Key: "depth"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := FindDuplicateJSONKeys([]byte(tt.json))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(result) != len(tt.expected) {
				t.Fatalf("got %d duplicates (%v), expected %d", len(result), result, len(tt.expected))
			}
			for i, exp := range tt.expected {
				if result[i] != exp {
					t.Errorf("duplicate %d: got %+v, expected %+v", i, result[i], exp)
				}
			}
		})
	}
}

func TestFindDuplicateJSONKeysMalformed(t *testing.T) {
	for _, data := range []string{
		`{"a": 1, "a": 2, "b": `,
		`{"a": 1, "a": 2,, "c": 3}`,
		`{"a": [1, 2`,
	} {
		dups, err := FindDuplicateJSONKeys([]byte(data))
		if err == nil {
			t.Errorf("%s: expected an error", data)
		}
		if data != `{"a": [1, 2` && (len(dups) != 1 || dups[0].Key != "a") {
			t.Errorf("%s: got %v, expected the duplicate found before the error", data, dups)
		}
	}
}

func TestUnmarshalJSONBytesErrorPosition(t *testing.T) {
	var v map[string]int
	err := UnmarshalJSONBytes([]byte("{\n  \"a\": 1,\n  \"b\": \"x\"\n}"), &v)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("got %q, expected error to mention line 3", err)
	}

	err = UnmarshalJSONBytes([]byte("{\"a\": 1,,}"), &v)
	if err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Errorf("got %v, expected syntax error on line 1", err)
	}
}

func TestCheckJSON(t *testing.T) {
	type inner struct {
		Width float32 `json:"width"`
	}
	type outer struct {
		Name   string           `json:"name"`
		Lines  []inner          `json:"lines"`
		Named  map[string]inner `json:"named"`
		Config any              `json:"config"`
	}

	tests := []struct {
		name   string
		json   string
		errors int
	}{
		{"valid", `{"name": "a", "lines": [{"width": 2}], "named": {"x": {"width": 1}}, "config": {"anything": 1}}`, 0},
		{"misspelled field", `{"nmae": "a"}`, 1},
		{"misspelled nested", `{"lines": [{"widht": 2}]}`, 1},
		{"array expected", `{"lines": {"width": 2}}`, 1},
		{"duplicate key", `{"name": "a", "name": "b"}`, 1},
		{"syntax error", `{"name": }`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e ErrorLogger
			CheckJSON[outer]([]byte(tt.json), &e)
			if len(e.Errors()) != tt.errors {
				t.Errorf("got errors %v, expected %d", e.Errors(), tt.errors)
			}
		})
	}
}

func TestJSONPosition(t *testing.T) {
	b := []byte("{\n  \"a\": 1,\n  \"b\": x\n}")
	for _, test := range []struct {
		offset    int64
		line, col int
	}{
		{0, 1, 1},
		{2, 2, 1},
		{4, 2, 3},
		{int64(bytes.IndexByte(b, 'x')), 3, 8},
		{1000, 4, 2},
	} {
		if line, col := JSONPosition(b, test.offset); line != test.line || col != test.col {
			t.Errorf("offset %d: got %d:%d, expected %d:%d", test.offset, line, col, test.line, test.col)
		}
	}
}

/*
Copyright © 2025 Ian Shuley

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package secrets

import (
	"testing"
)

func TestIsJSON(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{`{"a":1}`, true},
		{`[1,2]`, true},
		{`"quoted"`, true},
		{`plain`, false},
		{`123`, false},
		{`true`, false},
		{` {"leading":"space"}`, false},
		{``, false},
	}

	for _, tt := range tests {
		if got := IsJSON(tt.value); got != tt.want {
			t.Errorf("IsJSON(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestDecodeValue(t *testing.T) {
	// Non-JSON values come back untouched
	got, err := DecodeValue("123")
	if err != nil {
		t.Fatalf("DecodeValue() error: %v", err)
	}
	if got != "123" {
		t.Errorf("Expected raw string %q, got %#v", "123", got)
	}

	got, err = DecodeValue(`{"big": 9007199254740993, "ratio": 0.5}`)
	if err != nil {
		t.Fatalf("DecodeValue() error: %v", err)
	}
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("Expected map, got %T", got)
	}
	if m["big"] != int64(9007199254740993) {
		t.Errorf("Expected exact integer, got %#v", m["big"])
	}
	if m["ratio"] != 0.5 {
		t.Errorf("Expected float 0.5, got %#v", m["ratio"])
	}
}

func TestDecodeValueFloatLiterals(t *testing.T) {
	tests := []struct {
		value string
		want  any
	}{
		{`[1.0]`, float64(1)},
		{`[2e3]`, float64(2000)},
		{`[1E2]`, float64(100)},
		{`[-7]`, int64(-7)},
		{`[18446744073709551616]`, float64(18446744073709551616)},
	}

	for _, tt := range tests {
		got, err := DecodeValue(tt.value)
		if err != nil {
			t.Fatalf("DecodeValue(%q) error: %v", tt.value, err)
		}
		list, ok := got.([]any)
		if !ok || len(list) != 1 {
			t.Fatalf("Expected one-element list, got %#v", got)
		}
		if list[0] != tt.want {
			t.Errorf("DecodeValue(%q) = %#v (%T), want %#v (%T)", tt.value, list[0], list[0], tt.want, tt.want)
		}
	}
}

func TestDecodeValueErrors(t *testing.T) {
	for _, value := range []string{`{"a":`, `[1,2] trailing`, `"unterminated`} {
		if _, err := DecodeValue(value); err == nil {
			t.Errorf("DecodeValue(%q) expected error", value)
		}
	}
}

func TestMarshalYAML(t *testing.T) {
	data, err := MarshalYAML(map[string]any{
		"zeta":  "last",
		"alpha": []any{"a", "b"},
	})
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}

	expected := "---\nalpha:\n  - a\n  - b\nzeta: last\n"
	if string(data) != expected {
		t.Errorf("Expected %q, got %q", expected, string(data))
	}
}

func TestMarshalYAMLFloats(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"integral float", 1.0, "---\nv: 1.0\n"},
		{"fraction", 0.5, "---\nv: 0.5\n"},
		{"large exponent", 1e300, "---\nv: 1.0e+300\n"},
		{"small exponent", 1e-7, "---\nv: 1.0e-07\n"},
		{"negative", -2.0, "---\nv: -2.0\n"},
		{"integer stays integer", int64(1), "---\nv: 1\n"},
		{"nested", map[string]any{"f": []any{3.0}}, "---\nv:\n  f:\n    - 3.0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalYAML(map[string]any{"v": tt.value})
			if err != nil {
				t.Fatalf("MarshalYAML() error: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, string(data))
			}
		})
	}
}

func TestDecodeThenMarshalKeepsFloats(t *testing.T) {
	decoded, err := DecodeValue(`{"a": 1.0, "b": 1e300, "c": 0.5, "d": 3}`)
	if err != nil {
		t.Fatalf("DecodeValue() error: %v", err)
	}

	data, err := MarshalYAML(map[string]any{"s": decoded})
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}

	expected := "---\ns:\n  a: 1.0\n  b: 1.0e+300\n  c: 0.5\n  d: 3\n"
	if string(data) != expected {
		t.Errorf("Expected %q, got %q", expected, string(data))
	}
}

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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// IsJSON reports whether value looks like a JSON string, array or object.
// Only the first byte is inspected; the empty string is never JSON.
func IsJSON(value string) bool {
	if value == "" {
		return false
	}
	switch value[0] {
	case '"', '[', '{':
		return true
	default:
		return false
	}
}

// DecodeValue returns the decoded JSON document for JSON-looking values and
// the raw string otherwise.
func DecodeValue(value string) (any, error) {
	if !IsJSON(value) {
		return value, nil
	}

	dec := json.NewDecoder(bytes.NewBufferString(value))
	dec.UseNumber()

	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("invalid JSON value: %w", err)
	}
	if err := dec.Decode(new(any)); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid JSON value: trailing data after document")
	}

	return normalizeNumbers(decoded), nil
}

// normalizeNumbers turns integer literals into int64 where they fit and every
// other number into float64. A literal with a fraction or exponent is a float
// even when its value is integral.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if !strings.ContainsAny(t.String(), ".eE") {
			if i, err := t.Int64(); err == nil {
				return i
			}
		}
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return f
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeNumbers(e)
		}
		return t
	default:
		return v
	}
}

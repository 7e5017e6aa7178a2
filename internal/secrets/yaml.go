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
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const documentStart = "---\n"

// MarshalYAML renders secrets as a block-style YAML document with an explicit
// document start marker. Map keys are emitted in sorted order.
func MarshalYAML(secrets map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(documentStart)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(floatNodes(secrets)); err != nil {
		return nil, fmt.Errorf("failed to encode secrets: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode secrets: %w", err)
	}

	return buf.Bytes(), nil
}

// floatNodes returns a copy of v with every float64 replaced by a scalar node
// whose text always reads back as a float.
func floatNodes(v any) any {
	switch t := v.(type) {
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(t)}
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = floatNodes(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = floatNodes(e)
		}
		return out
	default:
		return v
	}
}

// formatFloat renders f in the shortest form that keeps a decimal point,
// e.g. 1 -> "1.0" and 1e300 -> "1.0e+300".
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}

	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.Contains(s, ".") {
		return s
	}
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		return s[:i] + ".0" + s[i:]
	}
	return s + ".0"
}

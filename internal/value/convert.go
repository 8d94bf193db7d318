package value

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// FromAny converts plain Go data (as produced by encoding/json or engine
// exports) into a Value. Unknown Go types become Resource handles.
func FromAny(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null{}
	case Value:
		return x
	case bool:
		return Bool(x)
	case int:
		return Int(x)
	case int8:
		return Int(x)
	case int16:
		return Int(x)
	case int32:
		return Int(x)
	case int64:
		return Int(x)
	case uint8:
		return Int(x)
	case uint16:
		return Int(x)
	case uint32:
		return Int(x)
	case float32:
		return Float(x)
	case float64:
		return Float(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Int(i)
		}
		f, _ := x.Float64()
		return Float(f)
	case string:
		return String(x)
	case []any:
		out := make(List, len(x))
		for i, item := range x {
			out[i] = FromAny(item)
		}
		return out
	case []string:
		out := make(List, len(x))
		for i, item := range x {
			out[i] = String(item)
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMap()
		for _, k := range keys {
			m.Set(k, FromAny(x[k]))
		}
		return m
	default:
		return &Resource{Kind: fmt.Sprintf("%T", v), Handle: v}
	}
}

// ParseJSON decodes a JSON document into a Value. Integral numbers become Int.
func ParseJSON(s string) (Value, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode json value: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode json value: trailing data")
	}
	return FromAny(raw), nil
}

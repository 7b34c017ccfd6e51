package cell

import (
	"bytes"
	"encoding/json"
)

// DecodeJSON unmarshals data into v keeping numbers as json.Number, so
// integers wider than a float64 survive a load and save.
func DecodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// DeepCopy copies JSON-shaped values (maps, slices, scalars). Other values
// are copied through a JSON round trip; values that cannot be encoded are
// returned as is.
func DeepCopy(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		if t == nil {
			return map[string]any(nil)
		}
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = DeepCopy(val)
		}
		return out
	case []any:
		if t == nil {
			return []any(nil)
		}
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = DeepCopy(val)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = val
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = val
		}
		return out
	case string, bool, float64, float32, int, int32, int64, uint, uint32, uint64, json.Number:
		return t
	case json.RawMessage:
		return append(json.RawMessage(nil), t...)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return v
		}
		var out any
		if err := DecodeJSON(b, &out); err != nil {
			return v
		}
		return out
	}
}

package graph

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// =============================================================================
// Value - Typed Open Property Union
// =============================================================================

// Kind identifies which variant a [Value] holds.
type Kind int

const (
	// KindNull is the zero value: JSON null or an absent property.
	KindNull Kind = iota
	// KindString holds a string.
	KindString
	// KindNumber holds a float64 (all JSON numbers decode to this).
	KindNumber
	// KindBool holds a boolean.
	KindBool
	// KindJSON holds a nested array or object as raw JSON.
	KindJSON
)

// Value is a tagged union over the JSON value space.
// Property bags use Value instead of bare `any` so callers get typed
// access without reflection or type switches at every use site.
//
// The zero value is the null value.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	raw  json.RawMessage
}

// String creates a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number creates a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool creates a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Null creates a null value.
func Null() Value { return Value{} }

// JSON creates a value holding raw nested JSON (array or object).
// The bytes are stored as-is and re-emitted verbatim on marshal.
func JSON(raw json.RawMessage) Value { return Value{kind: KindJSON, raw: raw} }

// Kind returns which variant the value holds.
func (v Value) Kind() Kind { return v.kind }

// AsString returns the string variant and true, or "" and false.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsNumber returns the numeric variant and true, or 0 and false.
func (v Value) AsNumber() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// AsBool returns the boolean variant and true, or false and false.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// Raw returns the nested JSON variant and true, or nil and false.
func (v Value) Raw() (json.RawMessage, bool) {
	if v.kind != KindJSON {
		return nil, false
	}
	return v.raw, true
}

// Display renders the value as a human-readable string for labels and logs.
func (v Value) Display() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindJSON:
		return string(v.raw)
	default:
		return ""
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindJSON:
		return v.raw, nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler.
// Scalars decode to their typed variants; arrays and objects are retained
// as raw JSON for round-trip fidelity.
func (v *Value) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		*v = Value{}
		return nil
	}
	switch data[0] {
	case 'n':
		*v = Value{}
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
		return nil
	case '[', '{':
		raw := make(json.RawMessage, len(data))
		copy(raw, data)
		*v = JSON(raw)
		return nil
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("unsupported property value %q: %w", data, err)
		}
		*v = Number(f)
		return nil
	}
}

// =============================================================================
// Properties
// =============================================================================

// Properties is an open key/value map attached to nodes and edges.
// A nil map is valid and behaves as empty for reads.
type Properties map[string]Value

// GetString returns the string value for key and true, or "" and false
// if the key is absent or holds a different variant.
func (p Properties) GetString(key string) (string, bool) {
	return p[key].AsString()
}

// Clone returns a shallow copy of the property map.
// Returns nil for a nil input.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

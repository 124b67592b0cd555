package ndjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind int

// Value kinds.
const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Member is one key/value pair of an object, in the order the tool emitted it.
type Member struct {
	Key   string
	Value Value
}

// Value is a decoded JSON value.
//
// The zero Value is null. Objects keep their members in source order; numbers keep
// their literal text so large integers survive a round trip.
type Value struct {
	kind    Kind
	b       bool
	s       string // string contents, or number literal
	items   []Value
	members []Member
}

// NullValue returns the null value.
func NullValue() Value { return Value{} }

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// NumberValue wraps a JSON number literal.
func NumberValue(n json.Number) Value { return Value{kind: Number, s: string(n)} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: String, s: s} }

// ArrayValue wraps a sequence of values.
func ArrayValue(items ...Value) Value { return Value{kind: Array, items: items} }

// ObjectValue wraps an ordered list of members.
func ObjectValue(members ...Member) Value { return Value{kind: Object, members: members} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == Null }

// Bool returns the boolean and whether v is a bool.
func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == Bool
}

// Str returns the string and whether v is a string.
func (v Value) Str() (string, bool) {
	if v.kind != String {
		return "", false
	}
	return v.s, true
}

// Number returns the number literal and whether v is a number.
func (v Value) Number() (json.Number, bool) {
	if v.kind != Number {
		return "", false
	}
	return json.Number(v.s), true
}

// Float64 returns the number as a float64.
func (v Value) Float64() (float64, bool) {
	if v.kind != Number {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.s, 64)
	return f, err == nil
}

// Int64 returns the number as an int64. Fractional or out of range numbers report false.
func (v Value) Int64() (int64, bool) {
	if v.kind != Number {
		return 0, false
	}
	i, err := strconv.ParseInt(v.s, 10, 64)
	return i, err == nil
}

// Len returns the number of elements of an array or members of an object.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.items)
	case Object:
		return len(v.members)
	default:
		return 0
	}
}

// Index returns the i-th element of an array.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != Array || i < 0 || i >= len(v.items) {
		return Value{}, false
	}
	return v.items[i], true
}

// Items returns the elements of an array, or nil for other kinds.
func (v Value) Items() []Value {
	if v.kind != Array {
		return nil
	}
	return v.items
}

// Members returns the members of an object in source order, or nil for other kinds.
func (v Value) Members() []Member {
	if v.kind != Object {
		return nil
	}
	return v.members
}

// Keys returns the object keys in source order.
func (v Value) Keys() []string {
	if v.kind != Object {
		return nil
	}
	keys := make([]string, len(v.members))
	for i, m := range v.members {
		keys[i] = m.Key
	}
	return keys
}

// Get returns the member named key. When a key repeats, the last occurrence wins,
// matching encoding/json.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Object {
		return Value{}, false
	}
	for i := len(v.members) - 1; i >= 0; i-- {
		if v.members[i].Key == key {
			return v.members[i].Value, true
		}
	}
	return Value{}, false
}

// GetString returns the string member named key.
func (v Value) GetString(key string) (string, bool) {
	m, ok := v.Get(key)
	if !ok {
		return "", false
	}
	return m.Str()
}

// StringSlice converts an array of strings. Any non-string element reports false.
func (v Value) StringSlice() ([]string, bool) {
	if v.kind != Array {
		return nil, false
	}
	out := make([]string, 0, len(v.items))
	for _, item := range v.items {
		s, ok := item.Str()
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// Truthy follows the usual scripting notion of truth: false, null, zero, and empty
// values are false.
func (v Value) Truthy() bool {
	switch v.kind {
	case Bool:
		return v.b
	case Number:
		f, ok := v.Float64()
		return ok && f != 0
	case String:
		return v.s != ""
	case Array:
		return len(v.items) > 0
	case Object:
		return len(v.members) > 0
	default:
		return false
	}
}

// Interface converts v to plain Go values: nil, bool, json.Number, string, []any,
// and map[string]any. Object key order is lost.
func (v Value) Interface() any {
	switch v.kind {
	case Bool:
		return v.b
	case Number:
		return json.Number(v.s)
	case String:
		return v.s
	case Array:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case Object:
		out := make(map[string]any, len(v.members))
		for _, m := range v.members {
			out[m.Key] = m.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

// Equal reports whether two values are structurally equal. Object member order is
// significant.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Null:
		return true
	case Bool:
		return v.b == o.b
	case Number, String:
		return v.s == o.s
	case Array:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(v.members) != len(o.members) {
			return false
		}
		for i := range v.members {
			if v.members[i].Key != o.members[i].Key || !v.members[i].Value.Equal(o.members[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// MarshalJSON encodes v compactly, keeping object member order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a single JSON value into v.
func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeLine(data)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// String returns the compact JSON encoding of v.
func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid json: %v>", err)
	}
	return string(b)
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(v.b))
	case Number:
		buf.WriteString(v.s)
	case String:
		return writeString(buf, v.s)
	case Array:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown value kind %v", v.kind)
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	b, err := jsonAPI.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode string: %w", err)
	}
	buf.Write(b)
	return nil
}

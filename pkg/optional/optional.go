// Package optional provides a tri-state JSON field: absent, null or present.
package optional

import (
	"bytes"
	"encoding/json"
)

var nullLiteral = []byte("null")

// Value holds a field decoded from a JSON object.
//
// The zero Value is absent. Decoding an explicit JSON null yields a Value
// that is set but null; any other literal yields a present Value.
type Value[T any] struct {
	set  bool
	null bool
	v    T
}

// Of returns a present Value holding v.
func Of[T any](v T) Value[T] {
	return Value[T]{set: true, v: v}
}

// Null returns a Value that was explicitly set to null.
func Null[T any]() Value[T] {
	return Value[T]{set: true, null: true}
}

// IsSet reports whether the field appeared in the input, null or not.
func (o Value[T]) IsSet() bool { return o.set }

// IsNull reports whether the field appeared as an explicit null.
func (o Value[T]) IsNull() bool { return o.set && o.null }

// Get returns the held value and whether it is present and non-null.
func (o Value[T]) Get() (T, bool) {
	return o.v, o.set && !o.null
}

// UnmarshalJSON implements [json.Unmarshaler].
func (o *Value[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if bytes.Equal(bytes.TrimSpace(data), nullLiteral) {
		o.null = true
		var zero T
		o.v = zero
		return nil
	}

	o.null = false
	return json.Unmarshal(data, &o.v)
}

// MarshalJSON implements [json.Marshaler]. Absent values encode as null;
// use omitzero on the enclosing field to drop them.
func (o Value[T]) MarshalJSON() ([]byte, error) {
	if !o.set || o.null {
		return nullLiteral, nil
	}
	return json.Marshal(o.v)
}

// IsZero reports whether the Value is absent, for use with omitzero.
func (o Value[T]) IsZero() bool { return !o.set }

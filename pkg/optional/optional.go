package optional

import (
	"bytes"
	"encoding/json"
)

// Field is a tri-state JSON value for partial updates: absent from the
// payload, present but null, or present with a value. Handlers use it to
// tell "leave unchanged" apart from "set to empty".
type Field[T any] struct {
	set   bool
	null  bool
	value T
}

// Of wraps a concrete value (mainly for tests).
func Of[T any](v T) Field[T] { return Field[T]{set: true, value: v} }

// Null is a present-but-null field (mainly for tests).
func Null[T any]() Field[T] { return Field[T]{set: true, null: true} }

// Set reports whether the key appeared in the payload at all.
func (f Field[T]) Set() bool { return f.set }

// Null reports whether the key was present with an explicit null.
func (f Field[T]) Null() bool { return f.set && f.null }

// Value returns the decoded value and whether it is usable, i.e. present
// and not null.
func (f Field[T]) Value() (T, bool) {
	if !f.set || f.null {
		var zero T
		return zero, false
	}
	return f.value, true
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.set = true
	if bytes.Equal(data, []byte("null")) {
		f.null = true
		return nil
	}
	return json.Unmarshal(data, &f.value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if v, ok := f.Value(); ok {
		return json.Marshal(v)
	}
	return []byte("null"), nil
}

package model

import (
	"bytes"
	"encoding/json"
)

// Optional holds a value that is either present or absent.
// A missing JSON key and an explicit null both decode as absent.
type Optional[T any] struct {
	value T
	set   bool
}

// Ptr returns a pointer to a copy of the value, or nil when absent.
func (o Optional[T]) Ptr() *T {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Optional[T]{value: v, set: true}
	return nil
}

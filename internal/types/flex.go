package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Rows is a row set that must arrive as a JSON array. Null leaves it nil so
// a required check can tell a missing set from an empty one.
type Rows[T any] []T

// UnmarshalJSON implements json.Unmarshaler.
func (r *Rows[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = nil
		return nil
	}
	if data[0] != '[' {
		return fmt.Errorf("rows: expected an array")
	}

	items := make([]T, 0)
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*r = items
	return nil
}

// Version is a sheet version sent either as a JSON number or as a decimal
// string, matching how versions are returned.
type Version uint64

// UnmarshalJSON implements json.Unmarshaler.
func (v *Version) UnmarshalJSON(data []byte) error {
	var n uint64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = Version(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("version: expected number or string")
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("version: invalid value %q: %w", s, err)
	}
	*v = Version(n)
	return nil
}

// Nullable distinguishes an absent field from an explicit null in a patch
// body. Set is true whenever the key was present.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// NullableOf returns a present, non-null value.
func NullableOf[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

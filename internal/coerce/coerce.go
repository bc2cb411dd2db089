// Package coerce turns loosely typed form and JSON values into numbers.
//
// Values typed by users arrive as text. Anything empty or unparsable becomes 0 (or
// "absent" for optional values) instead of an error, so a half-filled form still produces
// a breakdown.
package coerce

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Float parses raw as a finite float64, returning 0 when it cannot.
func Float(raw string) float64 {
	v, ok := parse(raw)
	if !ok {
		return 0
	}
	return v
}

// OptionalFloat parses raw, returning nil when it is empty or unparsable.
func OptionalFloat(raw string) *float64 {
	v, ok := parse(raw)
	if !ok {
		return nil
	}
	return &v
}

// Int parses raw as a whole number, truncating any fraction. It returns 0 when raw cannot
// be parsed.
func Int(raw string) int {
	return int(math.Trunc(Float(raw)))
}

func parse(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Number is a float64 that decodes from a JSON number, a numeric string or null.
// Anything else decodes as 0.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	v, _ := decode(data)
	*n = Number(v)
	return nil
}

// Optional is a number that may be absent. Null, empty and unparsable values decode as
// absent.
type Optional struct {
	Value float64
	Valid bool
}

// Ptr returns the value, or nil when absent.
func (o Optional) Ptr() *float64 {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Optional) UnmarshalJSON(data []byte) error {
	o.Value, o.Valid = decode(data)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func decode(data []byte) (float64, bool) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, false
		}
		return parse(s)
	}
	return parse(string(data))
}

package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Flag is a boolean column as the backend emits it. The same column arrives
// as true, 1 or "1" depending on the endpoint, so decoding accepts all of
// them; encoding always produces 1 or 0.
type Flag struct {
	Value   bool
	Present bool
}

// NewFlag returns a present flag with the given value.
func NewFlag(v bool) Flag {
	return Flag{Value: v, Present: true}
}

// Truthy reports the flag value, treating an absent flag as def.
func (f Flag) Truthy(def bool) bool {
	if !f.Present {
		return def
	}
	return f.Value
}

// Int renders the flag as the 1/0 form field value.
func (f Flag) Int() int {
	if f.Value {
		return 1
	}
	return 0
}

// FormValue renders the flag as "1" or "0".
func (f Flag) FormValue() string {
	return strconv.Itoa(f.Int())
}

func (f Flag) MarshalJSON() ([]byte, error) {
	if !f.Present {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(f.Int())), nil
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = Flag{}
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = Flag{Value: ParseFlag(raw), Present: true}
	return nil
}

// ParseFlag applies the tolerant truthiness rule to a decoded JSON value.
func ParseFlag(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int:
		return t == 1
	case int64:
		return t == 1
	case float64:
		return t == 1
	case json.Number:
		return t.String() == "1"
	case string:
		s := strings.TrimSpace(t)
		return s == "1" || strings.EqualFold(s, "true")
	default:
		return false
	}
}

package ports

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Payload is a decoded-later JSON response body. Empty or malformed bodies
// are normalised to an empty object by the dispatcher.
type Payload json.RawMessage

// Decode unmarshals the payload into v.
func (p Payload) Decode(v any) error {
	if len(p) == 0 {
		return nil
	}
	return json.Unmarshal(p, v)
}

// Field decodes a single top-level member into v and reports whether it was
// present and non-null.
func (p Payload) Field(name string, v any) (bool, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(p, &obj); err != nil {
		return false, nil
	}
	raw, ok := obj[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", name, err)
	}
	return true, nil
}

// Text returns a top-level string member or "".
func (p Payload) Text(name string) string {
	var s string
	if ok, err := p.Field(name, &s); !ok || err != nil {
		return ""
	}
	return s
}

// DecodeList accepts both list shapes the backend uses, a bare array or an
// object with an items array, and returns the records. Any other shape is
// an empty list.
func DecodeList[T any](p Payload) ([]T, error) {
	trimmed := bytes.TrimSpace(p)
	if len(trimmed) == 0 {
		return []T{}, nil
	}

	switch trimmed[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		if items == nil {
			items = []T{}
		}
		return items, nil
	case '{':
		var envelope struct {
			Items []T `json:"items"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		if envelope.Items == nil {
			envelope.Items = []T{}
		}
		return envelope.Items, nil
	default:
		return []T{}, nil
	}
}

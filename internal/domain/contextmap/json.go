package contextmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// MarshalJSON encodes the map as a JSON object in insertion order.
func (m Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := m.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON encodes a single value.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case KindMap:
		return v.nested.MarshalJSON()
	default:
		return json.Marshal(v.scalar)
	}
}

// UnmarshalJSON decodes a JSON object keeping key order. Numbers and booleans
// become scalars in their JSON text form; null members are skipped.
func (m *Map) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("context: %w", err)
	}
	if tok == nil {
		*m = Map{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("context: expected object, got %v", tok)
	}
	out, err := decodeObject(dec)
	if err != nil {
		return fmt.Errorf("context: %w", err)
	}
	*m = out
	return nil
}

// decodeObject reads members until the closing brace. The opening brace is consumed by the caller.
func decodeObject(dec *json.Decoder) (Map, error) {
	out := Map{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Map{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Map{}, fmt.Errorf("unexpected key %v", tok)
		}
		v, present, err := decodeValue(dec)
		if err != nil {
			return Map{}, err
		}
		if present {
			out.put(key, v)
		}
	}
	if _, err := dec.Token(); err != nil {
		return Map{}, err
	}
	return out, nil
}

func decodeValue(dec *json.Decoder) (Value, bool, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, false, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			nested, err := decodeObject(dec)
			if err != nil {
				return Value{}, false, err
			}
			return Nested(nested), true, nil
		case '[':
			items, err := decodeArray(dec)
			if err != nil {
				return Value{}, false, err
			}
			return List(items...), true, nil
		}
		return Value{}, false, fmt.Errorf("unexpected delimiter %v", t)
	case nil:
		return Value{}, false, nil
	default:
		return Scalar(scalarText(t)), true, nil
	}
}

// decodeArray flattens array members to strings. Nested objects and arrays are
// kept as their compact JSON text.
func decodeArray(dec *json.Decoder) ([]string, error) {
	var items []string
	for dec.More() {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		var s string
		switch {
		case json.Unmarshal(raw, &s) == nil:
			items = append(items, s)
		case bytes.Equal(raw, []byte("null")):
		default:
			var compact bytes.Buffer
			if err := json.Compact(&compact, raw); err != nil {
				return nil, err
			}
			items = append(items, compact.String())
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return items, nil
}

func scalarText(tok json.Token) string {
	switch t := tok.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func valueFromAny(raw any) (Value, bool) {
	switch t := raw.(type) {
	case nil:
		return Value{}, false
	case string:
		return Scalar(t), true
	case map[string]any:
		return Nested(FromAny(t)), true
	case []string:
		return List(t...), true
	case []any:
		items := make([]string, 0, len(t))
		for _, it := range t {
			switch iv := it.(type) {
			case nil:
			case string:
				items = append(items, iv)
			case map[string]any, []any:
				b, err := json.Marshal(iv)
				if err == nil {
					items = append(items, string(b))
				}
			default:
				items = append(items, fmt.Sprint(iv))
			}
		}
		return List(items...), true
	case bool:
		return Scalar(strconv.FormatBool(t)), true
	default:
		return Scalar(fmt.Sprint(t)), true
	}
}

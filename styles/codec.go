package styles

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Block attributes were historically declared with "" as default value, so an
// empty string decodes into an empty description everywhere.

// UnmarshalYAML implements yaml.Unmarshaler keeping keys in document order.
func (d *Description) UnmarshalYAML(value *yaml.Node) error {
	d.reset()
	if value.Kind == yaml.AliasNode {
		value = value.Alias
	}
	switch value.Kind {
	case yaml.ScalarNode:
		if value.ShortTag() == "!!null" || value.Value == "" {
			return nil
		}
		return fmt.Errorf("line %d: style description must be a mapping, got %q", value.Line, value.Value)
	case yaml.MappingNode:
	default:
		return fmt.Errorf("line %d: style description must be a mapping", value.Line)
	}

	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i].Value
		n, err := decodeYAMLNode(value.Content[i+1])
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		d.Set(key, n)
	}
	return nil
}

func decodeYAMLNode(value *yaml.Node) (Node, error) {
	switch value.Kind {
	case yaml.AliasNode:
		return decodeYAMLNode(value.Alias)
	case yaml.MappingNode:
		sub := New()
		if err := sub.UnmarshalYAML(value); err != nil {
			return Node{}, err
		}
		return Map(sub), nil
	case yaml.SequenceNode:
		var list []any
		if err := value.Decode(&list); err != nil {
			return Node{}, err
		}
		return Opaque(list), nil
	}

	switch value.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := value.Decode(&b); err != nil {
			return Node{}, err
		}
		return Bool(b), nil
	case "!!int", "!!float":
		var f float64
		if err := value.Decode(&f); err != nil {
			return Node{}, err
		}
		return Num(f), nil
	case "!!str":
		return Str(value.Value), nil
	}
	return Opaque(value.Value), nil
}

// MarshalYAML implements yaml.Marshaler keeping keys in insertion order.
func (d *Description) MarshalYAML() (any, error) {
	out := &yaml.Node{Kind: yaml.MappingNode}
	for key, n := range d.All() {
		v, err := encodeYAMLNode(n)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		out.Content = append(out.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, v)
	}
	return out, nil
}

func encodeYAMLNode(n Node) (*yaml.Node, error) {
	if n.kind != NodeLeaf {
		v, err := n.desc.MarshalYAML()
		if err != nil {
			return nil, err
		}
		return v.(*yaml.Node), nil
	}
	v := n.value
	switch v.kind {
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.str}, nil
	case KindNumber:
		switch {
		case math.IsNaN(v.num):
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: ".nan"}, nil
		case math.IsInf(v.num, 0):
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strings.Replace(formatNumber(v.num), "Infinity", ".inf", 1)}, nil
		}
		tag := "!!float"
		if v.num == math.Trunc(v.num) && math.Abs(v.num) < 1e21 {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: formatNumber(v.num)}, nil
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v.String()}, nil
	case KindOpaque:
		out := &yaml.Node{}
		if err := out.Encode(v.opaque); err != nil {
			return nil, err
		}
		return out, nil
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
}

// MarshalJSON implements json.Marshaler keeping keys in insertion order.
func (d *Description) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeJSON(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeJSON(buf *bytes.Buffer, d *Description) error {
	buf.WriteByte('{')
	first := true
	for key, n := range d.All() {
		if !first {
			buf.WriteByte(',')
		}
		first = false

		if err := writeJSON(buf, key); err != nil {
			return err
		}
		buf.WriteByte(':')

		if n.kind != NodeLeaf {
			if err := encodeJSON(buf, n.desc); err != nil {
				return err
			}
			continue
		}
		switch n.value.kind {
		case KindUndefined:
			buf.WriteString("null")
		case KindNumber:
			buf.WriteString(formatNumber(n.value.num))
		default:
			if err := writeJSON(buf, n.value.Interface()); err != nil {
				return fmt.Errorf("key %q: %w", key, err)
			}
		}
	}
	buf.WriteByte('}')
	return nil
}

// writeJSON encodes v without HTML escaping, selectors are full of "&" and ">".
func writeJSON(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode terminates every value with a newline
	buf.Truncate(buf.Len() - 1)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler keeping keys in document order.
func (d *Description) UnmarshalJSON(data []byte) error {
	d.reset()

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	switch t := tok.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
	case json.Delim:
		if t == '{' {
			return decodeJSONObject(dec, d)
		}
	}
	return errors.New("style description must be an object")
}

func decodeJSONObject(dec *json.Decoder, d *Description) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", tok)
		}
		n, err := decodeJSONValue(dec)
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		d.Set(key, n)
	}
	// closing brace
	_, err := dec.Token()
	return err
}

func decodeJSONValue(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return Node{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		if t == '{' {
			sub := New()
			if err := decodeJSONObject(dec, sub); err != nil {
				return Node{}, err
			}
			return Map(sub), nil
		}
		// arrays are not part of the grammar, keep them as opaque values
		list := []any{}
		for dec.More() {
			var v any
			if err := dec.Decode(&v); err != nil {
				return Node{}, err
			}
			list = append(list, v)
		}
		if _, err := dec.Token(); err != nil {
			return Node{}, err
		}
		return Opaque(list), nil
	case string:
		return Str(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Node{}, err
		}
		return Num(f), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	}
	return Undefined(), nil
}

func (d *Description) reset() {
	d.entries = nil
	d.index = nil
}

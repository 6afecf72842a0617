package blocks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"strings"

	"ghostkit/styles"
)

// attribute names managed by the style extension
const (
	attrID        = "ghostkitId"
	attrClassName = "ghostkitClassname"
	attrStyles    = "ghostkitStyles"
	attrPrefix    = "ghostkit"
)

// Attributes is a block attribute bag. Style related attributes have their
// own fields, everything else is kept as decoded.
type Attributes struct {
	ID        string              `yaml:"ghostkitId,omitempty"`
	ClassName string              `yaml:"ghostkitClassname,omitempty"`
	Styles    *styles.Description `yaml:"ghostkitStyles,omitempty"`
	Other     map[string]any      `yaml:",inline"`
}

// Get returns value of a regular attribute.
func (a *Attributes) Get(name string) (any, bool) {
	if a == nil {
		return nil, false
	}
	v, ok := a.Other[name]
	return v, ok
}

// Set stores value of a regular attribute, nil removes it.
func (a *Attributes) Set(name string, v any) {
	if v == nil {
		delete(a.Other, name)
		return
	}
	if a.Other == nil {
		a.Other = make(map[string]any)
	}
	a.Other[name] = v
}

// Node returns attribute value ready to be put into style description,
// absent attribute gives undefined node.
func (a *Attributes) Node(name string) styles.Node {
	v, _ := a.Get(name)
	return styles.Opaque(v)
}

// String returns textual attribute value or empty string.
func (a *Attributes) String(name string) string {
	v, ok := a.Get(name)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return styles.Opaque(v).Value().String()
}

// Truthy follows script truthiness for attribute values: absent, false,
// zero, NaN and empty string are all false.
func (a *Attributes) Truthy(name string) bool {
	v, _ := a.Get(name)
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0 && !math.IsNaN(t)
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	}
	return true
}

// Clone makes a copy deep enough for attributes to be modified independently.
func (a *Attributes) Clone() *Attributes {
	if a == nil {
		return nil
	}
	return &Attributes{
		ID:        a.ID,
		ClassName: a.ClassName,
		Styles:    a.Styles.Clone(),
		Other:     maps.Clone(a.Other),
	}
}

// withDefaults returns attributes with absent values filled from defaults.
func (a *Attributes) withDefaults(defaults map[string]any) *Attributes {
	out := a.Clone()
	if out == nil {
		out = &Attributes{}
	}
	for name, v := range defaults {
		if _, ok := out.Other[name]; !ok {
			out.Set(name, v)
		}
	}
	return out
}

// CarryOver copies all style attributes when block is transformed into
// another type. Nothing is copied unless source has styles. Returns true if
// attributes were copied.
func CarryOver(from, to *Attributes) bool {
	if from == nil || to == nil || from.Styles.Len() == 0 {
		return false
	}
	to.ID, to.ClassName, to.Styles = from.ID, from.ClassName, from.Styles.Clone()
	for name, v := range from.Other {
		if strings.HasPrefix(name, attrPrefix) {
			to.Set(name, v)
		}
	}
	return true
}

// MarshalJSON puts style attributes next to regular ones in a single object.
func (a Attributes) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.Other)+3)
	maps.Copy(out, a.Other)
	if a.ID != "" {
		out[attrID] = a.ID
	}
	if a.ClassName != "" {
		out[attrClassName] = a.ClassName
	}
	if a.Styles != nil {
		out[attrStyles] = a.Styles
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON splits object into style and regular attributes.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = Attributes{}

	for name, msg := range raw {
		var err error
		switch name {
		case attrID:
			err = json.Unmarshal(msg, &a.ID)
		case attrClassName:
			err = json.Unmarshal(msg, &a.ClassName)
		case attrStyles:
			a.Styles = styles.New()
			err = a.Styles.UnmarshalJSON(msg)
		default:
			var v any
			if err = json.Unmarshal(msg, &v); err == nil {
				a.Set(name, v)
			}
		}
		if err != nil {
			return fmt.Errorf("attribute %q: %w", name, err)
		}
	}
	return nil
}

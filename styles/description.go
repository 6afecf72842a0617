package styles

import (
	"fmt"
	"iter"
	"math"
	"strconv"
	"strings"
)

// mediaPrefix marks description keys which denote media query wrappers.
const mediaPrefix = "media_"

// ValueKind is a kind of scalar stored in a leaf node.
type ValueKind int

const (
	KindUndefined ValueKind = iota // absent, never emitted
	KindNull                       // explicit null, emitted as "null"
	KindString
	KindNumber
	KindBool
	KindOpaque // anything else, stringified as is
)

// Value is a scalar leaf value of a style description.
type Value struct {
	kind   ValueKind
	str    string
	num    float64
	flag   bool
	opaque any
}

func (v Value) Kind() ValueKind {
	return v.kind
}

// Omitted reports whether value suppresses its declaration (false or undefined).
func (v Value) Omitted() bool {
	switch v.kind {
	case KindUndefined:
		return true
	case KindBool:
		return !v.flag
	case KindOpaque:
		return v.opaque == nil
	}
	return false
}

// Number returns numeric value and true if value is a number.
func (v Value) Number() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// String returns textual form of the value as it will appear in CSS.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindOpaque:
		return fmt.Sprint(v.opaque)
	case KindNull:
		return "null"
	}
	return ""
}

// Interface returns value as a plain Go value (nil for undefined).
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.flag
	case KindOpaque:
		return v.opaque
	}
	return nil
}

// formatNumber prints numbers the way browsers stringify them: plain decimal
// notation for magnitudes in [1e-6, 1e21), exponent form outside.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		// negative zero included
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	// "1e-07" -> "1e-7"
	mant, exp, _ := strings.Cut(s, "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + digits
}

// NodeKind discriminates description nodes.
type NodeKind int

const (
	NodeLeaf NodeKind = iota
	NodeNested
	NodeMedia
)

func (k NodeKind) String() string {
	switch k {
	case NodeNested:
		return "nested"
	case NodeMedia:
		return "media"
	default:
		return "leaf"
	}
}

// Node is a single value in a style description: either a scalar leaf, a
// nested selector mapping or a media query mapping.
type Node struct {
	kind  NodeKind
	value Value
	token string
	desc  *Description
}

func Str(s string) Node {
	return Node{kind: NodeLeaf, value: Value{kind: KindString, str: s}}
}

func Num(f float64) Node {
	return Node{kind: NodeLeaf, value: Value{kind: KindNumber, num: f}}
}

func Int(i int) Node {
	return Num(float64(i))
}

func Bool(b bool) Node {
	return Node{kind: NodeLeaf, value: Value{kind: KindBool, flag: b}}
}

// Undefined returns a leaf which is never emitted.
func Undefined() Node {
	return Node{kind: NodeLeaf}
}

// Null returns an explicit null leaf. Unlike Undefined it produces a
// declaration with "null" as its value.
func Null() Node {
	return Node{kind: NodeLeaf, value: Value{kind: KindNull}}
}

// Opaque wraps value of any other type. Well known Go scalar types are
// normalized into their proper kinds.
func Opaque(v any) Node {
	switch t := v.(type) {
	case nil:
		return Undefined()
	case string:
		return Str(t)
	case bool:
		return Bool(t)
	case int:
		return Int(t)
	case int64:
		return Num(float64(t))
	case float64:
		return Num(t)
	case float32:
		return Num(float64(t))
	case *Description:
		return Map(t)
	}
	return Node{kind: NodeLeaf, value: Value{kind: KindOpaque, opaque: v}}
}

// Map returns node holding nested mapping. Whether it is a selector or a media
// query is decided by the key it is stored under. Nil mapping is undefined.
func Map(d *Description) Node {
	if d == nil {
		return Undefined()
	}
	return Node{kind: NodeNested, desc: d}
}

func (n Node) Kind() NodeKind {
	return n.kind
}

func (n Node) Value() Value {
	return n.value
}

// Description returns nested mapping for selector and media nodes.
func (n Node) Description() *Description {
	return n.desc
}

// Token returns breakpoint token of the media node ("md" for "media_md").
func (n Node) Token() string {
	return n.token
}

// Entry is a single key of a description.
type Entry struct {
	Key  string
	Node Node
}

// Description is an insertion ordered mapping of style keys to nodes.
// Zero value is ready to use.
type Description struct {
	entries []Entry
	index   map[string]int
}

// New returns empty description.
func New() *Description {
	return &Description{}
}

// Set stores node under the key. Existing key keeps its position.
func (d *Description) Set(key string, n Node) *Description {
	n = classify(key, n)
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if i, ok := d.index[key]; ok {
		d.entries[i].Node = n
		return d
	}
	d.index[key] = len(d.entries)
	d.entries = append(d.entries, Entry{Key: key, Node: n})
	return d
}

// SetMedia stores mapping under "media_<token>" key.
func (d *Description) SetMedia(token string, sub *Description) *Description {
	return d.Set(mediaPrefix+token, Map(sub))
}

func classify(key string, n Node) Node {
	if n.kind == NodeLeaf {
		return n
	}
	if token, ok := strings.CutPrefix(key, mediaPrefix); ok {
		n.kind, n.token = NodeMedia, token
		return n
	}
	n.kind, n.token = NodeNested, ""
	return n
}

func (d *Description) Get(key string) (Node, bool) {
	if d == nil {
		return Node{}, false
	}
	i, ok := d.index[key]
	if !ok {
		return Node{}, false
	}
	return d.entries[i].Node, true
}

func (d *Description) Delete(key string) {
	if d == nil {
		return
	}
	i, ok := d.index[key]
	if !ok {
		return
	}
	d.entries = append(d.entries[:i], d.entries[i+1:]...)
	delete(d.index, key)
	for j := i; j < len(d.entries); j++ {
		d.index[d.entries[j].Key] = j
	}
}

// Len returns number of keys. Nil description is empty.
func (d *Description) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

func (d *Description) Keys() []string {
	keys := make([]string, 0, d.Len())
	for k := range d.All() {
		keys = append(keys, k)
	}
	return keys
}

// All iterates over description in insertion order.
func (d *Description) All() iter.Seq2[string, Node] {
	return func(yield func(string, Node) bool) {
		if d == nil {
			return
		}
		for _, e := range d.entries {
			if !yield(e.Key, e.Node) {
				return
			}
		}
	}
}

// Clone makes deep copy of the description. Opaque values are shared.
func (d *Description) Clone() *Description {
	if d == nil {
		return nil
	}
	c := &Description{
		entries: make([]Entry, 0, len(d.entries)),
		index:   make(map[string]int, len(d.entries)),
	}
	for _, e := range d.entries {
		n := e.Node
		if n.desc != nil {
			n.desc = n.desc.Clone()
		}
		c.index[e.Key] = len(c.entries)
		c.entries = append(c.entries, Entry{Key: e.Key, Node: n})
	}
	return c
}

// Wrap returns description with d stored under a single selector key.
func Wrap(selector string, d *Description) *Description {
	return New().Set(selector, Map(d))
}

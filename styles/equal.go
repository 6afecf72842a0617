package styles

import "reflect"

// Equal reports whether two descriptions are structurally identical: same set
// of keys with nodes of the same kind and value. Key order is not significant.
// Nil and empty descriptions are equal.
func Equal(a, b *Description) bool {
	if a.Len() != b.Len() {
		return false
	}
	for key, na := range a.All() {
		nb, ok := b.Get(key)
		if !ok || !nodesEqual(na, nb) {
			return false
		}
	}
	return true
}

func nodesEqual(a, b Node) bool {
	if a.kind != b.kind {
		return false
	}
	if a.kind != NodeLeaf {
		return a.token == b.token && Equal(a.desc, b.desc)
	}
	return valuesEqual(a.value, b.value)
}

func valuesEqual(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindString:
		return a.str == b.str
	case KindNumber:
		return a.num == b.num
	case KindBool:
		return a.flag == b.flag
	case KindOpaque:
		return reflect.DeepEqual(a.opaque, b.opaque)
	}
	return true
}

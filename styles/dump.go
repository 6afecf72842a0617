package styles

import "ghostkit/utils/debug"

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindOpaque:
		return "opaque"
	case KindNull:
		return "null"
	default:
		return "undefined"
	}
}

// Dump renders description as an indented tree for debug reports.
func Dump(d *Description) string {
	tw := debug.NewTreeWriter()
	dumpTo(tw, d, 0)
	return tw.String()
}

func dumpTo(tw *debug.TreeWriter, d *Description, depth int) {
	for key, n := range d.All() {
		if n.kind == NodeLeaf {
			tw.Leaf(depth, key, n.value.kind.String(), n.value.String())
			continue
		}
		tw.Branch(depth, key, n.kind.String())
		dumpTo(tw, n.desc, depth+1)
	}
}

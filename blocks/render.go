package blocks

import (
	"maps"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NewElement builds element node with attributes in name order, empty class
// is dropped.
func NewElement(tag string, props map[string]string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for _, name := range slices.Sorted(maps.Keys(props)) {
		if name == "class" && props[name] == "" {
			continue
		}
		n.Attr = append(n.Attr, html.Attribute{Key: name, Val: props[name]})
	}
	return n
}

// Element returns saved element of the block without content.
func Element(b *Binding) *html.Node {
	props := SaveProps(b, map[string]string{"class": b.Type.ElementClasses(b.Attrs)})
	if url := b.Attrs.String("url"); url != "" {
		props["href"] = url
	}
	return NewElement(b.Type.ElementTag(b.Attrs), props)
}

// RenderTag renders start tag of the element with given props.
func RenderTag(tag string, props map[string]string) (string, error) {
	var buf strings.Builder
	if err := html.Render(&buf, NewElement(tag, props)); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "</"+tag+">"), nil
}

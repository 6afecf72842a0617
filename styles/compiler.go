package styles

import (
	"strings"
	"unicode"

	"ghostkit/vars"
)

// AttrName is the markup attribute compiled styles are saved into.
const AttrName = "data-ghostkit-styles"

const (
	importantSuffix = " !important"
	// older exported documents escaped "&" as "\u0026" and then lost the
	// backslash, so such keys are treated as parent references too
	legacyParentRef = "u0026"
	parentRef       = "&"
)

// Properties which get "px" appended to unit-less non-zero numbers.
var pixelProps = map[string]bool{
	"border-top-width":           true,
	"border-right-width":         true,
	"border-bottom-width":        true,
	"border-left-width":          true,
	"border-width":               true,
	"border-bottom-left-radius":  true,
	"border-bottom-right-radius": true,
	"border-top-left-radius":     true,
	"border-top-right-radius":    true,
	"border-radius":              true,
	"bottom":                     true,
	"top":                        true,
	"left":                       true,
	"right":                      true,
	"font-size":                  true,
	"height":                     true,
	"width":                      true,
	"min-height":                 true,
	"min-width":                  true,
	"max-height":                 true,
	"max-width":                  true,
	"margin-left":                true,
	"margin-right":               true,
	"margin-top":                 true,
	"margin-bottom":              true,
	"margin":                     true,
	"padding-left":               true,
	"padding-right":              true,
	"padding-top":                true,
	"padding-bottom":             true,
	"padding":                    true,
	"outline-width":              true,
}

// Compiled selectors may end up inside of HTML attribute.
var selectorEscaper = strings.NewReplacer(">", "&gt;", "<", "&lt;")

// Compile converts style description into CSS text. Declarations on the
// selector level come first as a single rule, followed by nested selector and
// media blocks in description order. Media conditions are left as
// "#{ghostkitvar:media_<token>}" placeholders to be substituted later.
//
// Output depends on nothing but arguments, so compiling the same description
// twice gives identical text.
func Compile(d *Description, selector string) string {
	var (
		decls    strings.Builder
		nested   strings.Builder
		haveRule bool
	)

	for key, n := range d.All() {
		switch n.kind {
		case NodeMedia:
			// media wrapper is kept even when nothing is inside
			appendBlock(&nested, "@media "+vars.Placeholder(mediaPrefix+n.token)+" { "+Compile(n.desc, selector)+" }")
		case NodeNested:
			appendBlock(&nested, Compile(n.desc, nestedSelector(selector, key)))
		default:
			if n.value.Omitted() {
				continue
			}
			decls.WriteByte(' ')
			decls.WriteString(declaration(key, n.value))
			haveRule = true
		}
	}

	if !haveRule {
		return nested.String()
	}

	var out strings.Builder
	out.WriteString(selectorEscaper.Replace(selector))
	out.WriteString(" {")
	out.WriteString(decls.String())
	out.WriteString(" }")
	if nested.Len() > 0 {
		out.WriteByte(' ')
		out.WriteString(nested.String())
	}
	return out.String()
}

// Attribute packages compiled styles as markup attribute.
func Attribute(d *Description) map[string]string {
	return map[string]string{AttrName: Compile(d, "")}
}

func appendBlock(b *strings.Builder, block string) {
	if block == "" {
		return
	}
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(block)
}

func nestedSelector(base, key string) string {
	switch {
	case base == "":
		return key
	case strings.Contains(key, parentRef):
		return strings.ReplaceAll(key, parentRef, base)
	case strings.Contains(key, legacyParentRef):
		return strings.ReplaceAll(key, legacyParentRef, base)
	default:
		return base + " " + key
	}
}

func declaration(key string, v Value) string {
	prop := CamelToDash(key)
	val := v.String()

	val, important := strings.CutSuffix(val, importantSuffix)

	var addUnit bool
	switch {
	case v.kind == KindNumber && !important:
		addUnit = v.num != 0 && pixelProps[prop]
	case v.kind == KindString || important:
		addUnit = isBareNumber(val)
	}
	if addUnit {
		val += "px"
	}
	if important {
		val += importantSuffix
	}
	return prop + ": " + val + ";"
}

// isBareNumber reports whether s has nothing but digits, dots and minus signs.
// Empty string qualifies, so empty length values turn into "px".
func isBareNumber(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' && r != '-' {
			return false
		}
	}
	return true
}

// CamelToDash converts property name from camel case ("backgroundColor") to
// CSS form ("background-color").
func CamelToDash(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	var prev rune
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) && isASCIILetter(prev) {
			b.WriteByte('-')
		}
		b.WriteRune(unicode.ToLower(r))
		prev = r
	}
	return b.String()
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

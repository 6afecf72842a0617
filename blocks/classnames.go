package blocks

import (
	"strings"

	"github.com/gosimple/slug"
)

// ClassNames joins class lists dropping empty entries and duplicates, first
// occurrence defines position.
func ClassNames(lists ...string) string {
	var (
		out  []string
		seen = make(map[string]bool)
	)
	for _, list := range lists {
		for _, class := range strings.Fields(list) {
			if seen[class] {
				continue
			}
			seen[class] = true
			out = append(out, class)
		}
	}
	return strings.Join(out, " ")
}

// VariantClass returns class of the block style variant, default variant has
// none. Variant names are user supplied and are reduced to safe form.
func VariantClass(base, variant string) string {
	if variant == "" || variant == "default" {
		return ""
	}
	name := slug.Make(variant)
	if name == "" {
		return ""
	}
	return base + "-variant-" + name
}

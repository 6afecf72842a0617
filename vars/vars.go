// Package vars substitutes "#{ghostkitvar:<name>}" placeholders left in
// compiled CSS by the styles compiler.
package vars

import (
	"maps"
	"regexp"
	"slices"

	"go.uber.org/zap"
)

const (
	placeholderOpen  = "#{ghostkitvar:"
	placeholderClose = "}"
)

var placeholderPattern = regexp.MustCompile(`#\{ghostkitvar:([^}\s]+)\}`)

// Placeholder returns textual reference to named variable.
func Placeholder(name string) string {
	return placeholderOpen + name + placeholderClose
}

// DefaultBreakpoints are media conditions used when configuration does not
// provide its own.
func DefaultBreakpoints() map[string]string {
	return map[string]string{
		"media_sm": "(max-width: 576px)",
		"media_md": "(max-width: 768px)",
		"media_lg": "(max-width: 992px)",
		"media_xl": "(max-width: 1200px)",
	}
}

// Replacer resolves placeholders from a fixed table.
type Replacer struct {
	table map[string]string
	log   *zap.Logger
}

func NewReplacer(table map[string]string, log *zap.Logger) *Replacer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Replacer{table: maps.Clone(table), log: log.Named("vars")}
}

// Names returns sorted list of known variables.
func (r *Replacer) Names() []string {
	return slices.Sorted(maps.Keys(r.table))
}

// Replace substitutes all known placeholders in css. Unknown ones are left
// as is.
func (r *Replacer) Replace(css string) string {
	return placeholderPattern.ReplaceAllStringFunc(css, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if v, ok := r.table[name]; ok {
			return v
		}
		r.log.Warn("Unknown style variable, leaving as is", zap.String("name", name))
		return match
	})
}

// Unresolved returns names of all placeholders present in css in order of
// appearance, without duplicates.
func Unresolved(css string) []string {
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(css, -1) {
		if !slices.Contains(names, m[1]) {
			names = append(names, m[1])
		}
	}
	return names
}

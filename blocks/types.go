package blocks

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"ghostkit/styles"
)

// StylesFunc computes block styles from its attributes. Returned description
// is relative to the block's own class and is wrapped by the session.
type StylesFunc func(attrs *Attributes) *styles.Description

// Type describes a block type as far as custom styles are concerned.
type Type struct {
	Name string
	// Styles tells whether block carries style attributes at all.
	Styles bool
	// Callback derives styles from other attributes, when nil styles are
	// provided by the document as is.
	Callback StylesFunc
	// Defaults are used for attributes absent from the document.
	Defaults map[string]any
	// BaseClass and Variants define classes of the rendered element.
	BaseClass string
	Variants  bool
	// Tag selects element to render, "div" when nil.
	Tag func(attrs *Attributes) string
	// Classes returns additional type specific classes.
	Classes func(attrs *Attributes) []string
}

// ElementTag returns name of the element block is saved as.
func (t *Type) ElementTag(attrs *Attributes) string {
	if t.Tag == nil {
		return "div"
	}
	return t.Tag(attrs.withDefaults(t.Defaults))
}

// ElementClasses returns classes of the saved element without custom style
// class, in order: base class, type specific, variant, user class.
func (t *Type) ElementClasses(attrs *Attributes) string {
	resolved := attrs.withDefaults(t.Defaults)

	list := []string{t.BaseClass}
	if t.Classes != nil {
		list = append(list, t.Classes(resolved)...)
	}
	if t.Variants {
		list = append(list, VariantClass(t.BaseClass, resolved.String("variant")))
	}
	list = append(list, resolved.String("className"))
	return ClassNames(list...)
}

// ErrUnknownType is returned for blocks not present in registry.
var ErrUnknownType = errors.New("unknown block type")

// Registry keeps known block types.
type Registry struct {
	types map[string]*Type
}

// NewRegistry returns registry with provided types, later definitions
// replace earlier ones with the same name.
func NewRegistry(types ...*Type) *Registry {
	r := &Registry{types: make(map[string]*Type, len(types))}
	for _, t := range types {
		r.Register(t)
	}
	return r
}

func (r *Registry) Register(t *Type) {
	r.types[t.Name] = t
}

// Lookup returns type by block name.
func (r *Registry) Lookup(name string) (*Type, error) {
	t, ok := r.types[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, name)
	}
	return t, nil
}

// Names returns sorted names of all registered types.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.types))
}

// Package blocks connects style descriptions to block instances: identifier
// allocation, styles recomputation on attribute changes and saved markup.
package blocks

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"ghostkit/ids"
	"ghostkit/styles"
)

// Writer is the host persistence path for recomputed block styles.
type Writer interface {
	WriteStyles(b *Binding, d *styles.Description) error
}

// WriterFunc adapts function to Writer interface.
type WriterFunc func(b *Binding, d *styles.Description) error

func (f WriterFunc) WriteStyles(b *Binding, d *styles.Description) error {
	return f(b, d)
}

// Binding ties block instance to its styles.
type Binding struct {
	Key   ids.InstanceKey
	Type  *Type
	Attrs *Attributes
	// Changed is set when mounting replaced identifier or styles in place.
	Changed bool
}

func (b *Binding) ID() string {
	return b.Attrs.ID
}

func (b *Binding) ClassName() string {
	return b.Attrs.ClassName
}

// Styles returns last computed (or loaded) description.
func (b *Binding) Styles() *styles.Description {
	return b.Attrs.Styles
}

// Session is a single editing session over a set of blocks.
// NOTE: not to be used concurrently!
type Session struct {
	types  *Registry
	alloc  *ids.Allocator
	writer Writer
	log    *zap.Logger
}

// NewSession creates session. When alloc is nil session gets its own
// allocator, nil writer means styles are only kept in attributes.
func NewSession(types *Registry, alloc *ids.Allocator, w Writer, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	if alloc == nil {
		alloc = ids.NewAllocator(log, nil)
	}
	return &Session{types: types, alloc: alloc, writer: w, log: log.Named("blocks")}
}

func (s *Session) Allocator() *ids.Allocator {
	return s.alloc
}

// Mount binds block instance. Identifier is allocated or confirmed and when
// it had to be generated class name and styles are recomputed in place
// without going through writer.
func (s *Session) Mount(name string, key ids.InstanceKey, attrs *Attributes) (*Binding, error) {
	t, err := s.types.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("unable to mount block %s: %w", key, err)
	}
	if attrs == nil {
		attrs = &Attributes{}
	}
	b := &Binding{Key: key, Type: t, Attrs: attrs}
	if !t.Styles {
		return b, nil
	}
	if key == "" {
		return nil, errors.New("unable to mount block without instance key")
	}

	existing := attrs.ID
	id := s.alloc.Allocate(existing, key)
	if id == existing {
		return b, nil
	}

	attrs.ID, attrs.ClassName = id, ids.ClassName(t.Name, id)
	b.Changed = true
	if d, changed := s.compute(b); changed {
		attrs.Styles = d
	}
	s.log.Debug("Block mounted with new identifier",
		zap.String("block", name), zap.String("instance", string(key)), zap.String("was", existing), zap.String("id", id))
	return b, nil
}

// Update applies attribute changes and recomputes styles. Writer is called
// only when styles actually differ from the current ones.
func (s *Session) Update(b *Binding, changes map[string]any) error {
	for name, v := range changes {
		b.Attrs.Set(name, v)
	}

	d, changed := s.compute(b)
	if !changed {
		return nil
	}
	if s.writer != nil {
		if err := s.writer.WriteStyles(b, d); err != nil {
			return fmt.Errorf("unable to write styles of block %s: %w", b.Key, err)
		}
	}
	b.Attrs.Styles = d
	return nil
}

// compute returns styles block should have and whether they differ from
// current ones. Blocks without class name or callback are left alone.
func (s *Session) compute(b *Binding) (*styles.Description, bool) {
	if b.Attrs.ClassName == "" || b.Type.Callback == nil {
		return nil, false
	}

	custom := styles.New()
	if own := b.Type.Callback(b.Attrs.withDefaults(b.Type.Defaults)); own.Len() > 0 {
		custom.Set("."+b.Attrs.ClassName, styles.Map(own))
	}
	if styles.Equal(b.Attrs.Styles, custom) {
		return nil, false
	}
	return custom, true
}

// CSS returns editor styles of the block with variable placeholders left for
// the caller to resolve.
func (s *Session) CSS(b *Binding) string {
	if b.Attrs.ClassName == "" || b.Attrs.Styles.Len() == 0 {
		return ""
	}
	return styles.Compile(b.Attrs.Styles, "")
}

// SaveProps adds styles attribute and custom class to the props of saved
// element. Props are left untouched when block has no styles.
func SaveProps(b *Binding, props map[string]string) map[string]string {
	if b.Attrs.Styles.Len() == 0 {
		return props
	}
	if props == nil {
		props = make(map[string]string)
	}
	props[styles.AttrName] = styles.Compile(b.Attrs.Styles, "")
	if b.Attrs.ClassName != "" {
		props["class"] = ClassNames(props["class"], b.Attrs.ClassName)
	}
	return props
}

// Transform mounts block converted into another type keeping its instance
// key, style attributes are carried over.
func (s *Session) Transform(b *Binding, name string, attrs *Attributes) (*Binding, error) {
	if attrs == nil {
		attrs = &Attributes{}
	}
	if CarryOver(b.Attrs, attrs) {
		s.log.Debug("Styles carried over", zap.String("from", b.Type.Name), zap.String("to", name), zap.String("instance", string(b.Key)))
	}
	return s.Mount(name, b.Key, attrs)
}

// Package document handles block documents: trees of blocks with their
// attributes as they are stored by the host.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	yaml "gopkg.in/yaml.v3"

	"ghostkit/blocks"
)

// Block is a single block instance.
type Block struct {
	Name        string             `yaml:"name" json:"name"`
	ClientID    string             `yaml:"clientId,omitempty" json:"clientId,omitempty"`
	Attributes  *blocks.Attributes `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	InnerBlocks []*Block           `yaml:"innerBlocks,omitempty" json:"innerBlocks,omitempty"`
}

// Document is an ordered list of top level blocks.
type Document struct {
	Title  string   `yaml:"title,omitempty" json:"title,omitempty"`
	Blocks []*Block `yaml:"blocks" json:"blocks"`

	// Source is path document was loaded from relative to the processed
	// source, it is used to name outputs.
	Source string `yaml:"-" json:"-"`
}

// IsJSON tells whether document with this name is stored as JSON, everything
// else is YAML.
func IsJSON(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".json")
}

// Decode reads single document, format is selected by name. Input is expected
// in UTF-8, byte order mark if present selects UTF-8 or UTF-16 and is dropped.
func Decode(r io.Reader, name string) (*Document, error) {
	r = transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	doc := &Document{Source: name}
	if IsJSON(name) {
		if err := json.NewDecoder(r).Decode(doc); err != nil {
			return nil, fmt.Errorf("unable to decode JSON document: %w", err)
		}
		return doc, nil
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(doc); err != nil {
		if errors.Is(err, io.EOF) {
			// empty document
			return doc, nil
		}
		return nil, fmt.Errorf("unable to decode YAML document: %w", err)
	}
	return doc, nil
}

// Encode writes document, format is selected by name.
func (d *Document) Encode(w io.Writer, name string) error {
	if IsJSON(name) {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}

// Load reads document from file.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, filepath.Base(path))
}

// Save writes document to file, format is selected by file extension.
func Save(path string, d *Document) error {
	var buf bytes.Buffer
	if err := d.Encode(&buf, path); err != nil {
		return fmt.Errorf("unable to encode document: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// ErrSkipChildren may be returned by WalkFunc to skip inner blocks.
var ErrSkipChildren = errors.New("skip inner blocks")

// WalkFunc is called for every block, depth of top level blocks is 0.
type WalkFunc func(b *Block, depth int) error

// Walk visits all blocks depth first in document order.
func (d *Document) Walk(fn WalkFunc) error {
	return walk(d.Blocks, 0, fn)
}

func walk(list []*Block, depth int, fn WalkFunc) error {
	for _, b := range list {
		err := fn(b, depth)
		if errors.Is(err, ErrSkipChildren) {
			continue
		}
		if err != nil {
			return err
		}
		if err := walk(b.InnerBlocks, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// AssignClientIDs generates client ids for blocks which do not have one and
// makes sure every block has attributes. Returns number of ids generated.
func (d *Document) AssignClientIDs() int {
	count := 0
	_ = d.Walk(func(b *Block, _ int) error {
		if b.ClientID == "" {
			b.ClientID = uuid.NewString()
			count++
		}
		if b.Attributes == nil {
			b.Attributes = &blocks.Attributes{}
		}
		return nil
	})
	return count
}

// Len returns total number of blocks in the document.
func (d *Document) Len() int {
	count := 0
	_ = d.Walk(func(*Block, int) error {
		count++
		return nil
	})
	return count
}

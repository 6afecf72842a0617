package compile

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"ghostkit/blocks"
	"ghostkit/config"
	"ghostkit/document"
	"ghostkit/ids"
	"ghostkit/state"
	"ghostkit/styles"
)

// result keeps everything produced by compiling single document.
type result struct {
	doc      *document.Document
	session  *blocks.Session
	bindings []*blocks.Binding
	bound    map[*document.Block]*blocks.Binding
	changed  int
}

// compileDocument mounts every known block of the document in a fresh
// session, so identifiers are unique per document, and brings block styles in
// sync with attributes.
func compileDocument(doc *document.Document, env *state.LocalEnv, log *zap.Logger) (*result, error) {
	if n := doc.AssignClientIDs(); n > 0 {
		log.Debug("Client ids assigned", zap.String("source", doc.Source), zap.Int("blocks", n))
	}

	res := &result{doc: doc, bound: make(map[*document.Block]*blocks.Binding)}
	writer := blocks.WriterFunc(func(b *blocks.Binding, d *styles.Description) error {
		res.changed++
		log.Debug("Block styles changed", zap.String("block", b.Type.Name), zap.String("id", b.ID()), zap.Int("rules", d.Len()))
		return nil
	})
	res.session = blocks.NewSession(blocks.Builtin(), ids.NewAllocator(log, nil), writer, log)

	err := doc.Walk(func(blk *document.Block, _ int) error {
		b, err := res.session.Mount(blk.Name, ids.InstanceKey(blk.ClientID), blk.Attributes)
		if err != nil {
			if errors.Is(err, blocks.ErrUnknownType) {
				log.Debug("Skipping block", zap.String("block", blk.Name), zap.String("source", doc.Source))
				return nil
			}
			return err
		}
		if b.Changed {
			res.changed++
		}
		if err := res.session.Update(b, nil); err != nil {
			return err
		}
		res.bindings = append(res.bindings, b)
		res.bound[blk] = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to compile %s: %w", doc.Source, err)
	}

	log.Debug("Document compiled",
		zap.String("source", doc.Source),
		zap.Int("blocks", doc.Len()),
		zap.Int("bound", len(res.bindings)),
		zap.Int("changed", res.changed),
		zap.Int("ids", res.session.Allocator().Len()))

	if env.Rpt != nil {
		env.Rpt.StoreData("styles/"+doc.Source+".txt", []byte(res.dump()))
	}
	return res, nil
}

// css returns styles of all bound blocks one rule set per line, variables are
// substituted when resolve is set. Compiled selectors are escaped for markup
// attributes, stylesheet gets them back as plain text.
func (r *result) css(env *state.LocalEnv, resolve bool) string {
	var buf strings.Builder
	for _, b := range r.bindings {
		text := r.session.CSS(b)
		if text == "" {
			continue
		}
		text = html.UnescapeString(text)
		if resolve {
			text = env.Vars().Replace(text)
		}
		buf.WriteString(text)
		buf.WriteByte('\n')
	}
	return buf.String()
}

// stylesheet returns complete CSS output with expanded header comment.
func (r *result) stylesheet(env *state.LocalEnv) (string, error) {
	var buf strings.Builder
	if env.Cfg.Styles.Header != "" {
		header, err := expandTemplate(r, config.HeaderFieldName, env.Cfg.Styles.Header, env.Format)
		if err != nil {
			return "", err
		}
		if header = strings.TrimSpace(header); header != "" {
			buf.WriteString("/* " + strings.ReplaceAll(header, "*/", "* /") + " */\n")
		}
	}
	buf.WriteString(r.css(env, env.Cfg.Styles.ResolveVars))
	return buf.String(), nil
}

// markup renders saved block elements preceded by style element. Blocks of
// unknown types produce no element, their inner blocks are attached to the
// closest known parent.
func (r *result) markup(env *state.LocalEnv) ([]byte, error) {
	root := &html.Node{Type: html.DocumentNode}

	css, err := r.stylesheet(env)
	if err != nil {
		return nil, err
	}
	if css != "" {
		style := &html.Node{Type: html.ElementNode, Data: "style", DataAtom: atom.Style}
		style.AppendChild(&html.Node{Type: html.TextNode, Data: "\n" + css})
		root.AppendChild(style)
	}
	r.attach(root, r.doc.Blocks)

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (r *result) attach(parent *html.Node, list []*document.Block) {
	for _, blk := range list {
		b, ok := r.bound[blk]
		if !ok {
			r.attach(parent, blk.InnerBlocks)
			continue
		}
		n := blocks.Element(b)
		parent.AppendChild(n)
		r.attach(n, blk.InnerBlocks)
	}
}

// check validates produced CSS. Variables are always substituted here since
// placeholders are not valid CSS.
func (r *result) check(env *state.LocalEnv, log *zap.Logger) error {
	problems := styles.NewChecker(log).Check(r.css(env, true))
	if len(problems) == 0 {
		return nil
	}
	for _, p := range problems {
		log.Warn("CSS problem", zap.String("source", r.doc.Source), zap.String("problem", p))
	}
	return fmt.Errorf("%s: %d CSS problem(s) found", r.doc.Source, len(problems))
}

// dump returns debug view of styles of every bound block.
func (r *result) dump() string {
	var buf strings.Builder
	for _, b := range r.bindings {
		if b.Styles().Len() == 0 {
			continue
		}
		fmt.Fprintf(&buf, "%s %s (%s)\n", b.Type.Name, b.ID(), b.Key)
		buf.WriteString(styles.Dump(b.Styles()))
		buf.WriteByte('\n')
	}
	return buf.String()
}

func encode(doc *document.Document, name string) ([]byte, error) {
	var buf bytes.Buffer
	if err := doc.Encode(&buf, name); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

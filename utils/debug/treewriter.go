// Package debug has helpers producing human readable dumps for debug reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// TreeWriter accumulates indented tree lines, two spaces per level.
type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Branch writes label of a subtree: `key [kind]`.
func (tw TreeWriter) Branch(depth int, key, kind string) {
	tw.indent(depth)
	tw.w.WriteString(encodeText(key))
	tw.w.WriteString(" [")
	tw.w.WriteString(kind)
	tw.w.WriteString("]\n")
}

// Leaf writes `key: value (kind)`, value is quoted when not empty.
func (tw TreeWriter) Leaf(depth int, key, kind, value string) {
	tw.indent(depth)
	tw.w.WriteString(encodeText(key))
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteString(" (")
	tw.w.WriteString(kind)
	tw.w.WriteString(")\n")
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}

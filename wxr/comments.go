package wxr

import (
	"fmt"
	"regexp"
	"strings"

	"ghostkit/blocks"
	"ghostkit/document"
)

// block delimiters are html comments:
//
//	<!-- wp:ns/name {"attr":1} -->...<!-- /wp:ns/name -->
//	<!-- wp:name /-->
var (
	delimiterStart = regexp.MustCompile(`<!--\s+(/)?wp:([a-z][a-z0-9_-]*/)?([a-z][a-z0-9_-]*)\s+`)
	attrsEnd       = regexp.MustCompile(`\}\s+(/)?-->`)
	delimiterEnd   = regexp.MustCompile(`^(/)?-->`)
)

type delimiter struct {
	name    string
	attrs   string
	closing bool
	void    bool
	start   int
	end     int
}

// nextDelimiter finds next block delimiter in content starting at offset.
// Comments which look like delimiters but are malformed are skipped.
func nextDelimiter(content string, offset int) (delimiter, bool) {
	for offset < len(content) {
		loc := delimiterStart.FindStringSubmatchIndex(content[offset:])
		if loc == nil {
			return delimiter{}, false
		}
		d := delimiter{start: offset + loc[0], closing: loc[2] >= 0}
		ns := "core/"
		if loc[4] >= 0 {
			ns = content[offset+loc[4] : offset+loc[5]]
		}
		d.name = ns + content[offset+loc[6]:offset+loc[7]]

		rest := offset + loc[1]
		if strings.HasPrefix(content[rest:], "{") {
			if end := attrsEnd.FindStringSubmatchIndex(content[rest:]); end != nil {
				d.attrs = content[rest : rest+end[0]+1]
				d.void = end[2] >= 0
				d.end = rest + end[1]
				return d, true
			}
		} else if end := delimiterEnd.FindStringSubmatchIndex(content[rest:]); end != nil {
			d.void = end[2] >= 0
			d.end = rest + end[1]
			return d, true
		}
		offset = rest
	}
	return delimiter{}, false
}

// parseBlocks builds block tree from serialized post content. Content between
// delimiters is not preserved. Unclosed blocks are closed at the end of
// content, closing delimiters without matching opener are ignored.
func parseBlocks(content string) ([]*document.Block, error) {
	var (
		top   []*document.Block
		stack []*document.Block
	)
	add := func(b *document.Block) {
		if len(stack) == 0 {
			top = append(top, b)
			return
		}
		parent := stack[len(stack)-1]
		parent.InnerBlocks = append(parent.InnerBlocks, b)
	}

	for offset := 0; ; {
		d, ok := nextDelimiter(content, offset)
		if !ok {
			break
		}
		offset = d.end

		if d.closing {
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].Name == d.name {
					stack = stack[:i]
					break
				}
			}
			continue
		}

		b := &document.Block{Name: d.name, Attributes: &blocks.Attributes{}}
		if d.attrs != "" {
			if err := b.Attributes.UnmarshalJSON([]byte(d.attrs)); err != nil {
				return nil, fmt.Errorf("block %s at %d: %w", d.name, d.start, err)
			}
		}
		add(b)
		if !d.void {
			stack = append(stack, b)
		}
	}
	return top, nil
}

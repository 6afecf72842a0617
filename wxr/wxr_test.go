package wxr

import (
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"ghostkit/document"
	"ghostkit/styles"
)

const export = `<?xml version="1.0" encoding="UTF-8" ?>
<rss version="2.0"
	xmlns:content="http://purl.org/rss/1.0/modules/content/"
	xmlns:wp="http://wordpress.org/export/1.2/">
<channel>
	<title>Site</title>
	<item>
		<title>Home</title>
		<wp:post_id>12</wp:post_id>
		<wp:post_name>home</wp:post_name>
		<wp:post_type>page</wp:post_type>
		<content:encoded><![CDATA[<!-- wp:ghostkit/button {"align":"center"} -->
<div class="ghostkit-button-wrapper"><!-- wp:ghostkit/button-single {"ghostkitId":"x1","ghostkitClassname":"ghostkit-button-single-x1","ghostkitStyles":{".ghostkit-button-single-x1":{"color":"#fff","u0026:hover, u0026:focus":{"color":"red"}}},"url":"https://example.com"} -->
<a class="ghostkit-button" href="https://example.com">Go</a>
<!-- /wp:ghostkit/button-single --></div>
<!-- /wp:ghostkit/button -->

<!-- wp:paragraph -->
<p>Text</p>
<!-- /wp:paragraph -->

<!-- wp:separator /-->]]></content:encoded>
	</item>
	<item>
		<title>logo.png</title>
		<wp:post_name>logo</wp:post_name>
		<wp:post_type>attachment</wp:post_type>
		<content:encoded><![CDATA[<!-- wp:image /-->]]></content:encoded>
	</item>
	<item>
		<title>Classic</title>
		<wp:post_id>14</wp:post_id>
		<wp:post_type>post</wp:post_type>
		<content:encoded><![CDATA[<p>no blocks here</p>]]></content:encoded>
	</item>
</channel>
</rss>
`

func TestRead(t *testing.T) {
	docs, err := Read(strings.NewReader(export), "site.xml", zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("Read() returned %d documents, want 1", len(docs))
	}
	doc := docs[0]
	if doc.Title != "Home" || doc.Source != "site/home.xml" {
		t.Errorf("document = %q from %q", doc.Title, doc.Source)
	}

	var names []string
	_ = doc.Walk(func(b *document.Block, depth int) error {
		names = append(names, strings.Repeat(">", depth)+b.Name)
		if b.ClientID == "" {
			t.Errorf("block %s has no client id", b.Name)
		}
		return nil
	})
	want := "ghostkit/button,>ghostkit/button-single,core/paragraph,core/separator"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("blocks = %s, want %s", got, want)
	}

	button := doc.Blocks[0].InnerBlocks[0]
	if button.Attributes.ID != "x1" || button.Attributes.String("url") != "https://example.com" {
		t.Errorf("attributes not decoded: %+v", button.Attributes)
	}
	// exported data lost "&" escapes, compiler understands the marker
	want = ".ghostkit-button-single-x1 { color: #fff; } .ghostkit-button-single-x1:hover, .ghostkit-button-single-x1:focus { color: red; }"
	if got := styles.Compile(button.Attributes.Styles, ""); got != want {
		t.Errorf("styles compile to\n%q\nwant\n%q", got, want)
	}
}

func TestRead_StableClientIDs(t *testing.T) {
	first, err := Read(strings.NewReader(export), "site.xml", nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Read(strings.NewReader(export), "site.xml", nil)
	if err != nil {
		t.Fatal(err)
	}
	if first[0].Blocks[0].ClientID != second[0].Blocks[0].ClientID {
		t.Error("client ids differ between imports of the same export")
	}
	if first[0].Blocks[0].ClientID == first[0].Blocks[1].ClientID {
		t.Error("client ids of different blocks are equal")
	}
}

func TestRead_Errors(t *testing.T) {
	if _, err := Read(strings.NewReader("blocks: []"), "broken.xml", nil); err == nil {
		t.Error("non XML input must be rejected")
	}
	if _, err := Read(strings.NewReader("<html><body/></html>"), "page.xml", nil); err == nil {
		t.Error("XML without channel must be rejected")
	}
}

func TestParseBlocks(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"void", `<!-- wp:spacer {"height":10} /-->`, "core/spacer"},
		{"void without attributes", `<!-- wp:more /-->`, "core/more"},
		{"nested", `<!-- wp:group --><!-- wp:ns/a --><!-- /wp:ns/a --><!-- wp:ns/b /--><!-- /wp:group -->`, "core/group[ns/a ns/b]"},
		{"unclosed", `<!-- wp:group --><!-- wp:paragraph -->text`, "core/group[core/paragraph]"},
		{"stray closer", `<!-- /wp:group --><!-- wp:paragraph --><!-- /wp:paragraph -->`, "core/paragraph"},
		{"braces in attributes", `<!-- wp:ns/a {"text":"} not end","n":{"m":1}} /--><!-- wp:ns/b /-->`, "ns/a ns/b"},
		{"plain comments", `<!-- just a comment --><!-- wp:ns/a /-->`, "ns/a"},
		{"nothing", `<p>plain</p>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := parseBlocks(tt.content)
			if err != nil {
				t.Fatalf("parseBlocks() error = %v", err)
			}
			if got := shape(list); got != tt.want {
				t.Errorf("parseBlocks() = %s, want %s", got, tt.want)
			}
		})
	}

	if _, err := parseBlocks(`<!-- wp:ns/a {"broken": } /-->`); err == nil {
		t.Error("malformed attributes must be reported")
	}
}

func shape(list []*document.Block) string {
	parts := make([]string, 0, len(list))
	for _, b := range list {
		s := b.Name
		if len(b.InnerBlocks) > 0 {
			s += "[" + shape(b.InnerBlocks) + "]"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

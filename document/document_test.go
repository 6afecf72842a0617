package document

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"go.uber.org/multierr"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"ghostkit/styles"
)

const sampleYAML = `title: Home
blocks:
  - name: ghostkit/button-single
    clientId: c-1
    attributes:
      ghostkitId: x1
      ghostkitClassname: ghostkit-button-single-x1
      ghostkitStyles:
        .ghostkit-button-single-x1:
          color: '#fff'
          "&:hover, &:focus":
            color: red
      url: https://example.com
  - name: core/group
    innerBlocks:
      - name: ghostkit/icon-box
        clientId: c-3
        innerBlocks:
          - name: core/paragraph
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDecode_YAML(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleYAML), "home.yaml")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if doc.Title != "Home" || doc.Source != "home.yaml" {
		t.Errorf("document header = %q / %q", doc.Title, doc.Source)
	}
	if doc.Len() != 4 {
		t.Errorf("Len() = %d, want 4", doc.Len())
	}
	b := doc.Blocks[0]
	if b.Attributes.ID != "x1" {
		t.Errorf("ghostkitId = %q", b.Attributes.ID)
	}
	want := ".ghostkit-button-single-x1 { color: #fff; } .ghostkit-button-single-x1:hover, .ghostkit-button-single-x1:focus { color: red; }"
	if got := styles.Compile(b.Attributes.Styles, ""); got != want {
		t.Errorf("styles compile to\n%q\nwant\n%q", got, want)
	}
}

func TestDecode_Errors(t *testing.T) {
	if _, err := Decode(strings.NewReader("blocks: []\nunknown: 1\n"), "a.yaml"); err == nil {
		t.Error("unknown document field must be rejected")
	}
	if _, err := Decode(strings.NewReader(`{"blocks": [`), "a.json"); err == nil {
		t.Error("broken JSON must be rejected")
	}
	doc, err := Decode(strings.NewReader(""), "empty.yaml")
	if err != nil || len(doc.Blocks) != 0 {
		t.Errorf("empty document: %v, %v", doc, err)
	}
}

func TestDecode_Encodings(t *testing.T) {
	const content = `{"title": "Заголовок", "blocks": [{"name": "ghostkit/icon-box"}]}`

	utf16 := func(order unicode.Endianness) []byte {
		data, _, err := transform.Bytes(unicode.UTF16(order, unicode.UseBOM).NewEncoder(), []byte(content))
		if err != nil {
			t.Fatal(err)
		}
		return data
	}
	tests := []struct {
		name string
		data []byte
	}{
		{"UTF-8", []byte(content)},
		{"UTF-8 BOM", append([]byte{0xEF, 0xBB, 0xBF}, content...)},
		{"UTF-16 Big Endian BOM", utf16(unicode.BigEndian)},
		{"UTF-16 Little Endian BOM", utf16(unicode.LittleEndian)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Decode(bytes.NewReader(tt.data), "page.json")
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if doc.Title != "Заголовок" || doc.Len() != 1 {
				t.Errorf("decoded %q with %d blocks", doc.Title, doc.Len())
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleYAML), "home.yaml")
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"out.yaml", "out.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := Save(path, doc); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			back, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if back.Len() != doc.Len() || back.Title != doc.Title {
				t.Errorf("round trip lost blocks: %d vs %d", back.Len(), doc.Len())
			}
			if !styles.Equal(back.Blocks[0].Attributes.Styles, doc.Blocks[0].Attributes.Styles) {
				t.Error("round trip changed styles")
			}
			if got := back.Blocks[0].Attributes.String("url"); got != "https://example.com" {
				t.Errorf("url = %q", got)
			}
		})
	}
}

func TestWalk(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleYAML), "home.yaml")
	if err != nil {
		t.Fatal(err)
	}

	var visited []string
	err = doc.Walk(func(b *Block, depth int) error {
		visited = append(visited, strings.Repeat(">", depth)+b.Name)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"ghostkit/button-single", "core/group", ">ghostkit/icon-box", ">>core/paragraph"}
	if !slices.Equal(visited, want) {
		t.Errorf("visited %v, want %v", visited, want)
	}

	visited = nil
	_ = doc.Walk(func(b *Block, depth int) error {
		visited = append(visited, b.Name)
		if b.Name == "core/group" {
			return ErrSkipChildren
		}
		return nil
	})
	if len(visited) != 2 {
		t.Errorf("ErrSkipChildren did not skip inner blocks: %v", visited)
	}

	stop := errors.New("stop")
	if err := doc.Walk(func(*Block, int) error { return stop }); !errors.Is(err, stop) {
		t.Errorf("Walk() error = %v, want %v", err, stop)
	}
}

func TestAssignClientIDs(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleYAML), "home.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if n := doc.AssignClientIDs(); n != 2 {
		t.Errorf("AssignClientIDs() = %d, want 2", n)
	}
	seen := make(map[string]bool)
	_ = doc.Walk(func(b *Block, _ int) error {
		if b.ClientID == "" || seen[b.ClientID] {
			t.Errorf("block %s has bad client id %q", b.Name, b.ClientID)
		}
		seen[b.ClientID] = true
		if b.Attributes == nil {
			t.Errorf("block %s has no attributes", b.Name)
		}
		return nil
	})
	if doc.Blocks[0].ClientID != "c-1" {
		t.Error("existing client id was replaced")
	}
	if n := doc.AssignClientIDs(); n != 0 {
		t.Errorf("second AssignClientIDs() = %d, want 0", n)
	}
}

func collect(t *testing.T, src string) ([]string, error) {
	t.Helper()
	var names []string
	err := Visit(context.Background(), src, Native, zaptest.NewLogger(t), func(doc *Document) error {
		names = append(names, filepath.ToSlash(doc.Source))
		return nil
	})
	return names, err
}

func TestVisit_Directory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"page10.yaml", "page2.yaml", "page1.json", "notes.txt", "sub/a.yml"} {
		content := "blocks: []\n"
		if strings.HasSuffix(name, ".json") {
			content = `{"blocks": []}`
		}
		writeFile(t, filepath.Join(dir, name), content)
	}

	names, err := collect(t, dir)
	if err != nil {
		t.Fatalf("Visit() error = %v", err)
	}
	want := []string{"page1.json", "page2.yaml", "page10.yaml", "sub/a.yml"}
	if !slices.Equal(names, want) {
		t.Errorf("visited %v, want %v", names, want)
	}
}

func TestVisit_CollectsErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), "blocks: []\n")
	writeFile(t, filepath.Join(dir, "b.yaml"), "blocks: [\n")
	writeFile(t, filepath.Join(dir, "c.yaml"), "blocks: []\nbogus: 1\n")
	writeFile(t, filepath.Join(dir, "d.yaml"), "blocks: []\n")

	names, err := collect(t, dir)
	if !slices.Equal(names, []string{"a.yaml", "d.yaml"}) {
		t.Errorf("visited %v, bad files must not stop processing", names)
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Errorf("expected 2 collected errors, got %d: %v", n, err)
	}
}

func TestVisit_Archive(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "site.zip")
	out, err := os.Create(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(out)
	for _, name := range []string{"pages/home.yaml", "pages/about.json", "posts/hello.yaml", "readme.md"} {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		content := "blocks: []\n"
		if strings.HasSuffix(name, ".json") {
			content = `{"blocks": []}`
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	w.Close()
	out.Close()

	names, err := collect(t, zipPath)
	if err != nil {
		t.Fatalf("Visit() error = %v", err)
	}
	if want := []string{"pages/about.json", "pages/home.yaml", "posts/hello.yaml"}; !slices.Equal(names, want) {
		t.Errorf("visited %v, want %v", names, want)
	}

	names, err = collect(t, filepath.Join(zipPath, "posts"))
	if err != nil {
		t.Fatalf("Visit() with path in archive error = %v", err)
	}
	if want := []string{"posts/hello.yaml"}; !slices.Equal(names, want) {
		t.Errorf("visited %v, want %v", names, want)
	}

	// archive found in directory gets its own prefix
	names, err = collect(t, dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 3 || !strings.HasPrefix(names[0], "site/") {
		t.Errorf("visited %v, want archive content under site/", names)
	}
}

func TestVisit_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := collect(t, filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing source must fail")
	}
	writeFile(t, filepath.Join(dir, "notes.txt"), "text")
	if _, err := collect(t, filepath.Join(dir, "notes.txt")); err == nil {
		t.Error("unrecognized file must fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Visit(ctx, dir, Native, nil, func(*Document) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Errorf("Visit() with cancelled context = %v", err)
	}
}

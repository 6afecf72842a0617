package blocks_test

import (
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"ghostkit/blocks"
	"ghostkit/ids"
	"ghostkit/styles"
)

type spyWriter struct {
	calls int
	last  *styles.Description
	err   error
}

func (w *spyWriter) WriteStyles(_ *blocks.Binding, d *styles.Description) error {
	w.calls++
	if w.err != nil {
		return w.err
	}
	w.last = d
	return nil
}

func newSession(t *testing.T, w blocks.Writer) *blocks.Session {
	t.Helper()
	return blocks.NewSession(blocks.Builtin(), nil, w, zaptest.NewLogger(t))
}

func TestMount_NewBlock(t *testing.T) {
	w := &spyWriter{}
	s := newSession(t, w)

	b, err := s.Mount("ghostkit/button-single", "client-1", nil)
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	id := ids.Hash("client-1", 0)
	if b.ID() != id {
		t.Errorf("ID() = %q, want %q", b.ID(), id)
	}
	if want := "ghostkit-button-single-" + id; b.ClassName() != want {
		t.Errorf("ClassName() = %q, want %q", b.ClassName(), want)
	}
	if !b.Changed {
		t.Error("binding must be marked changed after identifier was generated")
	}
	if w.calls != 0 {
		t.Errorf("writer called %d times during mount, styles must be set in place", w.calls)
	}

	want := "." + b.ClassName() + " { background-color: #0366d6; color: #ffffff; border-radius: 2px; }"
	if got := s.CSS(b); got != want {
		t.Errorf("CSS() =\n%q\nwant\n%q", got, want)
	}
}

func TestMount_KeepsPersistedIdentifier(t *testing.T) {
	w := &spyWriter{}
	s := newSession(t, w)

	attrs := &blocks.Attributes{ID: "saved", ClassName: "ghostkit-button-single-saved"}
	b, err := s.Mount("ghostkit/button-single", "client-1", attrs)
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	if b.ID() != "saved" || b.Changed {
		t.Errorf("persisted identifier not kept: id %q, changed %v", b.ID(), b.Changed)
	}
	if b.Styles().Len() != 0 {
		t.Error("styles must not be computed in place for persisted identifier")
	}

	if err := s.Update(b, nil); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if w.calls != 1 {
		t.Fatalf("writer called %d times, want 1", w.calls)
	}
	if !styles.Equal(w.last, b.Styles()) {
		t.Error("binding does not remember written styles")
	}

	// nothing changed, nothing to write
	if err := s.Update(b, nil); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if w.calls != 1 {
		t.Errorf("writer called %d times for unchanged styles, want 1", w.calls)
	}
}

func TestMount_DuplicatedBlock(t *testing.T) {
	s := newSession(t, nil)

	first, err := s.Mount("ghostkit/icon-box", "client-1", &blocks.Attributes{ID: "dup", ClassName: "ghostkit-icon-box-dup"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Mount("ghostkit/icon-box", "client-2", &blocks.Attributes{ID: "dup", ClassName: "ghostkit-icon-box-dup"})
	if err != nil {
		t.Fatal(err)
	}
	if first.ID() != "dup" {
		t.Errorf("first block lost its identifier: %q", first.ID())
	}
	if second.ID() == "dup" || second.ClassName() == first.ClassName() {
		t.Errorf("duplicated block kept colliding identifier %q / %q", second.ID(), second.ClassName())
	}
	if !second.Changed {
		t.Error("duplicated block must be marked changed")
	}
	if got, want := s.CSS(second), "."+second.ClassName()+" .ghostkit-icon-box-icon { font-size: 30px; color: #0366d6; }"; got != want {
		t.Errorf("CSS() =\n%q\nwant\n%q", got, want)
	}
}

func TestUpdate_Button(t *testing.T) {
	s := newSession(t, nil)
	b, err := s.Mount("ghostkit/button-single", "client-1", nil)
	if err != nil {
		t.Fatal(err)
	}
	cls := "." + b.ClassName()

	tests := []struct {
		name    string
		changes map[string]any
		want    string
	}{
		{
			name:    "border",
			changes: map[string]any{"borderWeight": 2},
			want:    cls + " { background-color: #0366d6; color: #ffffff; border-radius: 2px; border: 2px solid #00669b; }",
		},
		{
			name:    "hover colors",
			changes: map[string]any{"hoverColor": "#111111", "hoverBorderColor": "#222222"},
			want: cls + " { background-color: #0366d6; color: #ffffff; border-radius: 2px; border: 2px solid #00669b; } " +
				cls + ":hover, " + cls + ":focus { background-color: #111111; border-color: #222222; }",
		},
		{
			name:    "no border",
			changes: map[string]any{"borderWeight": 0, "color": "red"},
			want: cls + " { background-color: red; color: #ffffff; border-radius: 2px; } " +
				cls + ":hover, " + cls + ":focus { background-color: #111111; }",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Update(b, tt.changes); err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			if got := s.CSS(b); got != tt.want {
				t.Errorf("CSS() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestUpdate_WriterError(t *testing.T) {
	w := &spyWriter{err: errors.New("read only")}
	s := newSession(t, w)

	b, err := s.Mount("ghostkit/icon-box", "client-1", &blocks.Attributes{ID: "x1", ClassName: "ghostkit-icon-box-x1"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Update(b, map[string]any{"iconSize": 40}); !errors.Is(err, w.err) {
		t.Fatalf("Update() error = %v, want %v", err, w.err)
	}
	if b.Styles().Len() != 0 {
		t.Error("styles must not change when write failed")
	}
}

func TestUpdate_NoCallback(t *testing.T) {
	w := &spyWriter{}
	s := newSession(t, w)

	own := styles.New().Set(".map", styles.Map(styles.New().Set("height", styles.Int(400))))
	b, err := s.Mount("ghostkit/google-maps", "client-1", &blocks.Attributes{Styles: own})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Update(b, nil); err != nil {
		t.Fatal(err)
	}
	if w.calls != 0 || !styles.Equal(b.Styles(), own) {
		t.Error("styles of block without callback must be kept as is")
	}
	if got := s.CSS(b); got != ".map { height: 400px; }" {
		t.Errorf("CSS() = %q", got)
	}
}

func TestMount_Errors(t *testing.T) {
	s := newSession(t, nil)
	if _, err := s.Mount("core/paragraph", "client-1", nil); !errors.Is(err, blocks.ErrUnknownType) {
		t.Errorf("Mount() error = %v, want unknown type", err)
	}
	if _, err := s.Mount("ghostkit/icon-box", "", nil); err == nil {
		t.Error("Mount() without instance key should fail")
	}
}

func TestSaveProps(t *testing.T) {
	s := newSession(t, nil)

	empty := &blocks.Binding{Type: blocks.GoogleMaps, Attrs: &blocks.Attributes{ClassName: "x"}}
	props := map[string]string{"class": "a"}
	if got := blocks.SaveProps(empty, props); len(got) != 1 || got["class"] != "a" {
		t.Errorf("SaveProps() without styles = %v, want untouched", got)
	}

	b, err := s.Mount("ghostkit/icon-box", "client-1", nil)
	if err != nil {
		t.Fatal(err)
	}
	got := blocks.SaveProps(b, map[string]string{"class": "ghostkit-icon-box " + b.ClassName()})
	if got["class"] != "ghostkit-icon-box "+b.ClassName() {
		t.Errorf("class = %q, custom class must not repeat", got["class"])
	}
	if got[styles.AttrName] != s.CSS(b) {
		t.Errorf("%s = %q, want %q", styles.AttrName, got[styles.AttrName], s.CSS(b))
	}
}

func TestTransform(t *testing.T) {
	s := newSession(t, nil)

	b, err := s.Mount("ghostkit/button-single", "client-1", nil)
	if err != nil {
		t.Fatal(err)
	}
	b.Attrs.Set("ghostkitSpacings", map[string]any{"marginTop": 10})

	moved, err := s.Transform(b, "ghostkit/google-maps", &blocks.Attributes{})
	if err != nil {
		t.Fatal(err)
	}
	if moved.ID() != b.ID() || moved.ClassName() != b.ClassName() {
		t.Errorf("identifier not carried over: %q %q", moved.ID(), moved.ClassName())
	}
	if !styles.Equal(moved.Styles(), b.Styles()) {
		t.Error("styles not carried over")
	}
	if _, ok := moved.Attrs.Get("ghostkitSpacings"); !ok {
		t.Error("other ghostkit attributes not carried over")
	}
	if moved.Changed {
		t.Error("transformed block keeps identifier of the same instance")
	}

	// source without styles carries nothing
	plain := &blocks.Binding{Key: "client-2", Type: blocks.GoogleMaps, Attrs: &blocks.Attributes{ID: "abc"}}
	other, err := s.Transform(plain, "ghostkit/icon-box", &blocks.Attributes{})
	if err != nil {
		t.Fatal(err)
	}
	if other.ID() == "abc" {
		t.Error("identifier carried over from block without styles")
	}
}

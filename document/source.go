package document

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"ghostkit/archive"
)

// Format describes how documents are stored in source files.
type Format struct {
	// Exts lists extensions (with dot) of files in this format.
	Exts []string
	// Read decodes all documents stored in r, name is file path relative to
	// processed source.
	Read func(r io.Reader, name string) ([]*Document, error)
}

// Native is YAML or JSON file with single document.
var Native = Format{
	Exts: []string{".yaml", ".yml", ".json"},
	Read: func(r io.Reader, name string) ([]*Document, error) {
		doc, err := Decode(r, name)
		if err != nil {
			return nil, err
		}
		return []*Document{doc}, nil
	},
}

// Match reports whether file name has one of the format extensions.
func (f Format) Match(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return slices.Contains(f.Exts, ext)
}

// VisitFunc is called for every loaded document.
type VisitFunc func(doc *Document) error

// Visit loads documents from src, which is either a file, a directory
// (processed recursively, entries in natural order) or a zip archive
// optionally followed by path inside it: "site.zip/pages". Problems with
// individual files do not stop processing and are returned together.
func Visit(ctx context.Context, src string, format Format, log *zap.Logger, fn VisitFunc) error {
	if log == nil {
		log = zap.NewNop()
	}
	v := &visitor{format: format, log: log, fn: fn}

	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}
		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := v.dir(ctx, head); err != nil {
				return err
			}
			return v.errs
		}
		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s)", head)
		}

		isArchive, err := archive.IsArchive(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			pathIn := filepath.ToSlash(strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator)))
			if err := v.archive(ctx, head, pathIn, ""); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			return v.errs
		}
		if len(tail) != 0 || !format.Match(head) {
			return fmt.Errorf("input was not recognized as document (%s)", src)
		}
		if err := v.file(head, filepath.Base(head)); err != nil {
			return err
		}
		return v.errs
	}
	return fmt.Errorf("input source was not found (%s)", src)
}

type visitor struct {
	format Format
	log    *zap.Logger
	fn     VisitFunc
	errs   error
}

func (v *visitor) fail(name string, err error) {
	v.log.Error("Unable to process document", zap.String("source", name), zap.Error(err))
	v.errs = multierr.Append(v.errs, fmt.Errorf("%s: %w", name, err))
}

func (v *visitor) read(r io.Reader, name string) {
	docs, err := v.format.Read(r, name)
	if err != nil {
		v.fail(name, err)
		return
	}
	for _, doc := range docs {
		if err := v.fn(doc); err != nil {
			v.fail(doc.Source, err)
		}
	}
}

func (v *visitor) file(path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	v.read(f, name)
	return nil
}

// dir walks directory tree in natural order. Archives found in the tree are
// processed as well, archives inside archives are not.
func (v *visitor) dir(ctx context.Context, root string) error {
	var walkDir func(rel string) error
	walkDir = func(rel string) error {
		entries, err := os.ReadDir(filepath.Join(root, rel))
		if err != nil {
			return err
		}
		slices.SortFunc(entries, func(a, b os.DirEntry) int {
			switch {
			case a.Name() == b.Name():
				return 0
			case natural.Less(a.Name(), b.Name()):
				return -1
			}
			return 1
		})

		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			name := filepath.Join(rel, e.Name())
			path := filepath.Join(root, name)

			if e.IsDir() {
				if err := walkDir(name); err != nil {
					if ctx.Err() != nil {
						return err
					}
					v.log.Warn("Skipping directory", zap.String("path", path), zap.Error(err))
				}
				continue
			}
			if !e.Type().IsRegular() {
				continue
			}

			isArchive, err := archive.IsArchive(path)
			if err != nil {
				v.log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
				continue
			}
			if isArchive {
				if err := v.archive(ctx, path, "", strings.TrimSuffix(name, filepath.Ext(name))); err != nil {
					v.fail(name, err)
				}
				continue
			}
			if !v.format.Match(name) {
				v.log.Debug("Skipping file, not recognized as document", zap.String("file", path))
				continue
			}

			f, err := os.Open(path)
			if err != nil {
				v.fail(name, err)
				continue
			}
			v.read(f, name)
			f.Close()
		}
		return nil
	}

	return walkDir("")
}

// archive processes documents in zip archive under pathIn, names of the
// documents are prefixed with pathOut.
func (v *visitor) archive(ctx context.Context, path, pathIn, pathOut string) error {
	count := 0
	err := archive.Walk(path, pathIn, func(_ string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !v.format.Match(f.Name) {
			v.log.Debug("Skipping file in archive, not recognized as document", zap.String("archive", path), zap.String("file", f.Name))
			return nil
		}
		count++

		r, err := f.Open()
		if err != nil {
			v.fail(f.Name, err)
			return nil
		}
		defer r.Close()

		v.read(r, filepath.Join(pathOut, filepath.FromSlash(f.Name)))
		return nil
	})
	if err != nil {
		return err
	}
	if count == 0 {
		v.log.Debug("Nothing to process", zap.String("archive", path))
	}
	return nil
}

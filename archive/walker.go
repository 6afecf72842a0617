// Package archive builds Walk abstraction on top of "archive/zip".
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/h2non/filetype"
	"github.com/maruel/natural"
)

// WalkFunc is the type of the function called for each document file in
// archive visited by Walk. The archive argument is the path passed to Walk. If
// an error is returned, processing stops.
type WalkFunc func(archive string, file *zip.File) error

// Walk visits all files in the archive with names starting with pattern in
// natural name order ("page2" before "page10"), calling walkFn for each. Any
// entry with absolute path or ".." component makes the whole archive
// unacceptable.
func Walk(archive, pattern string, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	files := make([]*zip.File, 0, len(r.File))
	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if !f.FileInfo().IsDir() && strings.HasPrefix(name, pattern) {
			files = append(files, f)
		}
	}
	slices.SortStableFunc(files, func(a, b *zip.File) int {
		switch {
		case a.Name == b.Name:
			return 0
		case natural.Less(a.Name, b.Name):
			return -1
		}
		return 1
	})

	for _, f := range files {
		if err := walkFn(archive, f); err != nil {
			return err
		}
	}
	return nil
}

func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	return !slices.Contains(strings.Split(name, "/"), "..")
}

// IsArchive detects zip archive by content, file extension is not
// considered.
func IsArchive(fname string) (bool, error) {
	f, err := os.Open(fname)
	if err != nil {
		return false, err
	}
	defer f.Close()

	// filetype needs at most 262 bytes of header
	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	kind, err := filetype.Archive(head[:n])
	if err != nil {
		return false, nil
	}
	return kind.Extension == "zip", nil
}

//go:build !windows

package config

import (
	"os"
	"strings"

	"golang.org/x/term"
)

const reservedNameChars = string(os.PathSeparator) + string(os.PathListSeparator)

// CleanFileName removes characters which cannot be used in output file
// names, leading dots are dropped so names never become hidden.
func CleanFileName(in string) string {
	out := strings.TrimLeft(strings.Map(func(sym rune) rune {
		if strings.ContainsRune(reservedNameChars, sym) {
			return -1
		}
		return sym
	}, strings.TrimSpace(in)), ".")
	if len(out) == 0 {
		out = "_bad_file_name_"
	}
	return out
}

// EnableColorOutput checks if colorized output is possible.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}

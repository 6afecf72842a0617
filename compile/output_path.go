package compile

import (
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"

	"ghostkit/config"
	"ghostkit/state"
)

// buildOutputPath returns output file path for document loaded from src
// (relative to processed source). Source directory structure is kept unless
// requested otherwise, file name is cleaned and if requested transliterated.
func buildOutputPath(src, dst string, env *state.LocalEnv) string {
	return filepath.Join(determineOutputDir(src, dst, env), buildDefaultFileName(src, env.Format, env))
}

func determineOutputDir(src, dst string, env *state.LocalEnv) string {
	if env.NoDirs {
		return dst
	}
	return filepath.Join(dst, cleanDir(filepath.Dir(src), env))
}

func buildDefaultFileName(src string, format config.OutputFormat, env *state.LocalEnv) string {
	return cleanPathSegment(strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)), env) + format.Ext()
}

// cleanDir cleans every segment of relative directory, segments which would
// escape destination are dropped.
func cleanDir(dir string, env *state.LocalEnv) string {
	segments := strings.Split(filepath.ToSlash(filepath.Clean(dir)), "/")
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		if segment == "" || segment == "." || segment == ".." {
			continue
		}
		parts = append(parts, cleanPathSegment(segment, env))
	}
	return filepath.Join(parts...)
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Output.Transliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}

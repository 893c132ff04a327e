package fileutil

import (
	"path/filepath"
	"strings"
)

func GlobEscape(path string) string {
	var r strings.Builder
	for _, c := range path {
		switch c {
		case '*', '?', '[':
			r.WriteRune('[')
			r.WriteRune(c)
			r.WriteRune(']')
		default:
			r.WriteRune(c)
		}
	}
	return r.String()
}

// GlobDir globs for pattern inside dir, escaping any glob metacharacters
// the dir path itself contains.
func GlobDir(dir, pattern string) ([]string, error) {
	return filepath.Glob(filepath.Join(GlobEscape(dir), pattern))
}

var safeNameReplacer = strings.NewReplacer(
	"\x00", "",
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	`"`, "_",
	"<", "_",
	">", "_",
	"|", "_",
)

// SafeFilename maps name to something usable as a single path element on
// any filesystem we care about.
func SafeFilename(name string) string {
	name = safeNameReplacer.Replace(name)
	return strings.TrimSpace(name)
}

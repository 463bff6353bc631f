package yamlutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Unicode spaces that editors and copy-paste sneak into YAML files. They are
// invisible but break indentation-sensitive parsing.
const (
	nbsp       = " "
	figureSp   = " "
	narrowNbsp = " "
)

// NormalizeSpaces replaces known unicode space characters with ASCII spaces.
func NormalizeSpaces(s string) string {
	s = strings.ReplaceAll(s, nbsp, " ")
	s = strings.ReplaceAll(s, figureSp, " ")
	return strings.ReplaceAll(s, narrowNbsp, " ")
}

// Normalize applies full hygiene: unicode spaces to ASCII, CRLF/CR to LF,
// trailing whitespace stripped per line.
func Normalize(s string) string {
	s = NormalizeSpaces(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}

// DefaultNormalizedPath returns the conventional output path for a normalized
// file: the input with a _norm suffix before the extension.
func DefaultNormalizedPath(src string) string {
	ext := filepath.Ext(src)
	return strings.TrimSuffix(src, ext) + "_norm" + ext
}

// NormalizeFile reads src, normalizes it, and writes dst. An empty dst picks
// the default _norm path next to src.
func NormalizeFile(src, dst string) (string, error) {
	if dst == "" {
		dst = DefaultNormalizedPath(src)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", src, err)
	}
	if dir := filepath.Dir(dst); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	if err := os.WriteFile(dst, []byte(Normalize(string(data))), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", dst, err)
	}
	return dst, nil
}

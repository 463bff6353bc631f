package yamlutil

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// includeRE matches a list-item include directive. The target may still carry
// a file: prefix, query params, or an inline comment; CleanIncludeTarget
// handles those.
var includeRE = regexp.MustCompile(`^(\s*)-\s*!include\s+(.+?)\s*$`)

var yamlPathRE = regexp.MustCompile(`([^\s]+\.ya?ml)`)

// CleanIncludeTarget reduces a raw include expression to the referenced file
// path and the query string that followed it, if any. Inline comments and the
// optional file: prefix are stripped.
func CleanIncludeTarget(raw string) (path, query string) {
	s := strings.TrimSpace(raw)
	if pos := strings.Index(s, "#"); pos != -1 {
		s = strings.TrimSpace(s[:pos])
	}
	if pos := strings.Index(s, "?"); pos != -1 {
		query = strings.TrimSpace(s[pos+1:])
		s = strings.TrimSpace(s[:pos])
	}
	if strings.HasPrefix(strings.ToLower(s), "file:") {
		s = strings.TrimSpace(s[5:])
	}
	s = strings.TrimRight(s, "),")
	if m := yamlPathRE.FindString(s); m != "" {
		return m, query
	}
	return s, query
}

// DefaultFlattenedPath returns the conventional output path for a flattened
// route: dist/<stem>_flat.<ext>.
func DefaultFlattenedPath(src string) string {
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	return filepath.Join("dist", strings.TrimSuffix(base, ext)+"_flat"+ext)
}

// Flatten inlines every include directive of a route document. Targets are
// resolved against baseDir. A missing target keeps the original include line
// so the output stays reviewable. An args: block trailing an include is
// preserved as comments next to the spliced content.
func Flatten(baseDir, content string) string {
	lines := strings.Split(NormalizeSpaces(content), "\n")
	var out []string

	for i := 0; i < len(lines); {
		line := lines[i]
		m := includeRE.FindStringSubmatch(line)
		if m == nil {
			out = append(out, line)
			i++
			continue
		}

		indent := m[1]
		target, _ := CleanIncludeTarget(m[2])

		argsLines, next := collectArgsBlock(lines, i+1, indent)

		incPath := target
		if !filepath.IsAbs(incPath) {
			incPath = filepath.Join(baseDir, incPath)
		}
		data, err := os.ReadFile(incPath)
		if err != nil {
			out = append(out, line)
			out = append(out, argsLines...)
			i = next
			continue
		}

		out = append(out, spliceInclude(indent, NormalizeSpaces(string(data)))...)

		if len(argsLines) > 0 {
			out = append(out, indent+"  # ---- args (preserved for reference) ----")
			for _, a := range argsLines {
				out = append(out, indent+"  # "+strings.TrimSpace(a))
			}
		}
		i = next
	}

	return strings.Join(out, "\n")
}

// FlattenFile flattens src and writes dst. An empty dst picks the default
// dist/ output path.
func FlattenFile(baseDir, src, dst string) (string, error) {
	if dst == "" {
		dst = DefaultFlattenedPath(src)
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
	flat := Flatten(baseDir, string(data))
	if err := os.WriteFile(dst, []byte(flat), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", dst, err)
	}
	return dst, nil
}

// collectArgsBlock gathers an args: block indented under an include line.
// Returns the block lines and the index of the first line after it.
func collectArgsBlock(lines []string, start int, indent string) ([]string, int) {
	deeper := regexp.MustCompile(`^` + regexp.QuoteMeta(indent) + `\s+`)
	var block []string
	j := start
	if j < len(lines) && deeper.MatchString(lines[j]) && strings.HasPrefix(strings.TrimSpace(lines[j]), "args:") {
		block = append(block, lines[j])
		j++
		for j < len(lines) && deeper.MatchString(lines[j]) {
			block = append(block, lines[j])
			j++
		}
	}
	return block, j
}

var mappingKeyRE = regexp.MustCompile(`^\s*[\w\-"]+\s*:`)

// spliceInclude renders included file content as a list item at the given
// indent. Content that starts with a mapping key is inlined after the dash;
// anything else becomes a literal block so the output stays valid YAML.
func spliceInclude(indent, content string) []string {
	incLines := strings.Split(content, "\n")
	first := 0
	for first < len(incLines) && strings.TrimSpace(incLines[first]) == "" {
		first++
	}

	dash := indent + "- "
	var firstLine string
	if first < len(incLines) {
		firstLine = incLines[first]
	}

	var out []string
	if mappingKeyRE.MatchString(firstLine) {
		out = append(out, dash+strings.TrimSpace(firstLine))
		rest := strings.Join(incLines[first+1:], "\n")
		if strings.TrimSpace(rest) != "" {
			out = append(out, indentBlock(rest, len(indent)+2)...)
		}
	} else {
		out = append(out, dash+"|")
		out = append(out, indentBlock(content, len(indent)+2)...)
	}
	return out
}

func indentBlock(text string, spaces int) []string {
	pad := strings.Repeat(" ", spaces)
	lines := strings.Split(text, "\n")
	out := make([]string, len(lines))
	for i, line := range lines {
		if line == "" {
			out[i] = ""
			continue
		}
		out[i] = pad + line
	}
	return out
}

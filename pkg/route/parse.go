package route

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/mhadri/routeflow/pkg/types"
	"github.com/mhadri/routeflow/pkg/yamlutil"
)

// Finding is a non-fatal problem discovered while parsing a route file.
type Finding struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (f Finding) String() string {
	if f.Line > 0 {
		return fmt.Sprintf("line %d: %s", f.Line, f.Message)
	}
	return f.Message
}

var includeLineRE = regexp.MustCompile(`^(\s*)-\s*!include\s+(.+?)\s*$`)

// ParseFile parses a route definition from disk. The route name is the file
// stem.
func ParseFile(path string) (*types.Route, []Finding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read route %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	rt, findings := Parse(name, string(data))
	rt.File = path
	return rt, findings, nil
}

// Parse extracts a route from raw file content. Route files carry the
// non-standard !include tag, so this is a tolerant line-oriented parse rather
// than a YAML document load: malformed lines produce findings, never errors.
func Parse(name, content string) (*types.Route, []Finding) {
	rt := &types.Route{Name: name}
	var findings []Finding

	lines := strings.Split(yamlutil.NormalizeSpaces(content), "\n")
	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimSpace(raw)

		switch {
		case strings.HasPrefix(line, "path:"):
			rt.Path = strings.TrimSpace(strings.TrimPrefix(line, "path:"))
		case strings.HasPrefix(line, "method:"):
			rt.Method = strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(line, "method:")))
		case strings.HasPrefix(line, "message:"):
			msg := strings.TrimSpace(strings.TrimPrefix(line, "message:"))
			rt.Response.Message = strings.Trim(msg, `"'`)
		case strings.HasPrefix(line, "statusCode:"):
			val := strings.TrimSpace(strings.TrimPrefix(line, "statusCode:"))
			code, err := strconv.Atoi(val)
			if err != nil {
				findings = append(findings, Finding{Line: lineNo, Message: fmt.Sprintf("invalid statusCode %q", val)})
				continue
			}
			if code < 100 || code > 999 {
				findings = append(findings, Finding{Line: lineNo, Message: fmt.Sprintf("statusCode %d outside 100-999", code)})
			}
			rt.Response.StatusCode = code
		default:
			m := includeLineRE.FindStringSubmatch(raw)
			if m == nil {
				continue
			}
			ref, fs := parseInclude(m[2], lineNo, lines, i, m[1])
			ref.Ordinal = len(rt.Steps) + 1
			rt.Steps = append(rt.Steps, ref)
			findings = append(findings, fs...)
		}
	}

	if rt.Path == "" {
		findings = append(findings, Finding{Message: "route declares no path"})
	}
	if rt.Method == "" {
		findings = append(findings, Finding{Message: "route declares no method"})
	}
	return rt, findings
}

// parseInclude resolves one include directive plus any args: block that
// follows it at a deeper indent.
func parseInclude(raw string, lineNo int, lines []string, idx int, indent string) (types.StepRef, []Finding) {
	var findings []Finding

	target, query := yamlutil.CleanIncludeTarget(raw)
	ref := types.StepRef{
		Target: target,
		Raw:    strings.TrimSpace(raw),
		Line:   lineNo,
	}

	if !strings.HasSuffix(target, ".yaml") && !strings.HasSuffix(target, ".yml") {
		findings = append(findings, Finding{Line: lineNo, Message: fmt.Sprintf("include target %q is not a YAML file", target)})
	}

	args := make(map[string]string)
	if query != "" {
		vals, err := url.ParseQuery(query)
		if err != nil {
			findings = append(findings, Finding{Line: lineNo, Message: fmt.Sprintf("invalid include query %q", query)})
		} else {
			for k := range vals {
				args[k] = vals.Get(k)
			}
		}
	}

	for k, v := range parseArgsBlock(lines, idx+1, indent) {
		args[k] = v
	}
	if len(args) > 0 {
		ref.Args = args
	}
	return ref, findings
}

// parseArgsBlock reads `args:` key/value pairs indented under an include
// line. Anything that is not a simple scalar pair is ignored.
func parseArgsBlock(lines []string, start int, indent string) map[string]string {
	deeper := regexp.MustCompile(`^` + regexp.QuoteMeta(indent) + `\s+`)
	j := start
	if j >= len(lines) || !deeper.MatchString(lines[j]) || !strings.HasPrefix(strings.TrimSpace(lines[j]), "args:") {
		return nil
	}
	args := make(map[string]string)
	for j++; j < len(lines) && deeper.MatchString(lines[j]); j++ {
		kv := strings.SplitN(strings.TrimSpace(lines[j]), ":", 2)
		if len(kv) != 2 || kv[0] == "" {
			continue
		}
		args[strings.TrimSpace(kv[0])] = strings.Trim(strings.TrimSpace(kv[1]), `"'`)
	}
	return args
}

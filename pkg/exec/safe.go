package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
)

type Result struct {
	Stdout    string
	Stderr    string
	Code      int
	Truncated bool
}

// SafeExecutor runs step commands through the platform shell with a bounded
// runtime, bounded output, and a command blocklist.
type SafeExecutor struct {
	Timeout   time.Duration
	MaxOutput int
	Blocklist []string
}

// Run executes command. Step arguments are exposed to the command as
// ROUTEFLOW_ARG_<KEY> environment variables. The caller's context bounds the
// run in addition to the executor's own timeout.
func (e *SafeExecutor) Run(ctx context.Context, command string, args map[string]string) (*Result, error) {
	if strings.TrimSpace(command) == "" {
		return nil, errors.New("command is required")
	}
	if e.isBlocked(command) {
		return nil, fmt.Errorf("command blocked: %s", command)
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := shellCommand(ctx, command)
	cmd.Env = append(os.Environ(), argEnv(args)...)

	stdout := &limitedBuffer{limit: e.MaxOutput}
	stderr := &limitedBuffer{limit: e.MaxOutput}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			return nil, err
		}
	}

	res := &Result{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Code:      code,
		Truncated: stdout.truncated || stderr.truncated,
	}
	if res.Truncated {
		return res, fmt.Errorf("output truncated at %d bytes", e.MaxOutput)
	}
	return res, nil
}

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", command)
	}
	return exec.CommandContext(ctx, "sh", "-c", command)
}

func argEnv(args map[string]string) []string {
	if len(args) == 0 {
		return nil
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, "ROUTEFLOW_ARG_"+sanitizeEnvKey(k)+"="+args[k])
	}
	return env
}

func sanitizeEnvKey(k string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(k) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// isBlocked matches the first word of the command against the blocklist,
// both as written and by basename.
func (e *SafeExecutor) isBlocked(command string) bool {
	if len(e.Blocklist) == 0 {
		return false
	}
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return false
	}
	head := fields[0]
	base := filepath.Base(head)
	for _, blocked := range e.Blocklist {
		if strings.EqualFold(blocked, head) || strings.EqualFold(blocked, base) {
			return true
		}
	}
	return false
}

type limitedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (l *limitedBuffer) Write(p []byte) (int, error) {
	if l.limit <= 0 {
		return l.buf.Write(p)
	}
	remaining := l.limit - l.buf.Len()
	if remaining <= 0 {
		l.truncated = true
		return len(p), nil
	}
	if len(p) > remaining {
		l.truncated = true
		_, _ = l.buf.Write(p[:remaining])
		return len(p), nil
	}
	return l.buf.Write(p)
}

func (l *limitedBuffer) String() string {
	return l.buf.String()
}

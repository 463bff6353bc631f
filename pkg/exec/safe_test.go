package exec

import (
	"context"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestSafeExecutorBlocklist(t *testing.T) {
	e := &SafeExecutor{Blocklist: []string{"rm"}}
	if _, err := e.Run(context.Background(), "rm -rf /tmp/x", nil); err == nil {
		t.Fatalf("expected blocklist error")
	}
	e = &SafeExecutor{Blocklist: []string{"rm"}}
	if _, err := e.Run(context.Background(), "/bin/rm /tmp/x", nil); err == nil {
		t.Fatalf("expected basename blocklist match")
	}
}

func TestSafeExecutorTimeout(t *testing.T) {
	e := &SafeExecutor{Timeout: 50 * time.Millisecond}
	cmd := "sleep 1"
	if runtime.GOOS == "windows" {
		cmd = "Start-Sleep -Seconds 1"
	}
	start := time.Now()
	res, err := e.Run(context.Background(), cmd, nil)
	if err == nil && res.Code == 0 {
		t.Fatalf("expected timeout failure")
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("timeout did not trigger quickly")
	}
}

func TestSafeExecutorContextCancel(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh sleep")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	e := &SafeExecutor{}
	start := time.Now()
	res, err := e.Run(ctx, "sleep 1", nil)
	if err == nil && res.Code == 0 {
		t.Fatalf("expected cancellation failure")
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("cancellation did not trigger quickly")
	}
}

func TestSafeExecutorOutputTruncation(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh printf")
	}
	e := &SafeExecutor{MaxOutput: 10}
	res, err := e.Run(context.Background(), "printf '123456789012345'", nil)
	if err == nil {
		t.Fatalf("expected truncation error")
	}
	if res == nil || !res.Truncated {
		t.Fatalf("expected truncated result, got %+v", res)
	}
	if len(res.Stdout) != 10 {
		t.Fatalf("expected truncated stdout length 10, got %d", len(res.Stdout))
	}
}

func TestSafeExecutorArgEnv(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh variable expansion")
	}
	e := &SafeExecutor{Timeout: 2 * time.Second}
	res, err := e.Run(context.Background(), "echo $ROUTEFLOW_ARG_REGION", map[string]string{"region": "br"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Stdout, "br") {
		t.Fatalf("arg env not injected: %q", res.Stdout)
	}
}

func TestSanitizeEnvKey(t *testing.T) {
	if got := sanitizeEnvKey("max-retries.2"); got != "MAX_RETRIES_2" {
		t.Fatalf("got %q", got)
	}
}

func TestSafeExecutorNonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh exit")
	}
	e := &SafeExecutor{}
	res, err := e.Run(context.Background(), "exit 3", nil)
	if err != nil {
		t.Fatalf("non-zero exit is not an executor error: %v", err)
	}
	if res.Code != 3 {
		t.Fatalf("code: %d", res.Code)
	}
}

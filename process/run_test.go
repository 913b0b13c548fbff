package process_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/shellkit/process"
)

func TestRunCaptureEcho(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Argv:     []string{"echo", "hello", "world"},
		Redirect: process.RedirectCapture,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", result.ExitCode)
	}
	if got := string(result.Output); got != "hello world\n" {
		t.Fatalf("expected 'hello world\\n', got %q", got)
	}
}

func TestRunCaptureMergesStderr(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Argv:     []string{"sh", "-c", "echo out; echo err >&2; echo out2"},
		Redirect: process.RedirectCapture,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := string(result.Output); got != "out\nerr\nout2\n" {
		t.Fatalf("expected interleaved output, got %q", got)
	}
}

func TestRunMergeWritesToStdout(t *testing.T) {
	var out bytes.Buffer
	result, err := process.Run(context.Background(), process.Command{
		Argv:     []string{"sh", "-c", "echo a; echo b >&2"},
		Redirect: process.RedirectMerge,
		Stdout:   &out,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Output != nil {
		t.Fatalf("expected no captured output, got %q", result.Output)
	}
	if out.String() != "a\nb\n" {
		t.Fatalf("expected merged passthrough, got %q", out.String())
	}
}

func TestRunInheritKeepsStreamsApart(t *testing.T) {
	var stdout, stderr bytes.Buffer
	_, err := process.Run(context.Background(), process.Command{
		Argv:     []string{"sh", "-c", "echo a; echo oops >&2"},
		Redirect: process.RedirectInherit,
		Stdout:   &stdout,
		Stderr:   &stderr,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout.String() != "a\n" {
		t.Fatalf("expected 'a' on stdout, got %q", stdout.String())
	}
	if strings.TrimSpace(stderr.String()) != "oops" {
		t.Fatalf("expected 'oops' on stderr, got %q", stderr.String())
	}
}

func TestRunStdin(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Argv:     []string{"cat"},
		Stdin:    strings.NewReader("from stdin"),
		Redirect: process.RedirectCapture,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := string(result.Output); got != "from stdin" {
		t.Fatalf("expected 'from stdin', got %q", got)
	}
}

func TestRunExitCode(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Argv:     []string{"sh", "-c", "exit 42"},
		Redirect: process.RedirectCapture,
	})
	var exitErr *process.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.Code != 42 || result.ExitCode != 42 {
		t.Fatalf("expected exit code 42, got %d / %d", exitErr.Code, result.ExitCode)
	}
}

func TestRunAcceptedExitValues(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Argv:       []string{"sh", "-c", "exit 3"},
		Redirect:   process.RedirectCapture,
		ExitValues: []int{0, 3},
	})
	if err != nil {
		t.Fatalf("expected exit 3 to be accepted, got %v", err)
	}
	if result.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", result.ExitCode)
	}

	_, err = process.Run(context.Background(), process.Command{
		Argv:       []string{"true"},
		Redirect:   process.RedirectCapture,
		ExitValues: []int{1},
	})
	var exitErr *process.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 0 {
		t.Fatalf("expected exit 0 to be rejected, got %v", err)
	}
}

func TestRunTimeout(t *testing.T) {
	start := time.Now()
	result, err := process.Run(context.Background(), process.Command{
		Argv:        []string{"sleep", "10"},
		Redirect:    process.RedirectCapture,
		Timeout:     100 * time.Millisecond,
		GracePeriod: 500 * time.Millisecond,
	})
	if !errors.Is(err, process.ErrTimedOut) {
		t.Fatalf("expected ErrTimedOut, got %v", err)
	}
	var timeoutErr *process.TimeoutError
	if !errors.As(err, &timeoutErr) || timeoutErr.Timeout != 100*time.Millisecond {
		t.Fatalf("expected TimeoutError carrying the timeout, got %v", err)
	}
	if result.ExitCode != -1 {
		t.Fatalf("expected exit code -1, got %d", result.ExitCode)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("process took too long to kill: %v", elapsed)
	}
}

func TestRunTimeoutKillsProcessGroup(t *testing.T) {
	// The grandchild holds the capture pipe; killing only sh would block
	// until WaitDelay.
	start := time.Now()
	_, err := process.Run(context.Background(), process.Command{
		Argv:        []string{"sh", "-c", "sleep 10; echo done"},
		Redirect:    process.RedirectCapture,
		Timeout:     100 * time.Millisecond,
		GracePeriod: 3 * time.Second,
	})
	if !errors.Is(err, process.ErrTimedOut) {
		t.Fatalf("expected ErrTimedOut, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("expected the group to die on SIGTERM, took %v", elapsed)
	}
}

func TestRunBackgroundDescendantDoesNotFailRun(t *testing.T) {
	// sh exits at once; the background sleep keeps the capture pipe open.
	start := time.Now()
	result, err := process.Run(context.Background(), process.Command{
		Argv:        []string{"sh", "-c", "sleep 2 & echo started"},
		Redirect:    process.RedirectCapture,
		GracePeriod: 200 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("expected a clean exit, got %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", result.ExitCode)
	}
	if got := string(result.Output); got != "started\n" {
		t.Errorf("expected 'started\\n', got %q", got)
	}
	if elapsed := time.Since(start); elapsed > 1500*time.Millisecond {
		t.Errorf("expected Run to stop waiting after the grace period, took %v", elapsed)
	}
}

func TestRunBackgroundDescendantKeepsExitCode(t *testing.T) {
	_, err := process.Run(context.Background(), process.Command{
		Argv:        []string{"sh", "-c", "sleep 2 & exit 3"},
		Redirect:    process.RedirectCapture,
		GracePeriod: 200 * time.Millisecond,
	})
	var exitErr *process.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 3 {
		t.Fatalf("expected ExitError with code 3, got %v", err)
	}
}

func TestRunContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := process.Run(ctx, process.Command{
		Argv:        []string{"sleep", "10"},
		Redirect:    process.RedirectCapture,
		GracePeriod: 500 * time.Millisecond,
	})
	if !errors.Is(err, process.ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted, got %v", err)
	}
	if errors.Is(err, process.ErrTimedOut) {
		t.Fatal("caller cancellation must not be reported as a timeout")
	}
}

func TestRunAlreadyCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := process.Run(ctx, process.Command{Argv: []string{"true"}})
	if !errors.Is(err, process.ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted, got %v", err)
	}
	if result != nil {
		t.Fatal("expected no result for a run that never started")
	}
}

func TestRunEmptyArgv(t *testing.T) {
	_, err := process.Run(context.Background(), process.Command{})
	if !errors.Is(err, process.ErrNoExecutable) {
		t.Fatalf("expected ErrNoExecutable, got %v", err)
	}
	var ioErr *process.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError, got %T", err)
	}
}

func TestRunMissingDir(t *testing.T) {
	_, err := process.Run(context.Background(), process.Command{
		Argv: []string{"true"},
		Dir:  filepath.Join(t.TempDir(), "missing"),
	})
	var ioErr *process.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError for missing dir, got %v", err)
	}
}

func TestRunDir(t *testing.T) {
	dir := t.TempDir()
	result, err := process.Run(context.Background(), process.Command{
		Argv:     []string{"pwd"},
		Dir:      dir,
		Redirect: process.RedirectCapture,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := filepath.EvalSymlinks(strings.TrimSpace(string(result.Output)))
	want, _ := filepath.EvalSymlinks(dir)
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRunDuration(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Argv: []string{"sleep", "0.1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Duration < 50*time.Millisecond {
		t.Fatalf("duration too short: %v", result.Duration)
	}
}

func TestRunEnv(t *testing.T) {
	t.Setenv("PROCESS_TEST_INHERITED", "parent")
	t.Setenv("PROCESS_TEST_OVERRIDDEN", "parent")

	result, err := process.Run(context.Background(), process.Command{
		Argv:     []string{"sh", "-c", "echo $PROCESS_TEST_INHERITED $PROCESS_TEST_OVERRIDDEN $PROCESS_TEST_NEW"},
		Redirect: process.RedirectCapture,
		Env: map[string]string{
			"PROCESS_TEST_OVERRIDDEN": "child",
			"PROCESS_TEST_NEW":        "hello123",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(string(result.Output)); got != "parent child hello123" {
		t.Fatalf("expected 'parent child hello123', got %q", got)
	}
}

func TestAdapterDefaults(t *testing.T) {
	var out bytes.Buffer
	a := process.NewAdapter(process.Config{Stdout: &out, GracePeriod: time.Second})
	_, err := a.Run(context.Background(), process.Command{Argv: []string{"echo", "adapter"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "adapter\n" {
		t.Fatalf("expected adapter stdout to be used, got %q", out.String())
	}
}

func TestRedirectString(t *testing.T) {
	for _, r := range []process.Redirect{process.RedirectMerge, process.RedirectCapture, process.RedirectInherit} {
		parsed, ok := process.ParseRedirect(r.String())
		if !ok || parsed != r {
			t.Errorf("ParseRedirect(%q) = %v, %v", r.String(), parsed, ok)
		}
	}
	if _, ok := process.ParseRedirect("bogus"); ok {
		t.Error("expected unknown redirect to fail")
	}
}

func TestMain(m *testing.M) {
	// Children inherit stdin by default; keep them off the terminal.
	if f, err := os.Open(os.DevNull); err == nil {
		os.Stdin = f
	}
	os.Exit(m.Run())
}

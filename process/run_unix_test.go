//go:build unix

package process_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/kbukum/shellkit/process"
)

// alive reports whether pid is a running process. Zombies count as dead.
func alive(pid int) bool {
	if err := syscall.Kill(pid, 0); err != nil {
		return false
	}
	stat, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "stat"))
	if err != nil {
		return true
	}
	// Fields after the parenthesised command name start with the state.
	if i := bytes.LastIndexByte(stat, ')'); i >= 0 && i+2 < len(stat) {
		return stat[i+2] != 'Z'
	}
	return true
}

func TestRunTimeoutKillsGroupMembersIgnoringSIGTERM(t *testing.T) {
	dir := t.TempDir()
	start := time.Now()
	_, err := process.Run(context.Background(), process.Command{
		Argv:        []string{"sh", "-c", `trap "" TERM; sleep 30 & echo $! > pid; wait`},
		Dir:         dir,
		Redirect:    process.RedirectCapture,
		Timeout:     100 * time.Millisecond,
		GracePeriod: 300 * time.Millisecond,
	})
	if !errors.Is(err, process.ErrTimedOut) {
		t.Fatalf("expected ErrTimedOut, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("expected the run to end after the grace period, took %v", elapsed)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "pid"))
	if err != nil {
		t.Fatalf("failed to read pid file: %v", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		t.Fatalf("bad pid %q: %v", raw, err)
	}
	t.Cleanup(func() { _ = syscall.Kill(pid, syscall.SIGKILL) })

	// The SIGKILL is sent before Run returns; allow time for reaping.
	deadline := time.Now().Add(2 * time.Second)
	for alive(pid) {
		if time.Now().After(deadline) {
			t.Fatalf("group member %d still running after Run returned", pid)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestRunTimeoutLeavesGraceForCleanExit(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "cleaned")
	_, err := process.Run(context.Background(), process.Command{
		Argv:        []string{"sh", "-c", `trap "touch cleaned; exit 1" TERM; while :; do sleep 0.05; done`},
		Dir:         dir,
		Redirect:    process.RedirectCapture,
		Timeout:     100 * time.Millisecond,
		GracePeriod: 2 * time.Second,
	})
	if !errors.Is(err, process.ErrTimedOut) {
		t.Fatalf("expected ErrTimedOut, got %v", err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Errorf("expected the SIGTERM handler to run: %v", err)
	}
}

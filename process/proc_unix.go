//go:build unix

package process

import (
	"errors"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// groupKiller stops a child's whole process group: SIGTERM on cancel,
// then SIGKILL once the grace period has passed.
type groupKiller struct {
	grace time.Duration

	mu       sync.Mutex
	pgid     int
	deadline time.Time
	timer    *time.Timer
}

// killGroupOnCancel puts the child in its own process group and makes
// cancellation signal the whole group. The returned func must be called
// after Wait; it kills members still alive past the grace period.
func killGroupOnCancel(c *exec.Cmd, grace time.Duration) func() {
	k := &groupKiller{grace: grace}
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return k.terminate(c.Process.Pid)
	}
	return k.finish
}

func (k *groupKiller) terminate(pgid int) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pgid = pgid
	k.deadline = time.Now().Add(k.grace)
	k.timer = time.AfterFunc(k.grace, func() { _ = syscall.Kill(-pgid, syscall.SIGKILL) })
	if err := syscall.Kill(-pgid, syscall.SIGTERM); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
	return nil
}

// finish runs once Wait has returned. Wait outlasting the grace period
// means WaitDelay fired, so anything left in the group is killed now;
// otherwise the armed timer still covers the rest of the grace period.
func (k *groupKiller) finish() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.timer == nil || time.Now().Before(k.deadline) {
		return
	}
	k.timer.Stop()
	_ = syscall.Kill(-k.pgid, syscall.SIGKILL)
}

// exitCode reports the exit status, using the shell's 128+signal
// convention for children killed by a signal.
func exitCode(state *os.ProcessState) int {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return state.ExitCode()
}

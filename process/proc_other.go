//go:build !unix

package process

import (
	"os"
	"os/exec"
	"time"
)

// killGroupOnCancel falls back to killing only the direct child.
func killGroupOnCancel(c *exec.Cmd, _ time.Duration) func() {
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return c.Process.Kill()
	}
	return func() {}
}

func exitCode(state *os.ProcessState) int {
	return state.ExitCode()
}

package shell

import (
	"io"
	"slices"
	"time"

	"github.com/kbukum/shellkit/process"
	"github.com/kbukum/shellkit/util"
)

// Request is a finalized, immutable description of one run. Exec.Request
// returns a deep copy, so changing it never affects the Exec.
type Request struct {
	Name        string
	Args        []string
	Paths       []string
	WorkDir     string
	Env         map[string]string
	Redirect    process.Redirect
	Stdin       io.Reader
	Timeout     time.Duration
	GracePeriod time.Duration
	ExitValues  []int
}

func (r Request) clone() Request {
	r.Args = slices.Clone(r.Args)
	r.Paths = slices.Clone(r.Paths)
	r.Env = util.CloneMap(r.Env)
	r.ExitValues = slices.Clone(r.ExitValues)
	return r
}

// Accepts reports whether code is an accepted exit code.
func (r Request) Accepts(code int) bool {
	return util.Contains(r.ExitValues, code)
}

// CommandLine returns the unresolved name followed by the arguments.
func (r Request) CommandLine() []string {
	return append([]string{r.Name}, r.Args...)
}

// Captures reports whether output is captured in memory.
func (r Request) Captures() bool {
	return r.Redirect == process.RedirectCapture
}

func (r Request) command(argv []string) process.Command {
	return process.Command{
		Argv:        argv,
		Dir:         r.WorkDir,
		Env:         r.Env,
		Redirect:    r.Redirect,
		Stdin:       r.Stdin,
		ExitValues:  r.ExitValues,
		Timeout:     r.Timeout,
		GracePeriod: r.GracePeriod,
	}
}

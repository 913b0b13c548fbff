package process

import "time"

// Result holds the status of a finished subprocess.
type Result struct {
	// Output is the captured combined output. Nil unless RedirectCapture.
	Output []byte
	// ExitCode is the process exit code. -1 if the process never exited on
	// its own.
	ExitCode int
	// Duration is how long the process ran.
	Duration time.Duration
}

package shell

// State is the lifecycle stage of an Exec.
type State int

const (
	StateUnconfigured State = iota
	StateConfigured
	StateExecuting
	StateCompleted
	StateFailed
)

var stateNames = [...]string{"unconfigured", "configured", "executing", "completed", "failed"}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Done reports whether the Exec has been run.
func (s State) Done() bool { return s >= StateExecuting }

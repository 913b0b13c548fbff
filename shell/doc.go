// Package shell runs external programs as single-use actions.
//
// An Exec is configured with chained calls, then run once:
//
//	res, err := shell.New(ctx).
//		Command("go", "build", "./...").
//		WorkingDir("service").
//		Env("CGO_ENABLED", "0").
//		ReadOutput(true).
//		Timeout(5 * time.Minute).
//		Run(context.Background())
//
// The executable is resolved when Run is called, never earlier. Failures
// are always *Error values whose Kind is one of ExecutableNotFound,
// AbnormalExit, Timeout or ExecutionFailure; use errors.Is with the
// matching sentinel or switch on Kind.
package shell

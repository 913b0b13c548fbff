// Package script provides the execution context shell actions run in.
//
// A Context fixes the base directory that relative working directories and
// search paths resolve against, and hands out shell.Exec actions wired with
// its logger, resolver, runtime, instrumentation and configured defaults.
//
//	sc, err := script.FromConfig(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer sc.Close(ctx)
//
//	res, err := sc.Exec("make", "test").WorkingDir("service").Run(ctx)
package script

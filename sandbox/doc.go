// Package sandbox provides time-bounded execution of untrusted code.
//
// The sandbox package implements the execution engine that runs a
// submission exactly once: the source text is written into a uniquely named
// temporary directory, the configured interpreter is spawned on it with no
// stdin, stdout and stderr are captured, and the run is killed when its
// wall-clock budget elapses. The directory is removed on every exit path.
//
// Isolation stops at the process boundary. No syscall filtering or cgroup
// limits are applied.
//
// Every outcome is a value, never an error:
//
//	executor, err := sandbox.NewExecutor(logger, cfg)
//	result := executor.Run(ctx, "print('Hello, World!')", sandbox.DefaultTimeout)
//	switch result.Status {
//	case sandbox.StatusSuccess:
//	    fmt.Print(result.Stdout)
//	case sandbox.StatusNonZeroExit, sandbox.StatusTimedOut, sandbox.StatusLaunchFailure:
//	    fmt.Println(result.ErrorMessage())
//	}
package sandbox

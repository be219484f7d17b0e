// Package sandbox provides time-bounded execution of untrusted code.
//
// The sandbox package implements the execution engine for submitted
// programs. Every run gets its own ephemeral working directory which is
// removed before the run returns, whatever the outcome.
package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Status classifies how an execution ended
type Status string

// Execution outcomes
const (
	StatusSuccess       Status = "success"
	StatusNonZeroExit   Status = "nonzero_exit"
	StatusTimedOut      Status = "timed_out"
	StatusLaunchFailure Status = "launch_failure"
)

// DefaultTimeout is the wall-clock budget of a run when none is given
const DefaultTimeout = 30 * time.Second

// TimeoutMessage is reported as the error of every timed out run
const TimeoutMessage = "Code execution timed out"

// FilePermission is the mode of the materialized source file
const FilePermission = 0600

// Artifact naming
const (
	ArtifactDirPattern = "codescore-exec-*"
	ArtifactBaseName   = "main"
)

// ExecutionResult is the outcome of a single run.
//
// Stdout and Stderr are only populated for StatusSuccess and
// StatusNonZeroExit; the other statuses carry Error instead.
type ExecutionResult struct {
	Status   Status
	Stdout   string
	Stderr   string
	ExitCode int
	Error    string
	Duration time.Duration
	// Artifact is the path of the (already removed) working directory
	Artifact string
}

// Succeeded reports whether the program exited with status 0 in time
func (r ExecutionResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

// ErrorMessage returns the primary error signal of a failed run
func (r ExecutionResult) ErrorMessage() string {
	if r.Status == StatusNonZeroExit {
		return r.Stderr
	}
	return r.Error
}

// Executor runs submitted source text once under a timeout
type Executor interface {
	Run(ctx context.Context, source string, timeout time.Duration) ExecutionResult
}

// Command describes a child process invocation
type Command struct {
	Args []string
	Dir  string
	Env  []string
}

// CommandRunner defines an interface for executing system commands
type CommandRunner interface {
	RunCommand(ctx context.Context, cmd Command) (stdout, stderr string, exitCode int, err error)
}

// ErrLaunch marks errors raised before the child process produced an exit status
var ErrLaunch = errors.New("process launch failed")

// RealCommandRunner implements CommandRunner using actual exec commands
type RealCommandRunner struct {
	// WaitDelay bounds how long output pipes are drained after the process is killed
	WaitDelay time.Duration
}

// RunCommand executes the given command with no stdin. A context
// cancellation kills the whole process group.
func (r RealCommandRunner) RunCommand(ctx context.Context, c Command) (stdout, stderr string, exitCode int, err error) {
	if len(c.Args) < 1 {
		return "", "", 0, fmt.Errorf("%w: no command provided", ErrLaunch)
	}

	cmd := exec.CommandContext(ctx, c.Args[0], c.Args[1:]...) //nolint:gosec // Running submitted code is the intended functionality
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.Stdin = nil
	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = 2 * time.Second
	}
	killProcessGroupOnCancel(cmd)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if err := cmd.Start(); err != nil {
		return "", "", 0, fmt.Errorf("%w: %w", ErrLaunch, err)
	}

	err = cmd.Wait()
	// Whatever the submission left running in its group dies with it
	_ = killProcessGroup(cmd)

	if err != nil {
		var exitError *exec.ExitError
		switch {
		case errors.As(err, &exitError):
			return stdoutBuf.String(), stderrBuf.String(), exitError.ExitCode(), nil
		case errors.Is(err, exec.ErrWaitDelay):
			// The child exited but a process it spawned kept the output pipes open
			return stdoutBuf.String(), stderrBuf.String(), cmd.ProcessState.ExitCode(), nil
		default:
			return stdoutBuf.String(), stderrBuf.String(), -1, err
		}
	}

	return stdoutBuf.String(), stderrBuf.String(), 0, nil
}

// FileSystem defines an interface for file system operations
type FileSystem interface {
	MkdirTemp(dir, pattern string) (string, error)
	WriteFile(filename string, data []byte, perm os.FileMode) error
	RemoveAll(path string) error
}

// RealFileSystem implements FileSystem using actual file system operations
type RealFileSystem struct{}

func (RealFileSystem) MkdirTemp(dir, pattern string) (string, error) {
	return os.MkdirTemp(dir, pattern)
}

func (RealFileSystem) WriteFile(filename string, data []byte, perm os.FileMode) error {
	return os.WriteFile(filename, data, perm)
}

func (RealFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

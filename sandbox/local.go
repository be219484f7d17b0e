package sandbox

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// LocalExecutor implements Executor by running an interpreter as a host
// child process. Isolation stops at the process boundary and the timeout.
type LocalExecutor struct {
	logger          *zap.Logger
	interpreter     string
	interpreterArgs []string
	fileSuffix      string
	env             []string
	cmdRunner       CommandRunner
	fs              FileSystem
	tempRoot        string
}

// LocalExecutorOption defines a functional option for LocalExecutor
type LocalExecutorOption func(*LocalExecutor)

// WithLocalCommandRunner sets the CommandRunner for LocalExecutor
func WithLocalCommandRunner(cmdRunner CommandRunner) LocalExecutorOption {
	return func(l *LocalExecutor) {
		l.cmdRunner = cmdRunner
	}
}

// WithLocalFileSystem sets the FileSystem for LocalExecutor
func WithLocalFileSystem(fs FileSystem) LocalExecutorOption {
	return func(l *LocalExecutor) {
		l.fs = fs
	}
}

// WithInterpreterArgs sets flags passed to the interpreter before the source file
func WithInterpreterArgs(args ...string) LocalExecutorOption {
	return func(l *LocalExecutor) {
		l.interpreterArgs = append([]string(nil), args...)
	}
}

// WithFileSuffix sets the extension of the materialized source file
func WithFileSuffix(suffix string) LocalExecutorOption {
	return func(l *LocalExecutor) {
		l.fileSuffix = suffix
	}
}

// WithEnvironment appends KEY=VALUE pairs to the child environment
func WithEnvironment(env ...string) LocalExecutorOption {
	return func(l *LocalExecutor) {
		l.env = append(l.env, env...)
	}
}

// WithTempRoot sets the parent directory of the ephemeral artifacts.
// Empty means os.TempDir.
func WithTempRoot(dir string) LocalExecutorOption {
	return func(l *LocalExecutor) {
		l.tempRoot = dir
	}
}

// NewLocalExecutor creates a new LocalExecutor with default implementations and optional interfaces
func NewLocalExecutor(logger *zap.Logger, interpreter string, opts ...LocalExecutorOption) *LocalExecutor {
	executor := &LocalExecutor{
		logger:      logger,
		interpreter: interpreter,
		fileSuffix:  ".py",
		cmdRunner:   &RealCommandRunner{},
		fs:          &RealFileSystem{},
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor
}

// Run materializes source into a fresh working directory, executes it and
// removes the directory again before returning. All failures are reported
// through the returned ExecutionResult.
func (l *LocalExecutor) Run(ctx context.Context, source string, timeout time.Duration) ExecutionResult {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	start := time.Now()

	workdir, err := l.fs.MkdirTemp(l.tempRoot, ArtifactDirPattern)
	if err != nil {
		return l.launchFailure(start, "", fmt.Errorf("failed to create workdir: %w", err))
	}
	defer l.cleanup(workdir)

	codeFilePath := filepath.Join(workdir, ArtifactBaseName+l.fileSuffix)
	if writeErr := l.fs.WriteFile(codeFilePath, []byte(source), FilePermission); writeErr != nil {
		return l.launchFailure(start, workdir, fmt.Errorf("failed to write user code: %w", writeErr))
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := make([]string, 0, len(l.interpreterArgs)+2)
	args = append(args, l.interpreter)
	args = append(args, l.interpreterArgs...)
	args = append(args, codeFilePath)

	stdout, stderr, exitCode, err := l.cmdRunner.RunCommand(ctxWithTimeout, Command{
		Args: args,
		Dir:  workdir,
		Env:  l.env,
	})

	// A non-negative exit code without error means the program ended on its own,
	// even if the deadline passed while its output was still draining.
	exited := err == nil && exitCode >= 0

	// Otherwise a deadline, ours or the caller's, wins over whatever the kill produced
	if !exited && errors.Is(ctxWithTimeout.Err(), context.DeadlineExceeded) {
		l.logger.Warn("execution timed out",
			zap.String("workdir", workdir),
			zap.Duration("timeout", timeout))
		return ExecutionResult{
			Status:   StatusTimedOut,
			ExitCode: -1,
			Error:    TimeoutMessage,
			Duration: time.Since(start),
			Artifact: workdir,
		}
	}

	if !exited && ctx.Err() != nil {
		return l.launchFailure(start, workdir, fmt.Errorf("execution canceled: %w", ctx.Err()))
	}

	if err != nil {
		return l.launchFailure(start, workdir, fmt.Errorf("failed to execute command: %w", err))
	}

	status := StatusSuccess
	if exitCode != 0 {
		status = StatusNonZeroExit
	}

	return ExecutionResult{
		Status:   status,
		Stdout:   stdout,
		Stderr:   stderr,
		ExitCode: exitCode,
		Duration: time.Since(start),
		Artifact: workdir,
	}
}

func (l *LocalExecutor) launchFailure(start time.Time, workdir string, err error) ExecutionResult {
	l.logger.Error("execution could not be launched", zap.Error(err))
	return ExecutionResult{
		Status:   StatusLaunchFailure,
		ExitCode: -1,
		Error:    err.Error(),
		Duration: time.Since(start),
		Artifact: workdir,
	}
}

func (l *LocalExecutor) cleanup(workdir string) {
	if err := l.fs.RemoveAll(workdir); err != nil {
		l.logger.Error("failed to remove workdir", zap.String("path", workdir), zap.Error(err))
	}
}

package sandbox

import (
	"fmt"
	"os/exec"

	"go.uber.org/zap"

	"github.com/isdmx/codescore/config"
)

// NewExecutor creates the sandbox executor described by the configuration.
// The interpreter must resolve on PATH (or be an absolute path).
func NewExecutor(logger *zap.Logger, cfg *config.Config) (Executor, error) {
	interpreter, err := exec.LookPath(cfg.Sandbox.Interpreter)
	if err != nil {
		return nil, fmt.Errorf("sandbox interpreter %q not found: %w", cfg.Sandbox.Interpreter, err)
	}

	logger.Info("sandbox executor configured",
		zap.String("interpreter", interpreter),
		zap.Strings("interpreter_args", cfg.Sandbox.InterpreterArgs),
		zap.Duration("timeout", cfg.GetTimeout()),
		zap.Int("environment_vars", len(cfg.Sandbox.Environment)))

	return NewLocalExecutor(logger, interpreter,
		WithInterpreterArgs(cfg.Sandbox.InterpreterArgs...),
		WithFileSuffix(cfg.Sandbox.FileSuffix),
		WithEnvironment(cfg.Sandbox.Environment...),
	), nil
}

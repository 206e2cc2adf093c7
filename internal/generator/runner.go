package generator

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	apperrors "sheetclean/internal/errors"
)

// Command is an external program invocation
type Command struct {
	Name string
	Args []string
	Dir  string
}

// String renders the command line for logs
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Result is what a finished process reported. ExitCode 0 means success.
type Result struct {
	ExitCode int
	Output   []byte
}

// Runner executes external commands
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands as child processes of this one
type ExecRunner struct{}

// Run starts the command and waits for it. A process that ran and exited
// non-zero is not an error here; its code is returned in Result. Errors are
// reserved for processes that could not be started or were cancelled.
func (ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir

	output, err := c.CombinedOutput()
	result := Result{Output: output}
	if err == nil {
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, apperrors.NewProcessError("generator was cancelled", ctxErr).WithContext("command", cmd.String())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	return result, apperrors.NewProcessError("failed to start generator", err).WithContext("command", cmd.String())
}

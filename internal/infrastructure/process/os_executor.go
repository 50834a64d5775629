package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Result is the captured outcome of a finished command
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner runs a command to completion
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// Executor runs OS commands with a timeout and a fixed environment
type Executor struct {
	timeout time.Duration
	workDir string
	env     []string
}

// NewExecutor creates a new process executor
func NewExecutor() *Executor {
	return NewExecutorWithOptions(5*time.Minute, "", nil)
}

// NewExecutorWithOptions creates a new process executor with custom options
func NewExecutorWithOptions(timeout time.Duration, workDir string, env []string) *Executor {
	if env == nil {
		env = os.Environ()
	}

	return &Executor{
		timeout: timeout,
		workDir: workDir,
		env:     env,
	}
}

// Run executes name with args and waits for it. A non-zero exit is an
// error that still carries the captured output.
func (e *Executor) Run(ctx context.Context, name string, args ...string) (Result, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = e.workDir
	cmd.Env = e.env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, fmt.Errorf("%s exited with status %d: %s", name, result.ExitCode, lastLine(stderr.String()))
	}
	result.ExitCode = -1
	return result, fmt.Errorf("failed to run %s: %w", name, err)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

var _ Runner = (*Executor)(nil)

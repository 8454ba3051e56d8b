package system

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Result holds the captured output of a finished command
type Result struct {
	Command  string
	Stdout   string
	Stderr   string
	ExitCode int
}

// Combined returns stdout followed by stderr
func (r *Result) Combined() string {
	if r == nil {
		return ""
	}
	return r.Stdout + r.Stderr
}

// Runner executes external commands. Run is for commands that change
// system state; Probe is for read-only queries whose exit status the
// caller interprets itself.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*Result, error)
	Probe(ctx context.Context, name string, args ...string) (*Result, error)
}

// CommandError is returned when a command could not be started or exited
// with a non-zero status
type CommandError struct {
	Result *Result
	Err    error
}

func (e *CommandError) Error() string {
	if e.Result.ExitCode > 0 {
		return fmt.Sprintf("%s: exit status %d", e.Result.Command, e.Result.ExitCode)
	}
	return fmt.Sprintf("%s: %v", e.Result.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Executor handles execution of external commands
type Executor struct {
	dryRun bool
	debug  bool
	stdin  io.Reader
	out    io.Writer
}

// ExecutorOption configures an Executor
type ExecutorOption func(*Executor)

// WithDryRun prints state-changing commands instead of running them.
// Probes still run.
func WithDryRun(dryRun bool) ExecutorOption {
	return func(e *Executor) {
		e.dryRun = dryRun
	}
}

// WithOutput sets where command output, debug and dry-run lines are written
func WithOutput(w io.Writer) ExecutorOption {
	return func(e *Executor) {
		e.out = w
	}
}

// WithStdin sets the stdin handed to state-changing commands
func WithStdin(r io.Reader) ExecutorOption {
	return func(e *Executor) {
		e.stdin = r
	}
}

// NewExecutor creates a new executor. State-changing commands inherit the
// process stdin so passphrase prompts reach the terminal.
func NewExecutor(debug bool, opts ...ExecutorOption) *Executor {
	e := &Executor{
		debug: debug,
		stdin: os.Stdin,
		out:   os.Stdout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DryRun reports whether state-changing commands are suppressed
func (e *Executor) DryRun() bool {
	return e.dryRun
}

// Run executes a state-changing command. Non-empty stdout and stderr are
// echoed once the command finishes, before any error is returned.
func (e *Executor) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if e.dryRun {
		fmt.Fprintf(e.out, "[DRY RUN] %s\n", cmd.String())
		return &Result{Command: cmd.String()}, nil
	}
	cmd.Stdin = e.stdin

	result, err := e.runCmd(cmd)
	e.echo(result)
	if err != nil {
		return result, err
	}
	if result.ExitCode != 0 {
		return result, &CommandError{Result: result, Err: fmt.Errorf("exit status %d", result.ExitCode)}
	}
	return result, nil
}

// Probe executes a read-only command without echoing its output. A
// non-zero exit status is reported in the result, not as an error; only a
// failure to start the command is an error.
func (e *Executor) Probe(ctx context.Context, name string, args ...string) (*Result, error) {
	return e.runCmd(exec.CommandContext(ctx, name, args...))
}

func (e *Executor) runCmd(cmd *exec.Cmd) (*Result, error) {
	if e.debug {
		fmt.Fprintf(e.out, "[DEBUG] Executing: %s\n", cmd.String())
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Command: cmd.String(),
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		result.ExitCode = -1
		return result, &CommandError{Result: result, Err: err}
	}
	return result, nil
}

func (e *Executor) echo(result *Result) {
	for _, stream := range []string{result.Stdout, result.Stderr} {
		if strings.TrimSpace(stream) != "" {
			fmt.Fprintln(e.out, strings.TrimRight(stream, "\n"))
		}
	}
}

// CommandExists checks if a command is available in PATH
func (e *Executor) CommandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// CheckDependencies verifies required commands are available
func (e *Executor) CheckDependencies(deps []string) error {
	var missing []string
	for _, dep := range deps {
		if !e.CommandExists(dep) {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required commands: %s",
			strings.Join(missing, ", "))
	}
	return nil
}

// Package executor runs external programs with output capture and a bounded
// run time.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// Result holds the output and exit status of a command execution
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
	Duration time.Duration
}

// Executor defines the interface for command execution
type Executor interface {
	// Execute runs program with args. A non-nil error is returned for any
	// failure: non-zero exit, timeout or the program not starting at all.
	// The Result is always non-nil.
	Execute(ctx context.Context, program string, args []string, opts ...Option) (*Result, error)
}

// Options configures command execution behavior
type Options struct {
	// Timeout bounds a single execution; zero means no limit
	Timeout time.Duration

	// Environment variables (appended to current env)
	Env map[string]string

	// Custom stdout/stderr writers, in addition to capture
	StdoutWriter io.Writer
	StderrWriter io.Writer
}

// Option is a function that modifies Options
type Option func(*Options)

// ErrTimeout is wrapped by errors returned when the timeout fired
var ErrTimeout = errors.New("command timed out")

const waitDelay = 2 * time.Second

// CommandExecutor implements Executor on top of os/exec
type CommandExecutor struct {
	options Options
}

// New creates a CommandExecutor with base options applied to every call
func New(opts ...Option) *CommandExecutor {
	e := &CommandExecutor{options: Options{Env: make(map[string]string)}}
	for _, opt := range opts {
		opt(&e.options)
	}
	return e
}

// Execute implements the Executor interface
func (e *CommandExecutor) Execute(ctx context.Context, program string, args []string, opts ...Option) (*Result, error) {
	options := e.mergeOptions(opts...)

	runCtx := ctx
	if options.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, program, args...)
	// rsync may leave an ssh child holding the output pipes after a kill
	cmd.WaitDelay = waitDelay
	if len(options.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range options.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	if options.StdoutWriter != nil {
		cmd.Stdout = io.MultiWriter(&stdoutBuf, options.StdoutWriter)
	}
	cmd.Stderr = &stderrBuf
	if options.StderrWriter != nil {
		cmd.Stderr = io.MultiWriter(&stderrBuf, options.StderrWriter)
	}

	start := time.Now()
	err := cmd.Run()

	result := &Result{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		Duration: time.Since(start),
	}

	// Get exit code
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.ExitCode = 0
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		result.ExitCode = -1
	}

	// The parent context being cancelled is an interrupt, not a timeout
	if err != nil && ctx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		result.TimedOut = true
		return result, fmt.Errorf("%s: %w after %s", program, ErrTimeout, options.Timeout)
	}

	if err != nil {
		if ctx.Err() != nil {
			return result, fmt.Errorf("%s: %w", program, ctx.Err())
		}
		return result, fmt.Errorf("command execution failed: %w", err)
	}
	return result, nil
}

func (e *CommandExecutor) mergeOptions(opts ...Option) Options {
	merged := e.options
	merged.Env = make(map[string]string, len(e.options.Env))
	for k, v := range e.options.Env {
		merged.Env[k] = v
	}

	for _, opt := range opts {
		opt(&merged)
	}
	return merged
}

// WithTimeout bounds a single execution
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithEnvVar adds a single environment variable
func WithEnvVar(key, value string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string)
		}
		o.Env[key] = value
	}
}

// WithStdoutWriter sets a custom stdout writer
func WithStdoutWriter(w io.Writer) Option {
	return func(o *Options) {
		o.StdoutWriter = w
	}
}

// WithStderrWriter sets a custom stderr writer
func WithStderrWriter(w io.Writer) Option {
	return func(o *Options) {
		o.StderrWriter = w
	}
}

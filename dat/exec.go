package dat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long Wait lingers on output pipes held open by children of a
// killed dat process.
const waitDelay = 2 * time.Second

// executor runs dat subprocesses. The working directory is handed to each process;
// the calling process never changes directory, so concurrent calls cannot collide.
type executor struct {
	path    string
	env     map[string]string
	timeout time.Duration
	logger  *slog.Logger
}

// withTimeout applies the configured deadline, if any.
func (e *executor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout > 0 {
		return context.WithTimeout(ctx, e.timeout)
	}
	return context.WithCancel(ctx)
}

// setupCmd configures the command with working directory and environment variables.
func (e *executor) setupCmd(cmd *exec.Cmd, dir string, c Command) {
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay

	// Only set Env if we have custom environment variables to add.
	if len(e.env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range e.env {
			cmd.Env = setEnvVar(cmd.Env, k, v)
		}
	}

	if c.Stdin != nil {
		cmd.Stdin = bytes.NewReader(c.Stdin)
	}
}

// setEnvVar updates or adds an environment variable in an env slice.
func setEnvVar(env []string, key, value string) []string {
	prefix := key + "="
	for i, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}

// run executes c in dir and returns its standard output.
//
// Any standard error output fails the call with an *ExecutionError, whatever the exit
// status or standard output. A failing exit status with output on standard output is
// not an execution failure: dat reports error records that way, and the classifier
// reads them.
func (e *executor) run(ctx context.Context, dir string, c Command) (string, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.path, c.Args...)
	e.setupCmd(cmd, dir, c)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	e.logger.Debug("dat command finished",
		slog.String("command", c.String()),
		slog.String("dir", dir),
		slog.Duration("duration", time.Since(start)),
		slog.Int("stdout_bytes", stdout.Len()),
		slog.Int("stderr_bytes", stderr.Len()),
		slog.Any("error", err))

	if stderr.Len() > 0 {
		return "", &ExecutionError{Command: c.String(), Stderr: stderr.String(), Err: err}
	}
	if err != nil {
		if ctx.Err() != nil {
			return "", &ExecutionError{Command: c.String(), Err: ctx.Err()}
		}
		if isNotFound(err) {
			return "", &ExecutionError{Command: c.String(), Err: fmt.Errorf("%w: %v", ErrToolNotFound, err)}
		}
		if stdout.Len() == 0 {
			return "", &ExecutionError{Command: c.String(), Err: err}
		}
	}
	return stdout.String(), nil
}

// start launches c in dir with its standard output exposed as a live Stream.
func (e *executor) start(ctx context.Context, dir string, c Command) (*Stream, error) {
	ctx, cancel := e.withTimeout(ctx)

	cmd := exec.CommandContext(ctx, e.path, c.Args...)
	e.setupCmd(cmd, dir, c)

	s := &Stream{
		cmd:     cmd,
		ctx:     ctx,
		cancel:  cancel,
		command: c.String(),
		logger:  e.logger,
		started: time.Now(),
	}
	cmd.Stderr = &s.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, &ExecutionError{Command: s.command, Err: fmt.Errorf("create stdout pipe: %w", err)}
	}
	s.stdout = stdout

	if err := cmd.Start(); err != nil {
		cancel()
		if isNotFound(err) {
			err = fmt.Errorf("%w: %v", ErrToolNotFound, err)
		}
		return nil, &ExecutionError{Command: s.command, Err: err}
	}

	e.logger.Debug("dat stream started",
		slog.String("command", s.command),
		slog.String("dir", dir),
		slog.Int("pid", cmd.Process.Pid))
	return s, nil
}

// isNotFound reports whether the binary itself could not be found or executed.
func isNotFound(err error) bool {
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return true
	}
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission)
}

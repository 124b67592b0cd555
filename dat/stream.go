package dat

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"
)

// Stream is the live standard output of a running dat command.
//
// Read it to the end, then Close it. Close waits for the process and reports an
// *ExecutionError if dat wrote to standard error or exited with a failure. Closing
// before the end stops the process; that early stop is not reported as an error.
// Close is safe to call more than once.
type Stream struct {
	cmd     *exec.Cmd
	ctx     context.Context
	cancel  context.CancelFunc
	stdout  io.ReadCloser
	stderr  bytes.Buffer
	command string
	logger  *slog.Logger
	started time.Time

	eof       bool
	closeOnce sync.Once
	closeErr  error
}

// Read implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) {
	n, err := s.stdout.Read(p)
	if errors.Is(err, io.EOF) {
		s.eof = true
	}
	return n, err
}

// Command returns the rendered command line.
func (s *Stream) Command() string {
	return s.command
}

// Close releases the stream and waits for dat to exit.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.close()
	})
	return s.closeErr
}

func (s *Stream) close() error {
	defer s.cancel()

	stoppedEarly := !s.eof
	if stoppedEarly {
		s.cancel()
	}
	waitErr := s.cmd.Wait()

	s.logger.Debug("dat stream closed",
		slog.String("command", s.command),
		slog.Duration("duration", time.Since(s.started)),
		slog.Bool("stopped_early", stoppedEarly),
		slog.Int("stderr_bytes", s.stderr.Len()),
		slog.Any("error", waitErr))

	if s.stderr.Len() > 0 {
		return &ExecutionError{Command: s.command, Stderr: s.stderr.String(), Err: waitErr}
	}
	if waitErr == nil || stoppedEarly {
		return nil
	}
	if ctxErr := s.ctx.Err(); ctxErr != nil {
		return &ExecutionError{Command: s.command, Err: ctxErr}
	}
	return &ExecutionError{Command: s.command, Err: waitErr}
}

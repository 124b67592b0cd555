package ndjson

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidBatchSize indicates a batch size below one.
var ErrInvalidBatchSize = errors.New("batch size must be positive")

// BatchFunc receives one batch of raw lines. The slice is not reused after the call.
type BatchFunc func(batch []string) error

// RecordBatchFunc receives one batch of decoded records.
type RecordBatchFunc func(batch []Value) error

// Batches reads rc line by line and calls fn with every size lines, then once more
// with any remainder. Lines are delivered without their terminator; a final line
// lacking a newline is still delivered.
//
// rc is closed exactly once before Batches returns, whether the stream ran out, a read
// failed, or fn returned an error or panicked. An error from fn stops the stream and is
// returned unchanged; otherwise an error from Close is returned as is, which lets a
// subprocess stream report its failure after the last batch. If the stream is empty fn
// is never called.
func Batches(rc io.ReadCloser, size int, fn BatchFunc) error {
	return run(rc, size, func(line []byte, batch *[]string) error {
		*batch = append(*batch, string(line))
		return nil
	}, fn)
}

// RecordBatches is Batches with each line decoded by DecodeLine. Blank lines are skipped
// and do not count toward the batch size. A line that fails to decode stops the stream
// with a *SyntaxError carrying its line number.
func RecordBatches(rc io.ReadCloser, size int, fn RecordBatchFunc) error {
	lineNo := 0
	return run(rc, size, func(line []byte, batch *[]Value) error {
		lineNo++
		if len(bytes.TrimSpace(line)) == 0 {
			return nil
		}
		v, err := decodeValue(line)
		if err != nil {
			return &SyntaxError{Line: lineNo, Err: err}
		}
		*batch = append(*batch, v)
		return nil
	}, fn)
}

// run is the shared batching loop. Its states are streaming (reading lines and
// flushing full batches), flushing the final partial batch, and closed.
func run[T any](rc io.ReadCloser, size int, add func(line []byte, batch *[]T) error, fn func([]T) error) (err error) {
	closed := false
	closeOnce := func() error {
		if closed {
			return nil
		}
		closed = true
		return rc.Close()
	}
	defer func() {
		if cerr := closeOnce(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if size <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBatchSize, size)
	}

	reader := bufio.NewReader(rc)
	batch := make([]T, 0, size)
	for {
		line, readErr := reader.ReadBytes('\n')
		if len(line) > 0 {
			if err := add(trimEOL(line), &batch); err != nil {
				return err
			}
			if len(batch) == size {
				if err := fn(batch); err != nil {
					return err
				}
				batch = make([]T, 0, size)
			}
		}
		if readErr == nil {
			continue
		}
		if !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("read stream: %w", readErr)
		}
		break
	}

	if len(batch) > 0 {
		if err := fn(batch); err != nil {
			return err
		}
	}
	return closeOnce()
}

// trimEOL strips one trailing "\n" or "\r\n".
func trimEOL(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte{'\n'})
	return bytes.TrimSuffix(line, []byte{'\r'})
}

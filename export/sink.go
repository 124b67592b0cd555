// Package export writes streamed dat output to files, optionally compressed.
//
// A Sink is shaped to sit behind the batch callbacks of package dat:
//
//	sink, err := export.NewSink(f, export.FromPath(f.Name()))
//	err = repo.ExportInBatches(ctx, "flights", 500, sink.WriteBatch)
//	err = sink.Close()
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/randalmurphal/datkit/ndjson"
)

// Sentinel errors for export sinks.
var (
	// ErrUnknownCompression indicates an unsupported compression name.
	ErrUnknownCompression = errors.New("unknown compression")

	// ErrClosed indicates a write to a closed Sink.
	ErrClosed = errors.New("export sink closed")
)

// Sink writes NDJSON lines to an underlying writer through a compressor.
// A Sink is not safe for concurrent use.
type Sink struct {
	comp   io.WriteCloser
	buf    *bufio.Writer
	lines  int
	closed bool
}

// NewSink returns a Sink writing to w with compression c. Close flushes the sink;
// it does not close w.
func NewSink(w io.Writer, c Compression) (*Sink, error) {
	comp, err := c.compressor(w)
	if err != nil {
		return nil, err
	}
	return &Sink{comp: comp, buf: bufio.NewWriter(comp)}, nil
}

// WriteBatch writes each line followed by a newline. It matches ndjson.BatchFunc.
func (s *Sink) WriteBatch(lines []string) error {
	if s.closed {
		return ErrClosed
	}
	for _, line := range lines {
		if _, err := s.buf.WriteString(line); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		if err := s.buf.WriteByte('\n'); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		s.lines++
	}
	return nil
}

// WriteRecords encodes each record on its own line. It matches ndjson.RecordBatchFunc.
func (s *Sink) WriteRecords(records []ndjson.Value) error {
	if s.closed {
		return ErrClosed
	}
	for _, rec := range records {
		data, err := rec.MarshalJSON()
		if err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
		if _, err := s.buf.Write(data); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		if err := s.buf.WriteByte('\n'); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		s.lines++
	}
	return nil
}

// Lines returns the number of lines written so far.
func (s *Sink) Lines() int {
	return s.lines
}

// Close flushes buffered lines and finishes the compressed stream.
func (s *Sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	flushErr := s.buf.Flush()
	closeErr := s.comp.Close()
	if err := errors.Join(flushErr, closeErr); err != nil {
		return fmt.Errorf("close export: %w", err)
	}
	return nil
}

package ndjson_test

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/datkit/ndjson"
)

// trackingReader counts Close calls on a string-backed stream.
type trackingReader struct {
	io.Reader
	closes   int
	closeErr error
}

func newTrackingReader(s string) *trackingReader {
	return &trackingReader{Reader: strings.NewReader(s)}
}

func (r *trackingReader) Close() error {
	r.closes++
	return r.closeErr
}

// failingReader returns data then a non-EOF error.
type failingReader struct {
	data   string
	err    error
	closes int
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.data == "" {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func (r *failingReader) Close() error {
	r.closes++
	return nil
}

func numberedLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf(`{"key":"k%d","value":{"n":%d}}`, i, i)
	}
	return lines
}

func collect(t *testing.T, input string, size int) ([][]string, *trackingReader, error) {
	t.Helper()
	rc := newTrackingReader(input)
	var batches [][]string
	err := ndjson.Batches(rc, size, func(batch []string) error {
		batches = append(batches, batch)
		return nil
	})
	return batches, rc, err
}

func batchSizes(batches [][]string) []int {
	sizes := make([]int, len(batches))
	for i, b := range batches {
		sizes[i] = len(b)
	}
	return sizes
}

func TestBatches_TwentyTwoLinesInFives(t *testing.T) {
	lines := numberedLines(22)
	batches, rc, err := collect(t, strings.Join(lines, "\n")+"\n", 5)
	require.NoError(t, err)

	assert.Equal(t, []int{5, 5, 5, 5, 2}, batchSizes(batches))
	assert.Equal(t, 1, rc.closes)
	assert.Equal(t, lines[21], batches[4][1])
}

func TestBatches_CountProperty(t *testing.T) {
	for _, lineCount := range []int{0, 1, 4, 5, 6, 10, 24, 99} {
		for _, size := range []int{1, 3, 5, 100} {
			t.Run(fmt.Sprintf("L=%d/B=%d", lineCount, size), func(t *testing.T) {
				lines := numberedLines(lineCount)
				input := ""
				if lineCount > 0 {
					input = strings.Join(lines, "\n") + "\n"
				}
				batches, rc, err := collect(t, input, size)
				require.NoError(t, err)

				wantBatches := (lineCount + size - 1) / size
				require.Len(t, batches, wantBatches)
				for i, b := range batches {
					if i < len(batches)-1 {
						assert.Len(t, b, size)
					}
				}
				if lineCount > 0 {
					wantLast := lineCount % size
					if wantLast == 0 {
						wantLast = size
					}
					assert.Len(t, batches[len(batches)-1], wantLast)
				}

				var joined []string
				for _, b := range batches {
					joined = append(joined, b...)
				}
				if lineCount == 0 {
					assert.Empty(t, joined)
				} else {
					assert.Equal(t, lines, joined)
				}
				assert.Equal(t, 1, rc.closes)
			})
		}
	}
}

func TestBatches_EmptyStreamStillCloses(t *testing.T) {
	calls := 0
	rc := newTrackingReader("")
	err := ndjson.Batches(rc, 5, func([]string) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, calls)
	assert.Equal(t, 1, rc.closes)
}

func TestBatches_FinalLineWithoutNewline(t *testing.T) {
	batches, _, err := collect(t, "a\r\nb\nc", 2)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, batches)
}

func TestBatches_KeepsBlankLines(t *testing.T) {
	batches, _, err := collect(t, "a\n\nb\n", 10)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "", "b"}}, batches)
}

func TestBatches_LongLine(t *testing.T) {
	long := strings.Repeat("x", 1<<20)
	batches, _, err := collect(t, long+"\nshort\n", 1)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Len(t, batches[0][0], 1<<20)
}

func TestBatches_CallbackErrorStopsAndCloses(t *testing.T) {
	sentinel := errors.New("load failed")
	rc := newTrackingReader(strings.Join(numberedLines(20), "\n"))
	calls := 0
	err := ndjson.Batches(rc, 5, func([]string) error {
		calls++
		if calls == 2 {
			return sentinel
		}
		return nil
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, rc.closes)
}

func TestBatches_CallbackPanicStillCloses(t *testing.T) {
	rc := newTrackingReader("a\nb\n")
	assert.Panics(t, func() {
		_ = ndjson.Batches(rc, 1, func([]string) error {
			panic("boom")
		})
	})
	assert.Equal(t, 1, rc.closes)
}

func TestBatches_CloseErrorSurfaces(t *testing.T) {
	closeErr := errors.New("process failed")
	rc := newTrackingReader("a\nb\nc\n")
	rc.closeErr = closeErr

	var got []string
	err := ndjson.Batches(rc, 2, func(batch []string) error {
		got = append(got, batch...)
		return nil
	})
	assert.ErrorIs(t, err, closeErr)
	assert.Equal(t, []string{"a", "b", "c"}, got, "all batches delivered before the close error")
	assert.Equal(t, 1, rc.closes)
}

func TestBatches_CallbackErrorWinsOverCloseError(t *testing.T) {
	sentinel := errors.New("stop")
	rc := newTrackingReader("a\nb\n")
	rc.closeErr = errors.New("killed")

	err := ndjson.Batches(rc, 1, func([]string) error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, rc.closes)
}

func TestBatches_ReadError(t *testing.T) {
	readErr := errors.New("pipe broke")
	rc := &failingReader{data: "a\nb\n", err: readErr}
	err := ndjson.Batches(rc, 10, func([]string) error { return nil })
	assert.ErrorIs(t, err, readErr)
	assert.Equal(t, 1, rc.closes)
}

func TestBatches_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		rc := newTrackingReader("a\n")
		err := ndjson.Batches(rc, size, func([]string) error {
			t.Fatal("callback must not run")
			return nil
		})
		assert.ErrorIs(t, err, ndjson.ErrInvalidBatchSize)
		assert.Equal(t, 1, rc.closes)
	}
}

func TestRecordBatches(t *testing.T) {
	input := strings.Join(numberedLines(7), "\n") + "\n\n"
	rc := newTrackingReader(input)

	var sizes []int
	var keys []string
	err := ndjson.RecordBatches(rc, 3, func(batch []ndjson.Value) error {
		sizes = append(sizes, len(batch))
		for _, v := range batch {
			k, _ := v.GetString("key")
			keys = append(keys, k)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 1}, sizes)
	assert.Equal(t, []string{"k0", "k1", "k2", "k3", "k4", "k5", "k6"}, keys)
	assert.Equal(t, 1, rc.closes)
}

func TestRecordBatches_MalformedLine(t *testing.T) {
	rc := newTrackingReader("{\"a\":1}\n{oops\n{\"a\":3}\n")
	delivered := 0
	err := ndjson.RecordBatches(rc, 1, func(batch []ndjson.Value) error {
		delivered += len(batch)
		return nil
	})

	var syntaxErr *ndjson.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, 2, syntaxErr.Line)
	assert.Equal(t, 1, delivered)
	assert.Equal(t, 1, rc.closes)
}

func TestRecordBatches_InvalidNumberStopsStream(t *testing.T) {
	for _, bad := range []string{`{"a":1-2}`, `{"a":01}`, `1e`} {
		t.Run(bad, func(t *testing.T) {
			rc := newTrackingReader("{\"a\":1}\n" + bad + "\n{\"a\":3}\n")
			delivered := 0
			err := ndjson.RecordBatches(rc, 1, func(batch []ndjson.Value) error {
				delivered += len(batch)
				return nil
			})

			var syntaxErr *ndjson.SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.Equal(t, 2, syntaxErr.Line)
			assert.Equal(t, 1, delivered)
			assert.Equal(t, 1, rc.closes)
		})
	}
}
